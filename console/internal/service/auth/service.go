package auth

import (
	"context"
	"net/http"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"go.uber.org/zap"
)

const authURL = "/auth"

type Service struct {
	log    *zap.Logger
	client api.Doer
}

func NewService(log *zap.Logger, client api.Doer) *Service {
	return &Service{
		log:    log.Named("auth"),
		client: client,
	}
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.SessionPayload, int, error) {
	var payload model.SessionPayload
	code, err := s.client.Do(ctx, http.MethodPost, authURL+"/login", req, &payload)
	if err != nil {
		return model.SessionPayload{}, code, err
	}
	return payload, code, nil
}

// RefreshToken exchanges the refresh cookie held by the client for a new
// access token.
func (s *Service) RefreshToken(ctx context.Context) (model.SessionPayload, int, error) {
	var payload model.SessionPayload
	code, err := s.client.Do(ctx, http.MethodPost, authURL+"/refresh-token", nil, &payload)
	if err != nil {
		return model.SessionPayload{}, code, err
	}
	return payload, code, nil
}
