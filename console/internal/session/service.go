package session

import (
	"context"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"github.com/Astemirdum/library-admin/console/internal/service/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ AuthService = (*auth.Service)(nil)
	_ TokenStore  = (*api.Client)(nil)
)

type AuthService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.SessionPayload, int, error)
	RefreshToken(ctx context.Context) (model.SessionPayload, int, error)
}

// TokenStore puts the access token on outgoing requests.
type TokenStore interface {
	SetToken(token string)
}
