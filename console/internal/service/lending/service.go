package lending

import (
	"context"
	"net/http"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"go.uber.org/zap"
)

// The remote API spells the resource "landing".
const lendingURL = "/landing"

type Service struct {
	log    *zap.Logger
	client api.Doer
}

func NewService(log *zap.Logger, client api.Doer) *Service {
	return &Service{
		log:    log.Named("lending"),
		client: client,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Lending, int, error) {
	var records []model.Lending
	code, err := s.client.Do(ctx, http.MethodGet, lendingURL+"/getAllRecords", nil, &records)
	if err != nil {
		return nil, code, err
	}
	return records, code, nil
}

// Create lends a book. The remote API has no update or delete for lendings.
func (s *Service) Create(ctx context.Context, draft model.Lending) (model.Lending, int, error) {
	draft.ID = ""
	var record model.Lending
	code, err := s.client.Do(ctx, http.MethodPost, lendingURL+"/landbook", draft, &record)
	if err != nil {
		return model.Lending{}, code, err
	}
	return record, code, nil
}
