package reader

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"go.uber.org/zap"
)

const readerURL = "/reader"

type Service struct {
	log    *zap.Logger
	client api.Doer
}

func NewService(log *zap.Logger, client api.Doer) *Service {
	return &Service{
		log:    log.Named("reader"),
		client: client,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Reader, int, error) {
	var readers []model.Reader
	code, err := s.client.Do(ctx, http.MethodGet, readerURL+"/getAll", nil, &readers)
	if err != nil {
		return nil, code, err
	}
	return readers, code, nil
}

func (s *Service) Create(ctx context.Context, draft model.Reader) (model.Reader, int, error) {
	draft.ID = ""
	var reader model.Reader
	code, err := s.client.Do(ctx, http.MethodPost, readerURL+"/add", draft, &reader)
	if err != nil {
		return model.Reader{}, code, err
	}
	return reader, code, nil
}

func (s *Service) Update(ctx context.Context, id string, reader model.Reader) (model.Reader, int, error) {
	reader.ID = id
	var updated model.Reader
	code, err := s.client.Do(ctx, http.MethodPut, readerURL+"/"+url.PathEscape(id), reader, &updated)
	if err != nil {
		return model.Reader{}, code, err
	}
	return updated, code, nil
}

func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	return s.client.Do(ctx, http.MethodDelete, readerURL+"/"+url.PathEscape(id), nil, nil)
}
