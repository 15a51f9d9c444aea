package book

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/Astemirdum/library-admin/console/internal/service/api"
	"go.uber.org/zap"
)

const bookURL = "/book"

type Service struct {
	log    *zap.Logger
	client api.Doer
}

func NewService(log *zap.Logger, client api.Doer) *Service {
	return &Service{
		log:    log.Named("book"),
		client: client,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Book, int, error) {
	var books []model.Book
	code, err := s.client.Do(ctx, http.MethodGet, bookURL+"/getBooks", nil, &books)
	if err != nil {
		return nil, code, err
	}
	return books, code, nil
}

func (s *Service) Create(ctx context.Context, draft model.Book) (model.Book, int, error) {
	draft.ID = ""
	var book model.Book
	code, err := s.client.Do(ctx, http.MethodPost, bookURL+"/add", draft, &book)
	if err != nil {
		return model.Book{}, code, err
	}
	return book, code, nil
}

func (s *Service) Update(ctx context.Context, id string, book model.Book) (model.Book, int, error) {
	book.ID = id
	var updated model.Book
	code, err := s.client.Do(ctx, http.MethodPut, bookURL+"/"+url.PathEscape(id), book, &updated)
	if err != nil {
		return model.Book{}, code, err
	}
	return updated, code, nil
}

func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	return s.client.Do(ctx, http.MethodDelete, bookURL+"/"+url.PathEscape(id), nil, nil)
}
