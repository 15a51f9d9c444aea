package service

import (
	"context"

	"github.com/Astemirdum/library-admin/activity/internal/errs"
	"github.com/Astemirdum/library-admin/activity/internal/model"
	"github.com/Astemirdum/library-admin/activity/internal/repository"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewService(repo repository.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log.Named("service"),
		repo: repo,
	}
}

// Record stores an event read from Kafka.
func (s *Service) Record(ctx context.Context, e kafka.EventActivity) error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return errors.Wrapf(errs.ErrInvalidEvent, "id %q", e.ID)
	}
	if e.Entity == "" || e.Action == "" {
		return errors.Wrap(errs.ErrInvalidEvent, "entity and action are required")
	}
	return s.repo.Save(ctx, model.FromKafka(e))
}

// List returns the latest events, newest first.
func (s *Service) List(ctx context.Context, entity string, limit int) (model.List, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	events, err := s.repo.List(ctx, model.Filter{Entity: entity, Limit: limit})
	if err != nil {
		return model.List{}, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return model.List{Items: events}, nil
}
