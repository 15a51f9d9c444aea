package handler

import (
	"context"

	"github.com/Astemirdum/library-admin/activity/internal/model"
	"github.com/Astemirdum/library-admin/activity/internal/service"
	"github.com/Astemirdum/library-admin/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ActivityService interface {
	List(ctx context.Context, entity string, limit int) (model.List, error)
	Record(ctx context.Context, e kafka.EventActivity) error
}

var _ ActivityService = (*service.Service)(nil)
