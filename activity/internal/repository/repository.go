package repository

import (
	"context"
	"fmt"

	"github.com/Astemirdum/library-admin/activity/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	Save(ctx context.Context, event model.Event) error
	List(ctx context.Context, filter model.Filter) ([]model.Event, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const eventTableName = `activity_event`

var (
	qb      = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns = []string{"id", "timestamp", "actor", "entity", "entity_id", "action", "summary"}
)

// Save stores the event. An event that is already stored is not an error,
// so a redelivered message is harmless.
func (r *repository) Save(ctx context.Context, e model.Event) error {
	query, args, err := qb.Insert(eventTableName).
		Columns(columns...).
		Values(e.ID, e.Timestamp, e.Actor, e.Entity, e.EntityID, e.Action, e.Summary).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.log.Debug("duplicate event", zap.String("id", e.ID))
			return nil
		}
		return errors.Wrap(err, "insert event")
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter model.Filter) ([]model.Event, error) {
	q := qb.Select(columns...).
		From(eventTableName).
		OrderBy("timestamp desc", "id").
		Limit(uint64(filter.Limit))
	if filter.Entity != "" {
		q = q.Where(sq.Eq{"entity": filter.Entity})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("List", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Event])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return events, nil
}
