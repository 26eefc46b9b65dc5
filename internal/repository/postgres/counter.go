package postgres

import (
	"context"

	"github.com/yadgarautos/jobfiles/internal/domain/sequence"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/postgres"
	"github.com/yadgarautos/jobfiles/internal/sentry"
)

type counterRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	sentry *sentry.Service
}

func NewCounterRepository(db *postgres.DB, logger *logger.Logger, sentry *sentry.Service) sequence.Repository {
	return &counterRepository{db: db, logger: logger, sentry: sentry}
}

func (r *counterRepository) Read(ctx context.Context, name string) (current int64, err error) {
	span, ctx := r.sentry.StartDBSpan(ctx, "counter.read", map[string]interface{}{"name": name})
	defer func() { sentry.FinishSpan(span, err) }()

	query := `SELECT current FROM counters WHERE name = $1`
	if err = r.db.GetQuerier(ctx).GetContext(ctx, &current, query, name); err != nil {
		if isNoRows(err) {
			return 0, ierr.WithError(err).
				WithHintf("Counter %s has not been initialized", name).
				Mark(ierr.ErrNotFound)
		}
		return 0, storeError(err, "Could not read the invoice counter")
	}
	return current, nil
}

func (r *counterRepository) Init(ctx context.Context, name string, value int64) (created bool, err error) {
	span, ctx := r.sentry.StartDBSpan(ctx, "counter.init", map[string]interface{}{"name": name, "value": value})
	defer func() { sentry.FinishSpan(span, err) }()

	query := `
		INSERT INTO counters (name, current, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO NOTHING`
	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, name, value)
	if err != nil {
		return false, storeError(err, "Could not initialize the invoice counter")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError(err, "Could not initialize the invoice counter")
	}
	return n == 1, nil
}

// Increment is a single upsert so concurrent callers are serialized by postgres
func (r *counterRepository) Increment(ctx context.Context, name string, delta int64) (current int64, err error) {
	span, ctx := r.sentry.StartDBSpan(ctx, "counter.increment", map[string]interface{}{"name": name, "delta": delta})
	defer func() { sentry.FinishSpan(span, err) }()

	query := `
		INSERT INTO counters (name, current, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE
		SET current = counters.current + EXCLUDED.current,
			updated_at = CURRENT_TIMESTAMP
		RETURNING current`
	if err = r.db.GetQuerier(ctx).GetContext(ctx, &current, query, name, delta); err != nil {
		return 0, storeError(err, "Could not issue an invoice number")
	}

	r.logger.Infow("incremented counter", "name", name, "current", current)
	return current, nil
}
