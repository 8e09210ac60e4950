package repository

import (
	"context"
	"database/sql"
	"time"

	"referral_proxy/internal/models"
)

type AuditRepo interface {
	Append(ctx context.Context, e models.ProxyEvent) error
	List(ctx context.Context, from, to time.Time, outcome string) ([]models.ProxyEvent, error)
	Stats(ctx context.Context) (models.ProxyStats, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	Audit AuditRepo
}

// NewRepository wires the SQLite audit store. A nil db yields a repository
// that accepts and discards every event.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return &Repository{Audit: Discard{}}
	}
	return &Repository{Audit: NewAuditSQLite(db)}
}

// Discard is the audit store used when no database is configured.
type Discard struct{}

var _ AuditRepo = Discard{}

func (Discard) Append(context.Context, models.ProxyEvent) error { return nil }

func (Discard) List(context.Context, time.Time, time.Time, string) ([]models.ProxyEvent, error) {
	return []models.ProxyEvent{}, nil
}

func (Discard) Stats(context.Context) (models.ProxyStats, error) {
	return models.ProxyStats{ByOutcome: map[string]int{}}, nil
}

func (Discard) Prune(context.Context, time.Time) (int64, error) { return 0, nil }
