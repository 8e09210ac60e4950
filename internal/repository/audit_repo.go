package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"referral_proxy/internal/models"

	"github.com/google/uuid"
)

// Timestamps are stored as fixed-width UTC text so that string comparison
// in SQL matches chronological order.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

const (
	insertEventSQL = `
		INSERT INTO proxy_events (id, occurred_at, outcome, status, duration_ms, min_date, max_date, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	selectEventsSQL = `SELECT id, occurred_at, outcome, status, duration_ms, min_date, max_date, detail FROM proxy_events`
	statsSQL        = `SELECT outcome, COUNT(*), MAX(occurred_at) FROM proxy_events GROUP BY outcome`
	pruneSQL        = `DELETE FROM proxy_events WHERE occurred_at < ?`
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

var _ AuditRepo = (*AuditSQLite)(nil)

func formatTime(t time.Time) string { return t.UTC().Format(sqliteTimeLayout) }

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse stored time %q", s)
}

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *AuditSQLite) Append(ctx context.Context, e models.ProxyEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	var detail *string
	if e.Detail != "" {
		detail = &e.Detail
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		formatTime(e.OccurredAt),
		strings.ToUpper(strings.TrimSpace(e.Outcome)),
		e.Status,
		e.DurationMs,
		e.MinDate,
		e.MaxDate,
		detail,
	)
	if err != nil {
		return fmt.Errorf("insert proxy event: %w", err)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive) and/or outcome, ordered ASC.
func (r *AuditSQLite) List(ctx context.Context, from, to time.Time, outcome string) ([]models.ProxyEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, formatTime(to))
	}
	if outcome = strings.ToUpper(strings.TrimSpace(outcome)); outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, outcome)
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ProxyEvent, 0, 64)
	for rows.Next() {
		var (
			ev         models.ProxyEvent
			occurredAt string
			minDate    sql.NullInt64
			maxDate    sql.NullInt64
			detail     sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurredAt, &ev.Outcome, &ev.Status, &ev.DurationMs, &minDate, &maxDate, &detail); err != nil {
			return nil, err
		}
		if ev.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, err
		}
		if minDate.Valid {
			v := minDate.Int64
			ev.MinDate = &v
		}
		if maxDate.Valid {
			v := maxDate.Int64
			ev.MaxDate = &v
		}
		ev.Detail = detail.String
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats aggregates counts per outcome and the most recent event time.
func (r *AuditSQLite) Stats(ctx context.Context) (models.ProxyStats, error) {
	rows, err := r.db.QueryContext(ctx, statsSQL)
	if err != nil {
		return models.ProxyStats{}, err
	}
	defer rows.Close()

	stats := models.ProxyStats{ByOutcome: map[string]int{}}
	for rows.Next() {
		var (
			outcome string
			count   int
			last    sql.NullString
		)
		if err := rows.Scan(&outcome, &count, &last); err != nil {
			return models.ProxyStats{}, err
		}
		stats.ByOutcome[outcome] = count
		stats.Total += count
		if last.Valid && last.String != "" {
			t, err := parseTime(last.String)
			if err != nil {
				return models.ProxyStats{}, err
			}
			if t.After(stats.LastEventAt) {
				stats.LastEventAt = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return models.ProxyStats{}, err
	}
	return stats, nil
}

// Prune deletes events strictly older than before and reports how many went.
func (r *AuditSQLite) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, pruneSQL, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("prune proxy events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return n, nil
}
