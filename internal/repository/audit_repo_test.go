package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"referral_proxy/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func int64p(v int64) *int64 { return &v }

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	// id and timestamp are generated, so only their presence is matched.
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.OutcomeOK, 200, int64(42),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.ProxyEvent{
		Outcome:    "  ok ",
		Status:     200,
		DurationMs: 42,
		MinDate:    int64p(1735689600000),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_KeepsProvidedIDAndTime(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	at := time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.FixedZone("X", 3600))
	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs("evt-1", "2025-03-04 04:06:07.008",
			models.OutcomeInvalidDate, 400, int64(0),
			sqlmock.AnyArg(), sqlmock.AnyArg(), "minDate",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.ProxyEvent{
		EventID:    "evt-1",
		OccurredAt: at,
		Outcome:    models.OutcomeInvalidDate,
		Status:     400,
		Detail:     "minDate",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	mock.ExpectExec("INSERT INTO proxy_events").
		WillReturnError(errors.New("down"))

	err := repo.Append(ctx(t), models.ProxyEvent{Outcome: models.OutcomeOK})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

var eventColumns = []string{"id", "occurred_at", "outcome", "status", "duration_ms", "min_date", "max_date", "detail"}

func TestList_NoFilters_ParsesRows(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	rows := sqlmock.NewRows(eventColumns).
		AddRow("1", "2025-01-01 10:00:00.000", "OK", 200, 35, int64(1735689600000), nil, nil).
		AddRow("2", "2025-01-01 11:00:00.250", "UPSTREAM_ERROR", 429, 12, nil, int64(1738368000000), "rate limited")

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + ` ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if got[0].EventID != "1" || got[0].MinDate == nil || *got[0].MinDate != 1735689600000 || got[0].MaxDate != nil {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	wantAt := time.Date(2025, 1, 1, 11, 0, 0, 250_000_000, time.UTC)
	if !got[1].OccurredAt.Equal(wantAt) || got[1].Detail != "rate limited" || got[1].Status != 429 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := selectEventsSQL + ` WHERE occurred_at >= ? AND occurred_at <= ? AND outcome = ? ORDER BY occurred_at ASC`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("2025-01-01 11:00:00.000", "2025-01-01 12:00:00.000", "PROXY_FAILURE").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("3", "2025-01-01 11:30:00.000", "PROXY_FAILURE", 500, 5000, nil, nil, "timeout"))

	got, err := repo.List(ctx(t), from, to, " proxy_failure ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_BadStoredTime(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	mock.ExpectQuery("SELECT id, occurred_at").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("x", "yesterday", "OK", 200, 1, nil, nil, nil))

	if _, err := repo.List(ctx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected parse error, got nil")
	}
}

func TestStats_AggregatesOutcomes(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(statsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"outcome", "count", "last"}).
			AddRow("OK", 7, "2025-02-01 08:00:00.000").
			AddRow("UPSTREAM_ERROR", 2, "2025-02-02 09:30:00.000"))

	st, err := repo.Stats(ctx(t))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 9 || st.ByOutcome["OK"] != 7 || st.ByOutcome["UPSTREAM_ERROR"] != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	want := time.Date(2025, 2, 2, 9, 30, 0, 0, time.UTC)
	if !st.LastEventAt.Equal(want) {
		t.Fatalf("LastEventAt: got %v, want %v", st.LastEventAt, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestPrune_ReturnsRowsAffected(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewAuditSQLite(db)

	before := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(pruneSQL)).
		WithArgs("2025-01-01 00:00:00.000").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.Prune(ctx(t), before)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 pruned, got %d", n)
	}
}

func TestNewRepository_NilDBDiscards(t *testing.T) {
	t.Parallel()

	repo := NewRepository(nil)
	if _, ok := repo.Audit.(Discard); !ok {
		t.Fatalf("expected Discard repo, got %T", repo.Audit)
	}
	if err := repo.Audit.Append(ctx(t), models.ProxyEvent{Outcome: "OK"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	events, err := repo.Audit.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty list, got %v, %v", events, err)
	}
	st, err := repo.Audit.Stats(ctx(t))
	if err != nil || st.Total != 0 || st.ByOutcome == nil {
		t.Fatalf("unexpected stats: %+v, %v", st, err)
	}
}
