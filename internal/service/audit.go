package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"referral_proxy/internal/models"
	"referral_proxy/internal/repository"
)

type AuditService struct {
	repo repository.AuditRepo
}

func NewAuditService(repo repository.AuditRepo) *AuditService {
	return &AuditService{repo: repo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errMissingOutcome   = errors.New("audit event has no outcome")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeOutcome trims spaces and uppercases the outcome filter.
func normalizeOutcome(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f AuditFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeOutcome(f.Outcome), nil
}

// Record appends one invocation to the audit trail.
func (s *AuditService) Record(ctx context.Context, e models.ProxyEvent) error {
	e.Outcome = normalizeOutcome(e.Outcome)
	if e.Outcome == "" {
		return errMissingOutcome
	}
	e.OccurredAt = normalizeToUTC(e.OccurredAt)
	return s.repo.Append(ctx, e)
}

func (s *AuditService) List(ctx context.Context, f AuditFilter) ([]models.ProxyEvent, error) {
	from, to, outcome, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, from, to, outcome)
}
