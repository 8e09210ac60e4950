package service

import (
	"context"
	"time"

	"referral_proxy/internal/logger"
	"referral_proxy/internal/repository"
)

// RetentionService deletes audit rows older than the retention window.
type RetentionService struct {
	auditRepo repository.AuditRepo
	retention time.Duration
	log       *logger.Logger
}

func NewRetentionService(auditRepo repository.AuditRepo, retention time.Duration, log *logger.Logger) *RetentionService {
	return &RetentionService{
		auditRepo: auditRepo,
		retention: retention,
		log:       log,
	}
}

// Run prunes on every tick until ctx is canceled. It returns immediately
// when retention or tick is not positive.
func (s *RetentionService) Run(ctx context.Context, tick time.Duration) {
	if s.retention <= 0 || tick <= 0 {
		return
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.pruneOnce(ctx, now)
			if s.log == nil {
				continue
			}
			if err != nil {
				s.log.Warnw("audit_prune_failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Infow("audit_pruned", "rows", n, "retention", s.retention.String())
			}
		}
	}
}

// pruneOnce removes events that occurred before now minus retention.
func (s *RetentionService) pruneOnce(ctx context.Context, now time.Time) (int64, error) {
	return s.auditRepo.Prune(ctx, now.UTC().Add(-s.retention))
}
