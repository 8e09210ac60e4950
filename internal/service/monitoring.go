package service

import (
	"context"

	"referral_proxy/internal/models"
	"referral_proxy/internal/repository"
)

type MonitoringService struct {
	auditRepo repository.AuditRepo
}

func NewMonitoringService(auditRepo repository.AuditRepo) *MonitoringService {
	return &MonitoringService{auditRepo: auditRepo}
}

// GetStats returns outcome counters from the audit trail. An empty trail
// yields zero counts and an empty (non-nil) outcome map.
func (s *MonitoringService) GetStats(ctx context.Context) (models.ProxyStats, error) {
	st, err := s.auditRepo.Stats(ctx)
	if err != nil {
		return models.ProxyStats{}, err
	}
	if st.ByOutcome == nil {
		st.ByOutcome = map[string]int{}
	}
	st.LastEventAt = normalizeToUTC(st.LastEventAt)
	return st, nil
}
