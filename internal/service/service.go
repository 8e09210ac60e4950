package service

import (
	"context"
	"time"

	"referral_proxy"
	"referral_proxy/internal/logger"
	"referral_proxy/internal/models"
	"referral_proxy/internal/repository"
	"referral_proxy/internal/upstream"
)

// Referrals builds the upstream payload and relays the Shock response.
type Referrals interface {
	BuildPayload(q referral_proxy.ReferralQuery) (referral_proxy.UpstreamPayload, error)
	Forward(ctx context.Context, p referral_proxy.UpstreamPayload) (Reply, error)
}

// Audit records proxy invocations and lists them back.
type Audit interface {
	Record(ctx context.Context, e models.ProxyEvent) error
	List(ctx context.Context, f AuditFilter) ([]models.ProxyEvent, error)
}

// Monitoring exposes aggregated outcome counters.
type Monitoring interface {
	GetStats(ctx context.Context) (models.ProxyStats, error)
}

// Retention prunes old audit rows until ctx is cancelled.
type Retention interface {
	Run(ctx context.Context, tick time.Duration)
}

// UpstreamPoster is satisfied by *upstream.Client.
type UpstreamPoster interface {
	Post(ctx context.Context, payload any) (upstream.Response, error)
}

type Service struct {
	Referrals
	Audit
	Monitoring
	Retention
}

// Deps carries everything NewService needs besides the repositories.
type Deps struct {
	Upstream  UpstreamPoster
	APIKey    string
	Retention time.Duration // non-positive disables pruning
	Log       *logger.Logger
}

func NewService(repos *repository.Repository, d Deps) *Service {
	return &Service{
		Referrals:  NewReferralService(d.Upstream, d.APIKey, d.Log),
		Audit:      NewAuditService(repos.Audit),
		Monitoring: NewMonitoringService(repos.Audit),
		Retention:  NewRetentionService(repos.Audit, d.Retention, d.Log),
	}
}
