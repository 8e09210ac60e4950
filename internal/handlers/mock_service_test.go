package handlers

import (
	"context"
	"net/http"
	"sync"

	"referral_proxy"
	"referral_proxy/internal/models"
	"referral_proxy/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockReferrals struct {
	buildFn    func(q referral_proxy.ReferralQuery) (referral_proxy.UpstreamPayload, error)
	reply      service.Reply
	forwardErr error

	lastQuery    referral_proxy.ReferralQuery
	lastPayload  referral_proxy.UpstreamPayload
	buildCalls   int
	forwardCalls int
}

func (m *mockReferrals) BuildPayload(q referral_proxy.ReferralQuery) (referral_proxy.UpstreamPayload, error) {
	m.buildCalls++
	m.lastQuery = q
	if m.buildFn != nil {
		return m.buildFn(q)
	}
	return referral_proxy.UpstreamPayload{APIKey: "test-key"}, nil
}

func (m *mockReferrals) Forward(ctx context.Context, p referral_proxy.UpstreamPayload) (service.Reply, error) {
	m.forwardCalls++
	m.lastPayload = p
	return m.reply, m.forwardErr
}

type mockAudit struct {
	mu        sync.Mutex
	recorded  []models.ProxyEvent
	recordErr error

	resp       []models.ProxyEvent
	listErr    error
	lastFilter service.AuditFilter
}

func (m *mockAudit) Record(ctx context.Context, e models.ProxyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, e)
	return m.recordErr
}

func (m *mockAudit) List(ctx context.Context, f service.AuditFilter) ([]models.ProxyEvent, error) {
	m.lastFilter = f
	return m.resp, m.listErr
}

func (m *mockAudit) events() []models.ProxyEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProxyEvent(nil), m.recorded...)
}

type mockMonitoring struct {
	stats models.ProxyStats
	err   error
}

func (m *mockMonitoring) GetStats(ctx context.Context) (models.ProxyStats, error) {
	return m.stats, m.err
}

// ---- Shared Test Helpers ----

const (
	testOrigin = "https://frontend.example"
	testToken  = "admin-secret"
)

func testOptions() Options {
	return Options{AllowedOrigin: testOrigin, AdminToken: testToken}
}

func newTestRouter(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
