package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"referral_proxy/internal/models"
	"referral_proxy/internal/service"

	"github.com/gin-gonic/gin"
)

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{}, Options{AllowedOrigin: testOrigin})

	w := doRequest(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	last := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	mon := &mockMonitoring{stats: models.ProxyStats{
		Total:       3,
		ByOutcome:   map[string]int{models.OutcomeOK: 2, models.OutcomeUpstreamError: 1},
		LastEventAt: last,
	}}
	r := newTestRouter(&service.Service{Monitoring: mon}, testOptions())

	w := getWithToken(r, "/api/v1/stats", testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var st models.ProxyStats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Total != 3 || st.ByOutcome[models.OutcomeOK] != 2 || !st.LastEventAt.Equal(last) {
		t.Fatalf("unexpected stats: %+v", st)
	}

	mon.err = errors.New("boom")
	if w := getWithToken(r, "/api/v1/stats", testToken); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", w.Code)
	}
}

func TestAdminRoutes_DisabledWithoutToken(t *testing.T) {
	s := &service.Service{Audit: &mockAudit{}, Monitoring: &mockMonitoring{}}
	r := newTestRouter(s, Options{AllowedOrigin: testOrigin})

	for _, path := range []string{"/api/v1/audit", "/api/v1/stats", "/ws"} {
		if w := getWithToken(r, path, ""); w.Code != http.StatusNotFound {
			t.Fatalf("%s status=%d, want 404", path, w.Code)
		}
	}
}

func TestSwaggerUI(t *testing.T) {
	r := newTestRouter(&service.Service{}, testOptions())

	w := doRequest(r, http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/api/proxy"]; !ok {
		t.Fatalf("proxy route missing from swagger doc")
	}
}

func TestInitUnavailableRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewHandler(nil, nil, Options{AllowedOrigin: testOrigin}).InitUnavailableRoutes("configuration invalid")

	w := doRequest(r, http.MethodOptions, "/api/proxy", "")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != testOrigin {
		t.Fatalf("preflight status=%d headers=%v", w.Code, w.Header())
	}

	w = doRequest(r, http.MethodPost, "/api/proxy", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out["error"] != "Proxy failed to connect to Shock API" || out["message"] != "configuration invalid" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != testOrigin {
		t.Fatal("CORS headers missing")
	}
}
