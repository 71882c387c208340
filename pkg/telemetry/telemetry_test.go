package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ghuser/chatmesh/pkg/config"
)

func TestSetupSentry_NoDSN(t *testing.T) {
	cfg := &config.Config{
		ServiceName:    "test-service",
		ServiceVersion: "test",
		Environment:    config.EnvTesting,
	}
	if err := SetupSentry(cfg); err != nil {
		t.Fatalf("empty DSN should no-op, got %v", err)
	}
}

func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	rr := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Header().Get("Content-Type")
	if !strings.Contains(ct, "text/plain") {
		t.Errorf("expected text/plain content-type, got %q", ct)
	}
}
