package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/volley-sync/internal/config"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

func TestStart_EverythingDisabled(t *testing.T) {
	t.Parallel()

	tel, err := Start(config.Config{ServiceName: "volley-sync", AppEnv: config.EnvDev}, logging.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if tel.tracing || tel.profiler != nil || tel.debugHTTP != nil {
		t.Fatalf("expected nothing running, got %+v", tel)
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStart_TracingNeedsDSN(t *testing.T) {
	t.Parallel()

	tel, err := Start(config.Config{UptraceEnabled: true, UptraceDSN: "  "}, logging.NewNop())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if tel.tracing {
		t.Fatalf("tracing must stay off without a DSN")
	}
}

func TestShutdown_NilTelemetry(t *testing.T) {
	t.Parallel()

	var tel *Telemetry
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestDebugMux_ServesIndex(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	debugMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
