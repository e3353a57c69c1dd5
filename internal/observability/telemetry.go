// Package observability wires tracing, continuous profiling and the pprof listener
// for the scraper process.
package observability

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/volley-sync/internal/config"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// Telemetry holds whatever was switched on at start. The zero value shuts down cleanly.
type Telemetry struct {
	logger    *logging.Logger
	tracing   bool
	profiler  *pyroscope.Profiler
	debugHTTP *http.Server
}

// Start brings up each enabled component. On failure the ones already running are
// stopped before returning.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	t.tracing = startTracing(cfg, logger)

	profiler, err := startProfiler(cfg, logger)
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, errors.Wrap(err, "start pyroscope")
	}
	t.profiler = profiler

	t.debugHTTP = startDebugServer(cfg, logger)
	return t, nil
}

// Shutdown stops the pprof listener, flushes profiles then flushes spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var err error
	if t.debugHTTP != nil {
		if stopErr := t.debugHTTP.Shutdown(ctx); stopErr != nil {
			err = errors.CombineErrors(err, errors.Wrap(stopErr, "stop pprof"))
		}
		t.debugHTTP = nil
	}
	if t.profiler != nil {
		if stopErr := t.profiler.Stop(); stopErr != nil {
			err = errors.CombineErrors(err, errors.Wrap(stopErr, "stop pyroscope"))
		}
		t.profiler = nil
	}
	if t.tracing {
		if stopErr := uptrace.Shutdown(ctx); stopErr != nil {
			err = errors.CombineErrors(err, errors.Wrap(stopErr, "stop uptrace"))
		}
		t.tracing = false
	}
	return err
}

func startTracing(cfg config.Config, logger *logging.Logger) bool {
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return false
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return false
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	logger.Info("uptrace enabled", "service_version", cfg.ServiceVersion, "logs_enabled", cfg.UptraceLogsEnabled)
	return true
}

func startProfiler(cfg config.Config, logger *logging.Logger) (*pyroscope.Profiler, error) {
	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return nil, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName},
		// Scrape passes are I/O bound; goroutine and heap profiles show worker pile-ups.
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileAllocSpace,
		},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return profiler, nil
}

func debugMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func startDebugServer(cfg config.Config, logger *logging.Logger) *http.Server {
	if !cfg.PprofEnabled {
		return nil
	}

	srv := &http.Server{Addr: cfg.PprofAddr, Handler: debugMux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("pprof listening", "addr", cfg.PprofAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server failed", "error", err)
		}
	}()
	return srv
}
