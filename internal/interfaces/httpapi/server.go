package httpapi

import (
	"net/http"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
)

// NewRouter mounts the ops API: health, run history and the token-guarded trigger.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string, jobToken string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/runs", handler.ListRuns)
	mux.Handle("POST /v1/internal/runs", requireJobToken(jobToken)(http.HandlerFunc(handler.TriggerRun)))

	return chain(mux,
		withTracing,
		withAccessLog(logger),
		withCORS(corsAllowedOrigins),
		withRecovery(logger),
	)
}
