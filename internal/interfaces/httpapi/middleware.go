package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/riskibarqy/volley-sync/internal/usecase"
)

const jobTokenHeader = "X-Internal-Job-Token"

type middleware func(http.Handler) http.Handler

// chain wraps h so that mws[0] sees the request first.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// requireJobToken guards the trigger endpoint. An empty token disables the endpoint.
func requireJobToken(token string) middleware {
	expected := []byte(strings.TrimSpace(token))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				writeError(r.Context(), w, fmt.Errorf("%w: internal job token is not configured", usecase.ErrDependencyUnavailable))
				return
			}
			provided := []byte(strings.TrimSpace(r.Header.Get(jobTokenHeader)))
			if subtle.ConstantTimeCompare(provided, expected) != 1 {
				writeError(r.Context(), w, fmt.Errorf("%w: invalid internal job token", usecase.ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func withAccessLog(logger *logging.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"client_ip", resolveClientIP(r),
				"duration_ms", time.Since(started).Milliseconds(),
			)
		})
	}
}

func withRecovery(logger *logging.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "path", r.URL.Path)
					writeClass(w, internalClass, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// withCORS lets a dashboard on another origin read the run history. "*" allows any origin.
func withCORS(allowedOrigins []string) middleware {
	allowAny := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			allowAny = true
		default:
			allowed[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, listed := allowed[origin]
			switch {
			case allowAny:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case listed:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			if allowAny || listed {
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Accept,"+jobTokenHeader)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
