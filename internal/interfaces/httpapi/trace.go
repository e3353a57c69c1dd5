package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("volley-sync/internal/interfaces/httpapi")

// Probe paths are polled every few seconds and would drown the run spans.
var untracedPaths = map[string]struct{}{
	"/healthz": {},
	"/health":  {},
	"/livez":   {},
	"/readyz":  {},
}

func traced(path string) bool {
	_, skip := untracedPaths[strings.ToLower(strings.TrimSpace(path))]
	return !skip
}

func withTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "volley-sync-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool { return traced(r.URL.Path) }),
	)
}

// handlerSpan opens "httpapi.<op>" under the request span. Untraced requests get the
// no-op span already in their context.
func handlerSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, "httpapi."+op)
}
