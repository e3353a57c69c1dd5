package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("volley-sync/internal/usecase")

// startSpan opens "usecase.<name>" under the caller's span. Cron passes with no
// parent span keep the no-op span from ctx.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, "usecase."+name)
}
