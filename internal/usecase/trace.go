package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var stepTracer = otel.Tracer("lheqstats/internal/usecase")

// startUsecaseSpan opens a child span for one pipeline step. Without a
// valid parent span the step is not traced; callers still get an inert
// span whose End is safe to defer.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if strings.TrimSpace(name) == "" || !parent.SpanContext().IsValid() {
		return ctx, noopSpan()
	}
	return stepTracer.Start(ctx, name)
}

func noopSpan() trace.Span {
	return trace.SpanFromContext(context.Background())
}
