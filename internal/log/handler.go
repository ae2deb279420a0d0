package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/bipagem/pkg/correlationid"
)

// contextAttrs pulls request scoped attributes out of a context.
type contextAttrs func(ctx context.Context) []slog.Attr

func correlationAttrs(ctx context.Context) []slog.Attr {
	id, ok := correlationid.FromContext(ctx)
	if !ok {
		return nil
	}
	return []slog.Attr{slog.String("correlation_id", id)}
}

func traceAttrs(ctx context.Context) []slog.Attr {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []slog.Attr{
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	}
}

var _ slog.Handler = (*enrichedHandler)(nil)

// enrichedHandler adds the correlation id and the active span to every record
// logged with a context, so an HTTP request, its outbox message and the
// consumer handling it can be joined in the logs.
type enrichedHandler struct {
	next    slog.Handler
	sources []contextAttrs
}

func newEnrichedHandler(next slog.Handler) *enrichedHandler {
	return &enrichedHandler{
		next:    next,
		sources: []contextAttrs{correlationAttrs, traceAttrs},
	}
}

func (h *enrichedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *enrichedHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, source := range h.sources {
		r.AddAttrs(source(ctx)...)
	}
	return h.next.Handle(ctx, r)
}

func (h *enrichedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &enrichedHandler{next: h.next.WithAttrs(attrs), sources: h.sources}
}

func (h *enrichedHandler) WithGroup(name string) slog.Handler {
	return &enrichedHandler{next: h.next.WithGroup(name), sources: h.sources}
}
