// Package outbox carries request context across the outbox table and the
// broker as plain string headers.
package outbox

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/bipagem/pkg/correlationid"
)

// ContentTypeHeader names the encoding of the message payload.
const (
	ContentTypeHeader = "content-type"
	ContentTypeJSON   = "application/json"
)

// BuildHeaders returns the headers stored with an outbox message written
// under ctx: the W3C trace context, baggage, the correlation id and the
// payload content type.
func BuildHeaders(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{ContentTypeHeader: ContentTypeJSON}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	if id, ok := correlationid.FromContext(ctx); ok {
		carrier.Set(correlationid.Header, id)
	}

	return carrier
}

// ExtractContextFromHeaders is the inverse of BuildHeaders: the returned
// context continues the trace and correlation id of the original request.
func ExtractContextFromHeaders(ctx context.Context, headers map[string]string) context.Context {
	carrier := propagation.MapCarrier(headers)
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	if id := carrier.Get(correlationid.Header); id != "" {
		ctx = correlationid.NewContext(ctx, id)
	}

	return ctx
}

// RecordHeaders flattens Kafka record headers into a map. Later duplicates win.
func RecordHeaders(rec *kgo.Record) map[string]string {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}
