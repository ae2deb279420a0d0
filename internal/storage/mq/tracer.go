package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	tracer = otel.Tracer("internal/storage/mq")
	// kHooks add broker level spans below the publish and process spans
	// started here.
	kHooks = kotel.NewKotel(kotel.WithTracer(kotel.NewTracer())).Hooks()
)

// recordAttrs describes a record the way the messaging semantic conventions do.
// The key is the store name, so catalog events group per store.
func recordAttrs(operation string, topic string, key []byte) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.MessagingSystemKafka,
		attribute.String("messaging.operation.name", operation),
		semconv.MessagingDestinationName(topic),
	}
	if len(key) > 0 {
		attrs = append(attrs, semconv.MessagingKafkaMessageKey(string(key)))
	}
	return attrs
}

func recordHeaders(headers map[string]string) []kgo.RecordHeader {
	out := make([]kgo.RecordHeader, 0, len(headers))
	for k, v := range headers {
		out = append(out, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return out
}
