package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/hookbridge"

// Tracer provides OpenTelemetry tracing for Hookbridge.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new Hookbridge tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartWebhookSpan starts a new span for an inbound webhook. Hook IDs are
// secret-bearing, so spans carry the room and state key instead.
func (t *Tracer) StartWebhookSpan(ctx context.Context, roomID, stateKey string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "hookbridge.webhook",
		trace.WithAttributes(
			attribute.String("hookbridge.room_id", roomID),
			attribute.String("hookbridge.state_key", stateKey),
		),
	)
}

// EndWebhookSpan ends a webhook span with result attributes.
func (t *Tracer) EndWebhookSpan(span trace.Span, success bool, latencyMs int, err string) {
	span.SetAttributes(
		attribute.Bool("hookbridge.success", success),
		attribute.Int("hookbridge.latency_ms", latencyMs),
	)
	if err != "" {
		span.SetAttributes(attribute.String("hookbridge.error", err))
	}
	span.End()
}
