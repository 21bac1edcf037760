package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for Hookbridge, backed by any go-utils
// MetricFactory (e.g. the forge-managed metrics system via fapp.Metrics()).
type Metrics struct {
	WebhooksReceivedTotal  gu.Counter
	MessagesSentTotal      gu.Counter
	TransformFailuresTotal gu.Counter
	ProcessLatency         gu.Histogram
	ActiveConnections      gu.Gauge
}

// NewMetrics creates Hookbridge metric instruments using the supplied factory.
// Pass fapp.Metrics() from a forge extension, or metrics.NewMetricsCollector()
// for standalone usage.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		WebhooksReceivedTotal:  factory.Counter("hookbridge_webhooks_received_total"),
		MessagesSentTotal:      factory.Counter("hookbridge_messages_sent_total"),
		TransformFailuresTotal: factory.Counter("hookbridge_transform_failures_total"),
		ProcessLatency:         factory.Histogram("hookbridge_process_latency_seconds"),
		ActiveConnections:      factory.Gauge("hookbridge_active_connections"),
	}
}

// RecordWebhook records one processed webhook with its outcome and latency.
func (m *Metrics) RecordWebhook(outcome string, latencySeconds float64) {
	m.WebhooksReceivedTotal.WithLabels(map[string]string{"outcome": outcome}).Inc()
	m.ProcessLatency.Observe(latencySeconds)
}
