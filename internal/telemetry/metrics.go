package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
	RetriesTotal       *prometheus.CounterVec
	PurgedTotal        prometheus.Counter
	WebhooksTotal      *prometheus.CounterVec
}

// NewMetrics creates Prometheus metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_submissions_total",
				Help: "Total logistics order submissions by outcome",
			},
			[]string{"outcome"},
		),
		SubmissionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fulfillment_submission_duration_seconds",
				Help:    "Logistics API submission duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_retries_total",
				Help: "Retry queue worker results by outcome",
			},
			[]string{"outcome"},
		),
		PurgedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fulfillment_retry_queue_purged_total",
				Help: "Stale retry queue entries removed by cleanup passes",
			},
		),
		WebhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_webhooks_total",
				Help: "Webhook callbacks received by callback type and response status",
			},
			[]string{"callback", "status"},
		),
	}
}

// RecordSubmission records a submission attempt metric.
func (m *Metrics) RecordSubmission(outcome string, duration float64) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
	m.SubmissionDuration.Observe(duration)
}

// RecordRetry records a retry worker iteration outcome.
func (m *Metrics) RecordRetry(outcome string) {
	m.RetriesTotal.WithLabelValues(outcome).Inc()
}

// RecordWebhook records a webhook callback metric.
func (m *Metrics) RecordWebhook(callback, status string) {
	m.WebhooksTotal.WithLabelValues(callback, status).Inc()
}
