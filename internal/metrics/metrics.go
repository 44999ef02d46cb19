// Package metrics provides Prometheus collectors for upstream calls and normalization
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name
const Namespace = "skydata"

// Outcome labels for upstream requests
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeFormatError = "format_error"
	OutcomeNoData      = "no_data"
	OutcomeNetwork     = "network_error"
)

// Metrics holds the collectors
type Metrics struct {
	UpstreamRequests    *prometheus.CounterVec
	UpstreamDuration    *prometheus.HistogramVec
	NormalizationIssues *prometheus.CounterVec
	SnapshotsWritten    *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
// A nil reg uses a private registry so tests never collide.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Upstream API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Upstream API request latency",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"endpoint"},
		),
		NormalizationIssues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "normalize",
				Name:      "issues_total",
				Help:      "Optional fields dropped or fallbacks taken during normalization",
			},
			[]string{"endpoint"},
		),
		SnapshotsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "archive",
				Name:      "snapshots_written_total",
				Help:      "Normalized snapshots stored by source",
			},
			[]string{"source"},
		),
	}
}
