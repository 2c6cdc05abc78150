// Package metrics exposes the progress/processed-count Prometheus
// counters (and a portal-latency histogram) spec.md §7 calls for,
// grounded on the promauto.NewCounterVec pattern in
// AleutianAI-AleutianFOSS's services/trace/agent/providers
// /egress/metrics.go. Collectors are package-level; promauto registers
// them against the default registry when this package is initialized.
// Nothing in cmd/speciminer serves that registry over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsProcessed counts documents completed by phase.
	// Labels: phase (mine, match)
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "speciminer",
		Name:      "documents_processed_total",
		Help:      "Total documents completed, by phase",
	}, []string{"phase"})

	// MentionsParsed counts verbatim catalog-number mentions the parser
	// turned into zero or more SpecNums, by outcome.
	MentionsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "speciminer",
		Name:      "mentions_parsed_total",
		Help:      "Total verbatim mentions parsed, by outcome (expanded, discarded)",
	}, []string{"outcome"})

	// LinksResolved counts Links settled by the resolution engine, by the
	// phase that settled them and the resulting match-quality statement's
	// general clause.
	LinksResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "speciminer",
		Name:      "links_resolved_total",
		Help:      "Total links resolved, by phase and match quality",
	}, []string{"phase", "quality"})

	// PortalRequestDuration measures end-to-end portal lookup latency,
	// including retry/backoff time.
	PortalRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "speciminer",
		Name:      "portal_request_duration_seconds",
		Help:      "Portal lookup latency including retry/backoff",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// BatchFlushes counts write-behind batch flushes, by outcome.
	BatchFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "speciminer",
		Name:      "store_batch_flushes_total",
		Help:      "Total write-behind batch flushes, by outcome (ok, partial)",
	}, []string{"outcome"})
)

// RecordDocument increments DocumentsProcessed for phase.
func RecordDocument(phase string) {
	DocumentsProcessed.WithLabelValues(phase).Inc()
}

// RecordMention increments MentionsParsed for outcome.
func RecordMention(outcome string) {
	MentionsParsed.WithLabelValues(outcome).Inc()
}

// RecordLink increments LinksResolved for phase and quality.
func RecordLink(phase, quality string) {
	LinksResolved.WithLabelValues(phase, quality).Inc()
}

// RecordBatchFlush increments BatchFlushes for outcome.
func RecordBatchFlush(outcome string) {
	BatchFlushes.WithLabelValues(outcome).Inc()
}
