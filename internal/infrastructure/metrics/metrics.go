package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SettlementMetrics covers the money-moving paths: settlements per income
// category, processed events, and failures.
type SettlementMetrics struct {
	SettlementsTotal       prometheus.CounterVec
	SettlementAmountTotal  prometheus.CounterVec
	EventsProcessedTotal   prometheus.CounterVec
	EventProcessingSeconds prometheus.HistogramVec
	EventErrorsTotal       prometheus.CounterVec
	PlacementDepth         prometheus.HistogramVec
}

func NewSettlementMetrics() *SettlementMetrics {
	return &SettlementMetrics{
		SettlementsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_total",
				Help: "Number of settled commission payments by category",
			},
			[]string{"category", "currency"},
		),
		SettlementAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_amount_total",
				Help: "Settled commission amount by category",
			},
			[]string{"category", "currency"},
		),
		EventsProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_processed_total",
				Help: "Triggering events fully processed",
			},
			[]string{"event_type"},
		),
		EventProcessingSeconds: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "event_processing_seconds",
				Help:    "End-to-end processing time of one triggering event",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"event_type"},
		),
		EventErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_errors_total",
				Help: "Failed event processing attempts by error type",
			},
			[]string{"event_type", "error_type"},
		),
		PlacementDepth: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "placement_depth",
				Help:    "Depth below the preferred root at which spillover placed a node",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
			[]string{"tree_kind"},
		),
	}
}

func (m *SettlementMetrics) RecordSettlement(category, currency string, amount float64) {
	m.SettlementsTotal.WithLabelValues(category, currency).Inc()
	m.SettlementAmountTotal.WithLabelValues(category, currency).Add(amount)
}

func (m *SettlementMetrics) RecordProcessed(eventType string, durationSeconds float64) {
	m.EventsProcessedTotal.WithLabelValues(eventType).Inc()
	m.EventProcessingSeconds.WithLabelValues(eventType).Observe(durationSeconds)
}

func (m *SettlementMetrics) RecordError(eventType, errorType string) {
	m.EventErrorsTotal.WithLabelValues(eventType, errorType).Inc()
}

func (m *SettlementMetrics) RecordPlacementDepth(treeKind string, depth int) {
	m.PlacementDepth.WithLabelValues(treeKind).Observe(float64(depth))
}
