package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "neorisk",
			Subsystem: "gateway",
			Name:      "classifier_duration_seconds",
			Help:      "Wall-clock time from dispatch to response or failure per classifier",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"model", "outcome"},
	)

	classifierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neorisk",
			Subsystem: "gateway",
			Name:      "classifier_failures_total",
			Help:      "Classifier calls replaced by a degraded At Risk result",
		},
		[]string{"model", "reason"},
	)

	consensusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neorisk",
			Subsystem: "gateway",
			Name:      "consensus_total",
			Help:      "Aggregated predictions by consensus verdict",
		},
		[]string{"consensus"},
	)
)
