package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeInserted  = "inserted"
	outcomeUnchanged = "unchanged"
	outcomeFailed    = "failed"
)

var (
	// Scheduled ingestion runs partitioned by outcome
	priceIngestionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_ingestion_runs_total",
			Help: "Total number of scheduled price ingestion runs",
		},
		[]string{"outcome"},
	)

	priceIngestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "price_ingestion_duration_seconds",
			Help:    "Duration of scheduled price ingestion runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Unix time of the last run that produced or confirmed a snapshot
	priceIngestionLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "price_ingestion_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful price ingestion",
		},
	)
)
