package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	normalizedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapstats_records_normalized_total",
		Help: "Total number of match records normalized",
	})

	analysesRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapstats_analyses_total",
		Help: "Total number of dataset analyses by result",
	}, []string{"result"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapstats_analysis_duration_seconds",
		Help:    "Duration of a full dataset analysis",
		Buckets: prometheus.DefBuckets,
	})
)
