package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reload outcomes, used as the "outcome" label.
const (
	outcomeApplied   = "applied"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
	outcomeBusy      = "busy"
)

var (
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mineraly_reloads_total",
		Help: "Reload attempts by outcome",
	}, []string{"outcome"})
	reloadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mineraly_reload_failures_total",
		Help: "Reloads that failed to acquire the source",
	})
	reloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mineraly_reload_duration_seconds",
		Help:    "Time to fetch and parse the collection",
		Buckets: prometheus.DefBuckets,
	})
	rowsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mineraly_rows_loaded",
		Help: "Rows in the published dataset",
	})
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mineraly_queries_total",
		Help: "View queries by whether they filtered and sorted",
	}, []string{"filtered", "sorted"})
)
