// Package metrics exposes the prometheus collectors for the costing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CostBatchesTotal counts completed batch cost computations.
	CostBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cost_batches_total",
		Help: "Total number of batch cost computations",
	})

	// CostBatchDuration observes wall-clock latency of batch computations.
	CostBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cost_batch_duration_seconds",
		Help:    "Latency of batch cost computations",
		Buckets: prometheus.DefBuckets,
	})

	// CostDiagnosticsTotal counts degraded contributions by reason.
	CostDiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cost_diagnostics_total",
		Help: "Total number of degraded cost contributions",
	}, []string{"reason"})

	// HTTPRequestsTotal counts handled HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
