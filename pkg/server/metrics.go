package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tilecover_requests_total",
		Help: "Total number of cover requests by response status",
	}, []string{"status"})
	requestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilecover_request_duration_ms",
		Help:    "Cover request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	tilesPerRequest = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tilecover_response_tiles",
		Help:    "Number of tiles returned by cover requests",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
	rejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tilecover_rejected_total",
		Help: "Cover requests rejected by a limit",
	}, []string{"limit"})
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDurationMs)
	prometheus.MustRegister(tilesPerRequest)
	prometheus.MustRegister(rejectedTotal)
}
