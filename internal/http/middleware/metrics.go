// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus collectors: HTTP request counts,
// latencies, in-flight concurrency, response sizes, and the per-category
// withdrawal counter. The path label is the registered Gin route (e.g.
// /api/v1/status/:transactionId), never the raw URL, so cardinality
// stays bounded; unmatched routes fall back to the raw path.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// We intentionally omit status to keep latency histogram cardinality lower.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets, // suitable for general HTTP latency
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of in-flight (currently processing) requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// httpRespSize captures response sizes in bytes by method and route path.
	// Buckets are tuned for typical JSON API payload sizes.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10, // 200B..5KiB
				10 << 10, 25 << 10, 50 << 10, // 10..50KiB
				100 << 10, 250 << 10, 500 << 10, // 100..500KiB
				1 << 20, 2 << 20, 5 << 20, // 1..5MiB
			},
		},
		[]string{"method", "path"},
	)

	// cardsWithdrawn counts successful withdrawals by category. Category IDs
	// are operator-curated, so the label stays low-cardinality.
	cardsWithdrawn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_withdrawn_total",
			Help: "Total number of cards successfully withdrawn.",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, cardsWithdrawn)
}

// RecordCardWithdrawn increments the withdrawal counter for a category.
// Pass "default" for withdrawals without an explicit category.
func RecordCardWithdrawn(category string) {
	if category == "" {
		category = "default"
	}
	cardsWithdrawn.WithLabelValues(category).Inc()
}

// Metrics instruments every request: request count by method/path/status,
// latency and response-size histograms by method/path, and the in-flight
// gauge across handler execution. Mount promhttp on /metrics separately.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		size := c.Writer.Size() // -1 when unknown

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(dur)
		// size is -1 on hijacked connections; never record it as negative.
		if size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
