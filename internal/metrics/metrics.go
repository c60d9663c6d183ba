package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_upstream_requests_total",
			Help: "Requests sent to third-party APIs",
		},
		[]string{"upstream", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demo_upstream_request_duration_seconds",
			Help:    "Latency of third-party API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	ModelGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_model_generations_total",
			Help: "Hosted model generations by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	DemoRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_runs_total",
			Help: "Demo invocations by feature and outcome",
		},
		[]string{"feature", "outcome"},
	)

	DemoDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demo_run_duration_seconds",
			Help:    "End-to-end duration of a demo invocation",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"feature"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_http_requests_total",
			Help: "HTTP API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demo_http_request_duration_seconds",
			Help:    "HTTP API latency by route",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"route"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_cache_lookups_total",
			Help: "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)
)

// ObserveUpstream records one third-party call. status is 0 for transport errors.
func ObserveUpstream(upstream string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(upstream, label).Inc()
	UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(started).Seconds())
}

func ObserveRun(feature string, err error, started time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DemoRuns.WithLabelValues(feature, outcome).Inc()
	DemoDuration.WithLabelValues(feature).Observe(time.Since(started).Seconds())
}

func ObserveCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(namespace, result).Inc()
}

func ObserveHTTP(method, route string, status int, started time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
}
