package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lensd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin API requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lensd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	filesIndexed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lensd",
			Subsystem: "index",
			Name:      "files_total",
			Help:      "Files discovered by the warmup index pass.",
		},
	)
	warmupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lensd",
			Subsystem: "index",
			Name:      "warmup_duration_seconds",
			Help:      "Warmup pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, filesIndexed, warmupDuration)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordWarmup(files int, duration time.Duration) {
	RegisterMetrics()
	filesIndexed.Set(float64(files))
	warmupDuration.Observe(duration.Seconds())
}
