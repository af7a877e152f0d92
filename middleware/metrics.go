package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mhollis/dispatchrpc/httprpc"
)

var (
	registerOnce sync.Once

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatchrpc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total JSON-RPC HTTP requests.",
		},
		[]string{"status"},
	)
	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dispatchrpc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

// RegisterMetrics registers the middleware collectors with the default
// registry. Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(rpcRequests, rpcDuration)
	})
}

// Metrics records request count and duration by HTTP status. Call
// RegisterMetrics once at startup to expose the collectors.
func Metrics() httprpc.Processor {
	return httprpc.ProcessorFunc(func(w http.ResponseWriter, r *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		err := next(rec, r)

		status := rec.status
		if err != nil {
			status = statusFromError(err)
		}
		label := strconv.Itoa(status)
		rpcRequests.WithLabelValues(label).Inc()
		rpcDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

		return err
	})
}

func statusFromError(err error) int {
	if se, ok := err.(*httprpc.StatusError); ok && se.Status >= 100 {
		return se.Status
	}
	return http.StatusInternalServerError
}
