package inference

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "endpointd",
			Subsystem: "inference",
			Name:      "requests_total",
			Help:      "Inference executions by result",
		},
		[]string{"endpoint", "result"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "endpointd",
			Subsystem: "inference",
			Name:      "duration_seconds",
			Help:      "Endpoint invocation latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

func observe(endpoint string, start time.Time, err error) {
	result := "ok"
	switch {
	case IsTransport(err):
		result = "transport_error"
	case IsExtraction(err):
		result = "extraction_error"
	case err != nil:
		result = "error"
	}
	requestsTotal.WithLabelValues(endpoint, result).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
