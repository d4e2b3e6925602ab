package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mindspend",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Collaborator requests by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mindspend",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Collaborator request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
