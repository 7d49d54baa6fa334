// Copyright (c) 2025 fpxbs7777

package shda

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects upstream request counters and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg, or with the default registry
// when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hmbroker",
				Subsystem: "shda",
				Name:      "requests_total",
				Help:      "Total number of requests sent to the broker site.",
			},
			[]string{"op", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hmbroker",
				Subsystem: "shda",
				Name:      "request_seconds",
				Help:      "Histogram of broker site request durations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

// RequestsCounter exposes the request counter for tests and diagnostics.
func (m *Metrics) RequestsCounter(op string, status int) prometheus.Counter {
	return m.requests.WithLabelValues(op, strconv.Itoa(status))
}
