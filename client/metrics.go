package client

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lokis-perfume/storefront/client/internal/transport"
)

// MetricsHook records request counts, latency and in-flight calls per
// backend.
type MetricsHook struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewMetricsHook registers the storefront_client_* collectors on reg, or
// reuses them when reg already holds them.
func NewMetricsHook(reg prometheus.Registerer) (*MetricsHook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront_client",
			Name:      "requests_total",
			Help:      "Requests by backend, method and outcome code (\"OK\" on success).",
		},
		[]string{"service", "method", "code"},
	))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront_client",
			Name:      "request_duration_seconds",
			Help:      "Request latency, including reading the body.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	))
	if err != nil {
		return nil, err
	}
	inFlight, err := register(reg, prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "storefront_client",
			Name:      "requests_in_flight",
			Help:      "Requests started and not yet finished.",
		},
		[]string{"service"},
	))
	if err != nil {
		return nil, err
	}
	return &MetricsHook{requests: requests, duration: duration, inFlight: inFlight}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RequestStarted implements Hook.
func (m *MetricsHook) RequestStarted(_ context.Context, info transport.RequestInfo) {
	m.inFlight.WithLabelValues(info.Service).Inc()
}

// RequestFinished implements Hook.
func (m *MetricsHook) RequestFinished(_ context.Context, info transport.RequestInfo, out transport.Outcome) {
	m.inFlight.WithLabelValues(info.Service).Dec()
	code := "OK"
	if out.Err != nil {
		code = out.Err.Code
	}
	m.requests.WithLabelValues(info.Service, info.Method, code).Inc()
	m.duration.WithLabelValues(info.Service, info.Method).Observe(out.Duration.Seconds())
}
