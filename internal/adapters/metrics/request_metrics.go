package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	outcomeOK        = "ok"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
)

// RequestMetricsCollector times mediator requests: routine commands and queries
type RequestMetricsCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	inFlight        *prometheus.GaugeVec
}

func NewRequestMetricsCollector() *RequestMetricsCollector {
	return &RequestMetricsCollector{
		// mining cycles and contract rounds span minutes of travel and cooldown
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Mediator request duration by request type and outcome",
				Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 180, 600, 1800},
			},
			[]string{"request", "outcome"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Mediator requests by request type and outcome",
			},
			[]string{"request", "outcome"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_in_flight",
				Help:      "Mediator requests currently executing",
			},
			[]string{"request"},
		),
	}
}

// Register adds the collectors to Registry; a no-op while metrics are off
func (c *RequestMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.requestDuration, c.requestsTotal, c.inFlight} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *RequestMetricsCollector) started(request string) {
	c.inFlight.WithLabelValues(request).Inc()
}

// finished closes out one request started with started
func (c *RequestMetricsCollector) finished(request string, seconds float64, err error) {
	outcome := outcomeOK
	switch {
	case errors.Is(err, context.Canceled):
		outcome = outcomeCancelled
	case err != nil:
		outcome = outcomeFailed
	}
	c.inFlight.WithLabelValues(request).Dec()
	c.requestDuration.WithLabelValues(request, outcome).Observe(seconds)
	c.requestsTotal.WithLabelValues(request, outcome).Inc()
}
