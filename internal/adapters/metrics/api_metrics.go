package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var circuitStates = []string{"closed", "open", "half_open"}

// APIMetricsCollector covers the rate-limited transport: every HTTP exchange,
// its retries and limiter waits, the breaker state and the response cache.
// Endpoints are path templates such as /my/ships/:symbol/extract.
type APIMetricsCollector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	retries      *prometheus.CounterVec
	limiterWait  *prometheus.HistogramVec
	circuitState *prometheus.GaugeVec
	cacheLookups *prometheus.CounterVec
}

func NewAPIMetricsCollector() *APIMetricsCollector {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}
	}
	histogram := func(name, help string, buckets []float64) prometheus.HistogramOpts {
		o := opts(name, help)
		return prometheus.HistogramOpts{
			Namespace: o.Namespace, Subsystem: o.Subsystem, Name: o.Name, Help: o.Help, Buckets: buckets,
		}
	}

	return &APIMetricsCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"api_requests_total", "Game API responses by method, endpoint and status code")),
			[]string{"method", "endpoint", "status_code"}),
		latency: prometheus.NewHistogramVec(histogram(
			"api_request_duration_seconds", "Game API round trip time, retries included",
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}),
			[]string{"method", "endpoint"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"api_retries_total", "Game API retries by cause (rate_limited, transport)")),
			[]string{"method", "endpoint", "reason"}),
		// two requests per second plus bursts keeps most waits under a second
		limiterWait: prometheus.NewHistogramVec(histogram(
			"api_rate_limit_wait_seconds", "Time a request queued behind the client rate limiter",
			[]float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10}),
			[]string{"method", "endpoint"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts(opts(
			"api_circuit_state", "1 for the circuit breaker state currently active")),
			[]string{"state"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts(opts(
			"api_cache_lookups_total", "Response cache lookups by resource kind and result")),
			[]string{"kind", "result"}),
	}
}

// Register adds the collectors to Registry; a no-op while metrics are off
func (c *APIMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{
		c.requests, c.latency, c.retries, c.limiterWait, c.circuitState, c.cacheLookups,
	} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *APIMetricsCollector) RecordAPIRequest(method, endpoint string, statusCode int, duration float64) {
	c.requests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	c.latency.WithLabelValues(method, endpoint).Observe(duration)
}

func (c *APIMetricsCollector) RecordAPIRetry(method, endpoint, reason string) {
	c.retries.WithLabelValues(method, endpoint, reason).Inc()
}

func (c *APIMetricsCollector) RecordRateLimitWait(method, endpoint string, duration float64) {
	c.limiterWait.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordCircuitState sets state to 1 and every other state to 0
func (c *APIMetricsCollector) RecordCircuitState(state string) {
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1
		}
		c.circuitState.WithLabelValues(s).Set(value)
	}
}

func (c *APIMetricsCollector) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(kind, result).Inc()
}
