package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "spacetraders"
	// Subsystem for automation metrics
	subsystem = "automation"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalAPICollector is the singleton transport metrics collector
	// Set by SetGlobalAPICollector() when metrics are enabled
	globalAPICollector APIMetricsRecorder

	// globalAutomationCollector is the singleton routine metrics collector
	// Set by SetGlobalAutomationCollector() when metrics are enabled
	globalAutomationCollector AutomationMetricsRecorder
)

// APIMetricsRecorder defines the interface for recording transport metrics
type APIMetricsRecorder interface {
	RecordAPIRequest(method, endpoint string, statusCode int, duration float64)
	RecordAPIRetry(method, endpoint, reason string)
	RecordRateLimitWait(method, endpoint string, duration float64)
	RecordCircuitState(state string)
	RecordCacheLookup(kind string, hit bool)
}

// AutomationMetricsRecorder defines the interface for recording routine outcomes
type AutomationMetricsRecorder interface {
	RecordExtraction(shipSymbol, good string, units int)
	RecordSale(shipSymbol, good string, units, credits int)
	RecordContractDelivery(contractID, good string, units int)
	RecordContractFulfilled(contractID string, payment int)
	RecordSystemClaimed(systemSymbol string)
	RecordSystemMapped(systemSymbol string)
	RecordRoutineFailure(routine, shipSymbol string)
}

// InitRegistry initializes the Prometheus registry with the Go runtime collectors.
// Should be called once at application startup if metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Reset clears the registry and the global collectors
func Reset() {
	Registry = nil
	globalAPICollector = nil
	globalAutomationCollector = nil
}

// SetGlobalAPICollector sets the global transport metrics collector
func SetGlobalAPICollector(collector APIMetricsRecorder) {
	globalAPICollector = collector
}

// RecordAPIRequest records an API request completion globally
func RecordAPIRequest(method, endpoint string, statusCode int, duration float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRequest(method, endpoint, statusCode, duration)
	}
}

// RecordAPIRetry records a retried request globally
func RecordAPIRetry(method, endpoint, reason string) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRetry(method, endpoint, reason)
	}
}

// RecordRateLimitWait records time spent in the limiter globally
func RecordRateLimitWait(method, endpoint string, duration float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordRateLimitWait(method, endpoint, duration)
	}
}

// RecordCircuitState records a circuit breaker transition globally
func RecordCircuitState(state string) {
	if globalAPICollector != nil {
		globalAPICollector.RecordCircuitState(state)
	}
}

// RecordCacheLookup records a response cache hit or miss globally
func RecordCacheLookup(kind string, hit bool) {
	if globalAPICollector != nil {
		globalAPICollector.RecordCacheLookup(kind, hit)
	}
}

// SetGlobalAutomationCollector sets the global routine metrics collector
func SetGlobalAutomationCollector(collector AutomationMetricsRecorder) {
	globalAutomationCollector = collector
}

// RecordExtraction records extracted units globally
func RecordExtraction(shipSymbol, good string, units int) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordExtraction(shipSymbol, good, units)
	}
}

// RecordSale records a sale globally
func RecordSale(shipSymbol, good string, units, credits int) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordSale(shipSymbol, good, units, credits)
	}
}

// RecordContractDelivery records delivered contract units globally
func RecordContractDelivery(contractID, good string, units int) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordContractDelivery(contractID, good, units)
	}
}

// RecordContractFulfilled records a fulfilled contract globally
func RecordContractFulfilled(contractID string, payment int) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordContractFulfilled(contractID, payment)
	}
}

// RecordSystemClaimed records a won exploration claim globally
func RecordSystemClaimed(systemSymbol string) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordSystemClaimed(systemSymbol)
	}
}

// RecordSystemMapped records a completed system globally
func RecordSystemMapped(systemSymbol string) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordSystemMapped(systemSymbol)
	}
}

// RecordRoutineFailure records a routine error globally
func RecordRoutineFailure(routine, shipSymbol string) {
	if globalAutomationCollector != nil {
		globalAutomationCollector.RecordRoutineFailure(routine, shipSymbol)
	}
}
