package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AutomationMetricsCollector tracks what the ship routines achieve
type AutomationMetricsCollector struct {
	extractedUnits     *prometheus.CounterVec
	salesCredits       *prometheus.CounterVec
	soldUnits          *prometheus.CounterVec
	contractUnits      *prometheus.CounterVec
	contractsFulfilled prometheus.Counter
	contractPayments   prometheus.Counter
	systemsClaimed     prometheus.Counter
	systemsMapped      prometheus.Counter
	routineFailures    *prometheus.CounterVec
}

// NewAutomationMetricsCollector creates a new routine metrics collector
func NewAutomationMetricsCollector() *AutomationMetricsCollector {
	return &AutomationMetricsCollector{
		extractedUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "extracted_units_total",
				Help:      "Units extracted by ship and good",
			},
			[]string{"ship", "good"},
		),
		salesCredits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sales_credits_total",
				Help:      "Credits earned from selling cargo",
			},
			[]string{"ship", "good"},
		),
		soldUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sold_units_total",
				Help:      "Units sold at markets",
			},
			[]string{"ship", "good"},
		),
		contractUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "contract_delivered_units_total",
				Help:      "Units delivered against contracts",
			},
			[]string{"good"},
		),
		contractsFulfilled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "contracts_fulfilled_total",
				Help:      "Contracts fulfilled",
			},
		),
		contractPayments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "contract_payments_credits_total",
				Help:      "Credits paid out on contract fulfillment",
			},
		),
		systemsClaimed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "systems_claimed_total",
				Help:      "Exploration claims won",
			},
		),
		systemsMapped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "systems_mapped_total",
				Help:      "Systems fully charted",
			},
		),
		routineFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "routine_failures_total",
				Help:      "Routine iterations that ended in an error",
			},
			[]string{"routine", "ship"},
		),
	}
}

// Register registers all routine metrics with the Prometheus registry
func (c *AutomationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.extractedUnits,
		c.salesCredits,
		c.soldUnits,
		c.contractUnits,
		c.contractsFulfilled,
		c.contractPayments,
		c.systemsClaimed,
		c.systemsMapped,
		c.routineFailures,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *AutomationMetricsCollector) RecordExtraction(shipSymbol, good string, units int) {
	c.extractedUnits.WithLabelValues(shipSymbol, good).Add(float64(units))
}

func (c *AutomationMetricsCollector) RecordSale(shipSymbol, good string, units, credits int) {
	c.soldUnits.WithLabelValues(shipSymbol, good).Add(float64(units))
	c.salesCredits.WithLabelValues(shipSymbol, good).Add(float64(credits))
}

// RecordContractDelivery records units handed over, labelled by good only
func (c *AutomationMetricsCollector) RecordContractDelivery(contractID, good string, units int) {
	c.contractUnits.WithLabelValues(good).Add(float64(units))
}

func (c *AutomationMetricsCollector) RecordContractFulfilled(contractID string, payment int) {
	c.contractsFulfilled.Inc()
	c.contractPayments.Add(float64(payment))
}

func (c *AutomationMetricsCollector) RecordSystemClaimed(systemSymbol string) {
	c.systemsClaimed.Inc()
}

func (c *AutomationMetricsCollector) RecordSystemMapped(systemSymbol string) {
	c.systemsMapped.Inc()
}

func (c *AutomationMetricsCollector) RecordRoutineFailure(routine, shipSymbol string) {
	c.routineFailures.WithLabelValues(routine, shipSymbol).Inc()
}
