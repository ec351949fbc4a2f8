package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// VillageMetricsCollector handles construction, research and ledger metrics
type VillageMetricsCollector struct {
	operationsTotal   *prometheus.CounterVec
	conflictsTotal    *prometheus.CounterVec
	resourcesSpent    *prometheus.CounterVec
	resourcesRefunded *prometheus.CounterVec
	overflowDiscarded *prometheus.CounterVec
	completionsTotal  *prometheus.CounterVec
}

// NewVillageMetricsCollector creates a new village metrics collector
func NewVillageMetricsCollector() *VillageMetricsCollector {
	return &VillageMetricsCollector{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "village_operations_total",
				Help:      "Total number of village operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		conflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "village_conflicts_total",
				Help:      "Total number of concurrent-modification conflicts that triggered a retry",
			},
			[]string{"operation"},
		),
		resourcesSpent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resources_spent_total",
				Help:      "Total resources debited for upgrades and research",
			},
			[]string{"resource"},
		),
		resourcesRefunded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resources_refunded_total",
				Help:      "Total resources credited back by cancellations",
			},
			[]string{"resource"},
		),
		overflowDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resources_overflow_discarded_total",
				Help:      "Total credited resources discarded because storage was full",
			},
			[]string{"resource"},
		),
		completionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transitions_completed_total",
				Help:      "Total upgrades and research completed",
			},
			[]string{"category"},
		),
	}
}

// Register registers all village metrics with the Prometheus registry
func (c *VillageMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.operationsTotal,
		c.conflictsTotal,
		c.resourcesSpent,
		c.resourcesRefunded,
		c.overflowDiscarded,
		c.completionsTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *VillageMetricsCollector) RecordOperation(operation string, outcome string) {
	c.operationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (c *VillageMetricsCollector) RecordConflict(operation string) {
	c.conflictsTotal.WithLabelValues(operation).Inc()
}

func (c *VillageMetricsCollector) RecordResourcesSpent(amounts map[string]float64) {
	addAll(c.resourcesSpent, amounts)
}

func (c *VillageMetricsCollector) RecordResourcesRefunded(amounts map[string]float64) {
	addAll(c.resourcesRefunded, amounts)
}

func (c *VillageMetricsCollector) RecordOverflowDiscarded(amounts map[string]float64) {
	addAll(c.overflowDiscarded, amounts)
}

func (c *VillageMetricsCollector) RecordTransitionCompleted(category string) {
	c.completionsTotal.WithLabelValues(category).Inc()
}

func addAll(counter *prometheus.CounterVec, amounts map[string]float64) {
	for resource, amount := range amounts {
		if amount > 0 {
			counter.WithLabelValues(resource).Add(amount)
		}
	}
}
