package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/empire-go/internal/application/common"
)

// OutcomeOK labels a command that returned without error
const OutcomeOK = "ok"

// CommandMetricsCollector tracks mediator requests: how long each command or
// query took and how it ended. Failed requests are labelled with their error
// category, so a spike of insufficient_resources is told apart from conflicts.
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Mediator request duration by command",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0},
			},
			[]string{"command"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Mediator requests by command and outcome (ok or error category)",
			},
			[]string{"command", "outcome"},
		),
	}
}

// Register registers all command metrics with the Prometheus registry
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range []prometheus.Collector{c.commandDuration, c.commandsTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one finished request
func (c *CommandMetricsCollector) RecordCommandExecution(commandName string, seconds float64, err error) {
	c.commandDuration.WithLabelValues(commandName).Observe(seconds)
	c.commandsTotal.WithLabelValues(commandName, outcomeOf(err)).Inc()
}

// outcomeOf maps an error to its lower-case category label
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return strings.ToLower(string(common.DescribeError(err).Category))
}
