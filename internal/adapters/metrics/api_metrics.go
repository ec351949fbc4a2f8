package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetricsCollector handles HTTP API and event stream metrics
type APIMetricsCollector struct {
	// Request metrics
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiRateLimited     *prometheus.CounterVec

	// Event stream metrics
	eventSubscribers prometheus.Gauge
	eventsDropped    *prometheus.CounterVec
}

// NewAPIMetricsCollector creates a new API metrics collector
func NewAPIMetricsCollector() *APIMetricsCollector {
	return &APIMetricsCollector{
		// Total API requests by method, route, and status code
		apiRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by method, route, and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"method", "route"},
		),

		// Requests rejected by the per-client limiter
		apiRateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "api_rate_limited_total",
				Help:      "Total number of API requests rejected by the rate limiter",
			},
			[]string{"route"},
		),

		eventSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "event_subscribers",
				Help:      "Number of active village event subscriptions",
			},
		),

		eventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_dropped_total",
				Help:      "Events skipped because a subscriber buffer was full",
			},
			[]string{"event_type"},
		),
	}
}

// Register registers all API metrics with the Prometheus registry
func (c *APIMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.apiRequestsTotal,
		c.apiRequestDuration,
		c.apiRateLimited,
		c.eventSubscribers,
		c.eventsDropped,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordAPIRequest records an API request completion
func (c *APIMetricsCollector) RecordAPIRequest(
	method string,
	route string,
	statusCode int,
	duration float64,
) {
	statusCodeStr := strconv.Itoa(statusCode)

	c.apiRequestsTotal.WithLabelValues(method, route, statusCodeStr).Inc()
	c.apiRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordRateLimited records a request rejected by the rate limiter
func (c *APIMetricsCollector) RecordRateLimited(route string) {
	c.apiRateLimited.WithLabelValues(route).Inc()
}

// SetEventSubscribers sets the current number of event subscriptions
func (c *APIMetricsCollector) SetEventSubscribers(count int) {
	c.eventSubscribers.Set(float64(count))
}

// RecordEventDropped records an event skipped for a slow subscriber
func (c *APIMetricsCollector) RecordEventDropped(eventType string) {
	c.eventsDropped.WithLabelValues(eventType).Inc()
}
