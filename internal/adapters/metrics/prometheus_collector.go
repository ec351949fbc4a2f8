package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "empire"
	// Subsystem for game server metrics
	subsystem = "server"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalVillageCollector is the singleton village metrics collector
	// Set by SetGlobalVillageCollector() when metrics are enabled
	globalVillageCollector VillageMetricsRecorder

	// globalAPICollector is the singleton HTTP API metrics collector
	globalAPICollector APIMetricsRecorder
)

// VillageMetricsRecorder defines the interface for recording village operation metrics
// This interface is used by application code to record metrics
type VillageMetricsRecorder interface {
	RecordOperation(operation string, outcome string)
	RecordConflict(operation string)
	RecordResourcesSpent(amounts map[string]float64)
	RecordResourcesRefunded(amounts map[string]float64)
	RecordOverflowDiscarded(amounts map[string]float64)
	RecordTransitionCompleted(category string)
}

// APIMetricsRecorder defines the interface for recording HTTP API and event stream metrics
type APIMetricsRecorder interface {
	RecordAPIRequest(method string, route string, statusCode int, duration float64)
	RecordRateLimited(route string)
	SetEventSubscribers(count int)
	RecordEventDropped(eventType string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
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

// SetGlobalVillageCollector sets the global village metrics collector
func SetGlobalVillageCollector(collector VillageMetricsRecorder) {
	globalVillageCollector = collector
}

// SetGlobalAPICollector sets the global API metrics collector
func SetGlobalAPICollector(collector APIMetricsRecorder) {
	globalAPICollector = collector
}

// RecordOperation records the outcome of an orchestrator operation globally
func RecordOperation(operation string, outcome string) {
	if globalVillageCollector != nil {
		globalVillageCollector.RecordOperation(operation, outcome)
	}
}

// RecordConflict records a lost optimistic-concurrency race globally
func RecordConflict(operation string) {
	if globalVillageCollector != nil {
		globalVillageCollector.RecordConflict(operation)
	}
}

// RecordResourcesSpent records debited resources globally
func RecordResourcesSpent(amounts map[string]float64) {
	if globalVillageCollector != nil {
		globalVillageCollector.RecordResourcesSpent(amounts)
	}
}

// RecordResourcesRefunded records cancellation refunds globally
func RecordResourcesRefunded(amounts map[string]float64) {
	if globalVillageCollector != nil {
		globalVillageCollector.RecordResourcesRefunded(amounts)
	}
}

// RecordOverflowDiscarded records credits lost to full storage globally
func RecordOverflowDiscarded(amounts map[string]float64) {
	if globalVillageCollector != nil {
		globalVillageCollector.RecordOverflowDiscarded(amounts)
	}
}

// RecordTransitionCompleted records a finished upgrade or research globally
func RecordTransitionCompleted(category string) {
	if globalVillageCollector != nil {
		globalVillageCollector.RecordTransitionCompleted(category)
	}
}

// RecordAPIRequest records a served HTTP request globally
func RecordAPIRequest(method string, route string, statusCode int, duration float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRequest(method, route, statusCode, duration)
	}
}

// RecordRateLimited records a rate-limited HTTP request globally
func RecordRateLimited(route string) {
	if globalAPICollector != nil {
		globalAPICollector.RecordRateLimited(route)
	}
}

// SetEventSubscribers publishes the current subscription count globally
func SetEventSubscribers(count int) {
	if globalAPICollector != nil {
		globalAPICollector.SetEventSubscribers(count)
	}
}

// RecordEventDropped records an event skipped for a slow subscriber globally
func RecordEventDropped(eventType string) {
	if globalAPICollector != nil {
		globalAPICollector.RecordEventDropped(eventType)
	}
}
