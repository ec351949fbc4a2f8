package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
)

type upgradeCommand struct{}

// withRegistry installs a fresh registry and clears the global collectors afterwards
func withRegistry(t *testing.T) {
	t.Helper()
	InitRegistry()
	t.Cleanup(func() {
		Registry = nil
		globalVillageCollector = nil
		globalAPICollector = nil
	})
}

func TestVillageMetrics_RecordThroughGlobals(t *testing.T) {
	// Arrange
	withRegistry(t)
	collector := NewVillageMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalVillageCollector(collector)

	// Act
	RecordOperation("start_upgrade", "success")
	RecordConflict("start_upgrade")
	RecordResourcesSpent(map[string]float64{"WOOD": 120, "STONE": 0})
	RecordResourcesRefunded(map[string]float64{"WOOD": 60})
	RecordTransitionCompleted("BUILDING")

	// Assert
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.operationsTotal.WithLabelValues("start_upgrade", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.conflictsTotal.WithLabelValues("start_upgrade")))
	assert.Equal(t, 120.0, testutil.ToFloat64(collector.resourcesSpent.WithLabelValues("WOOD")))
	assert.Equal(t, 60.0, testutil.ToFloat64(collector.resourcesRefunded.WithLabelValues("WOOD")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.resourcesSpent), "zero amounts are not recorded")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.completionsTotal.WithLabelValues("BUILDING")))
}

func TestRecordFunctions_NoopWhenDisabled(t *testing.T) {
	assert.False(t, IsEnabled())
	assert.NotPanics(t, func() {
		RecordOperation("start_upgrade", "success")
		RecordAPIRequest("GET", "/healthz", 200, 0.01)
		SetEventSubscribers(3)
	})
}

func TestPrometheusMiddleware(t *testing.T) {
	// Arrange
	withRegistry(t)
	collector := NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	mw := PrometheusMiddleware(collector)

	ok := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return "done", nil }
	fail := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	}
	conflict := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, shared.NewConflictError("v-1", 3)
	}

	// Act
	_, _ = mw(context.Background(), &upgradeCommand{}, ok)
	_, _ = mw(context.Background(), &upgradeCommand{}, ok)
	_, _ = mw(context.Background(), &upgradeCommand{}, conflict)
	_, err := mw(context.Background(), &upgradeCommand{}, fail)

	// Assert
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("upgradeCommand", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("upgradeCommand", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("upgradeCommand", "internal")))
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "upgradeCommand", extractCommandName(&upgradeCommand{}))
	assert.Equal(t, "UnknownCommand", extractCommandName(nil))
}

func TestServe_RequiresRegistry(t *testing.T) {
	err := Serve(context.Background(), config.MetricsConfig{Host: "localhost", Port: 9090})

	assert.ErrorContains(t, err, "not initialized")
}
