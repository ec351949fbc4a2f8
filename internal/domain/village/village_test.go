package village_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
	"github.com/andrescamacho/empire-go/test/helpers"
)

var epoch = helpers.FixtureEpoch

func at(d time.Duration) time.Time {
	return epoch.Add(d)
}

func foundVillage(t *testing.T) *village.Village {
	t.Helper()
	v, err := village.FoundVillage(helpers.NewTestCatalog(), shared.MustNewPlayerID(1), "Riverside", epoch)
	require.NoError(t, err)
	v.PullEvents()
	return v
}

func wood(v *village.Village) float64 {
	return v.Ledger().Quantity(shared.ResourceWood)
}

func stone(v *village.Village) float64 {
	return v.Ledger().Quantity(shared.ResourceStone)
}

func TestFoundVillage(t *testing.T) {
	// Act
	v, err := village.FoundVillage(helpers.NewTestCatalog(), shared.MustNewPlayerID(1), "  Riverside ", epoch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Riverside", v.Name())
	assert.Equal(t, 100.0, wood(v))
	assert.Equal(t, 100.0, stone(v))
	assert.Equal(t, 60.0, v.Ledger().Rate(shared.ResourceWood))
	assert.Equal(t, 0.0, v.Ledger().Rate(shared.ResourceStone))
	assert.Len(t, v.Buildings(), 4)
	assert.Len(t, v.Research(), 3)

	woodcutter, err := v.Building("woodcutter")
	require.NoError(t, err)
	assert.Equal(t, 1, woodcutter.Level())

	events := v.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, village.EventVillageFounded, events[0].Type)
	assert.Equal(t, v.ID(), events[0].VillageID)
}

func TestFoundVillage_Validation(t *testing.T) {
	cat := helpers.NewTestCatalog()

	_, err := village.FoundVillage(cat, shared.MustNewPlayerID(1), "   ", epoch)
	var validation *shared.ValidationError
	assert.True(t, errors.As(err, &validation))

	_, err = village.FoundVillage(cat, shared.PlayerID{}, "Riverside", epoch)
	assert.True(t, errors.As(err, &validation))
}

func TestStartUpgrade_SettlesBeforeDebiting(t *testing.T) {
	// Arrange
	v := foundVillage(t)

	// Act
	b, err := v.StartUpgrade(helpers.NewTestCatalog(), "WOODCUTTER", at(30*time.Minute))

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 10, wood(v), 1e-9)
	assert.Equal(t, 1, b.Level(), "level increments only on completion")
	assert.Equal(t, 2, b.TargetLevel())
	assert.Equal(t, at(40*time.Minute), *b.Transition().Deadline())
	assert.Equal(t, 120.0, b.PendingCost().Get(shared.ResourceWood))

	events := v.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, village.EventUpgradeStarted, events[0].Type)
	assert.Equal(t, 2, events[0].Level)
}

func TestStartUpgrade_InsufficientResourcesLeavesVillageUntouched(t *testing.T) {
	// Arrange
	v := foundVillage(t)
	before := v.Ledger().Snapshot()

	// Act
	_, err := v.StartUpgrade(helpers.NewTestCatalog(), "WOODCUTTER", epoch)

	// Assert
	var insufficient *resources.InsufficientResourcesError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, map[shared.ResourceKind]float64{shared.ResourceWood: 20}, insufficient.Deficiency)
	assert.Equal(t, before, v.Ledger().Snapshot())
	assert.Empty(t, v.PendingEvents())

	b, _ := v.Building("WOODCUTTER")
	assert.True(t, b.Transition().IsIdle())
}

func TestStartUpgrade_AlreadyInProgress(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartUpgrade(cat, "QUARRY", epoch)
	require.NoError(t, err)

	_, err = v.StartUpgrade(cat, "QUARRY", at(time.Minute))

	var inProgress *shared.AlreadyInProgressError
	require.True(t, errors.As(err, &inProgress))
	assert.Equal(t, at(5*time.Minute), inProgress.Deadline)
	assert.Equal(t, 50.0, stone(v), "no second debit")
}

func TestStartUpgrade_MaxLevelReached(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartUpgrade(cat, "WAREHOUSE", epoch)
	require.NoError(t, err)
	_, err = v.ForceComplete(cat, "WAREHOUSE", epoch)
	require.NoError(t, err)

	_, err = v.StartUpgrade(cat, "WAREHOUSE", epoch)

	var maxLevel *village.MaxLevelReachedError
	require.True(t, errors.As(err, &maxLevel))
	assert.Equal(t, 1, maxLevel.MaxLevel)
}

func TestStartUpgrade_LockedBuildingRequiresResearch(t *testing.T) {
	// Arrange
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()

	// Act
	_, err := v.StartUpgrade(cat, "BARRACKS", epoch)

	// Assert
	var prerequisite *village.PrerequisiteNotMetError
	require.True(t, errors.As(err, &prerequisite))
	assert.Equal(t, helpers.Military, prerequisite.Research)
	assert.Equal(t, 100.0, wood(v))

	// Arrange: research MILITARY (50 WOOD, 20 min)
	_, err = v.StartResearch(cat, "MILITARY", epoch)
	require.NoError(t, err)

	// Act: the research completes lazily on the next operation
	_, err = v.StartUpgrade(cat, "BARRACKS", at(30*time.Minute))

	// Assert
	require.NoError(t, err)
	military, _ := v.ResearchLine("MILITARY")
	assert.Equal(t, 1, military.Level())
	assert.InDelta(t, 0, wood(v), 1e-9)
}

func TestStartResearch_OnlyOnePerVillage(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartResearch(cat, "FORESTRY", epoch)
	require.NoError(t, err)

	_, err = v.StartResearch(cat, "storage", epoch)

	var another *village.AnotherResearchInProgressError
	require.True(t, errors.As(err, &another))
	assert.Equal(t, helpers.Forestry, another.Running)
	assert.Equal(t, 100.0, stone(v))
}

func TestStartResearch_BuildingsUpgradeInParallel(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()

	_, err := v.StartResearch(cat, "FORESTRY", epoch)
	require.NoError(t, err)
	_, err = v.StartUpgrade(cat, "QUARRY", epoch)
	require.NoError(t, err)
	_, err = v.StartUpgrade(cat, "WAREHOUSE", epoch)
	require.NoError(t, err)

	assert.InDelta(t, 10, wood(v), 1e-9)
	assert.InDelta(t, 0, stone(v), 1e-9)
}

func TestCancel_RefundsFractionOfPaidCost(t *testing.T) {
	// Arrange
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartResearch(cat, "FORESTRY", epoch)
	require.NoError(t, err)
	v.PullEvents()

	// Act
	result, err := v.Cancel(cat, "forestry", 0.5, at(5*time.Minute))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Refund.Get(shared.ResourceWood))
	assert.Empty(t, result.Discarded)
	assert.InDelta(t, 85, wood(v), 1e-9) // 60 + 5 produced + 20 refunded

	forestry, _ := v.ResearchLine("FORESTRY")
	assert.True(t, forestry.Transition().IsIdle())
	assert.Equal(t, 0, forestry.Level())

	events := v.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, village.EventResearchCancelled, events[0].Type)
}

func TestCancel_RefundOverflowIsDiscarded(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartUpgrade(cat, "QUARRY", epoch)
	require.NoError(t, err)
	_, err = v.Grant(cat, resources.MustNewCostVector(map[shared.ResourceKind]float64{shared.ResourceStone: 2000}), epoch)
	require.NoError(t, err)

	result, err := v.Cancel(cat, "QUARRY", 1.0, at(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, 1000.0, stone(v))
	assert.Equal(t, map[shared.ResourceKind]float64{shared.ResourceStone: 50}, result.Discarded)
}

func TestCancel_Rejections(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()

	_, err := v.Cancel(cat, "QUARRY", 0.5, epoch)
	var invalid *shared.InvalidTransitionError
	assert.True(t, errors.As(err, &invalid), "nothing to cancel")

	_, err = v.Cancel(cat, "QUARRY", 1.5, epoch)
	var validation *shared.ValidationError
	assert.True(t, errors.As(err, &validation))

	_, err = v.Cancel(cat, "CASTLE", 0.5, epoch)
	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCancel_AfterDeadlineCompletesInstead(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartUpgrade(cat, "QUARRY", epoch)
	require.NoError(t, err)

	_, err = v.Cancel(cat, "QUARRY", 0.5, at(10*time.Minute))

	var invalid *shared.InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))
	quarry, _ := v.Building("QUARRY")
	assert.Equal(t, 1, quarry.Level())
}

func TestCompleteIfDue(t *testing.T) {
	// Arrange
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartUpgrade(cat, "QUARRY", epoch)
	require.NoError(t, err)

	// Act + Assert: before the deadline
	outcome, err := v.CompleteIfDue(cat, "QUARRY", at(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, village.CompletionPending, outcome.Status)
	assert.Equal(t, 4*time.Minute, outcome.Remaining)
	assert.Equal(t, 0, outcome.Level)

	// Act + Assert: exactly at the deadline
	outcome, err = v.CompleteIfDue(cat, "QUARRY", at(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, village.CompletionCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.Level)
	assert.Equal(t, 30.0, v.Ledger().Rate(shared.ResourceStone))

	// Act + Assert: repeated call is a no-op
	outcome, err = v.CompleteIfDue(cat, "QUARRY", at(6*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, village.CompletionIdle, outcome.Status)
	assert.Equal(t, 1, outcome.Level)
}

func TestRefresh_AppliesRateChangeAtDeadline(t *testing.T) {
	// Arrange
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartUpgrade(cat, "WOODCUTTER", at(30*time.Minute))
	require.NoError(t, err)

	// Act
	completed, err := v.Refresh(cat, at(100*time.Minute))

	// Assert: 10 left, +10 at 60/h until the deadline, +90 at 90/h for the next hour
	require.NoError(t, err)
	assert.Len(t, completed, 1)
	assert.InDelta(t, 110, wood(v), 1e-9)
	assert.Equal(t, 90.0, v.Ledger().Rate(shared.ResourceWood))
}

func TestRefresh_CompletesInDeadlineOrder(t *testing.T) {
	// Arrange
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartResearch(cat, "FORESTRY", epoch) // due at +10m
	require.NoError(t, err)
	_, err = v.StartUpgrade(cat, "QUARRY", epoch) // due at +5m
	require.NoError(t, err)
	v.PullEvents()

	// Act
	completed, err := v.Refresh(cat, at(time.Hour))

	// Assert
	require.NoError(t, err)
	quarry, _ := v.Building("QUARRY")
	assert.Equal(t, []string{quarry.ID(), "FORESTRY"}, completed)
	assert.InDelta(t, 145, wood(v), 1e-9)   // 60 +10 @60/h, +75 @90/h
	assert.InDelta(t, 77.5, stone(v), 1e-9) // 50, +2.5 and +25 @30/h

	events := v.PullEvents()
	require.Len(t, events, 2)
	assert.Equal(t, village.EventUpgradeCompleted, events[0].Type)
	assert.Equal(t, at(5*time.Minute), events[0].OccurredAt)
	assert.Equal(t, village.EventResearchCompleted, events[1].Type)
}

func TestRefresh_CapacityBuffFromResearch(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()
	_, err := v.StartResearch(cat, "STORAGE", epoch)
	require.NoError(t, err)

	_, err = v.Refresh(cat, at(10*time.Minute))

	require.NoError(t, err)
	assert.Equal(t, 1500.0, v.Ledger().Capacity(shared.ResourceWood))
	assert.Equal(t, 1000.0, v.Ledger().Capacity(shared.ResourceStone))
}

func TestForceComplete(t *testing.T) {
	v := foundVillage(t)
	cat := helpers.NewTestCatalog()

	_, err := v.ForceComplete(cat, "QUARRY", epoch)
	var invalid *shared.InvalidTransitionError
	require.True(t, errors.As(err, &invalid))

	_, err = v.StartUpgrade(cat, "QUARRY", epoch)
	require.NoError(t, err)
	outcome, err := v.ForceComplete(cat, "QUARRY", at(time.Second))
	require.NoError(t, err)
	assert.Equal(t, village.CompletionCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.Level)
}

func TestClone_IsIndependent(t *testing.T) {
	v := foundVillage(t)
	clone := v.Clone()

	_, err := clone.StartUpgrade(helpers.NewTestCatalog(), "QUARRY", epoch)
	require.NoError(t, err)

	quarry, _ := v.Building("QUARRY")
	assert.True(t, quarry.Transition().IsIdle())
	assert.Equal(t, 100.0, stone(v))
}
