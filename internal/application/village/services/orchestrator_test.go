package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
	"github.com/andrescamacho/empire-go/test/helpers"
)

var epoch = helpers.FixtureEpoch

type fixture struct {
	repo         *helpers.MockVillageRepository
	publisher    *helpers.RecordingPublisher
	orchestrator *services.Orchestrator
	villageID    village.VillageID
}

func newFixture(t *testing.T, policy services.Policy) *fixture {
	t.Helper()
	f := &fixture{
		repo:      helpers.NewMockVillageRepository(),
		publisher: helpers.NewRecordingPublisher(),
	}
	f.orchestrator = services.NewOrchestrator(f.repo, helpers.NewTestCatalog(), f.publisher, policy)

	v, err := f.orchestrator.FoundVillage(context.Background(), shared.MustNewPlayerID(1), "Riverside", epoch)
	require.NoError(t, err)
	f.villageID = v.ID()
	f.publisher.Reset()
	return f
}

func (f *fixture) stored() *village.Village {
	return f.repo.Stored(f.villageID)
}

func TestFoundVillage_PersistsAndPublishes(t *testing.T) {
	// Arrange
	repo := helpers.NewMockVillageRepository()
	publisher := helpers.NewRecordingPublisher()
	o := services.NewOrchestrator(repo, helpers.NewTestCatalog(), publisher, services.DefaultPolicy())

	// Act
	v, err := o.FoundVillage(context.Background(), shared.MustNewPlayerID(7), "Hilltop", epoch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Version())
	require.NotNil(t, repo.Stored(v.ID()))
	assert.Len(t, publisher.OfType(village.EventVillageFounded), 1)
}

func TestStartUpgrade_CommitsAndPublishesAfterSave(t *testing.T) {
	// Arrange
	f := newFixture(t, services.DefaultPolicy())

	// Act
	v, b, err := f.orchestrator.StartUpgrade(context.Background(), f.villageID, "quarry", epoch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Version())
	assert.True(t, b.IsInProgress())
	assert.Equal(t, 50.0, f.stored().Ledger().Quantity(shared.ResourceStone))

	started := f.publisher.OfType(village.EventUpgradeStarted)
	require.Len(t, started, 1)
	assert.Equal(t, b.ID(), started[0].EntityID)
}

func TestStartUpgrade_RejectedOperationIsNotSaved(t *testing.T) {
	f := newFixture(t, services.DefaultPolicy())

	_, _, err := f.orchestrator.StartUpgrade(context.Background(), f.villageID, "WOODCUTTER", epoch)

	var insufficient *resources.InsufficientResourcesError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 0, f.repo.SaveCount())
	assert.Empty(t, f.publisher.Events())
	assert.Equal(t, int64(1), f.stored().Version())
}

func TestStartUpgrade_UnknownVillage(t *testing.T) {
	f := newFixture(t, services.DefaultPolicy())

	_, _, err := f.orchestrator.StartUpgrade(context.Background(), village.NewVillageID(), "QUARRY", epoch)

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestMutate_RetriesAfterConflict(t *testing.T) {
	// Arrange
	f := newFixture(t, services.Policy{RefundFraction: 0.5, MaxConflictRetries: 3})
	f.repo.ForceConflicts(2)

	// Act
	_, _, err := f.orchestrator.StartUpgrade(context.Background(), f.villageID, "QUARRY", epoch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.ConflictCount())
	assert.Equal(t, 1, f.repo.SaveCount())
	assert.Equal(t, 50.0, f.stored().Ledger().Quantity(shared.ResourceStone), "cost debited exactly once")
	assert.Len(t, f.publisher.OfType(village.EventUpgradeStarted), 1)
}

func TestMutate_RetryExhausted(t *testing.T) {
	// Arrange
	f := newFixture(t, services.Policy{RefundFraction: 0.5, MaxConflictRetries: 3})
	f.repo.ForceConflicts(3)

	// Act
	_, _, err := f.orchestrator.StartUpgrade(context.Background(), f.villageID, "QUARRY", epoch)

	// Assert
	var exhausted *shared.RetryExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)

	var conflict *shared.ConflictError
	assert.True(t, errors.As(err, &conflict), "last conflict is wrapped")

	assert.Equal(t, 100.0, f.stored().Ledger().Quantity(shared.ResourceStone))
	assert.Empty(t, f.publisher.Events(), "nothing is published for an uncommitted operation")
}

func TestMutate_RerunsAgainstCompetingWrite(t *testing.T) {
	// Arrange
	f := newFixture(t, services.DefaultPolicy())
	competed := false
	f.repo.SetBeforeSave(func(id village.VillageID) {
		if competed {
			return
		}
		competed = true
		grant := resources.MustNewCostVector(map[shared.ResourceKind]float64{shared.ResourceStone: 30})
		_, _, err := f.orchestrator.Grant(context.Background(), id, grant, epoch)
		require.NoError(t, err)
	})

	// Act
	_, _, err := f.orchestrator.StartUpgrade(context.Background(), f.villageID, "QUARRY", epoch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.ConflictCount())
	assert.Equal(t, 80.0, f.stored().Ledger().Quantity(shared.ResourceStone), "100 + 30 granted - 50 paid")
	assert.Len(t, f.publisher.OfType(village.EventUpgradeStarted), 1)
	assert.Len(t, f.publisher.OfType(village.EventResourcesGranted), 1)
}

func TestMutate_ConcurrentOperationsNeverDoubleSpend(t *testing.T) {
	// Arrange: 130 STONE of demand against 100 STONE of stock
	f := newFixture(t, services.Policy{RefundFraction: 0.5, MaxConflictRetries: 20})
	stoneCost := map[string]float64{"QUARRY": 50, "WAREHOUSE": 50, "STORAGE": 30}

	var (
		mu        sync.Mutex
		succeeded []string
	)
	g, ctx := errgroup.WithContext(context.Background())
	for ref := range stoneCost {
		g.Go(func() error {
			var err error
			if ref == "STORAGE" {
				_, _, err = f.orchestrator.StartResearch(ctx, f.villageID, ref, epoch)
			} else {
				_, _, err = f.orchestrator.StartUpgrade(ctx, f.villageID, ref, epoch)
			}

			var insufficient *resources.InsufficientResourcesError
			switch {
			case err == nil:
				mu.Lock()
				succeeded = append(succeeded, ref)
				mu.Unlock()
				return nil
			case errors.As(err, &insufficient):
				return nil
			default:
				return err
			}
		})
	}

	// Act
	require.NoError(t, g.Wait())

	// Assert
	spent := 0.0
	for _, ref := range succeeded {
		spent += stoneCost[ref]
	}
	assert.LessOrEqual(t, spent, 100.0)
	assert.Less(t, len(succeeded), 3, "stock cannot cover every operation")
	assert.Equal(t, 100.0-spent, f.stored().Ledger().Quantity(shared.ResourceStone))
}

func TestCancel_AppliesPolicyRefund(t *testing.T) {
	// Arrange
	f := newFixture(t, services.Policy{RefundFraction: 0.25, MaxConflictRetries: 3})
	ctx := context.Background()
	_, _, err := f.orchestrator.StartResearch(ctx, f.villageID, "FORESTRY", epoch)
	require.NoError(t, err)

	// Act
	_, result, err := f.orchestrator.Cancel(ctx, f.villageID, "FORESTRY", epoch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Refund.Get(shared.ResourceWood))
	assert.Equal(t, 70.0, f.stored().Ledger().Quantity(shared.ResourceWood))
	assert.Len(t, f.publisher.OfType(village.EventResearchCancelled), 1)
}

func TestCompleteIfDue_PendingIsNotAnError(t *testing.T) {
	// Arrange
	f := newFixture(t, services.DefaultPolicy())
	ctx := context.Background()
	_, _, err := f.orchestrator.StartUpgrade(ctx, f.villageID, "QUARRY", epoch)
	require.NoError(t, err)
	saves := f.repo.SaveCount()

	// Act
	_, outcome, err := f.orchestrator.CompleteIfDue(ctx, f.villageID, "QUARRY", epoch.Add(time.Minute))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, village.CompletionPending, outcome.Status)
	assert.Equal(t, 4*time.Minute, outcome.Remaining)
	assert.Equal(t, saves, f.repo.SaveCount(), "nothing changed, nothing written")
}

func TestCompleteIfDue_CompletesOnce(t *testing.T) {
	f := newFixture(t, services.DefaultPolicy())
	ctx := context.Background()
	_, _, err := f.orchestrator.StartUpgrade(ctx, f.villageID, "QUARRY", epoch)
	require.NoError(t, err)

	_, first, err := f.orchestrator.CompleteIfDue(ctx, f.villageID, "QUARRY", epoch.Add(5*time.Minute))
	require.NoError(t, err)
	_, second, err := f.orchestrator.CompleteIfDue(ctx, f.villageID, "QUARRY", epoch.Add(6*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, village.CompletionCompleted, first.Status)
	assert.Equal(t, village.CompletionIdle, second.Status)
	assert.Equal(t, 1, second.Level)
	assert.Len(t, f.publisher.OfType(village.EventUpgradeCompleted), 1)
}

func TestRefresh_PersistsOnlyWhenSomethingCompleted(t *testing.T) {
	// Arrange
	f := newFixture(t, services.DefaultPolicy())
	ctx := context.Background()
	_, _, err := f.orchestrator.StartUpgrade(ctx, f.villageID, "QUARRY", epoch)
	require.NoError(t, err)
	saves := f.repo.SaveCount()

	// Act
	_, err = f.orchestrator.Refresh(ctx, f.villageID, epoch.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, saves, f.repo.SaveCount())

	v, err := f.orchestrator.Refresh(ctx, f.villageID, epoch.Add(10*time.Minute))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, saves+1, f.repo.SaveCount())
	quarry, _ := v.Building("QUARRY")
	assert.Equal(t, 1, quarry.Level())
	assert.Len(t, f.publisher.OfType(village.EventUpgradeCompleted), 1)
}

func TestRefreshOwned(t *testing.T) {
	f := newFixture(t, services.DefaultPolicy())
	ctx := context.Background()
	_, err := f.orchestrator.FoundVillage(ctx, shared.MustNewPlayerID(1), "Second", epoch.Add(time.Second))
	require.NoError(t, err)

	villages, err := f.orchestrator.RefreshOwned(ctx, shared.MustNewPlayerID(1), epoch.Add(time.Hour))

	require.NoError(t, err)
	require.Len(t, villages, 2)
	assert.Equal(t, "Riverside", villages[0].Name())
}

func TestMutate_StopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, services.DefaultPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.orchestrator.StartUpgrade(ctx, f.villageID, "QUARRY", epoch)

	assert.ErrorIs(t, err, context.Canceled)
}
