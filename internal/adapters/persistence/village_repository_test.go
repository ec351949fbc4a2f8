package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/empire-go/internal/adapters/persistence"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
	"github.com/andrescamacho/empire-go/test/helpers"
)

func seedOwner(t *testing.T, db *gorm.DB, username string) shared.PlayerID {
	t.Helper()
	p, err := player.NewPlayer(username, helpers.FixtureEpoch)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPlayerRepository(db).Add(context.Background(), p))
	return p.ID
}

func seedVillage(t *testing.T, repo *persistence.GormVillageRepository, owner shared.PlayerID, name string) *village.Village {
	t.Helper()
	v, err := village.FoundVillage(helpers.NewTestCatalog(), owner, name, helpers.FixtureEpoch)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), v))
	return v
}

func TestVillageRepository_RoundTripsInProgressState(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVillageRepository(db)
	cat := helpers.NewTestCatalog()
	owner := seedOwner(t, db, "aelith")
	v := seedVillage(t, repo, owner, "Riverside")

	now := helpers.FixtureEpoch.Add(30 * time.Minute)
	_, err := v.StartUpgrade(cat, "WOODCUTTER", now)
	require.NoError(t, err)
	_, err = v.StartResearch(cat, "FORESTRY", now)
	require.Error(t, err, "wood is spent on the woodcutter")
	require.NoError(t, repo.Save(context.Background(), v))

	// Act
	loaded, err := repo.FindByID(context.Background(), v.ID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, v.ID(), loaded.ID())
	assert.Equal(t, owner, loaded.OwnerID())
	assert.Equal(t, "Riverside", loaded.Name())
	assert.Equal(t, int64(2), loaded.Version())
	assert.InDelta(t, 10.0, loaded.Ledger().Quantity(shared.ResourceWood), 1e-9)
	assert.InDelta(t, 60.0, loaded.Ledger().Rate(shared.ResourceWood), 1e-9)
	assert.True(t, now.Equal(loaded.Ledger().LastSettledAt()))

	woodcutter, err := loaded.Building("WOODCUTTER")
	require.NoError(t, err)
	assert.Equal(t, 1, woodcutter.Level())
	assert.True(t, woodcutter.IsInProgress())
	require.NotNil(t, woodcutter.Transition().Deadline())
	assert.True(t, now.Add(10*time.Minute).Equal(*woodcutter.Transition().Deadline()))
	assert.Equal(t, 120.0, woodcutter.PendingCost().Get(shared.ResourceWood))

	forestry, err := loaded.ResearchLine("FORESTRY")
	require.NoError(t, err)
	assert.False(t, forestry.IsInProgress())
}

func TestVillageRepository_StaleSaveConflicts(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVillageRepository(db)
	cat := helpers.NewTestCatalog()
	v := seedVillage(t, repo, seedOwner(t, db, "borin"), "Stonehold")

	first, err := repo.LoadForUpdate(context.Background(), v.ID())
	require.NoError(t, err)
	second, err := repo.LoadForUpdate(context.Background(), v.ID())
	require.NoError(t, err)

	now := helpers.FixtureEpoch.Add(30 * time.Minute)
	_, err = first.StartUpgrade(cat, "WOODCUTTER", now)
	require.NoError(t, err)
	_, err = second.StartUpgrade(cat, "WOODCUTTER", now)
	require.NoError(t, err)

	// Act
	errFirst := repo.Save(context.Background(), first)
	errSecond := repo.Save(context.Background(), second)

	// Assert
	require.NoError(t, errFirst)
	var conflict *shared.ConflictError
	require.True(t, errors.As(errSecond, &conflict), "expected conflict, got %v", errSecond)
	assert.Equal(t, int64(1), conflict.ExpectedVersion)

	stored, err := repo.FindByID(context.Background(), v.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version())
	assert.InDelta(t, 10.0, stored.Ledger().Quantity(shared.ResourceWood), 1e-9, "only one debit survives")
}

func TestVillageRepository_SaveUnknownVillage(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVillageRepository(db)
	v, err := village.FoundVillage(helpers.NewTestCatalog(), shared.MustNewPlayerID(1), "Nowhere", helpers.FixtureEpoch)
	require.NoError(t, err)

	// Act
	err = repo.Save(context.Background(), v)

	// Assert
	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestVillageRepository_FindByIDNotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVillageRepository(db)

	_, err := repo.FindByID(context.Background(), village.NewVillageID())

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestVillageRepository_ListByOwner(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVillageRepository(db)
	owner := seedOwner(t, db, "cyra")
	other := seedOwner(t, db, "dorn")

	seedVillage(t, repo, owner, "Ashford")
	seedVillage(t, repo, owner, "Brookmere")
	seedVillage(t, repo, other, "Elsewhere")

	// Act
	villages, err := repo.ListByOwner(context.Background(), owner)

	// Assert
	require.NoError(t, err)
	require.Len(t, villages, 2)
	for _, v := range villages {
		assert.Equal(t, owner, v.OwnerID())
		assert.Len(t, v.Buildings(), 4)
	}
}
