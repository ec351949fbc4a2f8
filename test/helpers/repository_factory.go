package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/empire-go/internal/adapters/persistence"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// TestRepositories holds all real repository instances for integration tests
type TestRepositories struct {
	DB          *gorm.DB
	PlayerRepo  player.PlayerRepository
	VillageRepo village.VillageRepository
}

// NewTestRepositories creates all real repository instances using shared test DB
func NewTestRepositories() *TestRepositories {
	return NewTestRepositoriesFor(SharedTestDB)
}

// NewTestRepositoriesFor creates repositories over the given database
func NewTestRepositoriesFor(db *gorm.DB) *TestRepositories {
	return &TestRepositories{
		DB:          db,
		PlayerRepo:  persistence.NewGormPlayerRepository(db),
		VillageRepo: persistence.NewGormVillageRepository(db),
	}
}
