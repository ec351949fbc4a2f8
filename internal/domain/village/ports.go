package village

import (
	"context"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// VillageRepository is the Entity Store for village aggregates.
//
// LoadForUpdate followed by Save forms a serializable unit per village:
// Save fails with *shared.ConflictError when another writer saved the same
// village after it was loaded. Callers retry the whole operation from load.
type VillageRepository interface {
	// Create persists a newly founded village
	Create(ctx context.Context, v *Village) error

	// LoadForUpdate loads a village for a read-modify-write cycle
	LoadForUpdate(ctx context.Context, id VillageID) (*Village, error)

	// Save writes back a village loaded with LoadForUpdate
	Save(ctx context.Context, v *Village) error

	// FindByID loads a village for read-only use
	FindByID(ctx context.Context, id VillageID) (*Village, error)

	// ListByOwner returns every village owned by a player
	ListByOwner(ctx context.Context, ownerID shared.PlayerID) ([]*Village, error)
}

// EventPublisher forwards committed domain events to subscribers.
// Implementations must not block the caller.
type EventPublisher interface {
	Publish(events ...Event)
}
