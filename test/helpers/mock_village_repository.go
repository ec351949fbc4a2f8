package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// MockVillageRepository is an in-memory, versioned VillageRepository.
// Stored aggregates are cloned on the way in and out, so callers never share
// state, and Save enforces the same optimistic version check as the GORM store.
type MockVillageRepository struct {
	mu       sync.Mutex
	villages map[string]*village.Village

	// forcedConflicts makes the next N saves fail as if another writer won
	forcedConflicts int
	// beforeSave runs (unlocked) before each Save's version check
	beforeSave func(id village.VillageID)

	saves     int
	conflicts int
}

var _ village.VillageRepository = (*MockVillageRepository)(nil)

// NewMockVillageRepository creates an empty repository
func NewMockVillageRepository() *MockVillageRepository {
	return &MockVillageRepository{
		villages: make(map[string]*village.Village),
	}
}

// Create stores a new village at version 1
func (m *MockVillageRepository) Create(ctx context.Context, v *village.Village) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := v.ID().String()
	if _, exists := m.villages[key]; exists {
		return fmt.Errorf("village %s already exists", key)
	}

	v.SetVersion(1)
	stored := v.Clone()
	stored.PullEvents()
	m.villages[key] = stored
	return nil
}

// LoadForUpdate returns a private copy of the stored village
func (m *MockVillageRepository) LoadForUpdate(ctx context.Context, id village.VillageID) (*village.Village, error) {
	return m.FindByID(ctx, id)
}

// Save replaces the stored village when the versions match
func (m *MockVillageRepository) Save(ctx context.Context, v *village.Village) error {
	m.mu.Lock()
	hook := m.beforeSave
	m.mu.Unlock()
	if hook != nil {
		hook(v.ID())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := v.ID().String()
	stored, ok := m.villages[key]
	if !ok {
		return shared.NewNotFoundError("village", key)
	}

	if m.forcedConflicts > 0 {
		m.forcedConflicts--
		m.conflicts++
		return shared.NewConflictError(key, v.Version())
	}
	if stored.Version() != v.Version() {
		m.conflicts++
		return shared.NewConflictError(key, v.Version())
	}

	next := v.Version() + 1
	copied := v.Clone()
	copied.PullEvents()
	copied.SetVersion(next)
	m.villages[key] = copied
	v.SetVersion(next)
	m.saves++
	return nil
}

// FindByID returns a private copy of the stored village
func (m *MockVillageRepository) FindByID(ctx context.Context, id village.VillageID) (*village.Village, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.villages[id.String()]
	if !ok {
		return nil, shared.NewNotFoundError("village", id.String())
	}
	return stored.Clone(), nil
}

// ListByOwner returns copies of a player's villages, oldest first
func (m *MockVillageRepository) ListByOwner(ctx context.Context, ownerID shared.PlayerID) ([]*village.Village, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*village.Village
	for _, v := range m.villages {
		if v.OwnerID().Equals(ownerID) {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

// ForceConflicts makes the next n saves fail with *shared.ConflictError
func (m *MockVillageRepository) ForceConflicts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedConflicts = n
}

// SetBeforeSave installs a hook that runs before each save's version check.
// Tests use it to interleave a competing writer.
func (m *MockVillageRepository) SetBeforeSave(hook func(id village.VillageID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeSave = hook
}

// Stored returns a copy of the committed village, or nil
func (m *MockVillageRepository) Stored(id village.VillageID) *village.Village {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.villages[id.String()]; ok {
		return v.Clone()
	}
	return nil
}

// SaveCount returns the number of successful saves
func (m *MockVillageRepository) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// ConflictCount returns the number of saves rejected with a conflict
func (m *MockVillageRepository) ConflictCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflicts
}
