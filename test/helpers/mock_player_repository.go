package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// MockPlayerRepository is a test double for PlayerRepository interface
type MockPlayerRepository struct {
	mu         sync.RWMutex
	players    map[int]*player.Player    // playerID -> player
	byUsername map[string]*player.Player // username -> player
	nextID     int
}

// NewMockPlayerRepository creates a new mock player repository
func NewMockPlayerRepository() *MockPlayerRepository {
	return &MockPlayerRepository{
		players:    make(map[int]*player.Player),
		byUsername: make(map[string]*player.Player),
		nextID:     1,
	}
}

// AddPlayer adds a player to the mock repository, assigning an ID when zero
func (m *MockPlayerRepository) AddPlayer(p *player.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(p)
}

func (m *MockPlayerRepository) addLocked(p *player.Player) {
	if p.ID.IsZero() {
		p.ID = shared.MustNewPlayerID(m.nextID)
	}
	if p.ID.Value() >= m.nextID {
		m.nextID = p.ID.Value() + 1
	}
	m.players[p.ID.Value()] = p
	m.byUsername[p.Username] = p
}

// FindByID retrieves a player by ID
func (m *MockPlayerRepository) FindByID(ctx context.Context, playerID shared.PlayerID) (*player.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[playerID.Value()]
	if !ok {
		return nil, shared.NewNotFoundError("player", playerID.String())
	}

	return p, nil
}

// FindByUsername retrieves a player by username
func (m *MockPlayerRepository) FindByUsername(ctx context.Context, username string) (*player.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byUsername[username]
	if !ok {
		return nil, shared.NewNotFoundError("player", username)
	}

	return p, nil
}

// ListAll returns every player ordered by ID
func (m *MockPlayerRepository) ListAll(ctx context.Context) ([]*player.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*player.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Value() < out[j].ID.Value() })
	return out, nil
}

// Add persists a player, assigning an ID when zero
func (m *MockPlayerRepository) Add(ctx context.Context, p *player.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(p)
	return nil
}
