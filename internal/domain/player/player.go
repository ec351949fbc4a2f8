package player

import (
	"strings"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// Player is an account that owns villages
type Player struct {
	ID        shared.PlayerID
	Username  string
	CreatedAt time.Time
	Metadata  map[string]interface{}
}

// NewPlayer creates a new player. The ID is assigned by the store when zero.
func NewPlayer(username string, createdAt time.Time) (*Player, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewValidationError("username", "username is required")
	}
	return &Player{
		Username:  username,
		CreatedAt: createdAt.UTC(),
		Metadata:  make(map[string]interface{}),
	}, nil
}
