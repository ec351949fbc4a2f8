package player

import (
	"context"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// PlayerRepository defines player persistence operations
type PlayerRepository interface {
	FindByID(ctx context.Context, playerID shared.PlayerID) (*Player, error)
	FindByUsername(ctx context.Context, username string) (*Player, error)
	ListAll(ctx context.Context) ([]*Player, error)
	Add(ctx context.Context, player *Player) error
}
