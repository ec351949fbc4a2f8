package player

import (
	"context"
	"fmt"

	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
)

// PlayerSelectionOptions holds inputs for player selection
type PlayerSelectionOptions struct {
	PlayerIDFlag *int   // --player-id flag (highest priority)
	UsernameFlag string // --player flag
	UserConfig   *config.UserConfig
}

// PlayerResolver resolves which player to use based on priority logic
type PlayerResolver struct {
	playerRepo player.PlayerRepository
}

// NewPlayerResolver creates a new PlayerResolver
func NewPlayerResolver(playerRepo player.PlayerRepository) *PlayerResolver {
	return &PlayerResolver{
		playerRepo: playerRepo,
	}
}

// ResolvePlayer resolves which player to use based on priority:
// 1. --player-id flag (highest priority)
// 2. --player flag
// 3. config default player
// 4. auto-select if only one player exists
// 5. error if ambiguous
func (r *PlayerResolver) ResolvePlayer(ctx context.Context, opts *PlayerSelectionOptions) (*player.Player, error) {
	if opts == nil {
		opts = &PlayerSelectionOptions{}
	}

	// Priority 1: --player-id flag
	if opts.PlayerIDFlag != nil {
		return r.findByID(ctx, *opts.PlayerIDFlag, "player")
	}

	// Priority 2: --player flag
	if opts.UsernameFlag != "" {
		found, err := r.playerRepo.FindByUsername(ctx, opts.UsernameFlag)
		if err != nil {
			return nil, fmt.Errorf("player '%s' not found: %w", opts.UsernameFlag, err)
		}
		return found, nil
	}

	// Priority 3: config default player
	if opts.UserConfig != nil && opts.UserConfig.DefaultPlayerID != nil {
		return r.findByID(ctx, *opts.UserConfig.DefaultPlayerID, "default player")
	}

	// Priority 4: Auto-select if only one player
	players, err := r.playerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) == 1 {
		return players[0], nil
	}

	return nil, shared.NewValidationError("player",
		"no player specified: use --player-id or --player, or set a default with 'config set-player'")
}

func (r *PlayerResolver) findByID(ctx context.Context, id int, label string) (*player.Player, error) {
	playerID, err := shared.NewPlayerID(id)
	if err != nil {
		return nil, shared.NewValidationError("player_id", err.Error())
	}
	found, err := r.playerRepo.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s with ID %d not found: %w", label, id, err)
	}
	return found, nil
}
