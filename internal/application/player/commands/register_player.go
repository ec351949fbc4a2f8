package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// RegisterPlayerCommand represents a command to register a new player
type RegisterPlayerCommand struct {
	Username string
	Metadata map[string]interface{} // Optional metadata (display name, locale, etc.)
}

// RegisterPlayerResponse represents the result of registering a player
type RegisterPlayerResponse struct {
	Player *player.Player
}

// RegisterPlayerHandler handles the RegisterPlayer command
type RegisterPlayerHandler struct {
	playerRepo player.PlayerRepository
	clock      shared.Clock
}

// NewRegisterPlayerHandler creates a new RegisterPlayerHandler
func NewRegisterPlayerHandler(playerRepo player.PlayerRepository, clock shared.Clock) *RegisterPlayerHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RegisterPlayerHandler{
		playerRepo: playerRepo,
		clock:      clock,
	}
}

// Handle executes the RegisterPlayer command
func (h *RegisterPlayerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RegisterPlayerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RegisterPlayerCommand")
	}

	p, err := player.NewPlayer(cmd.Username, h.clock.Now())
	if err != nil {
		return nil, err
	}
	for k, v := range cmd.Metadata {
		p.Metadata[k] = v
	}

	existing, err := h.playerRepo.FindByUsername(ctx, p.Username)
	if err == nil && existing != nil {
		return nil, shared.NewValidationError("username", fmt.Sprintf("username %q is already taken", p.Username))
	}
	var notFound *shared.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if err := h.playerRepo.Add(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}

	return &RegisterPlayerResponse{
		Player: p,
	}, nil
}

