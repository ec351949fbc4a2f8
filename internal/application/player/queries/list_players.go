package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/domain/player"
)

// ListPlayersQuery represents a query to list all players
type ListPlayersQuery struct{}

// ListPlayersResponse represents the result of listing players
type ListPlayersResponse struct {
	Players []*player.Player
}

// ListPlayersHandler handles the ListPlayers query
type ListPlayersHandler struct {
	playerRepo player.PlayerRepository
}

// NewListPlayersHandler creates a new ListPlayersHandler
func NewListPlayersHandler(playerRepo player.PlayerRepository) *ListPlayersHandler {
	return &ListPlayersHandler{
		playerRepo: playerRepo,
	}
}

// Handle executes the ListPlayers query
func (h *ListPlayersHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*ListPlayersQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPlayersQuery")
	}

	players, err := h.playerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return &ListPlayersResponse{
		Players: players,
	}, nil
}
