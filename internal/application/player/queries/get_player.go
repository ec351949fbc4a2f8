package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// GetPlayerQuery represents a query to get a player by ID or username
type GetPlayerQuery struct {
	PlayerID *int   // Optional: get by player ID
	Username string // Optional: get by username
}

// GetPlayerResponse represents the result of getting a player
type GetPlayerResponse struct {
	Player *player.Player
}

// GetPlayerHandler handles the GetPlayer query
type GetPlayerHandler struct {
	playerRepo player.PlayerRepository
}

// NewGetPlayerHandler creates a new GetPlayerHandler
func NewGetPlayerHandler(playerRepo player.PlayerRepository) *GetPlayerHandler {
	return &GetPlayerHandler{
		playerRepo: playerRepo,
	}
}

// Handle executes the GetPlayer query
func (h *GetPlayerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetPlayerQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlayerQuery")
	}

	// Validate that at least one identifier is provided
	if query.PlayerID == nil && query.Username == "" {
		return nil, shared.NewValidationError("player", "either player_id or username must be provided")
	}

	var found *player.Player
	var err error

	// Priority: PlayerID > Username
	if query.PlayerID != nil {
		playerID, idErr := shared.NewPlayerID(*query.PlayerID)
		if idErr != nil {
			return nil, shared.NewValidationError("player_id", idErr.Error())
		}
		found, err = h.playerRepo.FindByID(ctx, playerID)
	} else {
		found, err = h.playerRepo.FindByUsername(ctx, query.Username)
	}
	if err != nil {
		return nil, err
	}

	return &GetPlayerResponse{
		Player: found,
	}, nil
}
