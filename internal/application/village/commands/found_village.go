package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// FoundVillageCommand creates a new village for a player
type FoundVillageCommand struct {
	PlayerID int
	Name     string
	Now      *time.Time // Optional: pin the operation time; otherwise the clock is read once
}

// FoundVillageResponse carries the new village
type FoundVillageResponse struct {
	Village *dtos.VillageDTO
}

// FoundVillageHandler handles the FoundVillage command
type FoundVillageHandler struct {
	orchestrator *services.Orchestrator
	playerRepo   player.PlayerRepository
	clock        shared.Clock
}

// NewFoundVillageHandler creates a new FoundVillageHandler.
// When playerRepo is nil the owner is not checked against the player registry.
func NewFoundVillageHandler(orchestrator *services.Orchestrator, playerRepo player.PlayerRepository, clock shared.Clock) *FoundVillageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &FoundVillageHandler{orchestrator: orchestrator, playerRepo: playerRepo, clock: clock}
}

// Handle executes the FoundVillage command
func (h *FoundVillageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*FoundVillageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FoundVillageCommand")
	}

	ownerID, err := shared.NewPlayerID(cmd.PlayerID)
	if err != nil {
		return nil, shared.NewValidationError("player_id", err.Error())
	}

	if h.playerRepo != nil {
		if _, err := h.playerRepo.FindByID(ctx, ownerID); err != nil {
			return nil, err
		}
	}

	now := resolveNow(h.clock, cmd.Now)
	v, err := h.orchestrator.FoundVillage(ctx, ownerID, cmd.Name, now)
	if err != nil {
		return nil, err
	}

	return &FoundVillageResponse{
		Village: dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
	}, nil
}
