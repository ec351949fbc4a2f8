package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// StartUpgradeCommand starts upgrading a building to its next level.
// BuildingID accepts either the building's id or its type.
type StartUpgradeCommand struct {
	VillageID  string
	BuildingID string
	Now        *time.Time
}

// StartUpgradeResponse carries the updated building and ledger
type StartUpgradeResponse struct {
	Village  *dtos.VillageDTO
	Building dtos.UpgradableDTO
}

// StartUpgradeHandler handles the StartUpgrade command
type StartUpgradeHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewStartUpgradeHandler creates a new StartUpgradeHandler
func NewStartUpgradeHandler(orchestrator *services.Orchestrator, clock shared.Clock) *StartUpgradeHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartUpgradeHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the StartUpgrade command
func (h *StartUpgradeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartUpgradeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartUpgradeCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}

	now := resolveNow(h.clock, cmd.Now)
	v, building, err := h.orchestrator.StartUpgrade(ctx, villageID, cmd.BuildingID, now)
	if err != nil {
		return nil, err
	}

	cat := h.orchestrator.Catalog()
	return &StartUpgradeResponse{
		Village:  dtos.VillageToDTO(v, cat, now),
		Building: dtos.UpgradableToDTO(building.ID(), &building.Upgradable, cat, now),
	}, nil
}
