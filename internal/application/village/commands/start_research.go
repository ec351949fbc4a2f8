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

// StartResearchCommand starts the next level of a research line
type StartResearchCommand struct {
	VillageID  string
	ResearchID string
	Now        *time.Time
}

// StartResearchResponse carries the updated research line and ledger
type StartResearchResponse struct {
	Village  *dtos.VillageDTO
	Research dtos.UpgradableDTO
}

// StartResearchHandler handles the StartResearch command
type StartResearchHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewStartResearchHandler creates a new StartResearchHandler
func NewStartResearchHandler(orchestrator *services.Orchestrator, clock shared.Clock) *StartResearchHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartResearchHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the StartResearch command
func (h *StartResearchHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartResearchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartResearchCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}

	now := resolveNow(h.clock, cmd.Now)
	v, research, err := h.orchestrator.StartResearch(ctx, villageID, cmd.ResearchID, now)
	if err != nil {
		return nil, err
	}

	cat := h.orchestrator.Catalog()
	return &StartResearchResponse{
		Village:  dtos.VillageToDTO(v, cat, now),
		Research: dtos.UpgradableToDTO(research.ID(), &research.Upgradable, cat, now),
	}, nil
}
