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

// CollectResourcesCommand settles a village's production up to now and persists it
type CollectResourcesCommand struct {
	VillageID string
	Now       *time.Time
}

// CollectResourcesResponse carries the settled village
type CollectResourcesResponse struct {
	Village *dtos.VillageDTO
}

// CollectResourcesHandler handles the CollectResources command
type CollectResourcesHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewCollectResourcesHandler creates a new CollectResourcesHandler
func NewCollectResourcesHandler(orchestrator *services.Orchestrator, clock shared.Clock) *CollectResourcesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CollectResourcesHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the CollectResources command
func (h *CollectResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CollectResourcesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CollectResourcesCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}

	now := resolveNow(h.clock, cmd.Now)
	v, _, err := h.orchestrator.Collect(ctx, villageID, now)
	if err != nil {
		return nil, err
	}

	return &CollectResourcesResponse{
		Village: dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
	}, nil
}
