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

// GrantResourcesCommand credits resources to a village (admin).
// Amounts are keyed by resource kind name.
type GrantResourcesCommand struct {
	VillageID string
	Amounts   map[string]float64
	Now       *time.Time
}

// GrantResourcesResponse reports the village and any overflow that was lost
type GrantResourcesResponse struct {
	Village   *dtos.VillageDTO
	Discarded map[string]float64
}

// GrantResourcesHandler handles the GrantResources command
type GrantResourcesHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewGrantResourcesHandler creates a new GrantResourcesHandler
func NewGrantResourcesHandler(orchestrator *services.Orchestrator, clock shared.Clock) *GrantResourcesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GrantResourcesHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the GrantResources command
func (h *GrantResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*GrantResourcesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GrantResourcesCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}
	if len(cmd.Amounts) == 0 {
		return nil, shared.NewValidationError("amounts", "at least one resource amount is required")
	}
	amounts, err := dtos.ParseAmounts(cmd.Amounts)
	if err != nil {
		return nil, shared.NewValidationError("amounts", err.Error())
	}

	now := resolveNow(h.clock, cmd.Now)
	v, discarded, err := h.orchestrator.Grant(ctx, villageID, amounts, now)
	if err != nil {
		return nil, err
	}

	return &GrantResourcesResponse{
		Village:   dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
		Discarded: dtos.AmountsByName(discarded),
	}, nil
}
