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

// CancelTransitionCommand cancels a running upgrade or research.
// EntityID is a building id, a building type or a research type.
type CancelTransitionCommand struct {
	VillageID string
	EntityID  string
	Now       *time.Time
}

// CancelTransitionResponse reports what was credited back
type CancelTransitionResponse struct {
	Village   *dtos.VillageDTO
	EntityID  string
	Refund    map[string]float64
	Discarded map[string]float64
}

// CancelTransitionHandler handles the CancelTransition command
type CancelTransitionHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewCancelTransitionHandler creates a new CancelTransitionHandler
func NewCancelTransitionHandler(orchestrator *services.Orchestrator, clock shared.Clock) *CancelTransitionHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CancelTransitionHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the CancelTransition command
func (h *CancelTransitionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CancelTransitionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelTransitionCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}

	now := resolveNow(h.clock, cmd.Now)
	v, result, err := h.orchestrator.Cancel(ctx, villageID, cmd.EntityID, now)
	if err != nil {
		return nil, err
	}

	return &CancelTransitionResponse{
		Village:   dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
		EntityID:  result.EntityID,
		Refund:    dtos.AmountsByName(result.Refund.Map()),
		Discarded: dtos.AmountsByName(result.Discarded),
	}, nil
}
