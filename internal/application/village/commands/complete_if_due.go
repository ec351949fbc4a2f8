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

// CompleteIfDueCommand completes an upgrade or research whose deadline has passed
type CompleteIfDueCommand struct {
	VillageID string
	EntityID  string
	Now       *time.Time
}

// CompletionResponse is shared by CompleteIfDue and ForceComplete
type CompletionResponse struct {
	Village    *dtos.VillageDTO
	Completion dtos.CompletionDTO
}

// CompleteIfDueHandler handles the CompleteIfDue command
type CompleteIfDueHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewCompleteIfDueHandler creates a new CompleteIfDueHandler
func NewCompleteIfDueHandler(orchestrator *services.Orchestrator, clock shared.Clock) *CompleteIfDueHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CompleteIfDueHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the CompleteIfDue command. A transition that is still
// running yields a PENDING completion, not an error.
func (h *CompleteIfDueHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*CompleteIfDueCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CompleteIfDueCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}

	now := resolveNow(h.clock, cmd.Now)
	v, outcome, err := h.orchestrator.CompleteIfDue(ctx, villageID, cmd.EntityID, now)
	if err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Village:    dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
		Completion: dtos.CompletionToDTO(outcome),
	}, nil
}
