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

// ForceCompleteCommand finishes a running transition regardless of its deadline.
// Admin/dev only.
type ForceCompleteCommand struct {
	VillageID string
	EntityID  string
	Now       *time.Time
}

// ForceCompleteHandler handles the ForceComplete command
type ForceCompleteHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewForceCompleteHandler creates a new ForceCompleteHandler
func NewForceCompleteHandler(orchestrator *services.Orchestrator, clock shared.Clock) *ForceCompleteHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ForceCompleteHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the ForceComplete command
func (h *ForceCompleteHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ForceCompleteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ForceCompleteCommand")
	}

	villageID, err := parseVillageID(cmd.VillageID)
	if err != nil {
		return nil, err
	}

	now := resolveNow(h.clock, cmd.Now)
	v, outcome, err := h.orchestrator.ForceComplete(ctx, villageID, cmd.EntityID, now)
	if err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Village:    dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
		Completion: dtos.CompletionToDTO(outcome),
	}, nil
}
