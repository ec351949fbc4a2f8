package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// GetVillageQuery reads a village as of now, completing anything that is due
type GetVillageQuery struct {
	VillageID string
	Now       *time.Time
}

// GetVillageResponse carries the refreshed village
type GetVillageResponse struct {
	Village *dtos.VillageDTO
}

// GetVillageHandler handles the GetVillage query
type GetVillageHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewGetVillageHandler creates a new GetVillageHandler
func NewGetVillageHandler(orchestrator *services.Orchestrator, clock shared.Clock) *GetVillageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetVillageHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the GetVillage query
func (h *GetVillageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetVillageQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetVillageQuery")
	}

	villageID, err := village.ParseVillageID(query.VillageID)
	if err != nil {
		return nil, shared.NewValidationError("village_id", err.Error())
	}

	now := resolveNow(h.clock, query.Now)
	v, err := h.orchestrator.Refresh(ctx, villageID, now)
	if err != nil {
		return nil, err
	}

	return &GetVillageResponse{
		Village: dtos.VillageToDTO(v, h.orchestrator.Catalog(), now),
	}, nil
}

func resolveNow(clock shared.Clock, override *time.Time) time.Time {
	if override != nil {
		return override.UTC()
	}
	return clock.Now().UTC()
}
