package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// ListVillagesQuery lists every village a player owns
type ListVillagesQuery struct {
	PlayerID int
	Now      *time.Time
}

// ListVillagesResponse carries the refreshed villages
type ListVillagesResponse struct {
	Villages []*dtos.VillageDTO
}

// ListVillagesHandler handles the ListVillages query
type ListVillagesHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewListVillagesHandler creates a new ListVillagesHandler
func NewListVillagesHandler(orchestrator *services.Orchestrator, clock shared.Clock) *ListVillagesHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ListVillagesHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the ListVillages query
func (h *ListVillagesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListVillagesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListVillagesQuery")
	}

	ownerID, err := shared.NewPlayerID(query.PlayerID)
	if err != nil {
		return nil, shared.NewValidationError("player_id", err.Error())
	}

	now := resolveNow(h.clock, query.Now)
	villages, err := h.orchestrator.RefreshOwned(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}

	out := make([]*dtos.VillageDTO, 0, len(villages))
	for _, v := range villages {
		out = append(out, dtos.VillageToDTO(v, h.orchestrator.Catalog(), now))
	}
	return &ListVillagesResponse{Villages: out}, nil
}
