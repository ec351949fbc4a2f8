package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// CheckAffordabilityQuery predicts whether the next level of a building or
// research line is affordable now, without changing any state
type CheckAffordabilityQuery struct {
	VillageID string
	EntityID  string
	Now       *time.Time
}

// CheckAffordabilityResponse lists the cost and any shortfall per resource
type CheckAffordabilityResponse struct {
	EntityID    string
	TargetLevel int
	Affordable  bool
	Cost        map[string]float64
	Deficiency  map[string]float64
}

// CheckAffordabilityHandler handles the CheckAffordability query
type CheckAffordabilityHandler struct {
	orchestrator *services.Orchestrator
	clock        shared.Clock
}

// NewCheckAffordabilityHandler creates a new CheckAffordabilityHandler
func NewCheckAffordabilityHandler(orchestrator *services.Orchestrator, clock shared.Clock) *CheckAffordabilityHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CheckAffordabilityHandler{orchestrator: orchestrator, clock: clock}
}

// Handle executes the CheckAffordability query
func (h *CheckAffordabilityHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*CheckAffordabilityQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CheckAffordabilityQuery")
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

	entity, id, err := findUpgradable(v, query.EntityID)
	if err != nil {
		return nil, err
	}
	if entity.Level() >= entity.MaxLevel() {
		return nil, village.NewMaxLevelReachedError(entity.Type(), entity.MaxLevel())
	}

	cost, err := h.orchestrator.Catalog().CostFor(entity.Type(), entity.TargetLevel())
	if err != nil {
		return nil, err
	}
	deficiency := resources.Deficiency(v.Ledger(), cost)

	return &CheckAffordabilityResponse{
		EntityID:    id,
		TargetLevel: entity.TargetLevel(),
		Affordable:  len(deficiency) == 0,
		Cost:        dtos.AmountsByName(cost.Map()),
		Deficiency:  dtos.AmountsByName(deficiency),
	}, nil
}

func findUpgradable(v *village.Village, ref string) (*village.Upgradable, string, error) {
	if b, err := v.Building(ref); err == nil {
		return &b.Upgradable, b.ID(), nil
	}
	r, err := v.ResearchLine(ref)
	if err != nil {
		return nil, "", shared.NewNotFoundError("building or research", ref)
	}
	return &r.Upgradable, r.ID(), nil
}
