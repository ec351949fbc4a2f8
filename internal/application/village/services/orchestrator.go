package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/adapters/metrics"
	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

const (
	// DefaultRefundFraction is the share of a cancelled action's cost that is credited back
	DefaultRefundFraction = 0.5

	// DefaultMaxConflictRetries bounds how often an operation is re-run after a lost race
	DefaultMaxConflictRetries = 3
)

// Policy holds the tunable game rules the orchestrator applies
type Policy struct {
	RefundFraction     float64
	MaxConflictRetries int
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{
		RefundFraction:     DefaultRefundFraction,
		MaxConflictRetries: DefaultMaxConflictRetries,
	}
}

// Orchestrator runs every state-changing village operation as one
// load → mutate → save unit. A lost optimistic-concurrency race reruns the
// whole unit from load with the same `now`; nothing is patched in place.
// Events are published only after the save commits.
type Orchestrator struct {
	repo      village.VillageRepository
	catalog   catalog.Catalog
	publisher village.EventPublisher
	policy    Policy
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	repo village.VillageRepository,
	cat catalog.Catalog,
	publisher village.EventPublisher,
	policy Policy,
) *Orchestrator {
	if policy.MaxConflictRetries < 1 {
		policy.MaxConflictRetries = DefaultMaxConflictRetries
	}
	if publisher == nil {
		publisher = discardPublisher{}
	}

	return &Orchestrator{
		repo:      repo,
		catalog:   cat,
		publisher: publisher,
		policy:    policy,
	}
}

// Catalog exposes the catalog for read-side handlers
func (o *Orchestrator) Catalog() catalog.Catalog {
	return o.catalog
}

// FoundVillage creates and persists a new village
func (o *Orchestrator) FoundVillage(ctx context.Context, ownerID shared.PlayerID, name string, now time.Time) (*village.Village, error) {
	logger := common.LoggerFromContext(ctx)

	v, err := village.FoundVillage(o.catalog, ownerID, name, now)
	if err != nil {
		metrics.RecordOperation("found_village", "rejected")
		return nil, err
	}

	events := v.PullEvents()
	if err := o.repo.Create(ctx, v); err != nil {
		metrics.RecordOperation("found_village", "error")
		return nil, fmt.Errorf("failed to persist village: %w", err)
	}
	o.publisher.Publish(events...)
	metrics.RecordOperation("found_village", "success")

	logger.Info("Village founded", "village_id", v.ID(), "owner_id", ownerID, "name", v.Name())
	return v, nil
}

// StartUpgrade debits the next level's cost and starts the building's timer
func (o *Orchestrator) StartUpgrade(ctx context.Context, villageID village.VillageID, buildingRef string, now time.Time) (*village.Village, *village.Building, error) {
	var building *village.Building
	v, err := o.mutate(ctx, "start_upgrade", villageID, now, func(v *village.Village) error {
		b, err := v.StartUpgrade(o.catalog, buildingRef, now)
		building = b
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordResourcesSpent(amountsByName(building.PendingCost().Map()))
	common.LoggerFromContext(ctx).Info("Upgrade started",
		"village_id", villageID, "building", building.Type(), "target_level", building.TargetLevel(),
		"deadline", building.Transition().Deadline())
	return v, building, nil
}

// StartResearch debits the next level's cost and starts the research timer.
// Only one research may run per village.
func (o *Orchestrator) StartResearch(ctx context.Context, villageID village.VillageID, researchRef string, now time.Time) (*village.Village, *village.Research, error) {
	var research *village.Research
	v, err := o.mutate(ctx, "start_research", villageID, now, func(v *village.Village) error {
		r, err := v.StartResearch(o.catalog, researchRef, now)
		research = r
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordResourcesSpent(amountsByName(research.PendingCost().Map()))
	common.LoggerFromContext(ctx).Info("Research started",
		"village_id", villageID, "research", research.Type(), "target_level", research.TargetLevel(),
		"deadline", research.Transition().Deadline())
	return v, research, nil
}

// Cancel stops a running upgrade or research and applies the refund policy
func (o *Orchestrator) Cancel(ctx context.Context, villageID village.VillageID, entityRef string, now time.Time) (*village.Village, village.CancelResult, error) {
	var result village.CancelResult
	v, err := o.mutate(ctx, "cancel", villageID, now, func(v *village.Village) error {
		r, err := v.Cancel(o.catalog, entityRef, o.policy.RefundFraction, now)
		result = r
		return err
	})
	if err != nil {
		return nil, village.CancelResult{}, err
	}

	metrics.RecordResourcesRefunded(amountsByName(result.Refund.Map()))
	metrics.RecordOverflowDiscarded(amountsByName(result.Discarded))
	common.LoggerFromContext(ctx).Info("Transition cancelled",
		"village_id", villageID, "entity", result.EntityID, "refund", result.Refund.String())
	return v, result, nil
}

// CompleteIfDue completes the entity when its deadline has passed. A pending
// transition is reported through the outcome, not as an error.
func (o *Orchestrator) CompleteIfDue(ctx context.Context, villageID village.VillageID, entityRef string, now time.Time) (*village.Village, village.CompletionOutcome, error) {
	var outcome village.CompletionOutcome
	v, err := o.mutate(ctx, "complete_if_due", villageID, now, func(v *village.Village) error {
		out, err := v.CompleteIfDue(o.catalog, entityRef, now)
		outcome = out
		return err
	})
	if err != nil {
		return nil, village.CompletionOutcome{}, err
	}
	return v, outcome, nil
}

// ForceComplete finishes a running transition regardless of its deadline
func (o *Orchestrator) ForceComplete(ctx context.Context, villageID village.VillageID, entityRef string, now time.Time) (*village.Village, village.CompletionOutcome, error) {
	var outcome village.CompletionOutcome
	v, err := o.mutate(ctx, "force_complete", villageID, now, func(v *village.Village) error {
		out, err := v.ForceComplete(o.catalog, entityRef, now)
		outcome = out
		return err
	})
	if err != nil {
		return nil, village.CompletionOutcome{}, err
	}

	common.LoggerFromContext(ctx).Warn("Transition force-completed",
		"village_id", villageID, "entity", outcome.EntityID, "level", outcome.Level)
	return v, outcome, nil
}

// Collect settles the ledger to now and persists it
func (o *Orchestrator) Collect(ctx context.Context, villageID village.VillageID, now time.Time) (*village.Village, resources.LedgerSnapshot, error) {
	var snapshot resources.LedgerSnapshot
	v, err := o.mutate(ctx, "collect", villageID, now, func(v *village.Village) error {
		s, err := v.Collect(o.catalog, now)
		snapshot = s
		return err
	})
	if err != nil {
		return nil, resources.LedgerSnapshot{}, err
	}
	return v, snapshot, nil
}

// Grant credits resources, clamped to capacity
func (o *Orchestrator) Grant(ctx context.Context, villageID village.VillageID, amounts resources.CostVector, now time.Time) (*village.Village, map[shared.ResourceKind]float64, error) {
	var discarded map[shared.ResourceKind]float64
	v, err := o.mutate(ctx, "grant", villageID, now, func(v *village.Village) error {
		d, err := v.Grant(o.catalog, amounts, now)
		discarded = d
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordOverflowDiscarded(amountsByName(discarded))
	common.LoggerFromContext(ctx).Info("Resources granted",
		"village_id", villageID, "amounts", amounts.String(), "discarded", len(discarded))
	return v, discarded, nil
}

// Refresh loads a village for reading, completing due transitions and
// settling the ledger. The village is written back only when something
// completed; a lost race here is harmless, as the next read redoes the work.
func (o *Orchestrator) Refresh(ctx context.Context, villageID village.VillageID, now time.Time) (*village.Village, error) {
	v, err := o.repo.LoadForUpdate(ctx, villageID)
	if err != nil {
		return nil, err
	}

	if _, err := v.Refresh(o.catalog, now); err != nil {
		return nil, err
	}
	if len(v.PendingEvents()) == 0 {
		return v, nil
	}

	events := v.PullEvents()
	if err := o.repo.Save(ctx, v); err != nil {
		var conflict *shared.ConflictError
		if errors.As(err, &conflict) {
			metrics.RecordConflict("refresh")
			return v, nil
		}
		return nil, fmt.Errorf("failed to persist village: %w", err)
	}
	o.publish(events)
	return v, nil
}

// RefreshOwned refreshes every village of a player
func (o *Orchestrator) RefreshOwned(ctx context.Context, ownerID shared.PlayerID, now time.Time) ([]*village.Village, error) {
	villages, err := o.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list villages: %w", err)
	}

	out := make([]*village.Village, 0, len(villages))
	for _, listed := range villages {
		v, err := o.Refresh(ctx, listed.ID(), now)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// mutate is the retry loop. fn must be a pure function of the loaded village
// and `now` so that rerunning it after a conflict is safe.
func (o *Orchestrator) mutate(
	ctx context.Context,
	operation string,
	villageID village.VillageID,
	now time.Time,
	fn func(v *village.Village) error,
) (*village.Village, error) {
	logger := common.LoggerFromContext(ctx)

	var lastConflict error
	for attempt := 1; attempt <= o.policy.MaxConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := o.repo.LoadForUpdate(ctx, villageID)
		if err != nil {
			metrics.RecordOperation(operation, "error")
			return nil, err
		}

		if err := fn(v); err != nil {
			metrics.RecordOperation(operation, "rejected")
			logger.Debug("Village operation rejected",
				"operation", operation, "village_id", villageID, "error", err)
			return nil, err
		}

		if len(v.PendingEvents()) == 0 {
			metrics.RecordOperation(operation, "success")
			return v, nil
		}

		events := v.PullEvents()
		err = o.repo.Save(ctx, v)
		if err == nil {
			o.publish(events)
			metrics.RecordOperation(operation, "success")
			return v, nil
		}

		var conflict *shared.ConflictError
		if !errors.As(err, &conflict) {
			metrics.RecordOperation(operation, "error")
			return nil, fmt.Errorf("failed to persist village: %w", err)
		}

		lastConflict = err
		metrics.RecordConflict(operation)
		logger.Warn("Village modified concurrently, retrying",
			"operation", operation, "village_id", villageID, "attempt", attempt)
	}

	metrics.RecordOperation(operation, "exhausted")
	logger.Error("Village operation gave up after repeated conflicts",
		"operation", operation, "village_id", villageID, "attempts", o.policy.MaxConflictRetries)
	return nil, shared.NewRetryExhaustedError(o.policy.MaxConflictRetries, lastConflict)
}

func (o *Orchestrator) publish(events []village.Event) {
	for _, e := range events {
		switch e.Type {
		case village.EventUpgradeCompleted:
			metrics.RecordTransitionCompleted(string(catalog.CategoryBuilding))
		case village.EventResearchCompleted:
			metrics.RecordTransitionCompleted(string(catalog.CategoryResearch))
		}
	}
	o.publisher.Publish(events...)
}

func amountsByName(amounts map[shared.ResourceKind]float64) map[string]float64 {
	out := make(map[string]float64, len(amounts))
	for kind, amount := range amounts {
		out[kind.String()] = amount
	}
	return out
}

type discardPublisher struct{}

func (discardPublisher) Publish(...village.Event) {}
