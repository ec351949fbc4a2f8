package village

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// Village is the aggregate root owning exactly one resource ledger, its
// building slots and its research lines.
//
// Every operation takes the caller's single `now` and first brings the
// aggregate up to date (lazy completion + settlement), then runs all
// validation before the first mutation, so a failed operation leaves no
// partial debit behind.
type Village struct {
	id        VillageID
	ownerID   shared.PlayerID
	name      string
	ledger    *resources.Ledger
	buildings []*Building
	research  []*Research
	version   int64
	createdAt time.Time

	events []Event
}

// FoundVillage creates a village with every catalog building and research at
// its start level, the catalog's starting quantities, and rates derived from
// those levels.
func FoundVillage(cat catalog.Catalog, ownerID shared.PlayerID, name string, now time.Time) (*Village, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "village name is required")
	}
	if ownerID.IsZero() {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}

	base := cat.Base()
	ledger, err := resources.NewLedger(base.StartingQuantities, base.Capacities, base.Rates, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	v := &Village{
		id:        NewVillageID(),
		ownerID:   ownerID,
		name:      name,
		ledger:    ledger,
		createdAt: now.UTC(),
	}

	for _, spec := range cat.Buildings() {
		if err := checkDurations(spec); err != nil {
			return nil, err
		}
		b, err := NewBuilding(spec.Type, spec.StartLevel, spec.MaxLevel)
		if err != nil {
			return nil, err
		}
		v.buildings = append(v.buildings, b)
	}
	for _, spec := range cat.Research() {
		if err := checkDurations(spec); err != nil {
			return nil, err
		}
		r, err := NewResearch(spec.Type, spec.StartLevel, spec.MaxLevel)
		if err != nil {
			return nil, err
		}
		v.research = append(v.research, r)
	}

	if err := v.recalculate(cat); err != nil {
		return nil, err
	}
	// Starting stock is clamped against capacity derived from start levels, not the bare base
	derived := v.ledger.Snapshot()
	v.ledger, err = resources.NewLedger(base.StartingQuantities, derived.Capacities, derived.Rates, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	v.record(Event{Type: EventVillageFounded, OccurredAt: v.createdAt})
	return v, nil
}

// checkDurations rejects zero or negative durations when an entity is created
func checkDurations(spec catalog.EntitySpec) error {
	for i, level := range spec.Levels {
		if level.DurationSeconds <= 0 {
			return shared.NewInvalidCatalogDataError(spec.Type.String(), i+1, "duration must be positive")
		}
	}
	return nil
}

// ReconstructVillage rebuilds a village from persistence
func ReconstructVillage(
	id VillageID,
	ownerID shared.PlayerID,
	name string,
	ledger *resources.Ledger,
	buildings []*Building,
	research []*Research,
	version int64,
	createdAt time.Time,
) *Village {
	return &Village{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		ledger:    ledger,
		buildings: buildings,
		research:  research,
		version:   version,
		createdAt: createdAt,
	}
}

// Getters

func (v *Village) ID() VillageID {
	return v.id
}

func (v *Village) OwnerID() shared.PlayerID {
	return v.ownerID
}

func (v *Village) Name() string {
	return v.name
}

// Ledger returns the live ledger. Mutate it only through Village operations.
func (v *Village) Ledger() *resources.Ledger {
	return v.ledger
}

func (v *Village) Buildings() []*Building {
	return append([]*Building(nil), v.buildings...)
}

func (v *Village) Research() []*Research {
	return append([]*Research(nil), v.research...)
}

// Version is the optimistic concurrency token of the loaded state
func (v *Village) Version() int64 {
	return v.version
}

// SetVersion is called by stores after a successful write
func (v *Village) SetVersion(version int64) {
	v.version = version
}

func (v *Village) CreatedAt() time.Time {
	return v.createdAt
}

// PendingEvents returns the events recorded since load without clearing them
func (v *Village) PendingEvents() []Event {
	return append([]Event(nil), v.events...)
}

// PullEvents returns and clears the events recorded since load
func (v *Village) PullEvents() []Event {
	events := v.events
	v.events = nil
	return events
}

// Clone returns a deep copy, used by in-memory stores to isolate callers
func (v *Village) Clone() *Village {
	c := &Village{
		id:        v.id,
		ownerID:   v.ownerID,
		name:      v.name,
		ledger:    v.ledger.Clone(),
		version:   v.version,
		createdAt: v.createdAt,
		events:    append([]Event(nil), v.events...),
	}
	for _, b := range v.buildings {
		c.buildings = append(c.buildings, b.clone())
	}
	for _, r := range v.research {
		c.research = append(c.research, r.clone())
	}
	return c
}

// Lookup

// Building finds a building by id, or by type (ignoring case) when the id is a type name
func (v *Village) Building(ref string) (*Building, error) {
	for _, b := range v.buildings {
		if b.id == ref {
			return b, nil
		}
	}
	for _, b := range v.buildings {
		if strings.EqualFold(string(b.entityType), ref) {
			return b, nil
		}
	}
	return nil, shared.NewNotFoundError("building", ref)
}

// ResearchLine finds a research line by its type, ignoring case
func (v *Village) ResearchLine(ref string) (*Research, error) {
	for _, r := range v.research {
		if strings.EqualFold(string(r.entityType), ref) {
			return r, nil
		}
	}
	return nil, shared.NewNotFoundError("research", ref)
}

// upgradable resolves an entity id to a building or research line
func (v *Village) upgradable(ref string) (*Upgradable, catalog.Category, string, error) {
	if b, err := v.Building(ref); err == nil {
		return &b.Upgradable, catalog.CategoryBuilding, b.id, nil
	}
	if r, err := v.ResearchLine(ref); err == nil {
		return &r.Upgradable, catalog.CategoryResearch, r.ID(), nil
	}
	return nil, "", "", shared.NewNotFoundError("building or research", ref)
}

// runningResearch returns the research currently in progress, if any
func (v *Village) runningResearch() *Research {
	for _, r := range v.research {
		if r.IsInProgress() {
			return r
		}
	}
	return nil
}

// Lazy time-driven state

// Refresh completes every transition whose deadline has passed, in deadline
// order, settling the ledger up to each deadline under the rates in force
// before it, then settles to now. Returns the ids of completed entities.
func (v *Village) Refresh(cat catalog.Catalog, now time.Time) ([]string, error) {
	var completed []string
	for {
		next, category, id := v.nextDue(now)
		if next == nil {
			break
		}

		deadline := *next.transition.Deadline()
		v.ledger.Settle(deadline)
		if err := next.transition.TryComplete(deadline); err != nil {
			return completed, fmt.Errorf("failed to complete %s: %w", id, err)
		}
		if err := v.applyCompletion(cat, next, category, id, deadline); err != nil {
			return completed, err
		}
		completed = append(completed, id)
	}

	v.ledger.Settle(now)
	return completed, nil
}

type dueEntry struct {
	u        *Upgradable
	category catalog.Category
	id       string
}

func (v *Village) nextDue(now time.Time) (*Upgradable, catalog.Category, string) {
	var due []dueEntry
	for _, b := range v.buildings {
		if b.transition.IsDue(now) {
			due = append(due, dueEntry{&b.Upgradable, catalog.CategoryBuilding, b.id})
		}
	}
	for _, r := range v.research {
		if r.transition.IsDue(now) {
			due = append(due, dueEntry{&r.Upgradable, catalog.CategoryResearch, r.ID()})
		}
	}
	if len(due) == 0 {
		return nil, "", ""
	}

	sort.Slice(due, func(i, j int) bool {
		di, dj := *due[i].u.transition.Deadline(), *due[j].u.transition.Deadline()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return due[i].id < due[j].id
	})
	return due[0].u, due[0].category, due[0].id
}

// applyCompletion increments the level of a COMPLETED transition and re-derives production
func (v *Village) applyCompletion(cat catalog.Catalog, u *Upgradable, category catalog.Category, id string, at time.Time) error {
	if err := u.finish(); err != nil {
		return err
	}
	if err := v.recalculate(cat); err != nil {
		return err
	}

	eventType := EventUpgradeCompleted
	if category == catalog.CategoryResearch {
		eventType = EventResearchCompleted
	}
	v.record(Event{
		Type:       eventType,
		EntityID:   id,
		EntityType: string(u.entityType),
		Level:      u.level,
		OccurredAt: at,
	})
	return nil
}

// recalculate derives rates and capacities from base values, building levels
// and completed research effects.
func (v *Village) recalculate(cat catalog.Catalog) error {
	base := cat.Base()
	rates := make(map[shared.ResourceKind]float64)
	capacities := make(map[shared.ResourceKind]float64)
	for kind, rate := range base.Rates {
		rates[kind] = rate
	}
	for kind, capacity := range base.Capacities {
		capacities[kind] = capacity
	}

	for _, b := range v.buildings {
		production, err := cat.ProductionRateFor(b.entityType, b.level)
		if err != nil {
			return fmt.Errorf("failed to look up production for %s: %w", b.entityType, err)
		}
		for kind, rate := range production {
			rates[kind] += rate
		}
		storage, err := cat.CapacityFor(b.entityType, b.level)
		if err != nil {
			return fmt.Errorf("failed to look up capacity for %s: %w", b.entityType, err)
		}
		for kind, capacity := range storage {
			capacities[kind] += capacity
		}
	}

	bonus := make(map[shared.ResourceKind]float64)
	for _, r := range v.research {
		effects, err := cat.EffectsFor(r.entityType, r.level)
		if err != nil {
			return fmt.Errorf("failed to look up effects for %s: %w", r.entityType, err)
		}
		for _, effect := range effects {
			switch e := effect.(type) {
			case catalog.ProductionBuff:
				bonus[e.Resource] += e.Percent / 100
			case catalog.CapacityBuff:
				capacities[e.Resource] += e.Amount
			case catalog.Unlock:
				// checked when an upgrade starts
			}
		}
	}
	for kind, multiplier := range bonus {
		rates[kind] *= 1 + multiplier
	}

	v.ledger.SetRates(rates)
	v.ledger.SetCapacities(capacities)
	return nil
}

// Operations

// StartUpgrade debits the next level's cost and starts the building's timed transition
func (v *Village) StartUpgrade(cat catalog.Catalog, buildingRef string, now time.Time) (*Building, error) {
	if _, err := v.Refresh(cat, now); err != nil {
		return nil, err
	}

	b, err := v.Building(buildingRef)
	if err != nil {
		return nil, err
	}
	if err := v.checkStartable(&b.Upgradable); err != nil {
		return nil, err
	}
	if b.level == 0 {
		if research, level, locked := cat.UnlockedBy(b.entityType); locked {
			line, err := v.ResearchLine(string(research))
			if err != nil || line.level < level {
				return nil, NewPrerequisiteNotMetError(b.entityType, research, level)
			}
		}
	}

	if err := v.pay(cat, &b.Upgradable, now); err != nil {
		return nil, err
	}
	v.record(Event{
		Type:       EventUpgradeStarted,
		EntityID:   b.id,
		EntityType: string(b.entityType),
		Level:      b.TargetLevel(),
		OccurredAt: now,
		Deadline:   b.transition.Deadline(),
		Amounts:    b.pendingCost.Map(),
	})
	return b, nil
}

// StartResearch is StartUpgrade for research, with at most one running research per village
func (v *Village) StartResearch(cat catalog.Catalog, researchRef string, now time.Time) (*Research, error) {
	if _, err := v.Refresh(cat, now); err != nil {
		return nil, err
	}

	r, err := v.ResearchLine(researchRef)
	if err != nil {
		return nil, err
	}
	if err := v.checkStartable(&r.Upgradable); err != nil {
		return nil, err
	}
	if running := v.runningResearch(); running != nil {
		return nil, NewAnotherResearchInProgressError(running.entityType)
	}

	if err := v.pay(cat, &r.Upgradable, now); err != nil {
		return nil, err
	}
	v.record(Event{
		Type:       EventResearchStarted,
		EntityID:   r.ID(),
		EntityType: string(r.entityType),
		Level:      r.TargetLevel(),
		OccurredAt: now,
		Deadline:   r.transition.Deadline(),
		Amounts:    r.pendingCost.Map(),
	})
	return r, nil
}

func (v *Village) checkStartable(u *Upgradable) error {
	if !u.transition.IsIdle() {
		deadline := u.transition.Deadline()
		if deadline == nil {
			return shared.NewInvalidTransitionError(u.transition.State(), "start")
		}
		return shared.NewAlreadyInProgressError(*deadline)
	}
	if u.level >= u.maxLevel {
		return NewMaxLevelReachedError(u.entityType, u.maxLevel)
	}
	return nil
}

// pay validates cost and duration, then debits and starts the transition.
// Nothing is mutated unless every check passes.
func (v *Village) pay(cat catalog.Catalog, u *Upgradable, now time.Time) error {
	target := u.TargetLevel()
	cost, err := cat.CostFor(u.entityType, target)
	if err != nil {
		return err
	}
	duration, err := cat.DurationFor(u.entityType, target)
	if err != nil {
		return err
	}
	if duration <= 0 {
		return shared.NewInvalidCatalogDataError(u.entityType.String(), target, "duration must be positive")
	}
	if short := resources.Deficiency(v.ledger, cost); len(short) > 0 {
		return resources.NewInsufficientResourcesError(short)
	}

	if err := v.ledger.Debit(cost); err != nil {
		return err
	}
	return u.start(now, cost, duration)
}

// CancelResult describes what a cancellation gave back
type CancelResult struct {
	EntityID  string
	Refund    resources.CostVector
	Discarded map[shared.ResourceKind]float64
}

// Cancel stops a running transition and credits refundFraction of what was
// paid. Refunds are clamped to capacity like any other credit.
func (v *Village) Cancel(cat catalog.Catalog, entityRef string, refundFraction float64, now time.Time) (CancelResult, error) {
	if refundFraction < 0 || refundFraction > 1 {
		return CancelResult{}, shared.NewValidationError("refund_fraction", "must be within [0, 1]")
	}
	if _, err := v.Refresh(cat, now); err != nil {
		return CancelResult{}, err
	}

	u, category, id, err := v.upgradable(entityRef)
	if err != nil {
		return CancelResult{}, err
	}
	paid, err := u.cancel(now)
	if err != nil {
		return CancelResult{}, err
	}

	refund := paid.Scale(refundFraction)
	discarded := v.ledger.Credit(refund)

	eventType := EventUpgradeCancelled
	if category == catalog.CategoryResearch {
		eventType = EventResearchCancelled
	}
	v.record(Event{
		Type:       eventType,
		EntityID:   id,
		EntityType: string(u.entityType),
		Level:      u.TargetLevel(),
		OccurredAt: now,
		Amounts:    refund.Map(),
	})
	return CancelResult{EntityID: id, Refund: refund, Discarded: discarded}, nil
}

// CompletionStatus classifies the outcome of CompleteIfDue
type CompletionStatus string

const (
	// CompletionCompleted means the level was incremented during this call
	CompletionCompleted CompletionStatus = "COMPLETED"

	// CompletionPending means the deadline has not passed yet
	CompletionPending CompletionStatus = "PENDING"

	// CompletionIdle means nothing is running (already completed or never started)
	CompletionIdle CompletionStatus = "IDLE"
)

// CompletionOutcome is the result of CompleteIfDue. Pending is a normal outcome, not an error.
type CompletionOutcome struct {
	EntityID  string
	Status    CompletionStatus
	Level     int
	Remaining time.Duration
	Deadline  *time.Time
}

// CompleteIfDue completes the entity when its deadline has passed. Calling it
// again after completion reports IDLE without incrementing the level twice.
func (v *Village) CompleteIfDue(cat catalog.Catalog, entityRef string, now time.Time) (CompletionOutcome, error) {
	u, _, id, err := v.upgradable(entityRef)
	if err != nil {
		return CompletionOutcome{}, err
	}

	completed, err := v.Refresh(cat, now)
	if err != nil {
		return CompletionOutcome{}, err
	}
	for _, done := range completed {
		if done == id {
			return CompletionOutcome{EntityID: id, Status: CompletionCompleted, Level: u.level}, nil
		}
	}

	probe := u.transition
	err = probe.TryComplete(now)
	var notDue *shared.NotYetDueError
	switch {
	case errors.As(err, &notDue):
		deadline := notDue.Deadline
		return CompletionOutcome{
			EntityID:  id,
			Status:    CompletionPending,
			Level:     u.level,
			Remaining: notDue.Remaining,
			Deadline:  &deadline,
		}, nil
	case err != nil:
		return CompletionOutcome{EntityID: id, Status: CompletionIdle, Level: u.level}, nil
	default:
		// Refresh completes every due transition, so this is unreachable
		return CompletionOutcome{}, fmt.Errorf("transition for %s due but not completed", id)
	}
}

// ForceComplete finishes a running transition now, ignoring its deadline.
// Admin/dev convenience only.
func (v *Village) ForceComplete(cat catalog.Catalog, entityRef string, now time.Time) (CompletionOutcome, error) {
	if _, err := v.Refresh(cat, now); err != nil {
		return CompletionOutcome{}, err
	}

	u, category, id, err := v.upgradable(entityRef)
	if err != nil {
		return CompletionOutcome{}, err
	}
	if err := u.transition.ForceComplete(); err != nil {
		return CompletionOutcome{}, err
	}
	if err := v.applyCompletion(cat, u, category, id, now); err != nil {
		return CompletionOutcome{}, err
	}
	return CompletionOutcome{EntityID: id, Status: CompletionCompleted, Level: u.level}, nil
}

// Collect brings the ledger up to now and records a collection
func (v *Village) Collect(cat catalog.Catalog, now time.Time) (resources.LedgerSnapshot, error) {
	if _, err := v.Refresh(cat, now); err != nil {
		return resources.LedgerSnapshot{}, err
	}
	snapshot := v.ledger.Snapshot()
	v.record(Event{Type: EventResourcesCollected, OccurredAt: now, Amounts: snapshot.Quantities})
	return snapshot, nil
}

// Grant credits resources (clamped to capacity) and returns the discarded overflow
func (v *Village) Grant(cat catalog.Catalog, amounts resources.CostVector, now time.Time) (map[shared.ResourceKind]float64, error) {
	if _, err := v.Refresh(cat, now); err != nil {
		return nil, err
	}
	discarded := v.ledger.Credit(amounts)
	v.record(Event{Type: EventResourcesGranted, OccurredAt: now, Amounts: amounts.Map()})
	return discarded, nil
}

func (v *Village) record(e Event) {
	e.VillageID = v.id
	v.events = append(v.events, e)
}
