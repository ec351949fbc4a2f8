package village

import (
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// Upgradable is the level + timed transition shared by buildings and research.
// The level increments exactly when the transition completes.
type Upgradable struct {
	entityType  catalog.EntityType
	level       int
	maxLevel    int
	transition  shared.TimedTransition
	pendingCost resources.CostVector
}

func newUpgradable(entityType catalog.EntityType, level, maxLevel int) (Upgradable, error) {
	if level < 0 || level > maxLevel {
		return Upgradable{}, fmt.Errorf("%s level %d out of range [0, %d]", entityType, level, maxLevel)
	}
	return Upgradable{
		entityType: entityType,
		level:      level,
		maxLevel:   maxLevel,
		transition: shared.NewTimedTransition(),
	}, nil
}

func (u *Upgradable) Type() catalog.EntityType {
	return u.entityType
}

func (u *Upgradable) Level() int {
	return u.level
}

func (u *Upgradable) MaxLevel() int {
	return u.maxLevel
}

// Transition returns a copy of the transition state
func (u *Upgradable) Transition() shared.TimedTransition {
	return u.transition
}

// PendingCost is what was paid to start the running transition (zero when idle)
func (u *Upgradable) PendingCost() resources.CostVector {
	return u.pendingCost
}

func (u *Upgradable) IsInProgress() bool {
	return u.transition.IsInProgress()
}

// TargetLevel is the level the next (or running) transition leads to
func (u *Upgradable) TargetLevel() int {
	return u.level + 1
}

func (u *Upgradable) Remaining(now time.Time) time.Duration {
	return u.transition.Remaining(now)
}

func (u *Upgradable) start(now time.Time, cost resources.CostVector, durationSeconds int) error {
	if err := u.transition.Start(now, durationSeconds); err != nil {
		return err
	}
	u.pendingCost = cost
	return nil
}

// finish folds a COMPLETED transition back to IDLE at level+1
func (u *Upgradable) finish() error {
	if err := u.transition.Reset(); err != nil {
		return err
	}
	u.level++
	u.pendingCost = resources.CostVector{}
	return nil
}

func (u *Upgradable) cancel(now time.Time) (resources.CostVector, error) {
	if err := u.transition.Cancel(now); err != nil {
		return resources.CostVector{}, err
	}
	paid := u.pendingCost
	u.pendingCost = resources.CostVector{}
	return paid, nil
}

// Building is one construction slot in a village. Buildings upgrade
// independently of each other.
type Building struct {
	Upgradable
	id string
}

// NewBuilding creates a building slot at the given starting level
func NewBuilding(entityType catalog.EntityType, level, maxLevel int) (*Building, error) {
	u, err := newUpgradable(entityType, level, maxLevel)
	if err != nil {
		return nil, err
	}
	return &Building{Upgradable: u, id: newBuildingID()}, nil
}

// ReconstructBuilding rebuilds a building from persistence
func ReconstructBuilding(
	id string,
	entityType catalog.EntityType,
	level, maxLevel int,
	transition shared.TimedTransition,
	pendingCost resources.CostVector,
) (*Building, error) {
	u, err := newUpgradable(entityType, level, maxLevel)
	if err != nil {
		return nil, err
	}
	u.transition = transition
	u.pendingCost = pendingCost
	return &Building{Upgradable: u, id: id}, nil
}

func (b *Building) ID() string {
	return b.id
}

func (b *Building) clone() *Building {
	c := *b
	return &c
}

// Research is one research line in a village. Its ID is its type.
type Research struct {
	Upgradable
}

// NewResearch creates a research line at the given starting level
func NewResearch(entityType catalog.EntityType, level, maxLevel int) (*Research, error) {
	u, err := newUpgradable(entityType, level, maxLevel)
	if err != nil {
		return nil, err
	}
	return &Research{Upgradable: u}, nil
}

// ReconstructResearch rebuilds a research line from persistence
func ReconstructResearch(
	entityType catalog.EntityType,
	level, maxLevel int,
	transition shared.TimedTransition,
	pendingCost resources.CostVector,
) (*Research, error) {
	u, err := newUpgradable(entityType, level, maxLevel)
	if err != nil {
		return nil, err
	}
	u.transition = transition
	u.pendingCost = pendingCost
	return &Research{Upgradable: u}, nil
}

func (r *Research) ID() string {
	return string(r.entityType)
}

func (r *Research) clone() *Research {
	c := *r
	return &c
}
