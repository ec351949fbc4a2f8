package catalog

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// EntityType names a building or research type. Buildings and research share
// one namespace so cost and duration lookups need only the type.
type EntityType string

func (t EntityType) String() string {
	return string(t)
}

// Category separates buildings from research
type Category string

const (
	CategoryBuilding Category = "BUILDING"
	CategoryResearch Category = "RESEARCH"
)

// LevelSpec describes what it takes to reach a level and what the level yields.
// Production and Capacity apply to buildings; Effects apply to research.
type LevelSpec struct {
	Cost            resources.CostVector
	DurationSeconds int
	Production      map[shared.ResourceKind]float64
	Capacity        map[shared.ResourceKind]float64
	Effects         []Effect
}

// EntitySpec is the catalog entry for one building or research type.
// Levels[i] describes level i+1.
type EntitySpec struct {
	Type       EntityType
	Category   Category
	Name       string
	MaxLevel   int
	StartLevel int
	Levels     []LevelSpec
}

// Level returns the spec for reaching the given level (1-based)
func (s EntitySpec) Level(level int) (LevelSpec, bool) {
	if level < 1 || level > len(s.Levels) {
		return LevelSpec{}, false
	}
	return s.Levels[level-1], true
}

// BaseSpec holds village-wide values that do not depend on any building
type BaseSpec struct {
	StartingQuantities map[shared.ResourceKind]float64
	Rates              map[shared.ResourceKind]float64
	Capacities         map[shared.ResourceKind]float64
}

// Catalog is the static lookup of costs, durations and yields. Pure: the
// same inputs always give the same outputs.
type Catalog interface {
	Spec(entityType EntityType) (EntitySpec, bool)
	Buildings() []EntitySpec
	Research() []EntitySpec
	Base() BaseSpec

	CostFor(entityType EntityType, targetLevel int) (resources.CostVector, error)
	DurationFor(entityType EntityType, targetLevel int) (int, error)
	ProductionRateFor(buildingType EntityType, level int) (map[shared.ResourceKind]float64, error)
	CapacityFor(buildingType EntityType, level int) (map[shared.ResourceKind]float64, error)
	EffectsFor(researchType EntityType, level int) ([]Effect, error)
	UnlockedBy(buildingType EntityType) (EntityType, int, bool)
}

// StaticCatalog is an in-memory Catalog built from validated specs
type StaticCatalog struct {
	specs     map[EntityType]EntitySpec
	base      BaseSpec
	unlockers map[EntityType]unlockSource
}

type unlockSource struct {
	research EntityType
	level    int
}

// NewStaticCatalog validates the specs and builds a catalog.
// Any malformed entry yields *shared.InvalidCatalogDataError.
func NewStaticCatalog(base BaseSpec, specs []EntitySpec) (*StaticCatalog, error) {
	c := &StaticCatalog{
		specs:     make(map[EntityType]EntitySpec, len(specs)),
		base:      base,
		unlockers: make(map[EntityType]unlockSource),
	}

	for _, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return nil, err
		}
		if _, dup := c.specs[spec.Type]; dup {
			return nil, shared.NewInvalidCatalogDataError(spec.Type.String(), 0, "duplicate entity type")
		}
		c.specs[spec.Type] = spec
	}

	for _, spec := range c.specs {
		if spec.Category != CategoryResearch {
			continue
		}
		for i, level := range spec.Levels {
			for _, effect := range level.Effects {
				unlock, ok := effect.(Unlock)
				if !ok {
					continue
				}
				target, exists := c.specs[unlock.Target]
				if !exists || target.Category != CategoryBuilding {
					return nil, shared.NewInvalidCatalogDataError(spec.Type.String(), i+1,
						fmt.Sprintf("unlock target %q is not a building", unlock.Target))
				}
				if _, taken := c.unlockers[unlock.Target]; taken {
					return nil, shared.NewInvalidCatalogDataError(spec.Type.String(), i+1,
						fmt.Sprintf("building %q is unlocked by more than one research", unlock.Target))
				}
				c.unlockers[unlock.Target] = unlockSource{research: spec.Type, level: i + 1}
			}
		}
	}

	return c, nil
}

func validateSpec(spec EntitySpec) error {
	name := spec.Type.String()
	if spec.Type == "" {
		return shared.NewInvalidCatalogDataError("<unnamed>", 0, "entity type is required")
	}
	if spec.Category != CategoryBuilding && spec.Category != CategoryResearch {
		return shared.NewInvalidCatalogDataError(name, 0, fmt.Sprintf("unknown category %q", spec.Category))
	}
	if spec.MaxLevel < 1 {
		return shared.NewInvalidCatalogDataError(name, 0, "max level must be at least 1")
	}
	if len(spec.Levels) != spec.MaxLevel {
		return shared.NewInvalidCatalogDataError(name, 0,
			fmt.Sprintf("expected %d level entries, got %d", spec.MaxLevel, len(spec.Levels)))
	}
	if spec.StartLevel < 0 || spec.StartLevel > spec.MaxLevel {
		return shared.NewInvalidCatalogDataError(name, 0, "start level out of range")
	}

	for i, level := range spec.Levels {
		if level.DurationSeconds <= 0 {
			return shared.NewInvalidCatalogDataError(name, i+1, "duration must be positive")
		}
		if int64(level.DurationSeconds) > shared.MaxDurationSeconds {
			return shared.NewInvalidCatalogDataError(name, i+1,
				fmt.Sprintf("duration exceeds %d seconds", shared.MaxDurationSeconds))
		}
		for _, effect := range level.Effects {
			if effect == nil {
				return shared.NewInvalidCatalogDataError(name, i+1, "nil effect")
			}
			if err := effect.Validate(); err != nil {
				return shared.NewInvalidCatalogDataError(name, i+1, err.Error())
			}
		}
		if spec.Category == CategoryResearch && (len(level.Production) > 0 || len(level.Capacity) > 0) {
			return shared.NewInvalidCatalogDataError(name, i+1, "research levels cannot declare production or capacity")
		}
	}
	return nil
}

func (c *StaticCatalog) Spec(entityType EntityType) (EntitySpec, bool) {
	spec, ok := c.specs[entityType]
	return spec, ok
}

// Buildings returns building specs sorted by type
func (c *StaticCatalog) Buildings() []EntitySpec {
	return c.byCategory(CategoryBuilding)
}

// Research returns research specs sorted by type
func (c *StaticCatalog) Research() []EntitySpec {
	return c.byCategory(CategoryResearch)
}

func (c *StaticCatalog) byCategory(category Category) []EntitySpec {
	out := make([]EntitySpec, 0, len(c.specs))
	for _, spec := range c.specs {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func (c *StaticCatalog) Base() BaseSpec {
	return c.base
}

func (c *StaticCatalog) level(entityType EntityType, level int) (EntitySpec, LevelSpec, error) {
	spec, ok := c.specs[entityType]
	if !ok {
		return EntitySpec{}, LevelSpec{}, shared.NewNotFoundError("catalog entry", entityType.String())
	}
	lvl, ok := spec.Level(level)
	if !ok {
		return EntitySpec{}, LevelSpec{}, shared.NewInvalidCatalogDataError(entityType.String(), level, "level not defined")
	}
	return spec, lvl, nil
}

func (c *StaticCatalog) CostFor(entityType EntityType, targetLevel int) (resources.CostVector, error) {
	_, lvl, err := c.level(entityType, targetLevel)
	if err != nil {
		return resources.CostVector{}, err
	}
	return lvl.Cost, nil
}

func (c *StaticCatalog) DurationFor(entityType EntityType, targetLevel int) (int, error) {
	_, lvl, err := c.level(entityType, targetLevel)
	if err != nil {
		return 0, err
	}
	return lvl.DurationSeconds, nil
}

// ProductionRateFor returns the hourly production a building contributes at
// the given level. Level 0 contributes nothing.
func (c *StaticCatalog) ProductionRateFor(buildingType EntityType, level int) (map[shared.ResourceKind]float64, error) {
	if level == 0 {
		return map[shared.ResourceKind]float64{}, nil
	}
	_, lvl, err := c.level(buildingType, level)
	if err != nil {
		return nil, err
	}
	return copyAmounts(lvl.Production), nil
}

// CapacityFor returns the storage a building contributes at the given level
func (c *StaticCatalog) CapacityFor(buildingType EntityType, level int) (map[shared.ResourceKind]float64, error) {
	if level == 0 {
		return map[shared.ResourceKind]float64{}, nil
	}
	_, lvl, err := c.level(buildingType, level)
	if err != nil {
		return nil, err
	}
	return copyAmounts(lvl.Capacity), nil
}

// EffectsFor returns the effects of every research level up to and including level
func (c *StaticCatalog) EffectsFor(researchType EntityType, level int) ([]Effect, error) {
	spec, ok := c.specs[researchType]
	if !ok {
		return nil, shared.NewNotFoundError("catalog entry", researchType.String())
	}
	if level > len(spec.Levels) {
		return nil, shared.NewInvalidCatalogDataError(researchType.String(), level, "level not defined")
	}

	var effects []Effect
	for i := 0; i < level; i++ {
		effects = append(effects, spec.Levels[i].Effects...)
	}
	return effects, nil
}

// UnlockedBy reports which research level unlocks a building, if any
func (c *StaticCatalog) UnlockedBy(buildingType EntityType) (EntityType, int, bool) {
	src, ok := c.unlockers[buildingType]
	return src.research, src.level, ok
}

func copyAmounts(in map[shared.ResourceKind]float64) map[shared.ResourceKind]float64 {
	out := make(map[shared.ResourceKind]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ Catalog = (*StaticCatalog)(nil)
