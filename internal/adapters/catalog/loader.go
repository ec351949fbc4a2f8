package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk YAML shape of a catalog
type catalogFile struct {
	Base      baseFile     `yaml:"base"`
	Buildings []entityFile `yaml:"buildings"`
	Research  []entityFile `yaml:"research"`
}

type baseFile struct {
	Starting   map[string]float64 `yaml:"starting"`
	Rates      map[string]float64 `yaml:"rates"`
	Capacities map[string]float64 `yaml:"capacities"`
}

type entityFile struct {
	Type       string      `yaml:"type"`
	Name       string      `yaml:"name"`
	MaxLevel   int         `yaml:"max_level"`
	StartLevel int         `yaml:"start_level"`
	Levels     []levelFile `yaml:"levels"`
}

type levelFile struct {
	Cost            map[string]float64 `yaml:"cost"`
	DurationSeconds int                `yaml:"duration_seconds"`
	Production      map[string]float64 `yaml:"production"`
	Capacity        map[string]float64 `yaml:"capacity"`
	Effects         []effectFile       `yaml:"effects"`
}

type effectFile struct {
	Kind     string  `yaml:"kind"`
	Resource string  `yaml:"resource"`
	Percent  float64 `yaml:"percent"`
	Amount   float64 `yaml:"amount"`
	Target   string  `yaml:"target"`
}

// LoadDefault returns the catalog compiled into the binary
func LoadDefault() (*catalog.StaticCatalog, error) {
	return Parse(defaultCatalogYAML)
}

// LoadFile reads a YAML catalog from disk. An empty path loads the default catalog.
func LoadFile(path string) (*catalog.StaticCatalog, error) {
	if path == "" {
		return LoadDefault()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Malformed entries yield
// *shared.InvalidCatalogDataError.
func Parse(data []byte) (*catalog.StaticCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	base, err := file.Base.toDomain()
	if err != nil {
		return nil, err
	}

	specs := make([]catalog.EntitySpec, 0, len(file.Buildings)+len(file.Research))
	for _, entity := range file.Buildings {
		spec, err := entity.toDomain(catalog.CategoryBuilding)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	for _, entity := range file.Research {
		spec, err := entity.toDomain(catalog.CategoryResearch)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return catalog.NewStaticCatalog(base, specs)
}

func (b baseFile) toDomain() (catalog.BaseSpec, error) {
	starting, err := parseAmounts("base", 0, b.Starting)
	if err != nil {
		return catalog.BaseSpec{}, err
	}
	rates, err := parseAmounts("base", 0, b.Rates)
	if err != nil {
		return catalog.BaseSpec{}, err
	}
	capacities, err := parseAmounts("base", 0, b.Capacities)
	if err != nil {
		return catalog.BaseSpec{}, err
	}
	return catalog.BaseSpec{
		StartingQuantities: starting,
		Rates:              rates,
		Capacities:         capacities,
	}, nil
}

func (e entityFile) toDomain(category catalog.Category) (catalog.EntitySpec, error) {
	entityType := strings.ToUpper(strings.TrimSpace(e.Type))
	maxLevel := e.MaxLevel
	if maxLevel == 0 {
		maxLevel = len(e.Levels)
	}

	spec := catalog.EntitySpec{
		Type:       catalog.EntityType(entityType),
		Category:   category,
		Name:       e.Name,
		MaxLevel:   maxLevel,
		StartLevel: e.StartLevel,
	}
	if spec.Name == "" {
		spec.Name = entityType
	}

	for i, level := range e.Levels {
		levelNumber := i + 1
		costAmounts, err := parseAmounts(entityType, levelNumber, level.Cost)
		if err != nil {
			return catalog.EntitySpec{}, err
		}
		cost, err := resources.NewCostVector(costAmounts)
		if err != nil {
			return catalog.EntitySpec{}, shared.NewInvalidCatalogDataError(entityType, levelNumber, err.Error())
		}
		production, err := parseAmounts(entityType, levelNumber, level.Production)
		if err != nil {
			return catalog.EntitySpec{}, err
		}
		capacity, err := parseAmounts(entityType, levelNumber, level.Capacity)
		if err != nil {
			return catalog.EntitySpec{}, err
		}

		effects := make([]catalog.Effect, 0, len(level.Effects))
		for _, ef := range level.Effects {
			effect, err := ef.toDomain(entityType, levelNumber)
			if err != nil {
				return catalog.EntitySpec{}, err
			}
			effects = append(effects, effect)
		}

		spec.Levels = append(spec.Levels, catalog.LevelSpec{
			Cost:            cost,
			DurationSeconds: level.DurationSeconds,
			Production:      production,
			Capacity:        capacity,
			Effects:         effects,
		})
	}
	return spec, nil
}

func (f effectFile) toDomain(entityType string, level int) (catalog.Effect, error) {
	switch catalog.EffectKind(strings.ToUpper(f.Kind)) {
	case catalog.EffectProductionBuff:
		kind, err := shared.ParseResourceKind(f.Resource)
		if err != nil {
			return nil, shared.NewInvalidCatalogDataError(entityType, level, err.Error())
		}
		return catalog.ProductionBuff{Resource: kind, Percent: f.Percent}, nil
	case catalog.EffectCapacityBuff:
		kind, err := shared.ParseResourceKind(f.Resource)
		if err != nil {
			return nil, shared.NewInvalidCatalogDataError(entityType, level, err.Error())
		}
		return catalog.CapacityBuff{Resource: kind, Amount: f.Amount}, nil
	case catalog.EffectUnlock:
		return catalog.Unlock{Target: catalog.EntityType(strings.ToUpper(strings.TrimSpace(f.Target)))}, nil
	default:
		return nil, shared.NewInvalidCatalogDataError(entityType, level, fmt.Sprintf("unknown effect kind %q", f.Kind))
	}
}

func parseAmounts(entityType string, level int, raw map[string]float64) (map[shared.ResourceKind]float64, error) {
	out := make(map[shared.ResourceKind]float64, len(raw))
	for name, amount := range raw {
		kind, err := shared.ParseResourceKind(name)
		if err != nil {
			return nil, shared.NewInvalidCatalogDataError(entityType, level, err.Error())
		}
		out[kind] = amount
	}
	return out, nil
}
