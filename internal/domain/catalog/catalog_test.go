package catalog_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/test/helpers"
)

func TestStaticCatalog_Lookups(t *testing.T) {
	cat := helpers.NewTestCatalog()

	cost, err := cat.CostFor(helpers.Woodcutter, 2)
	require.NoError(t, err)
	assert.Equal(t, 120.0, cost.Get(shared.ResourceWood))

	duration, err := cat.DurationFor(helpers.Quarry, 1)
	require.NoError(t, err)
	assert.Equal(t, 300, duration)

	production, err := cat.ProductionRateFor(helpers.Quarry, 0)
	require.NoError(t, err)
	assert.Empty(t, production)

	effects, err := cat.EffectsFor(helpers.Forestry, 2)
	require.NoError(t, err)
	assert.Len(t, effects, 2, "effects accumulate over levels")

	research, level, locked := cat.UnlockedBy(helpers.Barracks)
	assert.True(t, locked)
	assert.Equal(t, helpers.Military, research)
	assert.Equal(t, 1, level)

	_, _, locked = cat.UnlockedBy(helpers.Woodcutter)
	assert.False(t, locked)
}

func TestStaticCatalog_UndefinedLevel(t *testing.T) {
	cat := helpers.NewTestCatalog()

	_, err := cat.CostFor(helpers.Woodcutter, 4)

	var invalid *shared.InvalidCatalogDataError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 4, invalid.Level)
}

func TestStaticCatalog_UnknownType(t *testing.T) {
	cat := helpers.NewTestCatalog()

	_, err := cat.DurationFor("CASTLE", 1)

	var notFound *shared.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestStaticCatalog_ListingsAreSorted(t *testing.T) {
	cat := helpers.NewTestCatalog()

	var buildings []catalog.EntityType
	for _, spec := range cat.Buildings() {
		buildings = append(buildings, spec.Type)
	}

	assert.Equal(t, []catalog.EntityType{helpers.Barracks, helpers.Quarry, helpers.Warehouse, helpers.Woodcutter}, buildings)
	assert.Len(t, cat.Research(), 3)
}

func TestNewStaticCatalog_RejectsInvalidData(t *testing.T) {
	level := catalog.LevelSpec{Cost: resources.MustNewCostVector(nil), DurationSeconds: 60}
	building := func(mutate func(*catalog.EntitySpec)) catalog.EntitySpec {
		spec := catalog.EntitySpec{
			Type: "HUT", Category: catalog.CategoryBuilding, MaxLevel: 1,
			Levels: []catalog.LevelSpec{level},
		}
		if mutate != nil {
			mutate(&spec)
		}
		return spec
	}

	tests := []struct {
		name  string
		specs []catalog.EntitySpec
	}{
		{"zero duration", []catalog.EntitySpec{building(func(s *catalog.EntitySpec) {
			s.Levels = []catalog.LevelSpec{{DurationSeconds: 0}}
		})}},
		{"duration overflows", []catalog.EntitySpec{building(func(s *catalog.EntitySpec) {
			s.Levels = []catalog.LevelSpec{{DurationSeconds: math.MaxInt64}}
		})}},
		{"level count mismatch", []catalog.EntitySpec{building(func(s *catalog.EntitySpec) { s.MaxLevel = 2 })}},
		{"start level above max", []catalog.EntitySpec{building(func(s *catalog.EntitySpec) { s.StartLevel = 2 })}},
		{"unknown category", []catalog.EntitySpec{building(func(s *catalog.EntitySpec) { s.Category = "SPELL" })}},
		{"duplicate type", []catalog.EntitySpec{building(nil), building(nil)}},
		{"unlock target missing", []catalog.EntitySpec{{
			Type: "LORE", Category: catalog.CategoryResearch, MaxLevel: 1,
			Levels: []catalog.LevelSpec{{DurationSeconds: 60, Effects: []catalog.Effect{catalog.Unlock{Target: "TOWER"}}}},
		}}},
		{"negative buff", []catalog.EntitySpec{{
			Type: "LORE", Category: catalog.CategoryResearch, MaxLevel: 1,
			Levels: []catalog.LevelSpec{{DurationSeconds: 60, Effects: []catalog.Effect{
				catalog.CapacityBuff{Resource: shared.ResourceWood, Amount: -5},
			}}},
		}}},
		{"research with production", []catalog.EntitySpec{{
			Type: "LORE", Category: catalog.CategoryResearch, MaxLevel: 1,
			Levels: []catalog.LevelSpec{{DurationSeconds: 60, Production: map[shared.ResourceKind]float64{shared.ResourceWood: 1}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.NewStaticCatalog(catalog.BaseSpec{}, tt.specs)

			var invalid *shared.InvalidCatalogDataError
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}
}
