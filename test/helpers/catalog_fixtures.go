package helpers

import (
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// Entity types of the test catalog
const (
	Woodcutter = catalog.EntityType("WOODCUTTER")
	Quarry     = catalog.EntityType("QUARRY")
	Warehouse  = catalog.EntityType("WAREHOUSE")
	Barracks   = catalog.EntityType("BARRACKS")
	Forestry   = catalog.EntityType("FORESTRY")
	Military   = catalog.EntityType("MILITARY")
	Storage    = catalog.EntityType("STORAGE")
)

// FixtureEpoch is a fixed instant tests found villages at
var FixtureEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func amounts(wood, stone float64) map[shared.ResourceKind]float64 {
	out := map[shared.ResourceKind]float64{}
	if wood != 0 {
		out[shared.ResourceWood] = wood
	}
	if stone != 0 {
		out[shared.ResourceStone] = stone
	}
	return out
}

func cost(wood, stone float64) resources.CostVector {
	return resources.MustNewCostVector(amounts(wood, stone))
}

// NewTestCatalog returns a small, fully deterministic catalog:
//
//   - a founded village holds 100 WOOD and 100 STONE with 1000 storage each
//   - WOODCUTTER starts at level 1 producing 60 WOOD/h; level 2 costs 120 WOOD
//     and takes 600s (90 WOOD/h), level 3 costs 200 WOOD and takes 1200s
//   - QUARRY starts at level 0; level 1 costs 50 STONE and 300s (30 STONE/h)
//   - WAREHOUSE level 1 adds 500 WOOD and 500 STONE storage
//   - BARRACKS (single level) is locked until MILITARY level 1
//   - FORESTRY gives +50% WOOD per level; STORAGE adds 500 WOOD storage
func NewTestCatalog() *catalog.StaticCatalog {
	base := catalog.BaseSpec{
		StartingQuantities: amounts(100, 100),
		Rates:              map[shared.ResourceKind]float64{},
		Capacities:         amounts(1000, 1000),
	}

	specs := []catalog.EntitySpec{
		{
			Type: Woodcutter, Category: catalog.CategoryBuilding, Name: "Woodcutter",
			MaxLevel: 3, StartLevel: 1,
			Levels: []catalog.LevelSpec{
				{Cost: cost(50, 0), DurationSeconds: 300, Production: amounts(60, 0)},
				{Cost: cost(120, 0), DurationSeconds: 600, Production: amounts(90, 0)},
				{Cost: cost(200, 0), DurationSeconds: 1200, Production: amounts(130, 0)},
			},
		},
		{
			Type: Quarry, Category: catalog.CategoryBuilding, Name: "Quarry",
			MaxLevel: 2, StartLevel: 0,
			Levels: []catalog.LevelSpec{
				{Cost: cost(0, 50), DurationSeconds: 300, Production: amounts(0, 30)},
				{Cost: cost(0, 100), DurationSeconds: 600, Production: amounts(0, 60)},
			},
		},
		{
			Type: Warehouse, Category: catalog.CategoryBuilding, Name: "Warehouse",
			MaxLevel: 1, StartLevel: 0,
			Levels: []catalog.LevelSpec{
				{Cost: cost(50, 50), DurationSeconds: 300, Capacity: amounts(500, 500)},
			},
		},
		{
			Type: Barracks, Category: catalog.CategoryBuilding, Name: "Barracks",
			MaxLevel: 1, StartLevel: 0,
			Levels: []catalog.LevelSpec{
				{Cost: cost(80, 0), DurationSeconds: 900},
			},
		},
		{
			Type: Forestry, Category: catalog.CategoryResearch, Name: "Forestry",
			MaxLevel: 2,
			Levels: []catalog.LevelSpec{
				{Cost: cost(40, 0), DurationSeconds: 600, Effects: []catalog.Effect{
					catalog.ProductionBuff{Resource: shared.ResourceWood, Percent: 50},
				}},
				{Cost: cost(80, 0), DurationSeconds: 1200, Effects: []catalog.Effect{
					catalog.ProductionBuff{Resource: shared.ResourceWood, Percent: 50},
				}},
			},
		},
		{
			Type: Military, Category: catalog.CategoryResearch, Name: "Military",
			MaxLevel: 1,
			Levels: []catalog.LevelSpec{
				{Cost: cost(50, 0), DurationSeconds: 1200, Effects: []catalog.Effect{
					catalog.Unlock{Target: Barracks},
				}},
			},
		},
		{
			Type: Storage, Category: catalog.CategoryResearch, Name: "Storage",
			MaxLevel: 1,
			Levels: []catalog.LevelSpec{
				{Cost: cost(0, 30), DurationSeconds: 600, Effects: []catalog.Effect{
					catalog.CapacityBuff{Resource: shared.ResourceWood, Amount: 500},
				}},
			},
		},
	}

	cat, err := catalog.NewStaticCatalog(base, specs)
	if err != nil {
		panic(err)
	}
	return cat
}
