package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	"github.com/andrescamacho/empire-go/test/helpers"
)

func TestFormatTree_Prefixes(t *testing.T) {
	// Arrange
	root := &TreeNode{
		Label: "root",
		Children: []*TreeNode{
			{Label: "a", Children: []*TreeNode{{Label: "a1"}}},
			{Label: "b", Status: StatusActive, Detail: "busy"},
		},
	}

	// Act
	out := NewTreeFormatter(false, false).FormatTree(root)

	// Assert
	assert.Equal(t, "root\n├── a\n│   └── a1\n└── [~] b busy\n", out)
}

func TestFormatTree_Nil(t *testing.T) {
	assert.Equal(t, "(empty tree)", NewTreeFormatter(false, false).FormatTree(nil))
}

func TestVillageTree(t *testing.T) {
	// Arrange
	v := &dtos.VillageDTO{
		ID:   "v-1",
		Name: "Riverside",
		Ledger: dtos.LedgerDTO{Resources: []dtos.ResourceDTO{
			{Kind: "WOOD", Quantity: 130, Capacity: 1000, RatePerHour: 60},
		}},
		Buildings: []dtos.UpgradableDTO{
			{Type: "WOODCUTTER", Level: 1, MaxLevel: 3, State: "IN_PROGRESS", RemainingSeconds: 300, Progress: 0.5},
			{Type: "QUARRY", Level: 0, MaxLevel: 2, State: "IDLE", NextCost: map[string]float64{"STONE": 50}, NextDurationSeconds: 300},
		},
	}

	// Act
	out := NewTreeFormatter(false, false).FormatTree(VillageTree(v))

	// Assert
	assert.Contains(t, out, "WOOD 130 / 1000 (+60/h)")
	assert.Contains(t, out, "[~] WOODCUTTER lvl 1/3 → lvl 2, 5m00s left (50%)")
	assert.Contains(t, out, "[ ] QUARRY lvl 0/2 next: STONE=50, 5m00s")
	assert.True(t, strings.HasSuffix(out, "└── Research\n"))
}

func TestCatalogTree_ShowsLocksAndEffects(t *testing.T) {
	// Arrange
	cat := helpers.NewTestCatalog()

	// Act
	out := NewTreeFormatter(false, false).FormatTree(CatalogTree(cat))

	// Assert
	require.NotEmpty(t, out)
	assert.Contains(t, out, "[x] BARRACKS")
	assert.Contains(t, out, "requires MILITARY lvl 1")
	assert.Contains(t, out, "unlocks BARRACKS")
	assert.Contains(t, out, "WOOD production +50%")
	assert.Contains(t, out, "WOOD capacity +500")
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "-"},
		{0.2, "1s"},
		{59, "59s"},
		{600, "10m00s"},
		{3725, "1h02m05s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatSeconds(tt.seconds))
	}
}

func TestFormatAmounts_StableOrder(t *testing.T) {
	assert.Equal(t, "STONE=40 WOOD=120.5", formatAmounts(map[string]float64{"WOOD": 120.5, "STONE": 40}))
	assert.Equal(t, "-", formatAmounts(nil))
}
