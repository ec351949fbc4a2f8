package resources

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// CostVector is an immutable mapping from resource kind to a non-negative
// amount. It prices upgrades and research, and also carries refunds and grants.
type CostVector struct {
	amounts map[shared.ResourceKind]float64
}

// NewCostVector validates and copies the given amounts. Zero entries are dropped.
func NewCostVector(amounts map[shared.ResourceKind]float64) (CostVector, error) {
	copied := make(map[shared.ResourceKind]float64, len(amounts))
	for kind, amount := range amounts {
		if !kind.IsValid() {
			return CostVector{}, fmt.Errorf("invalid resource kind in cost: %s", kind)
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			return CostVector{}, fmt.Errorf("cost for %s must be a non-negative number, got %v", kind, amount)
		}
		if amount == 0 {
			continue
		}
		copied[kind] = amount
	}
	return CostVector{amounts: copied}, nil
}

// MustNewCostVector panics on invalid input; for literals in tests and fixtures
func MustNewCostVector(amounts map[shared.ResourceKind]float64) CostVector {
	c, err := NewCostVector(amounts)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the amount for a kind (0 when absent)
func (c CostVector) Get(kind shared.ResourceKind) float64 {
	return c.amounts[kind]
}

// Kinds returns the priced kinds in canonical order
func (c CostVector) Kinds() []shared.ResourceKind {
	kinds := make([]shared.ResourceKind, 0, len(c.amounts))
	for kind := range c.amounts {
		kinds = append(kinds, kind)
	}
	sortKinds(kinds)
	return kinds
}

func (c CostVector) IsZero() bool {
	return len(c.amounts) == 0
}

// Scale returns a new vector with every amount multiplied by factor (factor ≥ 0)
func (c CostVector) Scale(factor float64) CostVector {
	if factor <= 0 {
		return CostVector{}
	}
	scaled := make(map[shared.ResourceKind]float64, len(c.amounts))
	for kind, amount := range c.amounts {
		scaled[kind] = amount * factor
	}
	return CostVector{amounts: scaled}
}

// Map returns a copy of the amounts
func (c CostVector) Map() map[shared.ResourceKind]float64 {
	out := make(map[shared.ResourceKind]float64, len(c.amounts))
	for kind, amount := range c.amounts {
		out[kind] = amount
	}
	return out
}

func (c CostVector) String() string {
	parts := make([]string, 0, len(c.amounts))
	for _, kind := range c.Kinds() {
		parts = append(parts, fmt.Sprintf("%s: %.2f", kind, c.amounts[kind]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// sortKinds orders kinds by their position in AllResourceKinds
func sortKinds(kinds []shared.ResourceKind) {
	order := make(map[shared.ResourceKind]int)
	for i, kind := range shared.AllResourceKinds() {
		order[kind] = i
	}
	sort.Slice(kinds, func(i, j int) bool {
		return order[kinds[i]] < order[kinds[j]]
	})
}
