package resources

import "github.com/andrescamacho/empire-go/internal/domain/shared"

// affordabilityEpsilon absorbs floating-point residue from repeated settlement
const affordabilityEpsilon = 1e-9

// Balance is anything that can report a current quantity per resource kind.
// Both *Ledger and LedgerSnapshot satisfy it.
type Balance interface {
	Quantity(kind shared.ResourceKind) float64
}

// CanAfford reports whether the balance meets or exceeds every entry of cost
func CanAfford(balance Balance, cost CostVector) bool {
	return len(Deficiency(balance, cost)) == 0
}

// Deficiency returns the shortfall per resource kind; an empty map means affordable.
// It never mutates the balance.
func Deficiency(balance Balance, cost CostVector) map[shared.ResourceKind]float64 {
	short := make(map[shared.ResourceKind]float64)
	for _, kind := range cost.Kinds() {
		missing := cost.Get(kind) - balance.Quantity(kind)
		if missing > affordabilityEpsilon {
			short[kind] = missing
		}
	}
	return short
}
