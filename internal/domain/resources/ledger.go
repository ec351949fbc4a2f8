package resources

import (
	"fmt"
	"math"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// Ledger holds the resource quantities, storage capacities and hourly
// production rates of one village.
//
// Invariants:
//   - 0 ≤ quantity ≤ capacity for every kind after settlement
//   - lastSettledAt never moves backwards
//
// Quantities are kept at full float precision; rounding happens only at display time.
type Ledger struct {
	quantities    map[shared.ResourceKind]float64
	capacities    map[shared.ResourceKind]float64
	rates         map[shared.ResourceKind]float64
	lastSettledAt time.Time
}

// NewLedger creates a ledger, clamping the initial quantities into [0, capacity]
func NewLedger(
	quantities map[shared.ResourceKind]float64,
	capacities map[shared.ResourceKind]float64,
	rates map[shared.ResourceKind]float64,
	settledAt time.Time,
) (*Ledger, error) {
	l := &Ledger{
		quantities:    make(map[shared.ResourceKind]float64),
		capacities:    make(map[shared.ResourceKind]float64),
		rates:         make(map[shared.ResourceKind]float64),
		lastSettledAt: settledAt.UTC(),
	}

	for kind, capacity := range capacities {
		if err := checkAmount("capacity", kind, capacity); err != nil {
			return nil, err
		}
		if capacity < 0 {
			return nil, fmt.Errorf("capacity for %s cannot be negative", kind)
		}
		l.capacities[kind] = capacity
	}
	for kind, rate := range rates {
		if err := checkAmount("production rate", kind, rate); err != nil {
			return nil, err
		}
		l.rates[kind] = rate
	}
	for kind, quantity := range quantities {
		if err := checkAmount("quantity", kind, quantity); err != nil {
			return nil, err
		}
		l.quantities[kind] = quantity
	}
	l.clampAll()

	return l, nil
}

func checkAmount(field string, kind shared.ResourceKind, v float64) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid resource kind for %s: %s", field, kind)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s for %s must be finite", field, kind)
	}
	return nil
}

// Getters

// Quantity returns the stored quantity of a kind as of LastSettledAt
func (l *Ledger) Quantity(kind shared.ResourceKind) float64 {
	return l.quantities[kind]
}

func (l *Ledger) Capacity(kind shared.ResourceKind) float64 {
	return l.capacities[kind]
}

// Rate returns the production rate of a kind in units per hour
func (l *Ledger) Rate(kind shared.ResourceKind) float64 {
	return l.rates[kind]
}

func (l *Ledger) LastSettledAt() time.Time {
	return l.lastSettledAt
}

// Settlement

// Settle applies production for the time elapsed since the last settlement
// and clamps every quantity into [0, capacity]. A `now` at or before the last
// settlement is a no-op, so repeated calls are idempotent.
func (l *Ledger) Settle(now time.Time) {
	elapsed := now.Sub(l.lastSettledAt)
	if elapsed <= 0 {
		return
	}

	hours := elapsed.Hours()
	for kind, rate := range l.rates {
		if rate == 0 {
			continue
		}
		l.quantities[kind] = l.clamp(kind, l.quantities[kind]+rate*hours)
	}
	l.lastSettledAt = now.UTC()
}

// Debit subtracts cost from the quantities, all-or-nothing. When any kind is
// short it returns *InsufficientResourcesError listing every deficient kind
// and leaves the ledger untouched. Callers settle first.
func (l *Ledger) Debit(cost CostVector) error {
	if short := Deficiency(l, cost); len(short) > 0 {
		return NewInsufficientResourcesError(short)
	}

	for _, kind := range cost.Kinds() {
		remaining := l.quantities[kind] - cost.Get(kind)
		if remaining < 0 {
			// residue within affordabilityEpsilon
			remaining = 0
		}
		l.quantities[kind] = remaining
	}
	return nil
}

// Credit adds amounts, clamped to capacity. Overflow is discarded and
// returned so callers can report it.
func (l *Ledger) Credit(amounts CostVector) map[shared.ResourceKind]float64 {
	discarded := make(map[shared.ResourceKind]float64)
	for _, kind := range amounts.Kinds() {
		raw := l.quantities[kind] + amounts.Get(kind)
		clamped := l.clamp(kind, raw)
		if raw > clamped {
			discarded[kind] = raw - clamped
		}
		l.quantities[kind] = clamped
	}
	return discarded
}

// Production changes

// SetRates replaces the production rates. Callers settle up to the moment the
// rates change before calling this.
func (l *Ledger) SetRates(rates map[shared.ResourceKind]float64) {
	l.rates = make(map[shared.ResourceKind]float64, len(rates))
	for kind, rate := range rates {
		l.rates[kind] = rate
	}
}

// SetCapacities replaces storage capacities and clamps quantities that no longer fit
func (l *Ledger) SetCapacities(capacities map[shared.ResourceKind]float64) {
	l.capacities = make(map[shared.ResourceKind]float64, len(capacities))
	for kind, capacity := range capacities {
		l.capacities[kind] = math.Max(0, capacity)
	}
	l.clampAll()
}

func (l *Ledger) clamp(kind shared.ResourceKind, v float64) float64 {
	if v < 0 {
		return 0
	}
	if capacity := l.capacities[kind]; v > capacity {
		return capacity
	}
	return v
}

func (l *Ledger) clampAll() {
	for kind, q := range l.quantities {
		l.quantities[kind] = l.clamp(kind, q)
	}
}

// Snapshots

// LedgerSnapshot is a detached copy of a ledger's state for responses and UI prediction
type LedgerSnapshot struct {
	Quantities    map[shared.ResourceKind]float64
	Capacities    map[shared.ResourceKind]float64
	Rates         map[shared.ResourceKind]float64
	LastSettledAt time.Time
}

// Quantity lets a snapshot be used as an affordability Balance
func (s LedgerSnapshot) Quantity(kind shared.ResourceKind) float64 {
	return s.Quantities[kind]
}

// Snapshot returns a detached copy of the ledger
func (l *Ledger) Snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		Quantities:    copyAmounts(l.quantities),
		Capacities:    copyAmounts(l.capacities),
		Rates:         copyAmounts(l.rates),
		LastSettledAt: l.lastSettledAt,
	}
}

// Clone returns an independent ledger with the same state
func (l *Ledger) Clone() *Ledger {
	return &Ledger{
		quantities:    copyAmounts(l.quantities),
		capacities:    copyAmounts(l.capacities),
		rates:         copyAmounts(l.rates),
		lastSettledAt: l.lastSettledAt,
	}
}

func copyAmounts(in map[shared.ResourceKind]float64) map[shared.ResourceKind]float64 {
	out := make(map[shared.ResourceKind]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
