package dtos

import (
	"math"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// ResourceDTO is one row of a village's resource bar
type ResourceDTO struct {
	Kind        string  `json:"kind"`
	Quantity    float64 `json:"quantity"`
	Capacity    float64 `json:"capacity"`
	RatePerHour float64 `json:"rate_per_hour"`
}

// LedgerDTO is the serialized view of a ledger at LastSettledAt
type LedgerDTO struct {
	Resources     []ResourceDTO `json:"resources"`
	LastSettledAt time.Time     `json:"last_settled_at"`
}

// UpgradableDTO describes a building or research line including its next level
type UpgradableDTO struct {
	ID                  string             `json:"id"`
	Type                string             `json:"type"`
	Level               int                `json:"level"`
	MaxLevel            int                `json:"max_level"`
	State               string             `json:"state"`
	StartedAt           *time.Time         `json:"started_at,omitempty"`
	Deadline            *time.Time         `json:"deadline,omitempty"`
	RemainingSeconds    float64            `json:"remaining_seconds"`
	Progress            float64            `json:"progress"`
	PaidCost            map[string]float64 `json:"paid_cost,omitempty"`
	NextCost            map[string]float64 `json:"next_cost,omitempty"`
	NextDurationSeconds int                `json:"next_duration_seconds,omitempty"`
}

// VillageDTO is the full serialized village as seen at one moment
type VillageDTO struct {
	ID        string          `json:"id"`
	OwnerID   int             `json:"owner_id"`
	Name      string          `json:"name"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Ledger    LedgerDTO       `json:"ledger"`
	Buildings []UpgradableDTO `json:"buildings"`
	Research  []UpgradableDTO `json:"research"`
}

// CompletionDTO reports the outcome of a completion attempt
type CompletionDTO struct {
	EntityID         string     `json:"entity_id"`
	Status           string     `json:"status"`
	Level            int        `json:"level"`
	RemainingSeconds float64    `json:"remaining_seconds"`
	Deadline         *time.Time `json:"deadline,omitempty"`
}

// LedgerToDTO converts a ledger snapshot, listing kinds in canonical order
func LedgerToDTO(snapshot resources.LedgerSnapshot) LedgerDTO {
	dto := LedgerDTO{LastSettledAt: snapshot.LastSettledAt}
	for _, kind := range shared.AllResourceKinds() {
		_, hasQuantity := snapshot.Quantities[kind]
		_, hasCapacity := snapshot.Capacities[kind]
		if !hasQuantity && !hasCapacity {
			continue
		}
		dto.Resources = append(dto.Resources, ResourceDTO{
			Kind:        kind.String(),
			Quantity:    snapshot.Quantities[kind],
			Capacity:    snapshot.Capacities[kind],
			RatePerHour: snapshot.Rates[kind],
		})
	}
	return dto
}

// VillageToDTO converts a refreshed village. `now` drives remaining-time fields.
func VillageToDTO(v *village.Village, cat catalog.Catalog, now time.Time) *VillageDTO {
	dto := &VillageDTO{
		ID:        v.ID().String(),
		OwnerID:   v.OwnerID().Value(),
		Name:      v.Name(),
		Version:   v.Version(),
		CreatedAt: v.CreatedAt(),
		Ledger:    LedgerToDTO(v.Ledger().Snapshot()),
		Buildings: []UpgradableDTO{},
		Research:  []UpgradableDTO{},
	}
	for _, b := range v.Buildings() {
		dto.Buildings = append(dto.Buildings, UpgradableToDTO(b.ID(), &b.Upgradable, cat, now))
	}
	for _, r := range v.Research() {
		dto.Research = append(dto.Research, UpgradableToDTO(r.ID(), &r.Upgradable, cat, now))
	}
	return dto
}

// UpgradableToDTO converts a building or research line
func UpgradableToDTO(id string, u *village.Upgradable, cat catalog.Catalog, now time.Time) UpgradableDTO {
	transition := u.Transition()
	dto := UpgradableDTO{
		ID:               id,
		Type:             u.Type().String(),
		Level:            u.Level(),
		MaxLevel:         u.MaxLevel(),
		State:            string(transition.State()),
		StartedAt:        transition.StartedAt(),
		Deadline:         transition.Deadline(),
		RemainingSeconds: math.Ceil(transition.Remaining(now).Seconds()),
		Progress:         transition.Progress(now),
	}
	if u.IsInProgress() {
		dto.PaidCost = AmountsByName(u.PendingCost().Map())
	}
	if u.Level() < u.MaxLevel() && cat != nil {
		if cost, err := cat.CostFor(u.Type(), u.TargetLevel()); err == nil {
			dto.NextCost = AmountsByName(cost.Map())
		}
		if duration, err := cat.DurationFor(u.Type(), u.TargetLevel()); err == nil {
			dto.NextDurationSeconds = duration
		}
	}
	return dto
}

// CompletionToDTO converts a completion outcome
func CompletionToDTO(outcome village.CompletionOutcome) CompletionDTO {
	return CompletionDTO{
		EntityID:         outcome.EntityID,
		Status:           string(outcome.Status),
		Level:            outcome.Level,
		RemainingSeconds: math.Ceil(outcome.Remaining.Seconds()),
		Deadline:         outcome.Deadline,
	}
}

// AmountsByName converts resource-keyed amounts to string keys for serialization
func AmountsByName(amounts map[shared.ResourceKind]float64) map[string]float64 {
	out := make(map[string]float64, len(amounts))
	for kind, amount := range amounts {
		out[kind.String()] = amount
	}
	return out
}

// ParseAmounts converts string-keyed amounts to a cost vector
func ParseAmounts(amounts map[string]float64) (resources.CostVector, error) {
	parsed := make(map[shared.ResourceKind]float64, len(amounts))
	for name, amount := range amounts {
		kind, err := shared.ParseResourceKind(name)
		if err != nil {
			return resources.CostVector{}, err
		}
		parsed[kind] += amount
	}
	return resources.NewCostVector(parsed)
}
