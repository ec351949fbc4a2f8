package dtos

import (
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// EventDTO is the wire form of a committed village event
type EventDTO struct {
	Type       string             `json:"type"`
	VillageID  string             `json:"village_id"`
	EntityID   string             `json:"entity_id,omitempty"`
	EntityType string             `json:"entity_type,omitempty"`
	Level      int                `json:"level,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
	Deadline   *time.Time         `json:"deadline,omitempty"`
	Amounts    map[string]float64 `json:"amounts,omitempty"`
}

// EventToDTO converts a domain event
func EventToDTO(e village.Event) EventDTO {
	dto := EventDTO{
		Type:       string(e.Type),
		VillageID:  e.VillageID.String(),
		EntityID:   e.EntityID,
		EntityType: e.EntityType,
		Level:      e.Level,
		OccurredAt: e.OccurredAt,
		Deadline:   e.Deadline,
	}
	if len(e.Amounts) > 0 {
		dto.Amounts = AmountsByName(e.Amounts)
	}
	return dto
}
