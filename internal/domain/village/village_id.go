package village

import (
	"fmt"

	"github.com/google/uuid"
)

// VillageID is a value object representing a village's unique identifier
type VillageID struct {
	value string
}

// NewVillageID creates a new VillageID with a generated UUID
func NewVillageID() VillageID {
	return VillageID{value: uuid.New().String()}
}

// ParseVillageID creates a VillageID from an existing UUID string
func ParseVillageID(id string) (VillageID, error) {
	if id == "" {
		return VillageID{}, fmt.Errorf("village_id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return VillageID{}, fmt.Errorf("invalid village_id format: %w", err)
	}
	return VillageID{value: id}, nil
}

// MustParseVillageID panics on an invalid id; use only for trusted values (e.g., from database)
func MustParseVillageID(id string) VillageID {
	vid, err := ParseVillageID(id)
	if err != nil {
		panic(err)
	}
	return vid
}

func (v VillageID) String() string {
	return v.value
}

func (v VillageID) Equals(other VillageID) bool {
	return v.value == other.value
}

func (v VillageID) IsZero() bool {
	return v.value == ""
}

// newBuildingID generates an identifier for a building slot
func newBuildingID() string {
	return uuid.New().String()
}
