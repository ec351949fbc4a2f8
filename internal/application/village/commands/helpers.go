package commands

import (
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// resolveNow reads the clock once per operation unless the caller pinned a time
func resolveNow(clock shared.Clock, override *time.Time) time.Time {
	if override != nil {
		return override.UTC()
	}
	return clock.Now().UTC()
}

func parseVillageID(id string) (village.VillageID, error) {
	villageID, err := village.ParseVillageID(id)
	if err != nil {
		return village.VillageID{}, shared.NewValidationError("village_id", err.Error())
	}
	return villageID, nil
}
