package village

import (
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// EventType names a domain fact produced by a village operation
type EventType string

const (
	EventVillageFounded     EventType = "VILLAGE_FOUNDED"
	EventUpgradeStarted     EventType = "UPGRADE_STARTED"
	EventUpgradeCancelled   EventType = "UPGRADE_CANCELLED"
	EventUpgradeCompleted   EventType = "UPGRADE_COMPLETED"
	EventResearchStarted    EventType = "RESEARCH_STARTED"
	EventResearchCancelled  EventType = "RESEARCH_CANCELLED"
	EventResearchCompleted  EventType = "RESEARCH_COMPLETED"
	EventResourcesGranted   EventType = "RESOURCES_GRANTED"
	EventResourcesCollected EventType = "RESOURCES_COLLECTED"
)

// Event is an immutable fact. The village only records events; delivery is
// the job of an EventPublisher after the change has been persisted.
type Event struct {
	Type       EventType
	VillageID  VillageID
	EntityID   string
	EntityType string
	Level      int
	OccurredAt time.Time
	Deadline   *time.Time
	Amounts    map[shared.ResourceKind]float64
}
