package village

import (
	"fmt"

	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// AnotherResearchInProgressError enforces one running research per village
type AnotherResearchInProgressError struct {
	*shared.DomainError
	Running catalog.EntityType
}

func NewAnotherResearchInProgressError(running catalog.EntityType) *AnotherResearchInProgressError {
	return &AnotherResearchInProgressError{
		DomainError: shared.NewDomainError(fmt.Sprintf("research %s is already in progress in this village", running)),
		Running:     running,
	}
}

type MaxLevelReachedError struct {
	*shared.DomainError
	EntityType catalog.EntityType
	MaxLevel   int
}

func NewMaxLevelReachedError(entityType catalog.EntityType, maxLevel int) *MaxLevelReachedError {
	return &MaxLevelReachedError{
		DomainError: shared.NewDomainError(fmt.Sprintf("%s is already at max level %d", entityType, maxLevel)),
		EntityType:  entityType,
		MaxLevel:    maxLevel,
	}
}

// PrerequisiteNotMetError is returned when a locked building has not been unlocked by research
type PrerequisiteNotMetError struct {
	*shared.DomainError
	EntityType    catalog.EntityType
	Research      catalog.EntityType
	ResearchLevel int
}

func NewPrerequisiteNotMetError(entityType, research catalog.EntityType, level int) *PrerequisiteNotMetError {
	return &PrerequisiteNotMetError{
		DomainError:   shared.NewDomainError(fmt.Sprintf("%s requires research %s level %d", entityType, research, level)),
		EntityType:    entityType,
		Research:      research,
		ResearchLevel: level,
	}
}
