package resources

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// InsufficientResourcesError reports every resource kind the ledger is short
// of, with the shortfall amount for each.
type InsufficientResourcesError struct {
	*shared.DomainError
	Deficiency map[shared.ResourceKind]float64
}

func NewInsufficientResourcesError(deficiency map[shared.ResourceKind]float64) *InsufficientResourcesError {
	kinds := make([]shared.ResourceKind, 0, len(deficiency))
	for kind := range deficiency {
		kinds = append(kinds, kind)
	}
	sortKinds(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s short by %.2f", kind, deficiency[kind]))
	}

	return &InsufficientResourcesError{
		DomainError: shared.NewDomainError("insufficient resources: " + strings.Join(parts, ", ")),
		Deficiency:  deficiency,
	}
}

// FirstDeficientKind returns the first short kind in canonical order
func (e *InsufficientResourcesError) FirstDeficientKind() shared.ResourceKind {
	for _, kind := range shared.AllResourceKinds() {
		if _, ok := e.Deficiency[kind]; ok {
			return kind
		}
	}
	return ""
}
