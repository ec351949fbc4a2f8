package common

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

func TestDescribeError(t *testing.T) {
	conflict := shared.NewConflictError("v-1", 3)

	tests := []struct {
		name      string
		err       error
		category  ErrorCategory
		status    int
		retryable bool
	}{
		{"not found", shared.NewNotFoundError("village", "v-1"), CategoryNotFound, http.StatusNotFound, false},
		{"already in progress", shared.NewAlreadyInProgressError(time.Now()), CategoryAlreadyInProgress, http.StatusConflict, false},
		{"another research", village.NewAnotherResearchInProgressError("FORESTRY"), CategoryAnotherResearchInProgress, http.StatusConflict, false},
		{"insufficient", resources.NewInsufficientResourcesError(map[shared.ResourceKind]float64{shared.ResourceWood: 5}), CategoryInsufficientResources, http.StatusUnprocessableEntity, false},
		{"not yet due", shared.NewNotYetDueError(time.Now(), time.Minute), CategoryNotYetDue, http.StatusConflict, false},
		{"conflict", conflict, CategoryConflict, http.StatusConflict, true},
		{"retry exhausted", shared.NewRetryExhaustedError(3, conflict), CategoryConflict, http.StatusServiceUnavailable, true},
		{"catalog", shared.NewInvalidCatalogDataError("HUT", 1, "bad"), CategoryInvalidCatalogData, http.StatusInternalServerError, false},
		{"max level", village.NewMaxLevelReachedError("HUT", 3), CategoryMaxLevelReached, http.StatusUnprocessableEntity, false},
		{"prerequisite", village.NewPrerequisiteNotMetError("BARRACKS", "MILITARY", 1), CategoryPrerequisiteNotMet, http.StatusUnprocessableEntity, false},
		{"invalid transition", shared.NewInvalidTransitionError(shared.TransitionIdle, "cancel"), CategoryInvalidTransition, http.StatusConflict, false},
		{"validation", shared.NewValidationError("name", "required"), CategoryValidation, http.StatusBadRequest, false},
		{"wrapped", fmt.Errorf("loading: %w", shared.NewNotFoundError("player", "9")), CategoryNotFound, http.StatusNotFound, false},
		{"plain", fmt.Errorf("disk on fire"), CategoryInternal, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := DescribeError(tt.err)

			assert.Equal(t, tt.category, desc.Category)
			assert.Equal(t, tt.status, desc.HTTPStatus)
			assert.Equal(t, tt.retryable, desc.Retryable)
			assert.NotEmpty(t, desc.Message)
		})
	}
}

func TestDescribeError_Nil(t *testing.T) {
	assert.Equal(t, ErrorDescription{}, DescribeError(nil))
}
