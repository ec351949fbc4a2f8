package common

import (
	"errors"
	"net/http"

	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// ErrorCategory classifies failures so each one can be shown with its own message
type ErrorCategory string

const (
	CategoryNotFound                  ErrorCategory = "NOT_FOUND"
	CategoryAlreadyInProgress         ErrorCategory = "ALREADY_IN_PROGRESS"
	CategoryAnotherResearchInProgress ErrorCategory = "ANOTHER_RESEARCH_IN_PROGRESS"
	CategoryInsufficientResources     ErrorCategory = "INSUFFICIENT_RESOURCES"
	CategoryNotYetDue                 ErrorCategory = "NOT_YET_DUE"
	CategoryConflict                  ErrorCategory = "CONFLICT"
	CategoryInvalidCatalogData        ErrorCategory = "INVALID_CATALOG_DATA"
	CategoryMaxLevelReached           ErrorCategory = "MAX_LEVEL_REACHED"
	CategoryPrerequisiteNotMet        ErrorCategory = "PREREQUISITE_NOT_MET"
	CategoryInvalidTransition         ErrorCategory = "INVALID_TRANSITION"
	CategoryValidation                ErrorCategory = "VALIDATION"
	CategoryInternal                  ErrorCategory = "INTERNAL"
)

// ErrorDescription is the caller-facing view of an error
type ErrorDescription struct {
	Category   ErrorCategory
	Message    string
	HTTPStatus int
	Retryable  bool
}

// DescribeError maps an error from any layer to its category.
// Wrapped errors are unwrapped with errors.As.
func DescribeError(err error) ErrorDescription {
	var (
		notFound      *shared.NotFoundError
		inProgress    *shared.AlreadyInProgressError
		research      *village.AnotherResearchInProgressError
		insufficient  *resources.InsufficientResourcesError
		notDue        *shared.NotYetDueError
		exhausted     *shared.RetryExhaustedError
		conflict      *shared.ConflictError
		catalogData   *shared.InvalidCatalogDataError
		maxLevel      *village.MaxLevelReachedError
		prerequisite  *village.PrerequisiteNotMetError
		invalidTrans  *shared.InvalidTransitionError
		validationErr *shared.ValidationError
	)

	switch {
	case err == nil:
		return ErrorDescription{}
	case errors.As(err, &notFound):
		return ErrorDescription{CategoryNotFound, notFound.Error(), http.StatusNotFound, false}
	case errors.As(err, &inProgress):
		return ErrorDescription{CategoryAlreadyInProgress, inProgress.Error(), http.StatusConflict, false}
	case errors.As(err, &research):
		return ErrorDescription{CategoryAnotherResearchInProgress, research.Error(), http.StatusConflict, false}
	case errors.As(err, &insufficient):
		return ErrorDescription{CategoryInsufficientResources, insufficient.Error(), http.StatusUnprocessableEntity, false}
	case errors.As(err, &notDue):
		return ErrorDescription{CategoryNotYetDue, notDue.Error(), http.StatusConflict, false}
	case errors.As(err, &exhausted):
		return ErrorDescription{CategoryConflict, exhausted.Error(), http.StatusServiceUnavailable, true}
	case errors.As(err, &conflict):
		return ErrorDescription{CategoryConflict, conflict.Error(), http.StatusConflict, true}
	case errors.As(err, &catalogData):
		return ErrorDescription{CategoryInvalidCatalogData, catalogData.Error(), http.StatusInternalServerError, false}
	case errors.As(err, &maxLevel):
		return ErrorDescription{CategoryMaxLevelReached, maxLevel.Error(), http.StatusUnprocessableEntity, false}
	case errors.As(err, &prerequisite):
		return ErrorDescription{CategoryPrerequisiteNotMet, prerequisite.Error(), http.StatusUnprocessableEntity, false}
	case errors.As(err, &invalidTrans):
		return ErrorDescription{CategoryInvalidTransition, invalidTrans.Error(), http.StatusConflict, false}
	case errors.As(err, &validationErr):
		return ErrorDescription{CategoryValidation, validationErr.Error(), http.StatusBadRequest, false}
	default:
		return ErrorDescription{CategoryInternal, err.Error(), http.StatusInternalServerError, false}
	}
}
