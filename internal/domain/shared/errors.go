package shared

import (
	"fmt"
	"time"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Lookup errors

type NotFoundError struct {
	*DomainError
	EntityType string
	ID         string
}

func NewNotFoundError(entityType, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(fmt.Sprintf("%s not found: %s", entityType, id)),
		EntityType:  entityType,
		ID:          id,
	}
}

// Concurrency errors

// ConflictError is returned by a store when the village was modified between
// load and save. The whole operation must be retried from load.
type ConflictError struct {
	*DomainError
	VillageID       string
	ExpectedVersion int64
}

func NewConflictError(villageID string, expectedVersion int64) *ConflictError {
	return &ConflictError{
		DomainError:     NewDomainError(fmt.Sprintf("village %s was modified concurrently (expected version %d)", villageID, expectedVersion)),
		VillageID:       villageID,
		ExpectedVersion: expectedVersion,
	}
}

// RetryExhaustedError surfaces a conflict that kept recurring after every retry
type RetryExhaustedError struct {
	*DomainError
	Attempts int
	Last     error
}

func NewRetryExhaustedError(attempts int, last error) *RetryExhaustedError {
	return &RetryExhaustedError{
		DomainError: NewDomainError(fmt.Sprintf("operation gave up after %d attempts: %v", attempts, last)),
		Attempts:    attempts,
		Last:        last,
	}
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// Catalog errors

// InvalidCatalogDataError is a fatal configuration error in building or research data
type InvalidCatalogDataError struct {
	*DomainError
	EntityType string
	Level      int
	Reason     string
}

func NewInvalidCatalogDataError(entityType string, level int, reason string) *InvalidCatalogDataError {
	return &InvalidCatalogDataError{
		DomainError: NewDomainError(fmt.Sprintf("invalid catalog data for %s level %d: %s", entityType, level, reason)),
		EntityType:  entityType,
		Level:       level,
		Reason:      reason,
	}
}

// Transition errors

type AlreadyInProgressError struct {
	*DomainError
	Deadline time.Time
}

func NewAlreadyInProgressError(deadline time.Time) *AlreadyInProgressError {
	return &AlreadyInProgressError{
		DomainError: NewDomainError(fmt.Sprintf("transition already in progress until %s", deadline.Format(time.RFC3339))),
		Deadline:    deadline,
	}
}

// NotYetDueError is the normal "still pending" outcome of a completion attempt
type NotYetDueError struct {
	*DomainError
	Deadline  time.Time
	Remaining time.Duration
}

func NewNotYetDueError(deadline time.Time, remaining time.Duration) *NotYetDueError {
	return &NotYetDueError{
		DomainError: NewDomainError(fmt.Sprintf("transition not yet due: %s remaining", remaining)),
		Deadline:    deadline,
		Remaining:   remaining,
	}
}

type InvalidTransitionError struct {
	*DomainError
	From   TransitionState
	Action string
}

func NewInvalidTransitionError(from TransitionState, action string) *InvalidTransitionError {
	return &InvalidTransitionError{
		DomainError: NewDomainError(fmt.Sprintf("cannot %s from %s state", action, from)),
		From:        from,
		Action:      action,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
