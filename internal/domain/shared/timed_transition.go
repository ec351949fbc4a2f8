package shared

import (
	"fmt"
	"math"
	"time"
)

// MaxDurationSeconds is the longest transition a time.Duration can hold
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

// TransitionState represents where an upgrade or research action is in its lifecycle
type TransitionState string

const (
	// TransitionIdle indicates nothing is being built or researched
	TransitionIdle TransitionState = "IDLE"

	// TransitionInProgress indicates the action is running until its deadline
	TransitionInProgress TransitionState = "IN_PROGRESS"

	// TransitionCompleted is momentary: the owner folds it back to IDLE with level+1
	TransitionCompleted TransitionState = "COMPLETED"
)

// IsValid checks if the state is one of the known transition states
func (s TransitionState) IsValid() bool {
	switch s {
	case TransitionIdle, TransitionInProgress, TransitionCompleted:
		return true
	default:
		return false
	}
}

// TimedTransition manages the IDLE → IN_PROGRESS → COMPLETED lifecycle of a
// single upgrade or research action with a deadline.
//
// Invariants:
//   - IN_PROGRESS ⇒ startedAt and deadline are set, deadline = startedAt + duration
//   - IDLE ⇒ startedAt and deadline are nil
//   - COMPLETED is reachable only from IN_PROGRESS
//
// The machine never reads a clock; callers pass the operation's single `now`.
type TimedTransition struct {
	state     TransitionState
	startedAt *time.Time
	deadline  *time.Time
	duration  time.Duration
}

// NewTimedTransition creates a transition in IDLE state
func NewTimedTransition() TimedTransition {
	return TimedTransition{state: TransitionIdle}
}

// RecoverTimedTransition rebuilds a transition from persisted fields and
// checks the state invariants. COMPLETED is transient (completion resets to
// IDLE before saving), so a stored COMPLETED row is corrupt and rejected.
func RecoverTimedTransition(state TransitionState, startedAt, deadline *time.Time) (TimedTransition, error) {
	if !state.IsValid() {
		return TimedTransition{}, fmt.Errorf("invalid transition state: %s", state)
	}

	switch state {
	case TransitionIdle:
		return NewTimedTransition(), nil
	case TransitionCompleted:
		return TimedTransition{}, fmt.Errorf("transition cannot be stored as %s", state)
	case TransitionInProgress:
		if startedAt == nil || deadline == nil {
			return TimedTransition{}, fmt.Errorf("%s transition requires started_at and deadline", state)
		}
		if deadline.Before(*startedAt) {
			return TimedTransition{}, fmt.Errorf("transition deadline %s precedes start %s", deadline, startedAt)
		}
	}

	start := startedAt.UTC()
	end := deadline.UTC()
	return TimedTransition{
		state:     state,
		startedAt: &start,
		deadline:  &end,
		duration:  end.Sub(start),
	}, nil
}

// Getters

func (t TimedTransition) State() TransitionState {
	if t.state == "" {
		return TransitionIdle
	}
	return t.state
}

// StartedAt returns when the transition started (nil when IDLE)
func (t TimedTransition) StartedAt() *time.Time {
	if t.startedAt == nil {
		return nil
	}
	v := *t.startedAt
	return &v
}

// Deadline returns when the transition becomes eligible to complete (nil when IDLE)
func (t TimedTransition) Deadline() *time.Time {
	if t.deadline == nil {
		return nil
	}
	v := *t.deadline
	return &v
}

func (t TimedTransition) Duration() time.Duration {
	return t.duration
}

func (t TimedTransition) IsIdle() bool {
	return t.State() == TransitionIdle
}

func (t TimedTransition) IsInProgress() bool {
	return t.state == TransitionInProgress
}

// IsDue reports whether an in-progress transition has reached its deadline
func (t TimedTransition) IsDue(now time.Time) bool {
	return t.IsInProgress() && !now.Before(*t.deadline)
}

// Remaining returns the time left until the deadline, or 0 when due or not running
func (t TimedTransition) Remaining(now time.Time) time.Duration {
	if !t.IsInProgress() {
		return 0
	}
	if remaining := t.deadline.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// Progress returns the completed fraction of the transition in [0, 1]
func (t TimedTransition) Progress(now time.Time) float64 {
	switch t.State() {
	case TransitionCompleted:
		return 1
	case TransitionIdle:
		return 0
	}
	if t.duration <= 0 {
		return 1
	}
	elapsed := now.Sub(*t.startedAt)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= t.duration {
		return 1
	}
	return float64(elapsed) / float64(t.duration)
}

// State transition methods

// Start moves IDLE → IN_PROGRESS with deadline = now + durationSeconds
func (t *TimedTransition) Start(now time.Time, durationSeconds int) error {
	if !t.IsIdle() {
		if t.deadline != nil {
			return NewAlreadyInProgressError(*t.deadline)
		}
		return NewInvalidTransitionError(t.State(), "start")
	}
	if durationSeconds <= 0 {
		return NewValidationError("duration_seconds", "must be positive")
	}
	if int64(durationSeconds) > MaxDurationSeconds {
		return NewValidationError("duration_seconds", fmt.Sprintf("must not exceed %d", MaxDurationSeconds))
	}

	start := now.UTC()
	duration := time.Duration(durationSeconds) * time.Second
	deadline := start.Add(duration)
	t.state = TransitionInProgress
	t.startedAt = &start
	t.deadline = &deadline
	t.duration = duration
	return nil
}

// TryComplete moves IN_PROGRESS → COMPLETED when now ≥ deadline.
// Returns *NotYetDueError carrying the remaining time otherwise.
func (t *TimedTransition) TryComplete(now time.Time) error {
	if !t.IsInProgress() {
		return NewInvalidTransitionError(t.State(), "complete")
	}
	if now.Before(*t.deadline) {
		return NewNotYetDueError(*t.deadline, t.deadline.Sub(now))
	}

	t.state = TransitionCompleted
	return nil
}

// ForceComplete moves IN_PROGRESS → COMPLETED ignoring the deadline
func (t *TimedTransition) ForceComplete() error {
	if !t.IsInProgress() {
		return NewInvalidTransitionError(t.State(), "force-complete")
	}

	t.state = TransitionCompleted
	return nil
}

// Cancel moves IN_PROGRESS → IDLE. A transition whose deadline has passed
// is already finished and can no longer be cancelled.
func (t *TimedTransition) Cancel(now time.Time) error {
	if !t.IsInProgress() {
		return NewInvalidTransitionError(t.State(), "cancel")
	}
	if t.IsDue(now) {
		return NewInvalidTransitionError(t.State(), "cancel a due transition")
	}

	t.reset()
	return nil
}

// Reset folds a COMPLETED transition back to IDLE for the next level
func (t *TimedTransition) Reset() error {
	if t.State() != TransitionCompleted {
		return NewInvalidTransitionError(t.State(), "reset")
	}

	t.reset()
	return nil
}

func (t *TimedTransition) reset() {
	t.state = TransitionIdle
	t.startedAt = nil
	t.deadline = nil
	t.duration = 0
}
