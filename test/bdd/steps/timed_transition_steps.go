package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/cucumber/godog"
)

type timedTransitionContext struct {
	transition shared.TimedTransition
	err        error
}

func (tc *timedTransitionContext) reset() {
	tc.transition = shared.NewTimedTransition()
	tc.err = nil
}

// Given steps

func (tc *timedTransitionContext) anIdleTransition() error {
	tc.transition = shared.NewTimedTransition()
	return nil
}

func (tc *timedTransitionContext) aTransitionStartedAt(at, duration int) error {
	tc.transition = shared.NewTimedTransition()
	return tc.transition.Start(secondsAfterEpoch(at), duration)
}

// When steps

func (tc *timedTransitionContext) theTransitionIsStartedAt(at, duration int) error {
	tc.err = tc.transition.Start(secondsAfterEpoch(at), duration)
	return nil
}

func (tc *timedTransitionContext) iTryToCompleteTheTransitionAt(at int) error {
	tc.err = tc.transition.TryComplete(secondsAfterEpoch(at))
	return nil
}

func (tc *timedTransitionContext) iCancelTheTransitionAt(at int) error {
	tc.err = tc.transition.Cancel(secondsAfterEpoch(at))
	return nil
}

func (tc *timedTransitionContext) iForceCompleteTheTransition() error {
	tc.err = tc.transition.ForceComplete()
	return nil
}

func (tc *timedTransitionContext) theTransitionIsReset() error {
	tc.err = tc.transition.Reset()
	return nil
}

// Then steps

func (tc *timedTransitionContext) theTransitionStateShouldBe(expected string) error {
	if got := string(tc.transition.State()); got != expected {
		return fmt.Errorf("expected state %s, got %s", expected, got)
	}
	return nil
}

func (tc *timedTransitionContext) theDeadlineShouldBe(seconds int) error {
	deadline := tc.transition.Deadline()
	if deadline == nil {
		return fmt.Errorf("expected a deadline, got none")
	}
	if want := secondsAfterEpoch(seconds); !deadline.Equal(want) {
		return fmt.Errorf("expected deadline %s, got %s", want, deadline)
	}
	return nil
}

func (tc *timedTransitionContext) theRemainingTimeShouldBe(at, seconds int) error {
	want := time.Duration(seconds) * time.Second
	if got := tc.transition.Remaining(secondsAfterEpoch(at)); got != want {
		return fmt.Errorf("expected %s remaining, got %s", want, got)
	}
	return nil
}

func (tc *timedTransitionContext) theTransitionOperationShouldSucceed() error {
	if tc.err != nil {
		return fmt.Errorf("expected success, got %v", tc.err)
	}
	return nil
}

func (tc *timedTransitionContext) theTransitionOperationShouldFailWith(category string) error {
	return expectCategory(tc.err, category)
}

// InitializeTimedTransitionScenario registers timed transition steps
func InitializeTimedTransitionScenario(ctx *godog.ScenarioContext) {
	tc := &timedTransitionContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an idle transition$`, tc.anIdleTransition)
	ctx.Step(`^a transition started at (\d+) seconds for (\d+) seconds$`, tc.aTransitionStartedAt)

	// When steps
	ctx.Step(`^the transition is started at (\d+) seconds for (-?\d+) seconds$`, tc.theTransitionIsStartedAt)
	ctx.Step(`^I try to complete the transition at (\d+) seconds$`, tc.iTryToCompleteTheTransitionAt)
	ctx.Step(`^I cancel the transition at (\d+) seconds$`, tc.iCancelTheTransitionAt)
	ctx.Step(`^I force complete the transition$`, tc.iForceCompleteTheTransition)
	ctx.Step(`^the transition is reset$`, tc.theTransitionIsReset)

	// Then steps
	ctx.Step(`^the transition state should be "([^"]*)"$`, tc.theTransitionStateShouldBe)
	ctx.Step(`^the deadline should be (\d+) seconds after the start$`, tc.theDeadlineShouldBe)
	ctx.Step(`^the remaining time at (\d+) seconds should be (\d+) seconds$`, tc.theRemainingTimeShouldBe)
	ctx.Step(`^the transition operation should succeed$`, tc.theTransitionOperationShouldSucceed)
	ctx.Step(`^the transition operation should fail with "([^"]*)"$`, tc.theTransitionOperationShouldFailWith)
}
