package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/empire-go/internal/domain/resources"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/cucumber/godog"
)

type resourceLedgerContext struct {
	quantities map[shared.ResourceKind]float64
	capacities map[shared.ResourceKind]float64
	rates      map[shared.ResourceKind]float64
	ledger     *resources.Ledger
	discarded  map[shared.ResourceKind]float64
	err        error
}

func (rc *resourceLedgerContext) reset() {
	rc.quantities = make(map[shared.ResourceKind]float64)
	rc.capacities = make(map[shared.ResourceKind]float64)
	rc.rates = make(map[shared.ResourceKind]float64)
	rc.ledger = nil
	rc.discarded = nil
	rc.err = nil
}

// Given steps

func (rc *resourceLedgerContext) aLedgerHolding(quantity float64, kindName string, capacity float64, rate float64) error {
	kind, err := shared.ParseResourceKind(kindName)
	if err != nil {
		return err
	}
	rc.quantities[kind] = quantity
	rc.capacities[kind] = capacity
	rc.rates[kind] = rate

	ledger, err := resources.NewLedger(rc.quantities, rc.capacities, rc.rates, epoch)
	if err != nil {
		return fmt.Errorf("failed to build ledger: %w", err)
	}
	rc.ledger = ledger
	return nil
}

// When steps

func (rc *resourceLedgerContext) theLedgerIsSettledAfter(seconds int) error {
	rc.ledger.Settle(secondsAfterEpoch(seconds))
	return nil
}

func (rc *resourceLedgerContext) theLedgerIsSettledEvery(step, until int) error {
	if step <= 0 {
		return fmt.Errorf("step must be positive")
	}
	for elapsed := step; elapsed <= until; elapsed += step {
		rc.ledger.Settle(secondsAfterEpoch(elapsed))
	}
	return nil
}

func (rc *resourceLedgerContext) iDebit(spec string) error {
	cost, err := costFromSpec(spec)
	if err != nil {
		return err
	}
	rc.err = rc.ledger.Debit(cost)
	return nil
}

func (rc *resourceLedgerContext) iCredit(spec string) error {
	amounts, err := costFromSpec(spec)
	if err != nil {
		return err
	}
	rc.discarded = rc.ledger.Credit(amounts)
	return nil
}

// Then steps

func (rc *resourceLedgerContext) theLedgerShouldHold(expected float64, kindName string) error {
	kind, err := shared.ParseResourceKind(kindName)
	if err != nil {
		return err
	}
	if got := rc.ledger.Quantity(kind); !approximately(expected, got) {
		return fmt.Errorf("expected %g %s, got %g", expected, kind, got)
	}
	return nil
}

func (rc *resourceLedgerContext) theLedgerOperationShouldSucceed() error {
	if rc.err != nil {
		return fmt.Errorf("expected success, got %v", rc.err)
	}
	return nil
}

func (rc *resourceLedgerContext) theLedgerOperationShouldFailWith(category string) error {
	return expectCategory(rc.err, category)
}

func (rc *resourceLedgerContext) theShortfallShouldBe(spec string) error {
	var insufficient *resources.InsufficientResourcesError
	if !errors.As(rc.err, &insufficient) {
		return fmt.Errorf("expected insufficient resources error, got %v", rc.err)
	}
	expected, err := parseAmounts(spec)
	if err != nil {
		return err
	}
	if !sameAmounts(expected, insufficient.Deficiency) {
		return fmt.Errorf("expected shortfall %s, got %s", formatAmounts(expected), formatAmounts(insufficient.Deficiency))
	}
	return nil
}

func (rc *resourceLedgerContext) shouldHaveBeenDiscarded(spec string) error {
	expected, err := parseAmounts(spec)
	if err != nil {
		return err
	}
	if !sameAmounts(expected, rc.discarded) {
		return fmt.Errorf("expected %s discarded, got %s", formatAmounts(expected), formatAmounts(rc.discarded))
	}
	return nil
}

func (rc *resourceLedgerContext) theDeficiencyForShouldBe(costSpec, shortfallSpec string) error {
	cost, err := costFromSpec(costSpec)
	if err != nil {
		return err
	}
	expected, err := parseAmounts(shortfallSpec)
	if err != nil {
		return err
	}

	got := resources.Deficiency(rc.ledger, cost)
	if !sameAmounts(expected, got) {
		return fmt.Errorf("expected deficiency %q, got %q", formatAmounts(expected), formatAmounts(got))
	}
	if resources.CanAfford(rc.ledger, cost) != (len(expected) == 0) {
		return fmt.Errorf("CanAfford disagrees with deficiency %q", formatAmounts(got))
	}
	return nil
}

func costFromSpec(spec string) (resources.CostVector, error) {
	amounts, err := parseAmounts(spec)
	if err != nil {
		return resources.CostVector{}, err
	}
	return resources.NewCostVector(amounts)
}

// InitializeResourceLedgerScenario registers resource ledger steps
func InitializeResourceLedgerScenario(ctx *godog.ScenarioContext) {
	rc := &resourceLedgerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		rc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a ledger holding (\d+(?:\.\d+)?) ([A-Z]+) with capacity (\d+(?:\.\d+)?) producing (-?\d+(?:\.\d+)?) per hour$`, rc.aLedgerHolding)

	// When steps
	ctx.Step(`^the ledger is settled (\d+) seconds after the start$`, rc.theLedgerIsSettledAfter)
	ctx.Step(`^the ledger is settled every (\d+) seconds until (\d+) seconds after the start$`, rc.theLedgerIsSettledEvery)
	ctx.Step(`^I debit "([^"]*)"$`, rc.iDebit)
	ctx.Step(`^I credit "([^"]*)"$`, rc.iCredit)

	// Then steps
	ctx.Step(`^the ledger should hold (\d+(?:\.\d+)?) ([A-Z]+)$`, rc.theLedgerShouldHold)
	ctx.Step(`^the ledger operation should succeed$`, rc.theLedgerOperationShouldSucceed)
	ctx.Step(`^the ledger operation should fail with "([^"]*)"$`, rc.theLedgerOperationShouldFailWith)
	ctx.Step(`^the shortfall should be "([^"]*)"$`, rc.theShortfallShouldBe)
	ctx.Step(`^"([^"]*)" should have been discarded$`, rc.shouldHaveBeenDiscarded)
	ctx.Step(`^the deficiency for "([^"]*)" should be "([^"]*)"$`, rc.theDeficiencyForShouldBe)
}
