package steps

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	playerCommands "github.com/andrescamacho/empire-go/internal/application/player/commands"
	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/setup"
	villageCommands "github.com/andrescamacho/empire-go/internal/application/village/commands"
	"github.com/andrescamacho/empire-go/internal/application/village/dtos"
	villageQueries "github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/domain/village"
	"github.com/andrescamacho/empire-go/test/helpers"
	"github.com/cucumber/godog"
)

type constructionContext struct {
	repos      *helpers.TestRepositories
	publisher  *helpers.RecordingPublisher
	clock      *shared.MockClock
	mediator   mediator.Mediator
	playerID   int
	villageID  string
	response   mediator.Response
	err        error
	concurrent []error
}

func (cc *constructionContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	cc.repos = helpers.NewTestRepositories()
	cc.publisher = helpers.NewRecordingPublisher()
	cc.clock = shared.NewMockClock(epoch)

	orchestrator := services.NewOrchestrator(
		cc.repos.VillageRepo,
		helpers.NewTestCatalog(),
		cc.publisher,
		services.DefaultPolicy(),
	)
	m, err := setup.NewHandlerRegistry(orchestrator, cc.repos.PlayerRepo, cc.clock).CreateConfiguredMediator()
	if err != nil {
		return err
	}

	cc.mediator = m
	cc.playerID = 0
	cc.villageID = ""
	cc.response = nil
	cc.err = nil
	cc.concurrent = nil
	return nil
}

func (cc *constructionContext) send(seconds int, request mediator.Request) {
	cc.clock.SetTime(secondsAfterEpoch(seconds))
	cc.response, cc.err = cc.mediator.Send(context.Background(), request)
}

// Given steps

func (cc *constructionContext) aRegisteredPlayer(username string) error {
	resp, err := cc.mediator.Send(context.Background(), &playerCommands.RegisterPlayerCommand{Username: username})
	if err != nil {
		return fmt.Errorf("failed to register player: %w", err)
	}
	cc.playerID = resp.(*playerCommands.RegisterPlayerResponse).Player.ID.Value()
	return nil
}

func (cc *constructionContext) thePlayerFoundedTheVillage(name string) error {
	cc.send(0, &villageCommands.FoundVillageCommand{PlayerID: cc.playerID, Name: name})
	if cc.err != nil {
		return fmt.Errorf("failed to found village: %w", cc.err)
	}
	cc.villageID = cc.response.(*villageCommands.FoundVillageResponse).Village.ID
	cc.publisher.Reset()
	return nil
}

func (cc *constructionContext) thePlayerUpgraded(buildingType string, seconds int) error {
	if err := cc.thePlayerUpgrades(buildingType, seconds); err != nil {
		return err
	}
	return cc.theCommandShouldSucceed()
}

func (cc *constructionContext) thePlayerStartedResearch(researchType string, seconds int) error {
	if err := cc.thePlayerStartsResearch(researchType, seconds); err != nil {
		return err
	}
	return cc.theCommandShouldSucceed()
}

// When steps

func (cc *constructionContext) thePlayerUpgrades(buildingType string, seconds int) error {
	cc.send(seconds, &villageCommands.StartUpgradeCommand{VillageID: cc.villageID, BuildingID: buildingType})
	return nil
}

func (cc *constructionContext) thePlayerStartsResearch(researchType string, seconds int) error {
	cc.send(seconds, &villageCommands.StartResearchCommand{VillageID: cc.villageID, ResearchID: researchType})
	return nil
}

func (cc *constructionContext) thePlayerCompletes(entity string, seconds int) error {
	cc.send(seconds, &villageCommands.CompleteIfDueCommand{VillageID: cc.villageID, EntityID: entity})
	return nil
}

func (cc *constructionContext) thePlayerCancels(entity string, seconds int) error {
	cc.send(seconds, &villageCommands.CancelTransitionCommand{VillageID: cc.villageID, EntityID: entity})
	return nil
}

func (cc *constructionContext) thePlayerViewsTheVillage(seconds int) error {
	cc.send(seconds, &villageQueries.GetVillageQuery{VillageID: cc.villageID})
	return nil
}

func (cc *constructionContext) thePlayerSendsConcurrentUpgrades(count int, buildingType string, seconds int) error {
	now := secondsAfterEpoch(seconds)
	cc.clock.SetTime(now)

	var mu sync.Mutex
	cc.concurrent = make([]error, 0, count)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := cc.mediator.Send(ctx, &villageCommands.StartUpgradeCommand{
				VillageID:  cc.villageID,
				BuildingID: buildingType,
				Now:        &now,
			})
			mu.Lock()
			cc.concurrent = append(cc.concurrent, err)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Then steps

func (cc *constructionContext) theCommandShouldSucceed() error {
	if cc.err != nil {
		return fmt.Errorf("expected success, got %v", cc.err)
	}
	return nil
}

func (cc *constructionContext) theCommandShouldFailWith(category string) error {
	return expectCategory(cc.err, category)
}

// currentVillage reads the village at the scenario's current time
func (cc *constructionContext) currentVillage() (*dtos.VillageDTO, error) {
	resp, err := cc.mediator.Send(context.Background(), &villageQueries.GetVillageQuery{VillageID: cc.villageID})
	if err != nil {
		return nil, fmt.Errorf("failed to read village: %w", err)
	}
	return resp.(*villageQueries.GetVillageResponse).Village, nil
}

func (cc *constructionContext) theVillageShouldHold(expected float64, kindName string) error {
	kind, err := shared.ParseResourceKind(kindName)
	if err != nil {
		return err
	}
	v, err := cc.currentVillage()
	if err != nil {
		return err
	}
	for _, r := range v.Ledger.Resources {
		if r.Kind == kind.String() {
			if !approximately(expected, r.Quantity) {
				return fmt.Errorf("expected %g %s, got %g", expected, kind, r.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("village has no %s", kind)
}

func findUpgradable(v *dtos.VillageDTO, entityType string) (dtos.UpgradableDTO, error) {
	for _, list := range [][]dtos.UpgradableDTO{v.Buildings, v.Research} {
		for _, u := range list {
			if u.Type == entityType {
				return u, nil
			}
		}
	}
	return dtos.UpgradableDTO{}, fmt.Errorf("village has no %s", entityType)
}

func (cc *constructionContext) shouldBeAtLevel(entityType string, level int) error {
	v, err := cc.currentVillage()
	if err != nil {
		return err
	}
	u, err := findUpgradable(v, entityType)
	if err != nil {
		return err
	}
	if u.Level != level {
		return fmt.Errorf("expected %s at level %d, got %d", entityType, level, u.Level)
	}
	return nil
}

func (cc *constructionContext) shouldBeInProgressWithRemaining(entityType string, seconds int) error {
	v, err := cc.currentVillage()
	if err != nil {
		return err
	}
	u, err := findUpgradable(v, entityType)
	if err != nil {
		return err
	}
	if u.State != string(shared.TransitionInProgress) {
		return fmt.Errorf("expected %s in progress, got %s", entityType, u.State)
	}
	if !approximately(float64(seconds), u.RemainingSeconds) {
		return fmt.Errorf("expected %ds remaining, got %gs", seconds, u.RemainingSeconds)
	}
	return nil
}

func (cc *constructionContext) theCompletionShouldBe(status string, seconds int) error {
	if cc.err != nil {
		return fmt.Errorf("expected a completion outcome, got %v", cc.err)
	}
	completion := cc.response.(*villageCommands.CompletionResponse).Completion
	if completion.Status != status {
		return fmt.Errorf("expected completion %s, got %s", status, completion.Status)
	}
	if !approximately(float64(seconds), completion.RemainingSeconds) {
		return fmt.Errorf("expected %ds remaining, got %gs", seconds, completion.RemainingSeconds)
	}
	return nil
}

func (cc *constructionContext) theRefundShouldBe(spec string) error {
	if cc.err != nil {
		return fmt.Errorf("expected a refund, got %v", cc.err)
	}
	expected, err := parseAmounts(spec)
	if err != nil {
		return err
	}
	got := make(map[shared.ResourceKind]float64)
	for name, amount := range cc.response.(*villageCommands.CancelTransitionResponse).Refund {
		got[shared.ResourceKind(name)] = amount
	}
	if !sameAmounts(expected, got) {
		return fmt.Errorf("expected refund %s, got %s", formatAmounts(expected), formatAmounts(got))
	}
	return nil
}

func (cc *constructionContext) anEventShouldHaveBeenPublished(eventType string) error {
	if len(cc.publisher.OfType(village.EventType(eventType))) == 0 {
		return fmt.Errorf("expected a %s event, got %d events", eventType, len(cc.publisher.Events()))
	}
	return nil
}

func (cc *constructionContext) countEventsShouldHaveBeenPublished(count int, eventType string) error {
	if got := len(cc.publisher.OfType(village.EventType(eventType))); got != count {
		return fmt.Errorf("expected %d %s events, got %d", count, eventType, got)
	}
	return nil
}

func (cc *constructionContext) exactlyOfTheConcurrentCommandsShouldSucceed(expected int) error {
	succeeded := 0
	for _, err := range cc.concurrent {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != expected {
		return fmt.Errorf("expected %d successes, got %d (%v)", expected, succeeded, cc.concurrent)
	}
	return nil
}

func (cc *constructionContext) theOtherConcurrentCommandsShouldFailWith(category string) error {
	for _, err := range cc.concurrent {
		if err == nil {
			continue
		}
		if mismatch := expectCategory(err, category); mismatch != nil {
			return mismatch
		}
	}
	return nil
}

// InitializeConstructionScenario registers orchestrator steps
func InitializeConstructionScenario(ctx *godog.ScenarioContext) {
	cc := &constructionContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, cc.reset()
	})

	// Given steps
	ctx.Step(`^a registered player "([^"]*)"$`, cc.aRegisteredPlayer)
	ctx.Step(`^the player founded the village "([^"]*)"$`, cc.thePlayerFoundedTheVillage)
	ctx.Step(`^the player upgraded "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerUpgraded)
	ctx.Step(`^the player started research "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerStartedResearch)

	// When steps
	ctx.Step(`^the player upgrades "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerUpgrades)
	ctx.Step(`^the player starts research "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerStartsResearch)
	ctx.Step(`^the player completes "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerCompletes)
	ctx.Step(`^the player cancels "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerCancels)
	ctx.Step(`^the player views the village (\d+) seconds after founding$`, cc.thePlayerViewsTheVillage)
	ctx.Step(`^the player sends (\d+) concurrent upgrades of "([^"]*)" (\d+) seconds after founding$`, cc.thePlayerSendsConcurrentUpgrades)

	// Then steps
	ctx.Step(`^the command should succeed$`, cc.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, cc.theCommandShouldFailWith)
	ctx.Step(`^the village should hold (\d+(?:\.\d+)?) ([A-Z]+)$`, cc.theVillageShouldHold)
	ctx.Step(`^"([^"]*)" should be at level (\d+)$`, cc.shouldBeAtLevel)
	ctx.Step(`^"([^"]*)" should be in progress with (\d+) seconds remaining$`, cc.shouldBeInProgressWithRemaining)
	ctx.Step(`^the completion should be "([^"]*)" with (\d+) seconds remaining$`, cc.theCompletionShouldBe)
	ctx.Step(`^the refund should be "([^"]*)"$`, cc.theRefundShouldBe)
	ctx.Step(`^an? "([^"]*)" event should have been published$`, cc.anEventShouldHaveBeenPublished)
	ctx.Step(`^(\d+) "([^"]*)" events? should have been published$`, cc.countEventsShouldHaveBeenPublished)
	ctx.Step(`^exactly (\d+) of the concurrent commands should succeed$`, cc.exactlyOfTheConcurrentCommandsShouldSucceed)
	ctx.Step(`^the other concurrent commands should fail with "([^"]*)"$`, cc.theOtherConcurrentCommandsShouldFailWith)
}
