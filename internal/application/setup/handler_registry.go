package setup

import (
	"reflect"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
	playerCommands "github.com/andrescamacho/empire-go/internal/application/player/commands"
	playerQueries "github.com/andrescamacho/empire-go/internal/application/player/queries"
	villageCommands "github.com/andrescamacho/empire-go/internal/application/village/commands"
	villageQueries "github.com/andrescamacho/empire-go/internal/application/village/queries"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	orchestrator *services.Orchestrator
	playerRepo   player.PlayerRepository
	clock        shared.Clock
}

// NewHandlerRegistry creates a new handler registry with required dependencies.
// playerRepo may be nil, in which case player handlers are not registered.
func NewHandlerRegistry(orchestrator *services.Orchestrator, playerRepo player.PlayerRepository, clock shared.Clock) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		orchestrator: orchestrator,
		playerRepo:   playerRepo,
		clock:        clock,
	}
}

// RegisterVillageCommandHandlers registers the state-changing village handlers
//
// This method registers:
//   - FoundVillageCommand → FoundVillageHandler
//   - StartUpgradeCommand → StartUpgradeHandler
//   - StartResearchCommand → StartResearchHandler
//   - CancelTransitionCommand → CancelTransitionHandler
//   - CompleteIfDueCommand → CompleteIfDueHandler
//   - ForceCompleteCommand → ForceCompleteHandler
//   - CollectResourcesCommand → CollectResourcesHandler
//   - GrantResourcesCommand → GrantResourcesHandler
func (r *HandlerRegistry) RegisterVillageCommandHandlers(m mediator.Mediator) error {
	handlers := []struct {
		request mediator.Request
		handler mediator.RequestHandler
	}{
		{&villageCommands.FoundVillageCommand{}, villageCommands.NewFoundVillageHandler(r.orchestrator, r.playerRepo, r.clock)},
		{&villageCommands.StartUpgradeCommand{}, villageCommands.NewStartUpgradeHandler(r.orchestrator, r.clock)},
		{&villageCommands.StartResearchCommand{}, villageCommands.NewStartResearchHandler(r.orchestrator, r.clock)},
		{&villageCommands.CancelTransitionCommand{}, villageCommands.NewCancelTransitionHandler(r.orchestrator, r.clock)},
		{&villageCommands.CompleteIfDueCommand{}, villageCommands.NewCompleteIfDueHandler(r.orchestrator, r.clock)},
		{&villageCommands.ForceCompleteCommand{}, villageCommands.NewForceCompleteHandler(r.orchestrator, r.clock)},
		{&villageCommands.CollectResourcesCommand{}, villageCommands.NewCollectResourcesHandler(r.orchestrator, r.clock)},
		{&villageCommands.GrantResourcesCommand{}, villageCommands.NewGrantResourcesHandler(r.orchestrator, r.clock)},
	}

	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterVillageQueryHandlers registers the read-side village handlers
//
// Queries still complete due transitions (lazy completion), so a client
// polling for remaining time observes completion without a scheduler.
func (r *HandlerRegistry) RegisterVillageQueryHandlers(m mediator.Mediator) error {
	if err := m.Register(
		reflect.TypeOf(&villageQueries.GetVillageQuery{}),
		villageQueries.NewGetVillageHandler(r.orchestrator, r.clock),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&villageQueries.ListVillagesQuery{}),
		villageQueries.NewListVillagesHandler(r.orchestrator, r.clock),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&villageQueries.CheckAffordabilityQuery{}),
		villageQueries.NewCheckAffordabilityHandler(r.orchestrator, r.clock),
	); err != nil {
		return err
	}

	return nil
}

// RegisterPlayerHandlers registers player registration and lookup handlers
func (r *HandlerRegistry) RegisterPlayerHandlers(m mediator.Mediator) error {
	if r.playerRepo == nil {
		return nil
	}

	if err := m.Register(
		reflect.TypeOf(&playerCommands.RegisterPlayerCommand{}),
		playerCommands.NewRegisterPlayerHandler(r.playerRepo, r.clock),
	); err != nil {
		return err
	}

	if err := m.Register(
		reflect.TypeOf(&playerQueries.GetPlayerQuery{}),
		playerQueries.NewGetPlayerHandler(r.playerRepo),
	); err != nil {
		return err
	}

	return m.Register(
		reflect.TypeOf(&playerQueries.ListPlayersQuery{}),
		playerQueries.NewListPlayersHandler(r.playerRepo),
	)
}

// CreateConfiguredMediator creates a new mediator with all village handlers
// registered. Middlewares run in the order given, the first outermost.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()

	for _, mw := range middlewares {
		if mw != nil {
			m.RegisterMiddleware(mw)
		}
	}

	if err := r.RegisterVillageCommandHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterVillageQueryHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterPlayerHandlers(m); err != nil {
		return nil, err
	}

	return m, nil
}
