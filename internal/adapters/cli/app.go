package cli

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	catalogAdapter "github.com/andrescamacho/empire-go/internal/adapters/catalog"
	"github.com/andrescamacho/empire-go/internal/adapters/persistence"
	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/setup"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/domain/catalog"
	"github.com/andrescamacho/empire-go/internal/domain/player"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
	"github.com/andrescamacho/empire-go/internal/infrastructure/database"
	"github.com/andrescamacho/empire-go/internal/infrastructure/logging"
)

// app bundles everything a CLI command needs for one invocation
type app struct {
	cfg        *config.Config
	db         *gorm.DB
	catalog    catalog.Catalog
	playerRepo player.PlayerRepository
	mediator   mediator.Mediator
}

// newApp loads configuration, opens the database and wires the mediator.
// The returned close function releases the database connection.
func newApp() (*app, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.NewWriterLogger(os.Stderr, level, "text")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeFn := func() { _ = database.Close(db) }

	cat, err := catalogAdapter.LoadFile(cfg.Game.CatalogPath)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	playerRepo := persistence.NewGormPlayerRepository(db)
	orchestrator := services.NewOrchestrator(
		persistence.NewGormVillageRepository(db),
		cat,
		nil, // no subscribers in a one-shot process
		services.Policy{
			RefundFraction:     cfg.Game.CancelRefundFraction,
			MaxConflictRetries: cfg.Game.MaxConflictRetries,
		},
	)

	registry := setup.NewHandlerRegistry(orchestrator, playerRepo, nil)
	m, err := registry.CreateConfiguredMediator(common.LoggingMiddleware(logger))
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to configure mediator: %w", err)
	}

	return &app{
		cfg:        cfg,
		db:         db,
		catalog:    cat,
		playerRepo: playerRepo,
		mediator:   m,
	}, closeFn, nil
}
