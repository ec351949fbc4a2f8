package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	catalogAdapter "github.com/andrescamacho/empire-go/internal/adapters/catalog"
	"github.com/andrescamacho/empire-go/internal/adapters/events"
	"github.com/andrescamacho/empire-go/internal/adapters/httpapi"
	"github.com/andrescamacho/empire-go/internal/adapters/metrics"
	"github.com/andrescamacho/empire-go/internal/adapters/persistence"
	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/application/setup"
	"github.com/andrescamacho/empire-go/internal/application/village/services"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
	"github.com/andrescamacho/empire-go/internal/infrastructure/database"
	"github.com/andrescamacho/empire-go/internal/infrastructure/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search ./config.yaml, ./configs, /etc/empire)")
	flag.Parse()

	fmt.Println("Empire Server v0.1.0")
	fmt.Println("====================")

	cfg := config.MustLoadConfig(*configPath)

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 1. Logging
	logger, closeLog, err := logging.NewLogger(cfg.Logging, "empire")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, logger)

	// 2. Database
	logger.Info("Connecting to database", "type", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	// 3. Catalog
	cat, err := catalogAdapter.LoadFile(cfg.Game.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Catalog loaded", "buildings", len(cat.Buildings()), "research", len(cat.Research()))

	// 4. Metrics (optional)
	middlewares := []mediator.Middleware{common.LoggingMiddleware(logger)}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		villageCollector := metrics.NewVillageMetricsCollector()
		apiCollector := metrics.NewAPIMetricsCollector()
		commandCollector := metrics.NewCommandMetricsCollector()
		for _, register := range []func() error{villageCollector.Register, apiCollector.Register, commandCollector.Register} {
			if err := register(); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
		}
		metrics.SetGlobalVillageCollector(villageCollector)
		metrics.SetGlobalAPICollector(apiCollector)
		middlewares = append(middlewares, metrics.PrometheusMiddleware(commandCollector))
		logger.Info("Metrics enabled", "addr", fmt.Sprintf("%s:%d%s", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path))
	}

	// 5. Orchestrator and mediator
	bus := events.NewVillageEventBus(events.DefaultBufferSize)
	playerRepo := persistence.NewGormPlayerRepository(db)
	orchestrator := services.NewOrchestrator(
		persistence.NewGormVillageRepository(db),
		cat,
		bus,
		services.Policy{
			RefundFraction:     cfg.Game.CancelRefundFraction,
			MaxConflictRetries: cfg.Game.MaxConflictRetries,
		},
	)

	registry := setup.NewHandlerRegistry(orchestrator, playerRepo, nil)
	med, err := registry.CreateConfiguredMediator(middlewares...)
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	// 6. Serve until a signal arrives or a server fails
	server := httpapi.NewServer(med, bus, cfg.Server, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		events.RunEventLog(gctx, bus, logger)
		return nil
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics)
		})
	}

	logger.Info("Server ready", "addr", cfg.Server.Address, "admin", cfg.Server.EnableAdmin)
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
