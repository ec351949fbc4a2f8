package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/andrescamacho/empire-go/internal/adapters/events"
	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/infrastructure/config"
)

// Server exposes the village operations over HTTP/JSON and streams
// committed events over websockets
type Server struct {
	mediator mediator.Mediator
	bus      *events.VillageEventBus
	cfg      config.ServerConfig
	logger   common.Logger
	limiter  *clientLimiter
	handler  http.Handler
}

// NewServer builds the route table. bus may be nil, in which case the
// event stream route is not served.
func NewServer(m mediator.Mediator, bus *events.VillageEventBus, cfg config.ServerConfig, logger common.Logger) *Server {
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}
	s := &Server{
		mediator: m,
		bus:      bus,
		cfg:      cfg,
		logger:   logger,
		limiter:  newClientLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Burst),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/players", s.handleRegisterPlayer)
	mux.HandleFunc("GET /api/players", s.handleListPlayers)
	mux.HandleFunc("GET /api/players/{playerID}", s.handleGetPlayer)

	mux.HandleFunc("POST /api/villages", s.handleFoundVillage)
	mux.HandleFunc("GET /api/villages", s.handleListVillages)
	mux.HandleFunc("GET /api/villages/{villageID}", s.handleGetVillage)
	mux.HandleFunc("POST /api/villages/{villageID}/collect", s.handleCollect)
	mux.HandleFunc("POST /api/villages/{villageID}/buildings/{entityRef}/upgrade", s.handleStartUpgrade)
	mux.HandleFunc("POST /api/villages/{villageID}/research/{entityRef}/start", s.handleStartResearch)
	mux.HandleFunc("GET /api/villages/{villageID}/entities/{entityRef}/affordability", s.handleAffordability)
	mux.HandleFunc("POST /api/villages/{villageID}/entities/{entityRef}/cancel", s.handleCancel)
	mux.HandleFunc("POST /api/villages/{villageID}/entities/{entityRef}/complete", s.handleCompleteIfDue)

	if s.bus != nil {
		mux.HandleFunc("GET /api/villages/{villageID}/events", s.handleEventStream)
	}

	if s.cfg.EnableAdmin {
		mux.HandleFunc("POST /admin/villages/{villageID}/grant", s.handleGrant)
		mux.HandleFunc("POST /admin/villages/{villageID}/entities/{entityRef}/force-complete", s.handleForceComplete)
	}

	return s.withRequestMetrics(s.withRateLimit(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "address", s.cfg.Address, "admin", s.cfg.EnableAdmin)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down API server", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}
	return nil
}
