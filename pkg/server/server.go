package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"kiira-hq/triton/pkg/chat"
	"kiira-hq/triton/pkg/config"
	"kiira-hq/triton/pkg/conversation"
	"kiira-hq/triton/pkg/proxy/handlers"
	"kiira-hq/triton/pkg/proxy/middleware"
	"kiira-hq/triton/pkg/telemetry/metrics"
)

// Server is the adapter's HTTP server with its supporting components.
type Server struct {
	cfg          *config.Config
	store        conversation.Store
	orchestrator *chat.Orchestrator
	collector    *metrics.Collector
	sweeper      *conversation.Sweeper
	httpServer   *http.Server
	logger       *slog.Logger
	version      string

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.Mutex
	isRunning    bool
}

// New assembles a server from configuration: the session store for the
// configured backend, the orchestrator, metrics, and the expiry sweeper.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := newStore(cfg.Conversation)
	if err != nil {
		return nil, err
	}

	orchestrator := chat.NewOrchestrator(cfg, store, logger)

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
		collector.RegisterSessionGauge(func() float64 {
			stats, err := store.Stats()
			if err != nil {
				return 0
			}
			return float64(stats.ActiveSessions)
		})
		orchestrator.SetMetrics(collector)
	}

	return &Server{
		cfg:          cfg,
		store:        store,
		orchestrator: orchestrator,
		collector:    collector,
		sweeper:      conversation.NewSweeper(store, cfg.Conversation.SweepSchedule),
		logger:       logger.With("component", "server"),
		version:      version,
		shutdownChan: make(chan struct{}),
	}, nil
}

func newStore(cfg config.ConversationConfig) (conversation.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := conversation.NewSQLiteStore(cfg.SQLitePath, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return store, nil
	default:
		return conversation.NewMemoryStore(cfg.TTL), nil
	}
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// context cancellation, SIGINT/SIGTERM, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.sweeper.Start(ctx); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:           s.cfg.Server.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting adapter server",
			"address", s.cfg.Server.ListenAddress,
			"backend", s.cfg.Conversation.Backend,
			"version", s.version,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return nil
	}
}

// setupRoutes builds the route table with the middleware chain. The API
// endpoints are served under /v1 and, for clients that set a base URL
// without the version prefix, at the bare paths too.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	authed := middleware.Auth(s.cfg.Adapter.APIKey)

	chatHandler := authed(handlers.NewChatHandler(s.orchestrator, s.collector, s.logger))
	mux.Handle("/v1/chat/completions", chatHandler)
	mux.Handle("/chat/completions", chatHandler)

	modelsHandler := authed(handlers.NewModelsHandler(s.orchestrator))
	mux.Handle("/v1/models", modelsHandler)
	mux.Handle("/models", modelsHandler)

	mux.Handle("/health", handlers.NewHealthHandler(s.store, s.version))

	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)
	return handler
}

// Reload applies a freshly loaded configuration to the running server.
// Adapter settings (allow-list, default agent, matching threshold) take
// effect immediately; server and store level settings need a restart.
func (s *Server) Reload(cfg *config.Config) {
	s.orchestrator.SetConfig(cfg)
	s.logger.Info("configuration reloaded",
		"default_agent", cfg.Adapter.DefaultAgent,
		"allowed_models", len(cfg.Adapter.AllowedModels),
	)
}

// Shutdown gracefully stops the server: the listener drains in-flight
// requests within the configured timeout, then the sweeper and store are
// stopped.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down server")

		if s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("server shutdown failed: %w", err)
			}
		}

		s.sweeper.Stop()
		if err := s.store.Close(); err != nil && shutdownErr == nil {
			shutdownErr = fmt.Errorf("store close failed: %w", err)
		}

		close(s.shutdownChan)

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})
	return shutdownErr
}
