package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/curriculum/internal/bootstrap"
	"github.com/yigit/curriculum/internal/config"
)

const shutdownGrace = 10 * time.Second

// Server runs the progress API until interrupted.
type Server struct {
	config  *config.Config
	storage *bootstrap.Storage
	logger  zerolog.Logger
	http    *http.Server
}

// NewServer loads configuration, opens storage, seeds curricula and builds the router.
func NewServer(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()
	storage, err := bootstrap.SetupStorage(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, storage.Repos, lgr)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:  cfg,
		storage: storage,
		logger:  lgr,
		http: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           bootstrap.SetupRouter(cfg, deps, lgr),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM or a listener failure, then shuts down.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", s.http.Addr).
			Str("driver", s.config.Database.Driver).
			Msg("Progress API listening")
		listenErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeStorage()
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	}

	return s.Shutdown(context.Background())
}

// Shutdown drains in-flight requests and then releases storage.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	s.closeStorage()

	s.logger.Info().Msg("Server stopped")
	return err
}

func (s *Server) closeStorage() {
	if s.storage != nil {
		s.storage.Close()
		s.storage = nil
	}
}
