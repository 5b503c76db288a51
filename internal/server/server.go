package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/auth"
	"github.com/thep200/github-kudos/internal/kudo"
	"github.com/thep200/github-kudos/internal/storage"
	"github.com/thep200/github-kudos/pkg/log"
)

// Server is the kudos REST API.
type Server struct {
	Logger    log.Logger
	Config    *cfg.Config
	Repo      storage.Repository
	Publisher kudo.Publisher
	server    *http.Server
}

func NewServer(logger log.Logger, config *cfg.Config, repo storage.Repository, publisher kudo.Publisher) (*Server, error) {
	return &Server{
		Logger:    logger,
		Config:    config,
		Repo:      repo,
		Publisher: publisher,
	}, nil
}

// Handler builds the full middleware chain around the routes.
func (s *Server) Handler() (http.Handler, error) {
	verifier, err := auth.NewVerifier(s.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	handler := NewHandler(s.Logger, s.Repo, s.Publisher)
	return UseMiddlewares(s.Logger, s.Config, verifier, handler.Router()), nil
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	h, err := s.Handler()
	if err != nil {
		return err
	}

	readTimeout := time.Duration(s.Config.Server.ReadTimeoutSec) * time.Second
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Config.Server.Port),
		Handler:      h,
		ReadTimeout:  readTimeout,
		WriteTimeout: readTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting kudos API on port %d", s.Config.Server.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down kudos API")
		return s.server.Shutdown(ctx)
	}
	return nil
}
