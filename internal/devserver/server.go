// Package devserver is an in-memory reference backend for the docvault API.
// It issues short-lived JWT access tokens and rotating refresh tokens so the
// client session layer can be run and tested end to end.
package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/docvault/internal/devserver/config"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

// Stats are counters exposed for tests and diagnostics.
type Stats struct {
	RefreshCalls        int64
	ActiveRefreshTokens int
}

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	accounts *accounts
	docs     *documentStore
	secret   []byte
	handler  http.Handler

	refreshCalls atomic.Int64
}

func New(cfg *config.Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger.With("module", "devserver"),
		accounts: newAccounts(),
		docs:     newDocumentStore(),
		secret:   []byte(cfg.SecretKey),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Stats() Stats {
	return Stats{
		RefreshCalls:        s.refreshCalls.Load(),
		ActiveRefreshTokens: s.accounts.activeRefreshTokens(),
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, s.requestLogger)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/google", s.handleGoogle)
	r.Post("/auth/refresh", s.handleRefresh)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post("/documents", s.handleCreateDocument)
		r.Get("/documents/search", s.handleSearch)
		r.Get("/documents/expiring-soon", s.handleExpiringSoon)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Post("/documents/{id}/file", s.handleUploadFile)
		r.Get("/documents/{id}/versions", s.handleVersions)
		r.Post("/documents/{id}/versions", s.handleAddVersion)
		r.Post("/documents/{id}/versions/{n}/revert", s.handleRevert)
		r.Get("/files/{id}/download", s.handleDownload)
	})

	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping dev server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting dev server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
