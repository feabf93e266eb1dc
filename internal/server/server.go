// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package server is the presentation layer: a small HTML UI plus JSON
// endpoints that the dashboard page polls. Rendering is gated on the
// session manager's state the same way on every route; the UI never
// talks to the remote product API directly.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pantrypartner/dashboard/internal/config"
	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/metricsync"
	"github.com/pantrypartner/dashboard/internal/session"
)

// Server serves the dashboard UI and its JSON endpoints.
type Server struct {
	cfg      *config.ServerConfig
	sessions *session.Manager
	metrics  *metricsync.Synchronizer
	browser  *browserSessions
	srv      *http.Server
}

// New creates a Server wired to the session manager and synchronizer.
func New(cfg *config.ServerConfig, sessions *session.Manager, metrics *metricsync.Synchronizer) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		metrics:  metrics,
		browser:  newBrowserSessions(),
	}
	s.srv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the HTTP listener until Stop is called. Blocks; intended
// to run under the supervisor.
func (s *Server) Start(_ context.Context) error {
	logging.Info().Str("addr", s.cfg.ListenAddr).Msg("HTTP server listening")
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down gracefully within the configured
// timeout.
func (s *Server) Stop() error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
