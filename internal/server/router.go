// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           86400,
		}))
	}

	// Operational endpoints, unauthenticated.
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Login gets the strictest rate limit to slow enumeration of valid
	// emails against the remote login endpoint.
	r.Get("/login", s.handleLoginPage)
	r.With(httprate.Limit(
		s.cfg.LoginRateLimit,
		s.cfg.LoginRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)).Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	// Everything the dashboard renders or polls requires a signed-in,
	// verified admin and a browser token from this instance.
	r.Group(func(r chi.Router) {
		r.Use(s.requireSignedIn)
		r.Get("/", s.handleRoot)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/api/metrics/snapshot", s.handleSnapshot)
		r.Get("/api/metrics/daily", s.handleDaily)
	})

	return r
}
