// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Command dashboard runs the Pantry Partner admin dashboard: a web UI
// over the product API's admin metrics, with persisted operator
// sessions and background metrics polling.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pantrypartner/dashboard/internal/api"
	"github.com/pantrypartner/dashboard/internal/config"
	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/metricsync"
	"github.com/pantrypartner/dashboard/internal/models"
	"github.com/pantrypartner/dashboard/internal/server"
	"github.com/pantrypartner/dashboard/internal/session"
	"github.com/pantrypartner/dashboard/internal/supervisor"
	"github.com/pantrypartner/dashboard/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "", "path to config file (overrides CONFIG_PATH and default locations)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().Str("api_base_url", cfg.API.BaseURL).Msg("Starting admin dashboard")

	store, err := session.NewStore(&cfg.Session)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Err(err).Msg("Failed to close session store")
		}
	}()

	client := api.NewClient(&cfg.API)
	var fetcher api.MetricsFetcher = client
	if cfg.API.CircuitBreaker {
		fetcher = api.NewCircuitBreakerClient(client)
	}

	sessions := session.NewManager(client, store)
	syncer := metricsync.New(fetcher, cfg.Sync.Interval, sessions.SignOut)

	// The synchronizer follows the session: polling starts on sign-in
	// or restore, stops on sign-out.
	sessions.SetOnChange(func(identity *models.Identity) {
		syncer.SetIdentity(identity)
	})

	web := server.New(&cfg.Server, sessions, syncer)

	tree := supervisor.NewTree(
		slog.New(logging.NewSlogHandler()),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout},
	)
	tree.AddPollService(services.NewPollService(syncer))
	tree.AddWebService(services.NewHTTPService(web))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := tree.ServeBackground(ctx)

	// Resolve the persisted session once the tree is serving so the
	// synchronizer is already listening for the identity callback.
	sessions.Restore(ctx)

	if err := <-done; err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("Supervisor tree terminated")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop cleanly")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
