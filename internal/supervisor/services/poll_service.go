// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package services adapts the dashboard's Start/Stop components to
// suture's Serve pattern.
package services

import (
	"context"
	"fmt"
)

// StartStopRunner is the lifecycle shape of the metrics synchronizer:
// Start spawns internal goroutines and returns, Stop blocks until they
// finish.
type StartStopRunner interface {
	Start(ctx context.Context) error
	Stop() error
}

// PollService wraps the metrics synchronizer as a supervised service.
type PollService struct {
	runner StartStopRunner
	name   string
}

// NewPollService creates the wrapper.
func NewPollService(runner StartStopRunner) *PollService {
	return &PollService{runner: runner, name: "metrics-synchronizer"}
}

// Serve implements suture.Service: start, park until cancellation,
// stop. A Start failure returns immediately so suture applies its
// backoff policy.
func (s *PollService) Serve(ctx context.Context) error {
	if err := s.runner.Start(ctx); err != nil {
		return fmt.Errorf("synchronizer start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.runner.Stop(); err != nil {
		return fmt.Errorf("synchronizer stop failed: %w", err)
	}
	return ctx.Err()
}

// String identifies the service in suture's logs.
func (s *PollService) String() string {
	return s.name
}
