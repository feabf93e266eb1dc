// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package api

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/models"
	"github.com/pantrypartner/dashboard/internal/telemetry"
)

// CircuitBreakerClient wraps the metrics fetches with a circuit breaker
// so a down or misbehaving metrics service stops consuming its timeout
// budget on every poll cycle.
//
// Only the polling path is protected: login and verify are interactive,
// low-rate operations whose errors must always reach the operator.
//
// An open circuit surfaces as a transport-kind failure, which the
// synchronizer records and retries on the next cycle. The privilege-loss
// sentinel passes through untouched - the breaker must never mask a
// forced sign-out.
type CircuitBreakerClient struct {
	client MetricsFetcher
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewCircuitBreakerClient wraps a metrics fetcher with breaker
// protection. The circuit opens after a 60% failure rate over at least
// 10 requests, resets its counts every minute while closed, and waits
// two minutes before probing again.
func NewCircuitBreakerClient(client MetricsFetcher) *CircuitBreakerClient {
	const cbName = "metrics-api"

	telemetry.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening metrics API circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Metrics API circuit state transition")
			telemetry.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			telemetry.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: cbName}
}

// Metrics fetches the snapshot aggregate through the breaker.
func (c *CircuitBreakerClient) Metrics(ctx context.Context, userID string) (*models.BackendMetrics, error) {
	result, err := c.execute(func() (any, error) {
		return c.client.Metrics(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.BackendMetrics), nil
}

// DailyMetrics fetches the daily breakdown through the breaker.
func (c *CircuitBreakerClient) DailyMetrics(ctx context.Context, userID string) (*models.DailyMetrics, error) {
	result, err := c.execute(func() (any, error) {
		return c.client.DailyMetrics(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.DailyMetrics), nil
}

// execute runs fn through the breaker and normalizes rejection errors
// into the transport kind.
func (c *CircuitBreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, newError(KindTransport, "metrics service unavailable (circuit open)")
		}
		return nil, err
	}
	return result, nil
}

// breakerStateValue maps breaker states to gauge values:
// 0 closed, 1 half-open, 2 open.
func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
