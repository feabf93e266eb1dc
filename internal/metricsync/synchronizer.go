// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package metricsync owns periodic retrieval of the two metrics
// resources, change detection to suppress redundant updates, and
// privilege-loss detection that forces a sign-out.
package metricsync

import (
	"context"
	"sync"
	"time"

	"github.com/pantrypartner/dashboard/internal/api"
	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/models"
	"github.com/pantrypartner/dashboard/internal/telemetry"
)

// DefaultInterval is the polling interval when none is configured.
const DefaultInterval = 30 * time.Second

// Synchronizer polls the remote metrics endpoints while an identity is
// bound, holding the latest shaped snapshot and daily report.
//
// Binding follows the session: SetIdentity with a non-nil identity
// starts polling immediately, SetIdentity(nil) stops it. A cycle in
// flight when the identity changes is not aborted; its results are
// discarded at commit time via a generation check, so at most one
// stale round-trip can complete against a cleared identity and none of
// it becomes visible.
//
// One bad cycle never stops the loop. Failures are recorded as visible
// error state and retried on the next tick, except the privilege-loss
// sentinel which forces a sign-out and aborts the rest of the cycle.
type Synchronizer struct {
	fetcher  api.MetricsFetcher
	interval time.Duration
	signOut  func(context.Context)

	// kick wakes the run loop after an identity change.
	kick chan struct{}

	mu             sync.RWMutex
	running        bool
	stopChan       chan struct{}
	wg             sync.WaitGroup
	identity       *models.Identity
	gen            uint64
	snapshot       *models.Snapshot
	daily          models.DailyReport
	visibleErr     string
	loading        bool
	firstCycleDone bool
}

// New creates a Synchronizer. signOut is invoked when a fetch reports
// privilege loss; it must be safe to call from the polling goroutine.
func New(fetcher api.MetricsFetcher, interval time.Duration, signOut func(context.Context)) *Synchronizer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Synchronizer{
		fetcher:  fetcher,
		interval: interval,
		signOut:  signOut,
		kick:     make(chan struct{}, 1),
	}
}

// Start launches the polling loop. Idempotent; the loop idles until an
// identity is bound.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx, stop)

	logging.Info().Dur("interval", s.interval).Msg("Metrics synchronizer started")
	return nil
}

// Stop halts the polling loop and waits for an in-flight cycle to
// finish. Idempotent.
func (s *Synchronizer) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	logging.Info().Msg("Metrics synchronizer stopped")
	return nil
}

// SetIdentity binds the synchronizer to a new identity, or unbinds it
// with nil. Binding resets all held state and triggers an immediate
// cycle; unbinding clears held state so nothing stale survives into the
// next session. Designed to hang off session.Manager's change callback.
func (s *Synchronizer) SetIdentity(identity *models.Identity) {
	s.mu.Lock()
	s.gen++
	s.identity = identity.Clone()
	s.snapshot = nil
	s.daily = models.DailyReport{}
	s.visibleErr = ""
	s.firstCycleDone = false
	s.loading = false
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns the held snapshot and whether one exists.
func (s *Synchronizer) Snapshot() (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return models.Snapshot{}, false
	}
	return *s.snapshot, true
}

// Daily returns the held daily report. The zero value means no data.
func (s *Synchronizer) Daily() models.DailyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.daily
}

// Err returns the visible error message from the last cycle, empty when
// the last cycle was clean.
func (s *Synchronizer) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleErr
}

// Loading reports whether the first cycle for the bound identity is
// still in flight. Subsequent refresh cycles never set it.
func (s *Synchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// run is the polling loop. The ticker only runs while an identity is
// bound; while unbound the loop parks on the kick channel.
func (s *Synchronizer) run(ctx context.Context, stop chan struct{}) {
	defer s.wg.Done()

	var ticker *time.Ticker
	var tick <-chan time.Time
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-s.kick:
			stopTicker()
			if gen, userID, ok := s.bound(); ok {
				s.runCycle(ctx, gen, userID)
				ticker = time.NewTicker(s.interval)
				tick = ticker.C
			}
		case <-tick:
			if gen, userID, ok := s.bound(); ok {
				s.runCycle(ctx, gen, userID)
			} else {
				stopTicker()
			}
		}
	}
}

// bound returns the current generation and user id if an identity is
// bound.
func (s *Synchronizer) bound() (uint64, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return 0, "", false
	}
	return s.gen, s.identity.ID, true
}

// runCycle performs one polling cycle: snapshot fetch, then daily
// fetch, sequential. Snapshot failure takes priority for the visible
// error so one expired session does not double-report. All commits are
// guarded by the captured generation.
func (s *Synchronizer) runCycle(ctx context.Context, gen uint64, userID string) {
	telemetry.PollCycles.Inc()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if !s.firstCycleDone {
		s.loading = true
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.firstCycleDone = true
			s.loading = false
		}
		s.mu.Unlock()
	}()

	var snapshotErr string

	raw, err := s.fetcher.Metrics(ctx, userID)
	if err != nil {
		telemetry.RecordFetchError("snapshot", api.KindOf(err).String())
		if api.IsPrivilegeLoss(err) {
			s.forceSignOut(ctx, gen)
			return
		}
		snapshotErr = err.Error()
		logging.Err(err).Msg("Snapshot metrics fetch failed")
	} else {
		s.commitSnapshot(gen, models.NewSnapshot(*raw))
	}

	var dailyErr string

	rawDaily, err := s.fetcher.DailyMetrics(ctx, userID)
	if err != nil {
		telemetry.RecordFetchError("daily", api.KindOf(err).String())
		if api.IsPrivilegeLoss(err) {
			s.forceSignOut(ctx, gen)
			return
		}
		dailyErr = err.Error()
		logging.Err(err).Msg("Daily metrics fetch failed")
		s.resetDaily(gen)
	} else {
		s.commitDaily(gen, models.NewDailyReport(*rawDaily))
	}

	s.commitError(gen, snapshotErr, dailyErr)
}

// commitSnapshot replaces the held snapshot only when at least one
// field differs, so an unchanged poll causes no downstream update.
func (s *Synchronizer) commitSnapshot(gen uint64, next models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if s.snapshot != nil && s.snapshot.Equal(next) {
		return
	}
	s.snapshot = &next
	telemetry.SnapshotReplacements.Inc()
}

// commitDaily replaces the held report only on element-wise change.
func (s *Synchronizer) commitDaily(gen uint64, next models.DailyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if s.daily.Equal(next) {
		return
	}
	s.daily = next
}

// resetDaily clears a non-empty series after a daily fetch failure.
// Stale charts are worse than empty ones.
func (s *Synchronizer) resetDaily(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if len(s.daily.Series) > 0 {
		s.daily = models.DailyReport{}
	}
}

// commitError records the visible error for the cycle. The snapshot
// failure wins; the daily failure is only surfaced when the snapshot
// fetch succeeded. A clean cycle clears any prior error.
func (s *Synchronizer) commitError(gen uint64, snapshotErr, dailyErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	switch {
	case snapshotErr != "":
		s.visibleErr = snapshotErr
	case dailyErr != "":
		s.visibleErr = dailyErr
	default:
		s.visibleErr = ""
	}
}

// forceSignOut handles the privilege-loss sentinel: unbind first so the
// remainder of this generation can never commit, then sign the operator
// out. The sign-out callback fires SetIdentity(nil) again via the
// session change hook, which is harmless.
func (s *Synchronizer) forceSignOut(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	telemetry.ForcedSignOuts.Inc()
	logging.Warn().Msg("Admin privilege revoked by server, forcing sign-out")
	if s.signOut != nil {
		s.signOut(ctx)
	}
}
