// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pantrypartner/dashboard/internal/api"
	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/models"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnknown holds from process start until the first restore
	// attempt resolves. It is never re-entered.
	StateUnknown State = iota

	// StateUnauthenticated means no operator is signed in.
	StateUnauthenticated

	// StateAuthenticated means an operator is signed in and the most
	// recent verification confirmed admin privilege.
	StateAuthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// accessDeniedMessage is the fixed authorization failure surfaced when a
// verified identity lacks admin privilege.
const accessDeniedMessage = "Access denied. Admin privileges required."

// Authenticator is the remote-API surface the manager needs. Satisfied
// by *api.Client; stubbed in tests.
type Authenticator interface {
	Login(ctx context.Context, email string) (*models.Identity, error)
	VerifyAdmin(ctx context.Context, userID string) (bool, error)
}

// Manager owns the authenticated-identity lifecycle.
//
// The authorization flag is derived, never cached past a verification:
// it is true only between a successful verify and the next sign-out or
// privilege-loss event.
//
// Operations (Restore, SignIn, SignOut) are serialized by opMu, so
// concurrent sign-in attempts race harmlessly to the same terminal
// state. Field reads take mu only, so State() never blocks behind an
// in-flight remote call.
type Manager struct {
	remote Authenticator
	store  Store

	// opMu serializes Restore/SignIn/SignOut end to end.
	opMu sync.Mutex

	// mu guards the fields below.
	mu          sync.RWMutex
	state       State
	identity    *models.Identity
	admin       bool
	loading     bool
	initialLoad bool
	restored    bool

	onChange func(*models.Identity)
}

// NewManager creates a Manager in StateUnknown.
func NewManager(remote Authenticator, store Store) *Manager {
	return &Manager{
		remote:      remote,
		store:       store,
		state:       StateUnknown,
		loading:     true,
		initialLoad: true,
	}
}

// SetOnChange registers a callback invoked after every state transition
// with the current Identity (nil when signed out). Register before
// Restore; the callback runs on the operation's goroutine.
func (m *Manager) SetOnChange(fn func(*models.Identity)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Restore resolves the persisted session once at process start.
//
// No stored Identity: transitions straight to Unauthenticated without a
// network call. Stored Identity: verified remotely; only a confirmed
// admin becomes Authenticated, anything else (no privilege, network
// error, malformed response) clears the store and lands in
// Unauthenticated. Subsequent calls are no-ops.
func (m *Manager) Restore(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if m.restored {
		m.mu.Unlock()
		return
	}
	m.restored = true
	m.mu.Unlock()

	defer m.finishInitialLoad()

	stored, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			logging.Err(err).Msg("Failed to read persisted session")
			m.clearStore(ctx)
		}
		m.setUnauthenticated()
		return
	}

	isAdmin, err := m.remote.VerifyAdmin(ctx, stored.ID)
	if err != nil || !isAdmin {
		if err != nil {
			logging.Err(err).Msg("Failed to restore session")
		}
		m.clearStore(ctx)
		m.setUnauthenticated()
		return
	}

	m.setAuthenticated(stored)
	logging.Info().Str("user_id", stored.ID).Msg("Session restored")
}

// SignIn authenticates the operator by email and verifies admin
// privilege. All failures come back as error values; nothing panics
// past this boundary.
//
// Login failures carry the remote message verbatim. A verified identity
// without privilege yields the fixed authorization error and nothing is
// persisted.
func (m *Manager) SignIn(ctx context.Context, email string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.setLoading(true)
	defer m.setLoading(false)

	identity, err := m.remote.Login(ctx, email)
	if err != nil {
		return err
	}

	isAdmin, err := m.remote.VerifyAdmin(ctx, identity.ID)
	if err != nil || !isAdmin {
		if err != nil {
			logging.Err(err).Msg("Admin verification failed during sign-in")
		}
		return &api.Error{Kind: api.KindAuthorization, Message: accessDeniedMessage}
	}

	if err := m.store.Save(ctx, identity); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.setAuthenticated(identity)
	logging.Info().Str("user_id", identity.ID).Msg("Operator signed in")
	return nil
}

// SignOut clears the identity, the authorization flag and the persisted
// entry. Idempotent and safe from any state, including from within the
// metrics synchronizer on privilege loss.
func (m *Manager) SignOut(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.clearStore(ctx)
	m.setUnauthenticated()
	logging.Info().Msg("Operator signed out")
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns a copy of the signed-in Identity, or nil.
func (m *Manager) Identity() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.Clone()
}

// IsAuthorized reports the derived authorization flag: an Identity
// exists and the latest verification confirmed admin privilege.
func (m *Manager) IsAuthorized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity != nil && m.admin
}

// Loading reports whether a restore or sign-in is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// InitialLoad reports whether the startup restore has not yet resolved.
// The UI shows its full-screen loading state only while this is true.
func (m *Manager) InitialLoad() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialLoad
}

// setAuthenticated installs the identity and notifies.
func (m *Manager) setAuthenticated(identity *models.Identity) {
	m.mu.Lock()
	m.state = StateAuthenticated
	m.identity = identity.Clone()
	m.admin = true
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(identity.Clone())
	}
}

// setUnauthenticated drops the identity and notifies.
func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	changed := m.state != StateUnauthenticated
	m.state = StateUnauthenticated
	m.identity = nil
	m.admin = false
	fn := m.onChange
	m.mu.Unlock()

	if changed && fn != nil {
		fn(nil)
	}
}

// clearStore removes the persisted entry, logging rather than failing:
// a broken store must not block sign-out.
func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		logging.Err(err).Msg("Failed to clear persisted session")
	}
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// finishInitialLoad marks the startup restore as resolved.
func (m *Manager) finishInitialLoad() {
	m.mu.Lock()
	m.loading = false
	m.initialLoad = false
	m.mu.Unlock()
}
