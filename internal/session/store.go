// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package session owns the authenticated-identity lifecycle: restoring a
// persisted session at startup, validating it against the remote
// verifier, sign-in and sign-out, and the derived authorization state
// the rest of the application consumes.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pantrypartner/dashboard/internal/config"
	"github.com/pantrypartner/dashboard/internal/models"
)

// ErrNoSession is returned by Store.Load when no session is persisted.
var ErrNoSession = errors.New("no stored session")

// storageKey is the fixed key the single session record lives under.
// This record is the application's entire durable state surface.
const storageKey = "admin_user"

// Store persists the operator's Identity. Implementations must treat
// Clear as idempotent.
type Store interface {
	// Load returns the persisted Identity, or ErrNoSession.
	Load(ctx context.Context) (*models.Identity, error)

	// Save persists the Identity, overwriting any prior value.
	Save(ctx context.Context, identity *models.Identity) error

	// Clear removes the persisted Identity. Clearing an empty store is
	// not an error.
	Clear(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// NewStore builds the configured store backend.
func NewStore(cfg *config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "badger":
		store, err := NewBadgerStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open badger session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
