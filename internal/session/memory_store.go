// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package session

import (
	"context"
	"sync"

	"github.com/pantrypartner/dashboard/internal/models"
)

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
// Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	identity *models.Identity
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the held Identity, or ErrNoSession.
func (s *MemoryStore) Load(_ context.Context) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, ErrNoSession
	}
	return s.identity.Clone(), nil
}

// Save replaces the held Identity.
func (s *MemoryStore) Save(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity.Clone()
	return nil
}

// Clear drops the held Identity.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
