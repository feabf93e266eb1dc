// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/pantrypartner/dashboard/internal/config"
	"github.com/pantrypartner/dashboard/internal/models"
)

// storeContract exercises the Store behaviors every backend must honor.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load on empty store = %v, want ErrNoSession", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty store should succeed: %v", err)
	}

	identity := &models.Identity{
		ID:    "u-1",
		Email: "admin@example.com",
		Extra: map[string]json.RawMessage{"role": json.RawMessage(`"admin"`)},
	}
	if err := store.Save(ctx, identity); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID != "u-1" || loaded.Email != "admin@example.com" {
		t.Errorf("loaded = %+v", loaded)
	}
	if string(loaded.Extra["role"]) != `"admin"` {
		t.Errorf("Extra[role] = %s", loaded.Extra["role"])
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after Clear = %v, want ErrNoSession", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeContract(t, store)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	identity := &models.Identity{ID: "u-1", Extra: map[string]json.RawMessage{"k": json.RawMessage(`1`)}}
	store.Save(ctx, identity) //nolint:errcheck

	loaded, _ := store.Load(ctx)
	loaded.Extra["k"] = json.RawMessage(`2`)

	again, _ := store.Load(ctx)
	if string(again.Extra["k"]) != `1` {
		t.Error("mutating a loaded identity leaked into the store")
	}
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	defer store.Close()
	storeContract(t, store)
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	if err := store.Save(ctx, &models.Identity{ID: "u-1", Email: "a@b.c"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if loaded.ID != "u-1" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestNewStore(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		store, err := NewStore(&config.SessionConfig{Backend: "memory"})
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		defer store.Close()
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("store type = %T, want *MemoryStore", store)
		}
	})

	t.Run("badger backend", func(t *testing.T) {
		store, err := NewStore(&config.SessionConfig{Backend: "badger", Path: t.TempDir()})
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		defer store.Close()
		if _, ok := store.(*BadgerStore); !ok {
			t.Errorf("store type = %T, want *BadgerStore", store)
		}
	})

	t.Run("unknown backend errors", func(t *testing.T) {
		if _, err := NewStore(&config.SessionConfig{Backend: "redis"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
