// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package server

import (
	"testing"
	"time"
)

func TestBrowserSessions(t *testing.T) {
	t.Run("issued token validates", func(t *testing.T) {
		b := newBrowserSessions()
		cookie := b.issue()

		if cookie.Name != sessionCookieName || cookie.Value == "" {
			t.Fatalf("cookie = %+v", cookie)
		}
		if !cookie.HttpOnly {
			t.Error("session cookie must be HttpOnly")
		}
		if !b.valid(cookie.Value) {
			t.Error("freshly issued token should validate")
		}
	})

	t.Run("unknown and empty tokens are invalid", func(t *testing.T) {
		b := newBrowserSessions()
		if b.valid("") || b.valid("made-up") {
			t.Error("unknown tokens must not validate")
		}
	})

	t.Run("expired token is invalid and removed", func(t *testing.T) {
		b := newBrowserSessions()
		cookie := b.issue()
		b.tokens[cookie.Value] = time.Now().Add(-time.Minute)

		if b.valid(cookie.Value) {
			t.Error("expired token should not validate")
		}
		if _, still := b.tokens[cookie.Value]; still {
			t.Error("expired token should be removed on sight")
		}
	})

	t.Run("revokeAll invalidates every token", func(t *testing.T) {
		b := newBrowserSessions()
		c1, c2 := b.issue(), b.issue()

		b.revokeAll()

		if b.valid(c1.Value) || b.valid(c2.Value) {
			t.Error("revoked tokens must not validate")
		}
	})
}
