// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionCookieName carries the browser's opaque session token.
const sessionCookieName = "pantrydash_session"

// browserSessionTTL bounds how long an issued browser token stays
// valid without a new sign-in.
const browserSessionTTL = 24 * time.Hour

// browserSessions tracks which browsers completed a sign-in on this
// instance. The operator identity itself lives in the session manager;
// these tokens only tie a browser to it so a shared URL is not a
// shared session.
type browserSessions struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newBrowserSessions() *browserSessions {
	return &browserSessions{tokens: make(map[string]time.Time)}
}

// issue mints a new token and returns the cookie to set.
func (b *browserSessions) issue() *http.Cookie {
	token := uuid.NewString()

	b.mu.Lock()
	b.tokens[token] = time.Now().Add(browserSessionTTL)
	b.mu.Unlock()

	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(browserSessionTTL / time.Second),
	}
}

// valid reports whether the token was issued here and has not expired.
// Expired tokens are removed on sight.
func (b *browserSessions) valid(token string) bool {
	if token == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(b.tokens, token)
		return false
	}
	return true
}

// revokeAll drops every issued token. Called on sign-out so a forced
// sign-out logs out every browser at once.
func (b *browserSessions) revokeAll() {
	b.mu.Lock()
	b.tokens = make(map[string]time.Time)
	b.mu.Unlock()
}

// expiredCookie returns a cookie that clears the browser token.
func expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
