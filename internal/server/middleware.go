// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/telemetry"
)

// requestLogger logs every served request with the structured fields
// the rest of the application uses, and feeds the latency histogram.
// The metrics label uses the route pattern, not the raw path, to keep
// cardinality bounded.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		telemetry.ObserveHTTPRequest(r.Method, pattern, ww.Status(), elapsed)

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// requireSignedIn gates the dashboard and its JSON endpoints.
//
// Order matters: while the startup restore is unresolved the UI shows
// the full-screen loading page rather than bouncing a possibly-valid
// session to the login form. After that, a request is let through only
// when an operator is authorized AND this browser carries a token
// issued at sign-in.
func (s *Server) requireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.InitialLoad() {
			s.renderLoading(w)
			return
		}

		if !s.sessions.IsAuthorized() || !s.browserAuthorized(r) {
			if wantsJSON(r) {
				writeJSONError(w, http.StatusUnauthorized, "not signed in")
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// browserAuthorized reports whether the request carries a valid
// browser session token.
func (s *Server) browserAuthorized(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	return s.browser.valid(cookie.Value)
}

// wantsJSON distinguishes the page routes from the polled JSON ones.
func wantsJSON(r *http.Request) bool {
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}
