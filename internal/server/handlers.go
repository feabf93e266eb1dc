// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package server

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/models"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.InitialLoad() {
		s.renderLoading(w)
		return
	}
	if s.sessions.IsAuthorized() && s.browserAuthorized(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, loginView{})
}

// handleLoginSubmit runs the sign-in flow. Failures render inline on
// the form with the remote message; the form disables resubmission
// client-side while a sign-in is outstanding.
func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, loginView{Error: "invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	if email == "" {
		s.renderLogin(w, loginView{Error: "email is required"})
		return
	}

	if err := s.sessions.SignIn(r.Context(), email); err != nil {
		logging.Warn().Str("email", email).Err(err).Msg("Sign-in rejected")
		s.renderLogin(w, loginView{Email: email, Error: err.Error()})
		return
	}

	http.SetCookie(w, s.browser.issue())
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.SignOut(r.Context())
	s.browser.revokeAll()
	http.SetCookie(w, expiredCookie())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := s.sessions.Identity()
	email := ""
	if identity != nil {
		email = identity.Email
	}

	snapshot, ok := s.metrics.Snapshot()
	s.renderDashboard(w, dashboardView{
		Email:       email,
		HasSnapshot: ok,
		Snapshot:    snapshot,
		Daily:       s.metrics.Daily(),
		Error:       s.metrics.Err(),
		Loading:     s.metrics.Loading(),
	})
}

// snapshotResponse is the body of GET /api/metrics/snapshot, polled by
// the dashboard page.
type snapshotResponse struct {
	Available bool             `json:"available"`
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	Error     string           `json:"error,omitempty"`
	Loading   bool             `json:"loading"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	resp := snapshotResponse{
		Error:   s.metrics.Err(),
		Loading: s.metrics.Loading(),
	}
	if snapshot, ok := s.metrics.Snapshot(); ok {
		resp.Available = true
		resp.Snapshot = &snapshot
	}
	writeJSON(w, http.StatusOK, resp)
}

// dailyResponse is the body of GET /api/metrics/daily.
type dailyResponse struct {
	Report models.DailyReport `json:"report"`
	Error  string             `json:"error,omitempty"`
}

func (s *Server) handleDaily(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dailyResponse{
		Report: s.metrics.Daily(),
		Error:  s.metrics.Err(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": s.sessions.State().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
