// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/pantrypartner/dashboard/internal/logging"
	"github.com/pantrypartner/dashboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// loginView feeds the login form template.
type loginView struct {
	Email string
	Error string
}

// dashboardView feeds the dashboard template with the synchronizer's
// current state; the page keeps itself fresh by polling the JSON
// endpoints afterward.
type dashboardView struct {
	Email       string
	HasSnapshot bool
	Snapshot    models.Snapshot
	Daily       models.DailyReport
	Error       string
	Loading     bool
}

func (s *Server) renderLogin(w http.ResponseWriter, view loginView) {
	renderPage(w, "login.html", view)
}

func (s *Server) renderDashboard(w http.ResponseWriter, view dashboardView) {
	renderPage(w, "dashboard.html", view)
}

func (s *Server) renderLoading(w http.ResponseWriter) {
	renderPage(w, "loading.html", nil)
}

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		logging.Err(err).Str("template", name).Msg("Failed to render page")
	}
}
