// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package models

import (
	"math"
	"slices"
)

// BackendMetrics is the point-in-time aggregate as served by
// GET /admin/metrics. Field names follow the remote contract, including
// its one snake_case outlier.
type BackendMetrics struct {
	TotalUsers                  int      `json:"totalUsers"`
	TotalPantryItems            int      `json:"totalPantryItems"`
	TotalRecipes                int      `json:"totalRecipes"`
	AverageGenerationTimeMs     float64  `json:"averageGenerationTimeMs"`
	AverageWeeklyRecipesPerUser *float64 `json:"average_weekly_recipes_per_user"`
	Timestamp                   string   `json:"timestamp"`
}

// DailyBreakdown is one per-day record of GET /admin/metrics/daily.
type DailyBreakdown struct {
	Date              string `json:"date"`
	DateFormatted     string `json:"dateFormatted"`
	RecipesGenerated  int    `json:"recipesGenerated"`
	ActiveUsers       int    `json:"activeUsers"`
	CumulativeRecipes int    `json:"cumulativeRecipes"`
	CumulativeUsers   int    `json:"cumulativeUsers"`
}

// DailySummary aggregates the daily breakdown server-side.
type DailySummary struct {
	TotalRecipes             int     `json:"totalRecipes"`
	TotalActiveUsers         int     `json:"totalActiveUsers"`
	AverageRecipesPerDay     float64 `json:"averageRecipesPerDay"`
	AverageActiveUsersPerDay float64 `json:"averageActiveUsersPerDay"`
	RecipesGrowthPercent     float64 `json:"recipesGrowthPercent"`
}

// DateRange bounds the daily breakdown.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// DailyMetrics is the full payload of GET /admin/metrics/daily.
type DailyMetrics struct {
	DailyBreakdown []DailyBreakdown `json:"dailyBreakdown"`
	Summary        DailySummary     `json:"summary"`
	DateRange      DateRange        `json:"dateRange"`
	Timestamp      string           `json:"timestamp"`
}

// Snapshot is the shaped point-in-time aggregate the UI renders.
// It is immutable once constructed and replaced wholesale on change.
// All fields are comparable, so equality is plain ==.
type Snapshot struct {
	ActiveUsers             int     `json:"activeUsers"`
	RecipesGenerated        int     `json:"recipesGenerated"`
	AvgRecipeTimeSeconds    float64 `json:"avgRecipeTimeSeconds"`
	PantryItemsAdded        int     `json:"pantryItemsAdded"`
	AvgWeeklyRecipesPerUser float64 `json:"avgWeeklyRecipesPerUser"`
}

// NewSnapshot maps the raw backend payload to the UI shape:
// generation time converts from milliseconds to seconds at one decimal,
// and a missing or NaN weekly average becomes 0.0 rather than a
// propagated NaN.
func NewSnapshot(raw BackendMetrics) Snapshot {
	weekly := 0.0
	if raw.AverageWeeklyRecipesPerUser != nil && !math.IsNaN(*raw.AverageWeeklyRecipesPerUser) {
		weekly = round1(*raw.AverageWeeklyRecipesPerUser)
	}

	return Snapshot{
		ActiveUsers:             raw.TotalUsers,
		RecipesGenerated:        raw.TotalRecipes,
		AvgRecipeTimeSeconds:    round1(raw.AverageGenerationTimeMs / 1000),
		PantryItemsAdded:        raw.TotalPantryItems,
		AvgWeeklyRecipesPerUser: weekly,
	}
}

// Equal reports whether two snapshots hold identical values.
func (s Snapshot) Equal(other Snapshot) bool {
	return s == other
}

// DailyPoint is one chart point of the daily series.
type DailyPoint struct {
	DateLabel   string `json:"dateLabel"`
	Recipes     int    `json:"recipes"`
	ActiveUsers int    `json:"activeUsers"`
}

// DailySeries is the ordered per-day sequence driving the time-series
// charts. Replaced wholesale on change, compared element-wise.
type DailySeries []DailyPoint

// Equal reports whether two series match in length and in every field.
func (d DailySeries) Equal(other DailySeries) bool {
	return slices.Equal(d, other)
}

// DailyReport bundles the shaped series with the server-side summary and
// range so the UI can render aggregates without re-deriving them.
type DailyReport struct {
	Series  DailySeries  `json:"series"`
	Summary DailySummary `json:"summary"`
	Range   DateRange    `json:"range"`
}

// NewDailyReport maps the raw daily payload to the UI shape.
func NewDailyReport(raw DailyMetrics) DailyReport {
	series := make(DailySeries, 0, len(raw.DailyBreakdown))
	for _, day := range raw.DailyBreakdown {
		series = append(series, DailyPoint{
			DateLabel:   day.DateFormatted,
			Recipes:     day.RecipesGenerated,
			ActiveUsers: day.ActiveUsers,
		})
	}
	return DailyReport{Series: series, Summary: raw.Summary, Range: raw.DateRange}
}

// Equal reports whether two reports carry the same series, summary and range.
func (r DailyReport) Equal(other DailyReport) bool {
	return r.Series.Equal(other.Series) && r.Summary == other.Summary && r.Range == other.Range
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
