// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package models

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewSnapshot(t *testing.T) {
	t.Run("maps generation time from milliseconds to seconds", func(t *testing.T) {
		snap := NewSnapshot(BackendMetrics{AverageGenerationTimeMs: 3200})
		if snap.AvgRecipeTimeSeconds != 3.2 {
			t.Errorf("AvgRecipeTimeSeconds = %v, want 3.2", snap.AvgRecipeTimeSeconds)
		}
	})

	t.Run("rounds seconds to one decimal", func(t *testing.T) {
		snap := NewSnapshot(BackendMetrics{AverageGenerationTimeMs: 3250})
		if snap.AvgRecipeTimeSeconds != 3.3 {
			t.Errorf("AvgRecipeTimeSeconds = %v, want 3.3", snap.AvgRecipeTimeSeconds)
		}
	})

	t.Run("missing weekly average becomes zero", func(t *testing.T) {
		snap := NewSnapshot(BackendMetrics{AverageWeeklyRecipesPerUser: nil})
		if snap.AvgWeeklyRecipesPerUser != 0.0 {
			t.Errorf("AvgWeeklyRecipesPerUser = %v, want 0.0", snap.AvgWeeklyRecipesPerUser)
		}
	})

	t.Run("NaN weekly average becomes zero", func(t *testing.T) {
		snap := NewSnapshot(BackendMetrics{AverageWeeklyRecipesPerUser: floatPtr(math.NaN())})
		if snap.AvgWeeklyRecipesPerUser != 0.0 {
			t.Errorf("AvgWeeklyRecipesPerUser = %v, want 0.0", snap.AvgWeeklyRecipesPerUser)
		}
	})

	t.Run("weekly average rounds to one decimal", func(t *testing.T) {
		snap := NewSnapshot(BackendMetrics{AverageWeeklyRecipesPerUser: floatPtr(2.77)})
		if snap.AvgWeeklyRecipesPerUser != 2.8 {
			t.Errorf("AvgWeeklyRecipesPerUser = %v, want 2.8", snap.AvgWeeklyRecipesPerUser)
		}
	})

	t.Run("counts map through unchanged", func(t *testing.T) {
		snap := NewSnapshot(BackendMetrics{
			TotalUsers:       41,
			TotalRecipes:     512,
			TotalPantryItems: 903,
		})
		if snap.ActiveUsers != 41 || snap.RecipesGenerated != 512 || snap.PantryItemsAdded != 903 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})
}

func TestSnapshotEqual(t *testing.T) {
	base := Snapshot{ActiveUsers: 5, RecipesGenerated: 10, AvgRecipeTimeSeconds: 3.2}

	if !base.Equal(base) {
		t.Error("snapshot should equal itself")
	}

	changed := base
	changed.ActiveUsers = 6
	if base.Equal(changed) {
		t.Error("snapshots differing in one field should not be equal")
	}
}

func TestDailySeriesEqual(t *testing.T) {
	a := DailySeries{{DateLabel: "Jan 1", Recipes: 3, ActiveUsers: 2}}
	b := DailySeries{{DateLabel: "Jan 1", Recipes: 3, ActiveUsers: 2}}
	c := DailySeries{{DateLabel: "Jan 1", Recipes: 4, ActiveUsers: 2}}

	if !a.Equal(b) {
		t.Error("identical series should be equal")
	}
	if a.Equal(c) {
		t.Error("series differing in one element should not be equal")
	}
	if a.Equal(nil) {
		t.Error("non-empty series should not equal nil")
	}
	if !(DailySeries{}).Equal(nil) {
		t.Error("empty series should equal nil series")
	}
}

func TestNewDailyReport(t *testing.T) {
	raw := DailyMetrics{
		DailyBreakdown: []DailyBreakdown{
			{Date: "2026-08-01", DateFormatted: "Aug 1", RecipesGenerated: 7, ActiveUsers: 3, CumulativeRecipes: 100},
			{Date: "2026-08-02", DateFormatted: "Aug 2", RecipesGenerated: 9, ActiveUsers: 4, CumulativeRecipes: 109},
		},
		Summary:   DailySummary{TotalRecipes: 16, TotalActiveUsers: 7},
		DateRange: DateRange{StartDate: "2026-08-01", EndDate: "2026-08-02"},
	}

	report := NewDailyReport(raw)

	if len(report.Series) != 2 {
		t.Fatalf("series length = %d, want 2", len(report.Series))
	}
	want := DailyPoint{DateLabel: "Aug 1", Recipes: 7, ActiveUsers: 3}
	if report.Series[0] != want {
		t.Errorf("series[0] = %+v, want %+v", report.Series[0], want)
	}
	if report.Summary != raw.Summary {
		t.Errorf("summary = %+v, want %+v", report.Summary, raw.Summary)
	}
	if report.Range != raw.DateRange {
		t.Errorf("range = %+v, want %+v", report.Range, raw.DateRange)
	}
}

func TestDailyReportEqual(t *testing.T) {
	a := NewDailyReport(DailyMetrics{
		DailyBreakdown: []DailyBreakdown{{DateFormatted: "Aug 1", RecipesGenerated: 7}},
		Summary:        DailySummary{TotalRecipes: 7},
	})
	b := NewDailyReport(DailyMetrics{
		DailyBreakdown: []DailyBreakdown{{DateFormatted: "Aug 1", RecipesGenerated: 7}},
		Summary:        DailySummary{TotalRecipes: 7},
	})

	if !a.Equal(b) {
		t.Error("identical reports should be equal")
	}

	b.Summary.TotalRecipes = 8
	if a.Equal(b) {
		t.Error("reports differing in summary should not be equal")
	}
}
