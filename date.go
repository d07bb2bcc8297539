/*
Copyright 2024 Ledgermatch Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ledgermatch

import (
	"fmt"
	"time"

	"github.com/ledgermatch/ledgermatch/model"
)

// Date score tiers. Posting delays and time zones routinely shift a
// transaction by a day or two, so closeness is scored in whole calendar
// days with time-of-day ignored.
const (
	DateScoreSameDay   = 30
	DateScoreOneDay    = 25
	DateScoreTwoDays   = 20
	DateScoreThreeDays = 15

	dateTolerance      = 3 // days within the tiered table
	dateCapPerDay      = 5 // confidence reduction per day past the tolerance
	dateCapFloor       = 50
	strictScorePerDay  = 5
)

// DateConfig controls date comparison.
type DateConfig struct {
	MaxDaysDiff int  // largest day gap still considered matchable (default 3)
	StrictMode  bool // linear penalty per day instead of the tiered table
}

// DefaultDateConfig returns the documented defaults.
func DefaultDateConfig() DateConfig {
	return DateConfig{MaxDaysDiff: 3, StrictMode: false}
}

// NormalizeToMidnight truncates a timestamp to midnight UTC so comparisons
// ignore time of day.
func NormalizeToMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalculateDaysDiff returns the absolute calendar-day distance between two
// dates, ignoring time of day.
func CalculateDaysDiff(date1, date2 time.Time) int {
	d1 := NormalizeToMidnight(date1)
	d2 := NormalizeToMidnight(date2)

	diff := d1.Sub(d2)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}

// CompareDates scores the temporal closeness of two transaction dates.
// Gaps past the three-day table but within MaxDaysDiff still count as a
// match, scoring zero while capping the composite confidence; gaps past
// MaxDaysDiff fail outright with no cap.
func CompareDates(sourceDate, targetDate time.Time, cfg DateConfig) model.DateMatchResult {
	daysDiff := CalculateDaysDiff(sourceDate, targetDate)

	if daysDiff == 0 {
		return model.DateMatchResult{
			Score:    DateScoreSameDay,
			DaysDiff: 0,
			IsMatch:  true,
			Reason:   "Dates match exactly (same day)",
		}
	}

	if cfg.StrictMode {
		score := DateScoreSameDay - daysDiff*strictScorePerDay
		if score < 0 {
			score = 0
		}
		plural := ""
		if daysDiff > 1 {
			plural = "s"
		}
		return model.DateMatchResult{
			Score:    score,
			DaysDiff: daysDiff,
			IsMatch:  daysDiff <= cfg.MaxDaysDiff,
			Reason:   fmt.Sprintf("Dates differ by %d day%s (strict mode)", daysDiff, plural),
		}
	}

	switch {
	case daysDiff <= 1:
		return model.DateMatchResult{
			Score:    DateScoreOneDay,
			DaysDiff: daysDiff,
			IsMatch:  true,
			Reason:   "Dates within 1 day (excellent match)",
		}
	case daysDiff <= 2:
		return model.DateMatchResult{
			Score:    DateScoreTwoDays,
			DaysDiff: daysDiff,
			IsMatch:  true,
			Reason:   "Dates within 2 days (good match)",
		}
	case daysDiff <= dateTolerance:
		return model.DateMatchResult{
			Score:    DateScoreThreeDays,
			DaysDiff: daysDiff,
			IsMatch:  true,
			Reason:   "Dates within 3 days (acceptable match)",
		}
	}

	if daysDiff <= cfg.MaxDaysDiff {
		capScore := 100 - (daysDiff-dateTolerance)*dateCapPerDay
		if capScore < dateCapFloor {
			capScore = dateCapFloor
		}
		return model.DateMatchResult{
			Score:         0,
			DaysDiff:      daysDiff,
			IsMatch:       true,
			ConfidenceCap: capScore,
			Reason:        fmt.Sprintf("Dates differ by %d days (weak match)", daysDiff),
		}
	}

	return model.DateMatchResult{
		Score:    0,
		DaysDiff: daysDiff,
		IsMatch:  false,
		Reason:   fmt.Sprintf("Dates differ by %d days (exceeds %d-day threshold)", daysDiff, cfg.MaxDaysDiff),
	}
}

// IsWithinDateTolerance reports whether two dates fall within the default
// three-day tolerance.
func IsWithinDateTolerance(date1, date2 time.Time) bool {
	return CalculateDaysDiff(date1, date2) <= dateTolerance
}

// DateSearchWindow expands a date into an inclusive [start, end] window for
// candidate queries, toleranceDays in each direction.
func DateSearchWindow(date time.Time, toleranceDays int) (time.Time, time.Time) {
	d := NormalizeToMidnight(date)
	return d.AddDate(0, 0, -toleranceDays), d.AddDate(0, 0, toleranceDays)
}

// IsDateInPeriod reports whether date falls inside [periodStart, periodEnd],
// inclusive on both ends, ignoring time of day.
func IsDateInPeriod(date, periodStart, periodEnd time.Time) bool {
	d := NormalizeToMidnight(date)
	start := NormalizeToMidnight(periodStart)
	end := NormalizeToMidnight(periodEnd)
	return !d.Before(start) && !d.After(end)
}

// FindBestDateMatch scans candidates for the closest date, short-circuiting
// on a same-day hit. Returns -1 when candidates is empty.
func FindBestDateMatch(sourceDate time.Time, candidates []time.Time) (int, model.DateMatchResult) {
	if len(candidates) == 0 {
		return -1, model.DateMatchResult{}
	}

	bestIndex := -1
	var best model.DateMatchResult

	for i, candidate := range candidates {
		result := CompareDates(sourceDate, candidate, DefaultDateConfig())
		if bestIndex == -1 || result.Score > best.Score {
			bestIndex = i
			best = result
		}
		if result.Score == DateScoreSameDay {
			break
		}
	}

	return bestIndex, best
}

// FormatDateForDisplay renders a date the way match reasons expect it.
func FormatDateForDisplay(date time.Time) string {
	return date.Format("2006-01-02")
}
