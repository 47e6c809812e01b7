// Package streak derives habit statistics from a completion history.
//
// Every function is pure: "today" and the time zone are always passed in, so
// results never depend on the wall clock of the process evaluating them.
package streak

import (
	"math"
	"strings"
	"time"
)

// PercentageWindowDays is the number of days, today included, covered by
// Last30DaysPercentage.
const PercentageWindowDays = 30

// Stats is the full set of statistics derived from one completion history.
type Stats struct {
	CurrentStreak        int  `json:"current_streak"`
	LongestStreak        int  `json:"longest_streak"`
	CompletedToday       bool `json:"completed_today"`
	TotalCompletions     int  `json:"total_completions"`
	Last30DaysPercentage int  `json:"last_30_days_percentage"`
}

// NormalizeDays maps every instant to its calendar day in loc, dropping
// duplicates within a day.
func NormalizeDays(history []time.Time, loc *time.Location) Set {
	days := make(Set, len(history))
	for _, t := range history {
		days[DayOf(t, loc)] = struct{}{}
	}
	return days
}

// CurrentStreak counts consecutive completed days ending today, or ending
// yesterday when today is not completed yet. A gap ends the run.
func CurrentStreak(days Set, today Day) int {
	sorted := days.Descending()
	if len(sorted) == 0 {
		return 0
	}

	var expected Day
	switch newest := sorted[0]; newest {
	case today:
		expected = today.AddDays(-1)
	case today.AddDays(-1):
		// not done yet today, but the run is still alive until the day is over
		expected = today.AddDays(-2)
	default:
		return 0
	}

	streak := 1
	for _, day := range sorted[1:] {
		switch {
		case day == expected:
			streak++
			expected = expected.AddDays(-1)
		case day < expected:
			return streak
		}
	}

	return streak
}

// LongestStreak is the longest run of consecutive days anywhere in days.
func LongestStreak(days Set) int {
	sorted := days.Descending()
	if len(sorted) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1]-sorted[i] == 1 {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}

func CompletedToday(days Set, today Day) bool {
	return days.Has(today)
}

// CompletionPercentageLast30 is the rounded share of the last
// PercentageWindowDays days, today included, with at least one completion.
func CompletionPercentageLast30(history []time.Time, loc *time.Location, today Day) int {
	return windowPercentage(NormalizeDays(history, loc), today)
}

func TotalCompletions(history []time.Time, loc *time.Location) int {
	return NormalizeDays(history, loc).Len()
}

func windowPercentage(days Set, today Day) int {
	present := 0
	for i := 0; i < PercentageWindowDays; i++ {
		if days.Has(today.AddDays(-i)) {
			present++
		}
	}
	return int(math.Floor(100*float64(present)/PercentageWindowDays + 0.5))
}

// Compute returns all statistics for history as seen on today in loc.
// Completions that fall after today are treated as bad data and ignored.
func Compute(history []time.Time, today Day, loc *time.Location) Stats {
	days := NormalizeDays(history, loc)
	for d := range days {
		if d > today {
			delete(days, d)
		}
	}

	return Stats{
		CurrentStreak:        CurrentStreak(days, today),
		LongestStreak:        LongestStreak(days),
		CompletedToday:       CompletedToday(days, today),
		TotalCompletions:     days.Len(),
		Last30DaysPercentage: windowPercentage(days, today),
	}
}

// Accepted ISO-8601 forms, tried in order. The zoned layouts carry their own
// offset; the rest are read as wall time in the evaluator's zone.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		DayLayout,
	}
)

// ParseTimestamp parses one ISO-8601 timestamp. Strings without an offset
// are interpreted in loc; a nil loc means time.Local.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)

	var err error
	for _, layout := range zonedLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// ParseHistory parses ISO-8601 timestamps with ParseTimestamp. Entries that
// do not parse are returned in rejected instead of failing the whole history.
func ParseHistory(raw []string, loc *time.Location) (instants []time.Time, rejected []string) {
	instants = make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := ParseTimestamp(s, loc)
		if err != nil {
			rejected = append(rejected, s)
			continue
		}
		instants = append(instants, t)
	}
	return instants, rejected
}

// ComputeRaw parses raw in loc and computes its stats. The second result is
// the number of entries that were skipped as malformed.
func ComputeRaw(raw []string, today Day, loc *time.Location) (Stats, int) {
	instants, rejected := ParseHistory(raw, loc)
	return Compute(instants, today, loc), len(rejected)
}
