package streak

import (
	"sort"
	"time"
)

const (
	// DayLayout is the ISO-8601 calendar date format used for days on the wire.
	DayLayout     = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// Day is a calendar day counted from 1970-01-01. It carries no time zone:
// the zone is applied once, when an instant is mapped to its day.
type Day int64

// Date returns the Day of the given civil date.
func Date(year int, month time.Month, day int) Day {
	return Day(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// DayOf truncates t to local midnight in loc. A nil loc means time.Local.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Date(y, m, d)
}

// ParseDay parses a DayLayout date such as 2025-01-03.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return 0, err
	}
	return Date(t.Date()), nil
}

func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// Time returns midnight UTC of the civil date d.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Bounds returns local midnight of d in loc and local midnight of the next
// day. The span is not always 24h across DST changes.
func (d Day) Bounds(loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, day := d.Time().Date()
	start = time.Date(y, m, day, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (d Day) String() string {
	return d.Time().Format(DayLayout)
}

// Set is a set of calendar days.
type Set map[Day]struct{}

func (s Set) Has(d Day) bool {
	_, ok := s[d]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Descending returns the days most recent first.
func (s Set) Descending() []Day {
	days := make([]Day, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i] > days[j]
	})
	return days
}
