package period

import (
	"fmt"
	"time"

	"nathanbeddoewebdev/revdash/internal/domain"
)

// DateRange is an immutable UTC time window. Start is never after End.
type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// NewRange builds a DateRange from two instants, converting both to UTC.
func NewRange(start, end time.Time) (DateRange, error) {
	start, end = start.UTC(), end.UTC()
	if start.After(end) {
		return DateRange{}, fmt.Errorf("range start %s is after end %s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), domain.ErrValidation)
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseRange parses a pair of dates into a whole-day range. Each side may be
// a full RFC 3339 timestamp or a plain YYYY-MM-DD date; plain dates expand to
// the start of the first day and the end of the last day.
func ParseRange(from, to string) (DateRange, error) {
	start, startIsDate, err := parseInstant(from)
	if err != nil {
		return DateRange{}, err
	}
	end, endIsDate, err := parseInstant(to)
	if err != nil {
		return DateRange{}, err
	}
	if startIsDate {
		start = StartOfDay(start)
	}
	if endIsDate {
		end = EndOfDay(end)
	}
	return NewRange(start, end)
}

func parseInstant(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339): %w", s, domain.ErrValidation)
	}
	return t.UTC(), false, nil
}

// IsZero reports whether the range was never set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// StartISO returns the start as an ISO 8601 UTC timestamp.
func (r DateRange) StartISO() string { return r.Start.UTC().Format(time.RFC3339) }

// EndISO returns the end as an ISO 8601 UTC timestamp.
func (r DateRange) EndISO() string { return r.End.UTC().Format(time.RFC3339) }

// Contains reports whether other lies entirely within r.
func (r DateRange) Contains(other DateRange) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.UTC().Format(time.DateOnly) + " – " + r.End.UTC().Format(time.DateOnly)
}

// StartOfDay returns midnight UTC of t's UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 UTC of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Second)
}

// StartOfMonth returns midnight UTC on the first day of t's UTC month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns 23:59:59 UTC on the last day of t's UTC month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Second)
}

// AddMonths shifts t by n calendar months, clamping the day to the length
// of the target month (March 31 minus one month is February 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).AddDate(0, n, 0)
	day := min(t.Day(), daysIn(first.Year(), first.Month()))
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
