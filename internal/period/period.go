// Package period resolves dashboard period selections into concrete UTC
// date ranges.
//
// All calendar arithmetic happens in UTC regardless of the location carried
// by the supplied instant, so ranges line up across machines in different
// time zones.
package period

import (
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/revdash/internal/domain"
)

// Period is a named dashboard period.
type Period string

const (
	Today       Period = "today"
	Yesterday   Period = "yesterday"
	Last7Days   Period = "last-7-days"
	Last28Days  Period = "last-28-days"
	LastMonth   Period = "last-month"
	ThisMonth   Period = "this-month"
	Week        Period = "week"
	FourWeeks   Period = "four-weeks"
	ThreeMonths Period = "three-months"
	Year        Period = "year"
	Lifetime    Period = "lifetime"
	Unknown     Period = "unknown"
)

// Periods returns the current period set in display order.
func Periods() []Period {
	return []Period{Today, Yesterday, Last7Days, Last28Days, ThisMonth, LastMonth}
}

// LegacyPeriods returns the older period set still accepted by the CLI.
func LegacyPeriods() []Period {
	return []Period{Week, FourWeeks, ThreeMonths, Year, Lifetime}
}

var titles = map[Period]string{
	Today:       "Today",
	Yesterday:   "Yesterday",
	Last7Days:   "Last 7 days",
	Last28Days:  "Last 28 days",
	LastMonth:   "Last Month",
	ThisMonth:   "This Month",
	Week:        "Week",
	FourWeeks:   "4 Weeks",
	ThreeMonths: "3 Months",
	Year:        "Year",
	Lifetime:    "Lifetime",
	Unknown:     "Unknown",
}

// Title returns the human-readable period name.
func (p Period) Title() string {
	if t, ok := titles[p]; ok {
		return t
	}
	return titles[Unknown]
}

func (p Period) String() string { return string(p) }

// Parse converts a CLI-facing period name into a Period. Underscores and
// case are tolerated ("LAST_7_DAYS" parses as last-7-days).
func Parse(s string) (Period, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch normalized {
	case "":
		return Unknown, fmt.Errorf("period is required: %w", domain.ErrValidation)
	case "7d":
		return Last7Days, nil
	case "28d":
		return Last28Days, nil
	}
	p := Period(normalized)
	if _, ok := titles[p]; !ok || p == Unknown {
		return Unknown, fmt.Errorf("unknown period %q (valid: %s): %w", s, strings.Join(Names(), ", "), domain.ErrValidation)
	}
	return p, nil
}

// Names returns the names of every selectable period.
func Names() []string {
	all := append(Periods(), LegacyPeriods()...)
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = string(p)
	}
	return names
}

// Next returns the period after p in the current set, wrapping around.
// Legacy and unknown periods step to the first period.
func (p Period) Next() Period {
	return step(p, 1)
}

// Prev returns the period before p in the current set, wrapping around.
func (p Period) Prev() Period {
	return step(p, -1)
}

func step(p Period, delta int) Period {
	set := Periods()
	for i, candidate := range set {
		if candidate == p {
			return set[(i+delta+len(set))%len(set)]
		}
	}
	return set[0]
}

// Resolve maps a period to its UTC date range relative to now.
// It never fails: unknown periods resolve like Today.
func Resolve(p Period, now time.Time) DateRange {
	now = now.UTC().Truncate(time.Second)

	switch p {
	case Yesterday:
		day := now.AddDate(0, 0, -1)
		return DateRange{Start: StartOfDay(day), End: EndOfDay(day)}
	case Last7Days:
		return DateRange{Start: StartOfDay(now.AddDate(0, 0, -7)), End: EndOfDay(now)}
	case Last28Days:
		return DateRange{Start: StartOfDay(now.AddDate(0, 0, -28)), End: EndOfDay(now)}
	case LastMonth:
		prev := AddMonths(now, -1)
		// The end is truncated to the start of the month's last day.
		return DateRange{Start: StartOfDay(StartOfMonth(prev)), End: StartOfDay(EndOfMonth(prev))}
	case ThisMonth:
		return DateRange{Start: StartOfDay(StartOfMonth(now)), End: EndOfDay(now)}
	case Week:
		return DateRange{Start: now.AddDate(0, 0, -7), End: EndOfDay(now)}
	case FourWeeks:
		return DateRange{Start: now.AddDate(0, 0, -28), End: EndOfDay(now)}
	case ThreeMonths:
		return DateRange{Start: StartOfMonth(AddMonths(now, -3)), End: EndOfMonth(AddMonths(now, -1))}
	case Year:
		return DateRange{Start: now.AddDate(0, 0, -365), End: EndOfDay(now)}
	case Lifetime:
		return DateRange{Start: now.AddDate(0, 0, -3650), End: EndOfDay(now)}
	default:
		return DateRange{Start: StartOfDay(now), End: EndOfDay(now)}
	}
}
