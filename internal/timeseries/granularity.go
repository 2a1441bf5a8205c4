package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// Granularity represents the calendar bucket size
type Granularity string

const (
	// Auto is an input selector only; SelectGranularity resolves it
	Auto      Granularity = "auto"
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// Auto-selection thresholds in days, evaluated in order
const (
	DailyMaxSpanDays     = 60
	WeeklyMaxSpanDays    = 365
	MonthlyMaxSpanDays   = 365 * 2
	QuarterlyMaxSpanDays = 365 * 5
)

// Granularities lists the concrete granularities from finest to coarsest
var Granularities = []Granularity{Daily, Weekly, Monthly, Quarterly, Yearly}

// Label returns the display name, e.g. "Monthly"
func (g Granularity) Label() string {
	switch g {
	case Auto:
		return "Auto (compact)"
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	case Quarterly:
		return "Quarterly"
	case Yearly:
		return "Yearly"
	default:
		return string(g)
	}
}

// IsConcrete reports whether g names an actual bucket size
func (g Granularity) IsConcrete() bool {
	switch g {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// ParseGranularity parses a granularity name, a resample code (D, W, M, Q, A/Y)
// or a label such as "Auto (compact)". Matching is case-insensitive.
func ParseGranularity(s string) (Granularity, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "" || strings.HasPrefix(v, "auto"):
		return Auto, nil
	case v == "daily" || v == "d" || v == "day":
		return Daily, nil
	case v == "weekly" || v == "w" || v == "week":
		return Weekly, nil
	case v == "monthly" || v == "m" || v == "month":
		return Monthly, nil
	case v == "quarterly" || v == "q" || v == "quarter":
		return Quarterly, nil
	case v == "yearly" || v == "a" || v == "y" || v == "year" || v == "annual":
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown granularity %q (supported: auto, daily, weekly, monthly, quarterly, yearly)", s)
}

// SpanDays returns the whole number of days from start's date to end's date.
// The result is negative when end precedes start.
func SpanDays(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours() / 24)
}

// SelectGranularity returns choice unchanged when it is concrete. For Auto it
// classifies the span between start and end by the fixed thresholds.
func SelectGranularity(start, end time.Time, choice Granularity) Granularity {
	if choice.IsConcrete() {
		return choice
	}

	span := SpanDays(start, end)
	switch {
	case span <= DailyMaxSpanDays:
		return Daily
	case span <= WeeklyMaxSpanDays:
		return Weekly
	case span <= MonthlyMaxSpanDays:
		return Monthly
	case span <= QuarterlyMaxSpanDays:
		return Quarterly
	default:
		return Yearly
	}
}

// Truncate returns the start of the bucket that t falls into.
// Weeks start on Monday.
func Truncate(t time.Time, g Granularity) time.Time {
	d := DateOf(t)
	switch g {
	case Weekly:
		return TruncateToWeek(d)
	case Monthly:
		return TruncateToMonth(d)
	case Quarterly:
		return TruncateToQuarter(d)
	case Yearly:
		return TruncateToYear(d)
	default:
		return d
	}
}

// TruncateToWeek truncates time to the Monday of its week
func TruncateToWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// TruncateToMonth truncates time to the start of the month
func TruncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TruncateToQuarter truncates time to the start of the quarter
func TruncateToQuarter(t time.Time) time.Time {
	first := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), first, 1, 0, 0, 0, 0, t.Location())
}

// TruncateToYear truncates time to the start of the year
func TruncateToYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}
