package usage

import (
	"time"

	"github.com/shelfsight/backend/internal/domain/shared"
)

// PeriodType identifies a rolling accounting window. All window math is
// done in UTC so that every caller agrees on period boundaries.
type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

// AllPeriodTypes returns every period type, in ascending window size
func AllPeriodTypes() []PeriodType {
	return []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}
}

// IsValid returns true if the period type is a known value
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// String returns the string representation of PeriodType
func (p PeriodType) String() string {
	return string(p)
}

// ParsePeriodType parses a string into a PeriodType
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(s)
	if !p.IsValid() {
		return "", shared.NewDomainError("INVALID_PERIOD_TYPE", "Unknown period type: "+s)
	}
	return p, nil
}

// PeriodStartFor returns the UTC start of the period containing now.
// Daily = calendar day, weekly = ISO week (Monday), monthly = calendar
// month, yearly = calendar year. This is the single source of window
// truth: the ledger and every reader derive boundaries from here.
func PeriodStartFor(p PeriodType, now time.Time) time.Time {
	now = now.UTC()

	switch p {
	case PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the preceding ISO week
		}
		monday := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)

	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	case PeriodYearly:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// PeriodEndFor returns the exclusive UTC end of the period containing now
func PeriodEndFor(p PeriodType, now time.Time) time.Time {
	start := PeriodStartFor(p, now)

	switch p {
	case PeriodDaily:
		return start.AddDate(0, 0, 1)
	case PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case PeriodMonthly:
		return start.AddDate(0, 1, 0)
	case PeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// SamePeriod reports whether two instants fall into the same window of
// the given period type
func SamePeriod(p PeriodType, a, b time.Time) bool {
	return PeriodStartFor(p, a).Equal(PeriodStartFor(p, b))
}
