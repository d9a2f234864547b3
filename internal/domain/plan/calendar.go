// internal/domain/plan/calendar.go
package plan

import (
	"errors"
	"time"
)

const (
	// CyclesPerYear is the number of ten-day cycles in a calendar year.
	// 36 cycles cover the first 360 days; days 361+ belong to no cycle.
	CyclesPerYear = 36
	DaysPerCycle  = 10
	TasksPerDay   = 6
	GoalsPerCycle = 3

	// DateLayout is the ISO format used for day record identities and export.
	DateLayout = "2006-01-02"
)

var ErrDateOutsideCycles = errors.New("date falls outside the 360-day cycle coverage of its year")
var ErrCycleNumberOutOfRange = errors.New("cycle number must be between 1 and 36")

// CycleSpan is the date range of a single cycle.
type CycleSpan struct {
	StartDate time.Time
	EndDate   time.Time
}

// DateOnly truncates t to a UTC calendar date. All dates handled by the
// planning domain are normalized this way so day arithmetic stays exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO yyyy-mm-dd date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a date in the ISO yyyy-mm-dd form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CycleNumberForDate maps a date to its cycle number within the year.
// Dates after day 360 are rejected, never clamped.
func CycleNumberForDate(date time.Time) (int, error) {
	number := ((date.YearDay() - 1) / DaysPerCycle) + 1
	if number > CyclesPerYear {
		return 0, ErrDateOutsideCycles
	}
	return number, nil
}

// CycleBounds returns the start and end dates of a cycle.
// endDate is always startDate + 9 days.
func CycleBounds(year, number int) (time.Time, time.Time, error) {
	if number < 1 || number > CyclesPerYear {
		return time.Time{}, time.Time{}, ErrCycleNumberOutOfRange
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (number-1)*DaysPerCycle)
	return start, start.AddDate(0, 0, DaysPerCycle-1), nil
}

// GenerateYearCycles returns the 36 contiguous spans of a year, index 0..35
// corresponding to cycle numbers 1..36.
func GenerateYearCycles(year int) []CycleSpan {
	spans := make([]CycleSpan, 0, CyclesPerYear)
	base := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < CyclesPerYear; i++ {
		start := base.AddDate(0, 0, i*DaysPerCycle)
		spans = append(spans, CycleSpan{StartDate: start, EndDate: start.AddDate(0, 0, DaysPerCycle-1)})
	}
	return spans
}

// PreviousCycle resolves the cycle preceding (year, number). Crossing a year
// boundary lands on cycle 36 of the previous year unless that year falls
// below minYear, in which case ok is false.
func PreviousCycle(year, number, minYear int) (prevYear, prevNumber int, ok bool) {
	if number > 1 {
		return year, number - 1, true
	}
	if year-1 < minYear {
		return 0, 0, false
	}
	return year - 1, CyclesPerYear, true
}

// NextCycle resolves the cycle following (year, number). Cycle 36 rolls over
// to cycle 1 of the next year; there is no upper year restriction.
func NextCycle(year, number int) (nextYear, nextNumber int) {
	if number < CyclesPerYear {
		return year, number + 1
	}
	return year + 1, 1
}

// CycleID derives the stable persisted identity of a cycle: year*100 + number.
func CycleID(year, number int) int64 {
	return int64(year)*100 + int64(number)
}

// DayInCycle returns the 1-based ordinal of date within a cycle starting at
// cycleStart. Both arguments must be normalized calendar dates.
func DayInCycle(date, cycleStart time.Time) int {
	return int(date.Sub(cycleStart).Hours()/24) + 1
}
