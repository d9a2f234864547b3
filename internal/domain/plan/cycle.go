// internal/domain/plan/cycle.go
package plan

import (
	"database/sql"
	"time"
)

// Cycle is a fixed ten-day span of a calendar year, numbered 1-36.
// Corresponds to the 'cycles' table. Its identity (year, number) is derived
// from the calendar and never renumbered; ID is year*100 + number.
type Cycle struct {
	ID        int64
	Year      int
	Number    int // 1-36
	StartDate time.Time
	EndDate   time.Time // always StartDate + 9 days

	// Up to three free-text goals for the cycle.
	Goal1 sql.NullString
	Goal2 sql.NullString
	Goal3 sql.NullString
}

// NewCycle builds the cycle entity for (year, number) with calendar-derived
// identity and bounds.
func NewCycle(year, number int, span CycleSpan) *Cycle {
	return &Cycle{
		ID:        CycleID(year, number),
		Year:      year,
		Number:    number,
		StartDate: span.StartDate,
		EndDate:   span.EndDate,
	}
}

// SetGoals replaces the three goal texts; blank strings store as NULL.
func (c *Cycle) SetGoals(goal1, goal2, goal3 string) {
	c.Goal1 = NullIfBlank(goal1)
	c.Goal2 = NullIfBlank(goal2)
	c.Goal3 = NullIfBlank(goal3)
}

// NullIfBlank converts a possibly-blank string to its nullable column form.
func NullIfBlank(s string) sql.NullString {
	if isBlank(s) {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
