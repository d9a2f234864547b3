// internal/domain/plan/day_record.go
package plan

import (
	"database/sql"
	"strings"
	"time"
)

// TaskSlot is one of the six fixed task positions of a day.
// Text is the raw display text (the only slot field that exports);
// Name, Detail and Time are the structured sub-fields behind it.
type TaskSlot struct {
	Text      sql.NullString
	Name      sql.NullString
	Detail    sql.NullString
	Time      sql.NullString
	Completed bool
}

// IsEmpty reports whether the slot holds no task at all.
func (s TaskSlot) IsEmpty() bool {
	return !s.Text.Valid && !s.Name.Valid && !s.Detail.Valid && !s.Time.Valid && !s.Completed
}

// DayRecord is the task state of a single calendar date. The date is the
// global identity; every record belongs to exactly one cycle and sits at a
// fixed 1-based position inside it. Corresponds to the 'day_records' table.
type DayRecord struct {
	Date       time.Time
	CycleID    int64
	DayInCycle int // 1-10
	Tasks      [TasksPerDay]TaskSlot
}

// NewDayRecord builds an empty record for a date within a cycle.
func NewDayRecord(date time.Time, cycleID int64, dayInCycle int) *DayRecord {
	return &DayRecord{Date: date, CycleID: cycleID, DayInCycle: dayInCycle}
}

// DateString renders the record's identity in ISO form.
func (r *DayRecord) DateString() string {
	return FormatDate(r.Date)
}

// ClearTask wipes every field of one slot. The record itself is kept;
// slots are never deleted individually at the storage level.
func (r *DayRecord) ClearTask(slot int) {
	if slot < 0 || slot >= TasksPerDay {
		return
	}
	r.Tasks[slot] = TaskSlot{}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
