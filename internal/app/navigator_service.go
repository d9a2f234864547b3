// internal/app/navigator_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tendays_plan_bot/internal/domain/plan"
	idb "tendays_plan_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Navigator errors. Store failures are wrapped and returned as-is; the
// navigator keeps its last good selection when they occur.
var (
	ErrNotReady           = fmt.Errorf("no cycle is currently selected")
	ErrNoPreviousCycle    = fmt.Errorf("no previous cycle before the minimum supported year")
	ErrFirstCycleOfYear   = fmt.Errorf("already at the first cycle of the year")
	ErrLastCycleOfYear    = fmt.Errorf("already at the last cycle of the year")
	ErrTaskSlotOutOfRange = fmt.Errorf("task slot must be between 1 and 6")
)

// NavigatorState is the lifecycle of the current cycle selection.
type NavigatorState int

const (
	StateUninitialized NavigatorState = iota
	StateLoading
	StateReady
	StateEmpty // the requested date maps to no cycle
)

func (s NavigatorState) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateEmpty:
		return "Empty"
	default:
		return "Uninitialized"
	}
}

// Direction selects which neighboring cycle AdvanceCycle moves to.
type Direction int

const (
	DirectionPrevious Direction = iota
	DirectionNext
)

// NavigatorService orchestrates the "current cycle" selection: it lazily
// materializes the 36 cycles of a year and the 10 day records of a cycle,
// tracks the selected day, and resolves the same day in the previous cycle
// across year boundaries. It also carries the slot-wise editing operations.
//
// One NavigatorService serves one logical session. Operations are
// serialized; a failed load leaves the previous selection intact.
type NavigatorService struct {
	cycleRepo     plan.CycleRepository
	dayRecordRepo plan.DayRecordRepository
	minYear       int
	logger        *logrus.Entry

	opMu sync.Mutex   // serializes selection and editing operations
	mu   sync.RWMutex // guards the snapshot fields below

	state       NavigatorState
	cycle       *plan.Cycle
	dayRecords  []*plan.DayRecord
	selectedDay int
}

func NewNavigatorService(cr plan.CycleRepository, dr plan.DayRecordRepository, minYear int, logger *logrus.Entry) *NavigatorService {
	return &NavigatorService{
		cycleRepo:     cr,
		dayRecordRepo: dr,
		minYear:       minYear,
		logger:        logger,
		state:         StateUninitialized,
		selectedDay:   1,
	}
}

// --- Selection ---

// SelectDate loads the cycle containing date and selects the matching day.
// Dates past day 360 of a year transition the navigator to the Empty state
// and return plan.ErrDateOutsideCycles.
func (s *NavigatorService) SelectDate(ctx context.Context, date time.Time) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	date = plan.DateOnly(date)
	number, err := plan.CycleNumberForDate(date)
	if err != nil {
		s.commit(StateEmpty, nil, nil, 1)
		s.logger.WithField("date", plan.FormatDate(date)).Warn("Date maps to no cycle")
		return err
	}

	return s.load(ctx, date.Year(), number, func(cycle *plan.Cycle) int {
		return clampDay(plan.DayInCycle(date, cycle.StartDate))
	})
}

// SelectCycle loads an explicit cycle; the selected day defaults to 1.
func (s *NavigatorService) SelectCycle(ctx context.Context, year, number int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if number < 1 || number > plan.CyclesPerYear {
		return plan.ErrCycleNumberOutOfRange
	}
	return s.load(ctx, year, number, func(*plan.Cycle) int { return 1 })
}

// SelectDay moves the selection within the loaded cycle, clamped to [1,10].
func (s *NavigatorService) SelectDay(day int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return ErrNotReady
	}
	s.selectedDay = clampDay(day)
	return nil
}

// AdvanceCycle moves to the neighboring cycle within the current year.
func (s *NavigatorService) AdvanceCycle(ctx context.Context, direction Direction) error {
	s.mu.RLock()
	if s.state != StateReady {
		s.mu.RUnlock()
		return ErrNotReady
	}
	year, number := s.cycle.Year, s.cycle.Number
	s.mu.RUnlock()

	switch direction {
	case DirectionPrevious:
		if number == 1 {
			return ErrFirstCycleOfYear
		}
		return s.SelectCycle(ctx, year, number-1)
	case DirectionNext:
		if number == plan.CyclesPerYear {
			return ErrLastCycleOfYear
		}
		return s.SelectCycle(ctx, year, number+1)
	default:
		return fmt.Errorf("unknown direction: %d", direction)
	}
}

// PreviousCycleSameDay resolves the day record at the currently selected
// position in the previous cycle, generating that cycle's records if needed.
// Returns (nil, nil) when the record genuinely does not exist.
func (s *NavigatorService) PreviousCycleSameDay(ctx context.Context) (*plan.DayRecord, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	if s.state != StateReady {
		s.mu.RUnlock()
		return nil, ErrNotReady
	}
	year, number, selectedDay := s.cycle.Year, s.cycle.Number, s.selectedDay
	s.mu.RUnlock()

	prevYear, prevNumber, ok := plan.PreviousCycle(year, number, s.minYear)
	if !ok {
		return nil, ErrNoPreviousCycle
	}

	if err := s.ensureYearCycles(ctx, prevYear); err != nil {
		return nil, err
	}
	prevCycle, err := s.cycleRepo.GetByYearAndNumber(ctx, prevYear, prevNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous cycle %d/%d: %w", prevYear, prevNumber, err)
	}
	if _, err := s.ensureDayRecords(ctx, prevCycle); err != nil {
		return nil, err
	}

	sameDayDate := prevCycle.StartDate.AddDate(0, 0, selectedDay-1)
	record, err := s.dayRecordRepo.GetByDate(ctx, sameDayDate)
	if err != nil {
		if errors.Is(err, idb.ErrDayRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load previous cycle day %s: %w", plan.FormatDate(sameDayDate), err)
	}
	return record, nil
}

// load materializes (year, number) and commits it as the current selection.
// Any store failure leaves the previous selection untouched.
func (s *NavigatorService) load(ctx context.Context, year, number int, pickDay func(*plan.Cycle) int) error {
	s.mu.Lock()
	prevState, prevCycle, prevRecords, prevDay := s.state, s.cycle, s.dayRecords, s.selectedDay
	s.state = StateLoading
	s.mu.Unlock()

	rollback := func(err error) error {
		s.commit(prevState, prevCycle, prevRecords, prevDay)
		return err
	}

	if err := s.ensureYearCycles(ctx, year); err != nil {
		return rollback(err)
	}

	cycle, err := s.cycleRepo.GetByYearAndNumber(ctx, year, number)
	if err != nil {
		return rollback(fmt.Errorf("failed to load cycle %d/%d: %w", year, number, err))
	}

	records, err := s.ensureDayRecords(ctx, cycle)
	if err != nil {
		return rollback(err)
	}

	s.commit(StateReady, cycle, records, pickDay(cycle))
	s.logger.WithFields(logrus.Fields{
		"year":         year,
		"cycle_number": number,
		"selected_day": s.SelectedDay(),
	}).Debug("Cycle selected")
	return nil
}

func (s *NavigatorService) commit(state NavigatorState, cycle *plan.Cycle, records []*plan.DayRecord, selectedDay int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.cycle = cycle
	s.dayRecords = records
	s.selectedDay = selectedDay
}

// ensureYearCycles generates the 36 cycles of a year if they are missing.
// A single existence probe on cycle 1 makes repeated calls a no-op; the
// bulk write is an upsert, so concurrent generation cannot duplicate rows.
func (s *NavigatorService) ensureYearCycles(ctx context.Context, year int) error {
	_, err := s.cycleRepo.GetByYearAndNumber(ctx, year, 1)
	if err == nil {
		return nil
	}
	if !errors.Is(err, idb.ErrCycleNotFound) {
		return fmt.Errorf("failed to probe cycles for year %d: %w", year, err)
	}

	cycles := make([]*plan.Cycle, 0, plan.CyclesPerYear)
	for i, span := range plan.GenerateYearCycles(year) {
		cycles = append(cycles, plan.NewCycle(year, i+1, span))
	}
	if err := s.cycleRepo.BulkUpsert(ctx, cycles); err != nil {
		return fmt.Errorf("failed to generate cycles for year %d: %w", year, err)
	}
	s.logger.WithField("year", year).Info("Generated 36 cycles for year")
	return nil
}

// ensureDayRecords generates the 10 day records of a cycle if none exist.
// If any record exists for the cycle, all 10 are assumed present.
func (s *NavigatorService) ensureDayRecords(ctx context.Context, cycle *plan.Cycle) ([]*plan.DayRecord, error) {
	records, err := s.dayRecordRepo.ListByCycleID(ctx, cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list day records for cycle %d: %w", cycle.ID, err)
	}
	if len(records) > 0 {
		return records, nil
	}

	records = make([]*plan.DayRecord, 0, plan.DaysPerCycle)
	for i := 0; i < plan.DaysPerCycle; i++ {
		date := cycle.StartDate.AddDate(0, 0, i)
		records = append(records, plan.NewDayRecord(date, cycle.ID, i+1))
	}
	if err := s.dayRecordRepo.BulkUpsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to generate day records for cycle %d: %w", cycle.ID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"cycle_id":   cycle.ID,
		"start_date": plan.FormatDate(cycle.StartDate),
	}).Info("Generated 10 day records for cycle")
	return records, nil
}

// --- Editing ---

// SetTask edits one slot of a day. Blank text clears the display text; blank
// name/detail/time keep the existing sub-field values.
func (s *NavigatorService) SetTask(ctx context.Context, date time.Time, slot int, text, name, detail, timeText string) (*plan.DayRecord, error) {
	return s.editRecord(ctx, date, slot, func(t *plan.TaskSlot) {
		t.Text = plan.NullIfBlank(text)
		if v := plan.NullIfBlank(name); v.Valid {
			t.Name = v
		}
		if v := plan.NullIfBlank(detail); v.Valid {
			t.Detail = v
		}
		if v := plan.NullIfBlank(timeText); v.Valid {
			t.Time = v
		}
	})
}

// SetTaskCompleted flips the completion flag of one slot.
func (s *NavigatorService) SetTaskCompleted(ctx context.Context, date time.Time, slot int, completed bool) (*plan.DayRecord, error) {
	return s.editRecord(ctx, date, slot, func(t *plan.TaskSlot) {
		t.Completed = completed
	})
}

// ClearTask wipes every field of one slot; the day record itself remains.
func (s *NavigatorService) ClearTask(ctx context.Context, date time.Time, slot int) (*plan.DayRecord, error) {
	return s.editRecord(ctx, date, slot, func(t *plan.TaskSlot) {
		*t = plan.TaskSlot{}
	})
}

func (s *NavigatorService) editRecord(ctx context.Context, date time.Time, slot int, mutate func(*plan.TaskSlot)) (*plan.DayRecord, error) {
	if slot < 1 || slot > plan.TasksPerDay {
		return nil, ErrTaskSlotOutOfRange
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	record, err := s.dayRecordRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load day record %s: %w", plan.FormatDate(date), err)
	}

	mutate(&record.Tasks[slot-1])
	if err := s.dayRecordRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update day record %s: %w", record.DateString(), err)
	}

	s.refreshLoadedRecord(record)
	return record, nil
}

// refreshLoadedRecord swaps an edited record into the loaded cycle snapshot
// so reads after a write see the new task state without a reload.
func (s *NavigatorService) refreshLoadedRecord(record *plan.DayRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.dayRecords {
		if existing.Date.Equal(record.Date) {
			s.dayRecords[i] = record
			return
		}
	}
}

// UpdateCycleGoals replaces the up-to-three goals of a cycle.
func (s *NavigatorService) UpdateCycleGoals(ctx context.Context, cycleID int64, goal1, goal2, goal3 string) (*plan.Cycle, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycle %d: %w", cycleID, err)
	}

	cycle.SetGoals(goal1, goal2, goal3)
	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return nil, fmt.Errorf("failed to update cycle %d: %w", cycleID, err)
	}

	s.mu.Lock()
	if s.cycle != nil && s.cycle.ID == cycle.ID {
		s.cycle = cycle
	}
	s.mu.Unlock()
	return cycle, nil
}

// YearOverview returns the 36 cycles of a year, generating them if needed.
func (s *NavigatorService) YearOverview(ctx context.Context, year int) ([]*plan.Cycle, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.ensureYearCycles(ctx, year); err != nil {
		return nil, err
	}
	cycles, err := s.cycleRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles for year %d: %w", year, err)
	}
	return cycles, nil
}

// --- Snapshot accessors ---

func (s *NavigatorService) State() NavigatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *NavigatorService) CurrentCycle() *plan.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycle
}

func (s *NavigatorService) DayRecords() []*plan.DayRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dayRecords
}

func (s *NavigatorService) SelectedDay() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedDay
}

// SelectedRecord returns the record at the selected day, or nil outside Ready.
func (s *NavigatorService) SelectedRecord() *plan.DayRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil
	}
	for _, record := range s.dayRecords {
		if record.DayInCycle == s.selectedDay {
			return record
		}
	}
	return nil
}

func clampDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > plan.DaysPerCycle {
		return plan.DaysPerCycle
	}
	return day
}
