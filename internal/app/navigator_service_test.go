package app

import (
	"context"
	"io"
	"testing"
	"time"

	"tendays_plan_bot/internal/domain/plan"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestNavigator() (*NavigatorService, *fakeCycleRepo, *fakeDayRecordRepo) {
	cycleRepo := newFakeCycleRepo()
	recordRepo := newFakeDayRecordRepo()
	svc := NewNavigatorService(cycleRepo, recordRepo, 2024, testLogger())
	return svc, cycleRepo, recordRepo
}

func TestSelectDate_GeneratesYearAndCycle(t *testing.T) {
	svc, cycleRepo, recordRepo := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectDate(ctx, date(2025, time.January, 15)))

	assert.Equal(t, StateReady, svc.State())
	assert.Len(t, cycleRepo.cycles, plan.CyclesPerYear)
	assert.Len(t, recordRepo.records, plan.DaysPerCycle)

	cycle := svc.CurrentCycle()
	require.NotNil(t, cycle)
	assert.Equal(t, 2025, cycle.Year)
	assert.Equal(t, 2, cycle.Number)
	assert.Equal(t, date(2025, time.January, 11), cycle.StartDate)
	assert.Equal(t, 5, svc.SelectedDay())

	record := svc.SelectedRecord()
	require.NotNil(t, record)
	assert.Equal(t, "2025-01-15", record.DateString())
}

func TestSelectDate_IsIdempotent(t *testing.T) {
	svc, cycleRepo, recordRepo := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectDate(ctx, date(2025, time.January, 15)))
	require.NoError(t, svc.SelectDate(ctx, date(2025, time.January, 15)))

	assert.Len(t, cycleRepo.cycles, plan.CyclesPerYear)
	assert.Len(t, recordRepo.records, plan.DaysPerCycle)
}

func TestSelectDate_EditsSurviveReselection(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()
	day := date(2025, time.January, 15)

	require.NoError(t, svc.SelectDate(ctx, day))
	_, err := svc.SetTask(ctx, day, 1, "write weekly report", "report", "", "2h")
	require.NoError(t, err)

	// Reselecting must not regenerate blank records over existing ones.
	require.NoError(t, svc.SelectDate(ctx, day))
	record := svc.SelectedRecord()
	require.NotNil(t, record)
	assert.Equal(t, "write weekly report", record.Tasks[0].Text.String)
}

func TestSelectDate_BoundaryDateTransitionsToEmpty(t *testing.T) {
	svc, cycleRepo, _ := newTestNavigator()
	ctx := context.Background()

	err := svc.SelectDate(ctx, date(2025, time.December, 31))
	assert.ErrorIs(t, err, plan.ErrDateOutsideCycles)
	assert.Equal(t, StateEmpty, svc.State())
	assert.Nil(t, svc.CurrentCycle())
	assert.Nil(t, svc.SelectedRecord())
	assert.Empty(t, cycleRepo.cycles)
}

func TestSelectCycle_RejectsBadNumber(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()

	assert.ErrorIs(t, svc.SelectCycle(ctx, 2025, 0), plan.ErrCycleNumberOutOfRange)
	assert.ErrorIs(t, svc.SelectCycle(ctx, 2025, 37), plan.ErrCycleNumberOutOfRange)
}

func TestSelectDay_ClampsAndRequiresReady(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()

	assert.ErrorIs(t, svc.SelectDay(3), ErrNotReady)

	require.NoError(t, svc.SelectCycle(ctx, 2025, 2))
	require.NoError(t, svc.SelectDay(7))
	assert.Equal(t, 7, svc.SelectedDay())

	require.NoError(t, svc.SelectDay(0))
	assert.Equal(t, 1, svc.SelectedDay())
	require.NoError(t, svc.SelectDay(99))
	assert.Equal(t, plan.DaysPerCycle, svc.SelectedDay())
}

func TestAdvanceCycle_StopsAtYearEdges(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectCycle(ctx, 2025, 1))
	assert.ErrorIs(t, svc.AdvanceCycle(ctx, DirectionPrevious), ErrFirstCycleOfYear)

	require.NoError(t, svc.AdvanceCycle(ctx, DirectionNext))
	assert.Equal(t, 2, svc.CurrentCycle().Number)

	require.NoError(t, svc.SelectCycle(ctx, 2025, 36))
	assert.ErrorIs(t, svc.AdvanceCycle(ctx, DirectionNext), ErrLastCycleOfYear)

	require.NoError(t, svc.AdvanceCycle(ctx, DirectionPrevious))
	assert.Equal(t, 35, svc.CurrentCycle().Number)
}

func TestPreviousCycleSameDay_CrossesYearBoundary(t *testing.T) {
	svc, cycleRepo, _ := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectCycle(ctx, 2025, 1))
	require.NoError(t, svc.SelectDay(5))

	record, err := svc.PreviousCycleSameDay(ctx)
	require.NoError(t, err)
	require.NotNil(t, record)

	// Cycle 36 of 2024 starts Dec 16; its day 5 is Dec 20.
	assert.Equal(t, plan.CycleID(2024, 36), record.CycleID)
	assert.Equal(t, 5, record.DayInCycle)
	assert.Equal(t, "2024-12-20", record.DateString())

	// The previous year's cycles were generated on demand.
	assert.Len(t, cycleRepo.cycles, 2*plan.CyclesPerYear)

	// The current selection is untouched.
	assert.Equal(t, 2025, svc.CurrentCycle().Year)
	assert.Equal(t, 1, svc.CurrentCycle().Number)
}

func TestPreviousCycleSameDay_RespectsMinimumYear(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectCycle(ctx, 2024, 1))
	_, err := svc.PreviousCycleSameDay(ctx)
	assert.ErrorIs(t, err, ErrNoPreviousCycle)
}

func TestPreviousCycleSameDay_RequiresSelection(t *testing.T) {
	svc, _, _ := newTestNavigator()
	_, err := svc.PreviousCycleSameDay(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestLoadFailureKeepsPreviousSelection(t *testing.T) {
	svc, cycleRepo, _ := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectCycle(ctx, 2025, 3))
	require.NoError(t, svc.SelectDay(4))

	cycleRepo.fail = true
	err := svc.SelectCycle(ctx, 2025, 7)
	require.Error(t, err)

	// The last good selection is still in place.
	assert.Equal(t, StateReady, svc.State())
	assert.Equal(t, 3, svc.CurrentCycle().Number)
	assert.Equal(t, 4, svc.SelectedDay())
}

func TestSetTask_BlankSubFieldsKeepExistingValues(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()
	day := date(2025, time.January, 15)

	require.NoError(t, svc.SelectDate(ctx, day))

	record, err := svc.SetTask(ctx, day, 2, "run 5k", "running", "around the park", "1h")
	require.NoError(t, err)
	assert.Equal(t, "run 5k", record.Tasks[1].Text.String)
	assert.Equal(t, "running", record.Tasks[1].Name.String)

	// Blank name/detail/time keep the stored sub-fields; text is replaced.
	record, err = svc.SetTask(ctx, day, 2, "run 10k", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "run 10k", record.Tasks[1].Text.String)
	assert.Equal(t, "running", record.Tasks[1].Name.String)
	assert.Equal(t, "around the park", record.Tasks[1].Detail.String)
	assert.Equal(t, "1h", record.Tasks[1].Time.String)

	// Blank text clears the display text.
	record, err = svc.SetTask(ctx, day, 2, "", "", "", "")
	require.NoError(t, err)
	assert.False(t, record.Tasks[1].Text.Valid)
	assert.Equal(t, "running", record.Tasks[1].Name.String)

	// The loaded snapshot reflects the write without a reload.
	assert.Equal(t, "running", svc.SelectedRecord().Tasks[1].Name.String)
}

func TestSetTaskCompletedAndClearTask(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()
	day := date(2025, time.January, 15)

	require.NoError(t, svc.SelectDate(ctx, day))
	_, err := svc.SetTask(ctx, day, 6, "meditate", "meditation", "", "20 min")
	require.NoError(t, err)

	record, err := svc.SetTaskCompleted(ctx, day, 6, true)
	require.NoError(t, err)
	assert.True(t, record.Tasks[5].Completed)

	record, err = svc.ClearTask(ctx, day, 6)
	require.NoError(t, err)
	assert.True(t, record.Tasks[5].IsEmpty())
}

func TestEditRejectsSlotOutOfRange(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()
	day := date(2025, time.January, 15)
	require.NoError(t, svc.SelectDate(ctx, day))

	_, err := svc.SetTask(ctx, day, 0, "x", "", "", "")
	assert.ErrorIs(t, err, ErrTaskSlotOutOfRange)
	_, err = svc.SetTaskCompleted(ctx, day, 7, true)
	assert.ErrorIs(t, err, ErrTaskSlotOutOfRange)
	_, err = svc.ClearTask(ctx, day, -1)
	assert.ErrorIs(t, err, ErrTaskSlotOutOfRange)
}

func TestUpdateCycleGoals(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()

	require.NoError(t, svc.SelectCycle(ctx, 2025, 2))
	cycleID := svc.CurrentCycle().ID

	updated, err := svc.UpdateCycleGoals(ctx, cycleID, "ship the release", "", "read two books")
	require.NoError(t, err)
	assert.Equal(t, "ship the release", updated.Goal1.String)
	assert.False(t, updated.Goal2.Valid)
	assert.Equal(t, "read two books", updated.Goal3.String)

	// The loaded cycle snapshot is refreshed in place.
	assert.Equal(t, "ship the release", svc.CurrentCycle().Goal1.String)
}

func TestYearOverview(t *testing.T) {
	svc, _, _ := newTestNavigator()
	ctx := context.Background()

	cycles, err := svc.YearOverview(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, cycles, plan.CyclesPerYear)
	assert.Equal(t, 1, cycles[0].Number)
	assert.Equal(t, 36, cycles[35].Number)
	assert.Equal(t, date(2026, time.January, 1), cycles[0].StartDate)
}
