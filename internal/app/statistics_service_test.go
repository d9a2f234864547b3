package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"tendays_plan_bot/internal/domain/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedTaskRecord(d time.Time, cycleID int64, day int, name, timeText string) *plan.DayRecord {
	r := plan.NewDayRecord(d, cycleID, day)
	r.Tasks[0] = plan.TaskSlot{
		Name: sql.NullString{String: name, Valid: true},
		Time: sql.NullString{String: timeText, Valid: true},
	}
	return r
}

func TestAnalyzeYearScopesRecords(t *testing.T) {
	recordRepo := newFakeDayRecordRepo()
	svc := NewStatisticsService(recordRepo, testLogger())
	ctx := context.Background()

	require.NoError(t, recordRepo.BulkUpsert(ctx, []*plan.DayRecord{
		namedTaskRecord(date(2024, time.March, 1), plan.CycleID(2024, 6), 1, "running", "1h"),
		namedTaskRecord(date(2025, time.March, 1), plan.CycleID(2025, 6), 1, "running", "2h"),
		namedTaskRecord(date(2025, time.March, 2), plan.CycleID(2025, 6), 2, "reading", "30 min"),
	}))

	results, err := svc.AnalyzeYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "running", results[0].Name)
	assert.Equal(t, 1, results[0].Frequency)
	assert.InDelta(t, 2.0, results[0].TotalHours, 1e-9)

	all, err := svc.AnalyzeAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "running", all[0].Name)
	assert.Equal(t, 2, all[0].Frequency)
	assert.InDelta(t, 3.0, all[0].TotalHours, 1e-9)
}

func TestAnalyzeYearPropagatesStoreErrors(t *testing.T) {
	recordRepo := newFakeDayRecordRepo()
	recordRepo.fail = true
	svc := NewStatisticsService(recordRepo, testLogger())

	_, err := svc.AnalyzeYear(context.Background(), 2025)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.AnalyzeAll(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}
