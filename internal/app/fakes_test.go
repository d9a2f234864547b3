package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tendays_plan_bot/internal/domain/plan"
	idb "tendays_plan_bot/internal/infra/database"
)

// errStoreDown simulates an unreachable store when failure injection is on.
var errStoreDown = fmt.Errorf("store unavailable")

// fakeCycleRepo is an in-memory plan.CycleRepository. Setting fail makes
// every operation return errStoreDown.
type fakeCycleRepo struct {
	cycles map[int64]*plan.Cycle
	fail   bool
}

func newFakeCycleRepo() *fakeCycleRepo {
	return &fakeCycleRepo{cycles: make(map[int64]*plan.Cycle)}
}

func (r *fakeCycleRepo) GetByYearAndNumber(_ context.Context, year, number int) (*plan.Cycle, error) {
	if r.fail {
		return nil, errStoreDown
	}
	c, ok := r.cycles[plan.CycleID(year, number)]
	if !ok {
		return nil, idb.ErrCycleNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCycleRepo) GetByID(_ context.Context, id int64) (*plan.Cycle, error) {
	if r.fail {
		return nil, errStoreDown
	}
	c, ok := r.cycles[id]
	if !ok {
		return nil, idb.ErrCycleNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCycleRepo) ListByYear(_ context.Context, year int) ([]*plan.Cycle, error) {
	if r.fail {
		return nil, errStoreDown
	}
	var out []*plan.Cycle
	for _, c := range r.cycles {
		if c.Year == year {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCycleRepo) ListAll(_ context.Context) ([]*plan.Cycle, error) {
	if r.fail {
		return nil, errStoreDown
	}
	out := make([]*plan.Cycle, 0, len(r.cycles))
	for _, c := range r.cycles {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCycleRepo) Update(_ context.Context, cycle *plan.Cycle) error {
	if r.fail {
		return errStoreDown
	}
	if _, ok := r.cycles[cycle.ID]; !ok {
		return idb.ErrCycleNotFound
	}
	clone := *cycle
	r.cycles[cycle.ID] = &clone
	return nil
}

func (r *fakeCycleRepo) BulkUpsert(_ context.Context, cycles []*plan.Cycle) error {
	if r.fail {
		return errStoreDown
	}
	for _, c := range cycles {
		clone := *c
		r.cycles[c.ID] = &clone
	}
	return nil
}

func (r *fakeCycleRepo) DeleteAll(_ context.Context) error {
	if r.fail {
		return errStoreDown
	}
	r.cycles = make(map[int64]*plan.Cycle)
	return nil
}

// fakeDayRecordRepo is an in-memory plan.DayRecordRepository keyed by date.
type fakeDayRecordRepo struct {
	records map[string]*plan.DayRecord
	fail    bool
}

func newFakeDayRecordRepo() *fakeDayRecordRepo {
	return &fakeDayRecordRepo{records: make(map[string]*plan.DayRecord)}
}

func (r *fakeDayRecordRepo) GetByDate(_ context.Context, date time.Time) (*plan.DayRecord, error) {
	if r.fail {
		return nil, errStoreDown
	}
	rec, ok := r.records[plan.FormatDate(date)]
	if !ok {
		return nil, idb.ErrDayRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeDayRecordRepo) ListByCycleID(_ context.Context, cycleID int64) ([]*plan.DayRecord, error) {
	if r.fail {
		return nil, errStoreDown
	}
	var out []*plan.DayRecord
	for _, rec := range r.records {
		if rec.CycleID == cycleID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayInCycle < out[j].DayInCycle })
	return out, nil
}

func (r *fakeDayRecordRepo) ListByYear(_ context.Context, year int) ([]*plan.DayRecord, error) {
	if r.fail {
		return nil, errStoreDown
	}
	var out []*plan.DayRecord
	for _, rec := range r.records {
		if rec.Date.Year() == year {
			clone := *rec
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeDayRecordRepo) ListAll(_ context.Context) ([]*plan.DayRecord, error) {
	if r.fail {
		return nil, errStoreDown
	}
	out := make([]*plan.DayRecord, 0, len(r.records))
	for _, rec := range r.records {
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeDayRecordRepo) Update(_ context.Context, record *plan.DayRecord) error {
	if r.fail {
		return errStoreDown
	}
	key := record.DateString()
	if _, ok := r.records[key]; !ok {
		return idb.ErrDayRecordNotFound
	}
	clone := *record
	r.records[key] = &clone
	return nil
}

func (r *fakeDayRecordRepo) BulkUpsert(_ context.Context, records []*plan.DayRecord) error {
	if r.fail {
		return errStoreDown
	}
	for _, rec := range records {
		clone := *rec
		r.records[rec.DateString()] = &clone
	}
	return nil
}

func (r *fakeDayRecordRepo) DeleteAll(_ context.Context) error {
	if r.fail {
		return errStoreDown
	}
	r.records = make(map[string]*plan.DayRecord)
	return nil
}

// fakeSink is an in-memory backup.Sink.
type fakeSink struct {
	files map[string]string
}

func newFakeSink() *fakeSink {
	return &fakeSink{files: make(map[string]string)}
}

func (s *fakeSink) Write(name, content string) (string, error) {
	location := "mem://" + name
	s.files[location] = content
	return location, nil
}

func (s *fakeSink) Read(location string) (string, error) {
	content, ok := s.files[location]
	if !ok {
		return "", fmt.Errorf("no such backup: %s", location)
	}
	return content, nil
}
