// internal/domain/plan/repository.go
package plan

import (
	"context"
	"time"
)

// CycleRepository defines persistence operations for Cycle entities.
// Bulk writes carry upsert (replace-on-conflict) semantics so that lazy
// generation stays idempotent under concurrent triggering.
type CycleRepository interface {
	GetByYearAndNumber(ctx context.Context, year, number int) (*Cycle, error)
	GetByID(ctx context.Context, id int64) (*Cycle, error)
	ListByYear(ctx context.Context, year int) ([]*Cycle, error)
	ListAll(ctx context.Context) ([]*Cycle, error)
	Update(ctx context.Context, cycle *Cycle) error
	BulkUpsert(ctx context.Context, cycles []*Cycle) error
	DeleteAll(ctx context.Context) error
}

// DayRecordRepository defines persistence operations for DayRecord entities,
// keyed by calendar date.
type DayRecordRepository interface {
	GetByDate(ctx context.Context, date time.Time) (*DayRecord, error)
	ListByCycleID(ctx context.Context, cycleID int64) ([]*DayRecord, error)
	ListByYear(ctx context.Context, year int) ([]*DayRecord, error)
	ListAll(ctx context.Context) ([]*DayRecord, error)
	Update(ctx context.Context, record *DayRecord) error
	BulkUpsert(ctx context.Context, records []*DayRecord) error
	DeleteAll(ctx context.Context) error
}
