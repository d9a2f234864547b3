// internal/infra/database/postgres_day_record_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tendays_plan_bot/internal/domain/plan"
)

type PostgresDayRecordRepository struct {
	db       *sql.DB
	notifier *plan.ChangeNotifier
}

// NewPostgresDayRecordRepository creates a day record repository. The
// notifier may be nil; mutations are then silent.
func NewPostgresDayRecordRepository(db *sql.DB, notifier *plan.ChangeNotifier) *PostgresDayRecordRepository {
	return &PostgresDayRecordRepository{db: db, notifier: notifier}
}

// dayRecordColumnList returns the full column list of the 'day_records'
// table: the three identity/position columns followed by five columns per
// task slot. Queries are generated from it so the 33-column layout is
// declared exactly once.
func dayRecordColumnList() []string {
	cols := []string{"date", "cycle_id", "day_in_cycle"}
	for slot := 1; slot <= plan.TasksPerDay; slot++ {
		cols = append(cols,
			fmt.Sprintf("task%d", slot),
			fmt.Sprintf("task%d_completed", slot),
			fmt.Sprintf("task%d_name", slot),
			fmt.Sprintf("task%d_detail", slot),
			fmt.Sprintf("task%d_time", slot),
		)
	}
	return cols
}

var (
	dayRecordColumns     = strings.Join(dayRecordColumnList(), ", ")
	dayRecordUpsertQuery = buildDayRecordUpsertQuery()
	dayRecordUpdateQuery = buildDayRecordUpdateQuery()
)

func buildDayRecordUpsertQuery() string {
	cols := dayRecordColumnList()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	// date is the conflict key; everything else is replaced.
	assignments := make([]string, 0, len(cols)-1)
	for _, col := range cols[1:] {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return fmt.Sprintf(`INSERT INTO day_records (%s) VALUES (%s) ON CONFLICT (date) DO UPDATE SET %s`,
		dayRecordColumns, strings.Join(placeholders, ", "), strings.Join(assignments, ", "))
}

func buildDayRecordUpdateQuery() string {
	cols := dayRecordColumnList()[3:] // task columns only
	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
	}
	return fmt.Sprintf(`UPDATE day_records SET %s WHERE date = $%d`,
		strings.Join(assignments, ", "), len(cols)+1)
}

func dayRecordScanDest(rec *plan.DayRecord) []any {
	dest := []any{&rec.Date, &rec.CycleID, &rec.DayInCycle}
	for i := range rec.Tasks {
		t := &rec.Tasks[i]
		dest = append(dest, &t.Text, &t.Completed, &t.Name, &t.Detail, &t.Time)
	}
	return dest
}

func dayRecordTaskArgs(rec *plan.DayRecord) []any {
	args := make([]any, 0, plan.TasksPerDay*5)
	for i := range rec.Tasks {
		t := rec.Tasks[i]
		args = append(args, t.Text, t.Completed, t.Name, t.Detail, t.Time)
	}
	return args
}

func scanDayRecords(rows *sql.Rows) ([]*plan.DayRecord, error) {
	records := make([]*plan.DayRecord, 0)
	for rows.Next() {
		rec := plan.DayRecord{}
		if err := rows.Scan(dayRecordScanDest(&rec)...); err != nil {
			return nil, fmt.Errorf("error scanning day record row: %w", err)
		}
		rec.Date = plan.DateOnly(rec.Date)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day record rows: %w", err)
	}
	return records, nil
}

func (r *PostgresDayRecordRepository) GetByDate(ctx context.Context, date time.Time) (*plan.DayRecord, error) {
	query := `SELECT ` + dayRecordColumns + ` FROM day_records WHERE date = $1`
	rec := plan.DayRecord{}
	err := r.db.QueryRowContext(ctx, query, plan.DateOnly(date)).Scan(dayRecordScanDest(&rec)...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDayRecordNotFound
		}
		return nil, fmt.Errorf("error getting day record by date: %w", err)
	}
	rec.Date = plan.DateOnly(rec.Date)
	return &rec, nil
}

func (r *PostgresDayRecordRepository) ListByCycleID(ctx context.Context, cycleID int64) ([]*plan.DayRecord, error) {
	query := `SELECT ` + dayRecordColumns + ` FROM day_records WHERE cycle_id = $1 ORDER BY day_in_cycle`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error querying day records by cycle: %w", err)
	}
	defer rows.Close()
	return scanDayRecords(rows)
}

func (r *PostgresDayRecordRepository) ListByYear(ctx context.Context, year int) ([]*plan.DayRecord, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	query := `SELECT ` + dayRecordColumns + ` FROM day_records WHERE date >= $1 AND date < $2 ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("error querying day records by year: %w", err)
	}
	defer rows.Close()
	return scanDayRecords(rows)
}

func (r *PostgresDayRecordRepository) ListAll(ctx context.Context) ([]*plan.DayRecord, error) {
	query := `SELECT ` + dayRecordColumns + ` FROM day_records ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying all day records: %w", err)
	}
	defer rows.Close()
	return scanDayRecords(rows)
}

// Update persists task slot edits for an existing record. The cycle
// reference and day position are derived values and are never rewritten.
func (r *PostgresDayRecordRepository) Update(ctx context.Context, record *plan.DayRecord) error {
	args := append(dayRecordTaskArgs(record), plan.DateOnly(record.Date))
	result, err := r.db.ExecContext(ctx, dayRecordUpdateQuery, args...)
	if err != nil {
		return fmt.Errorf("error updating day record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking day record update result: %w", err)
	}
	if affected == 0 {
		return ErrDayRecordNotFound
	}
	r.notifier.Publish(plan.TopicDayRecords)
	return nil
}

// BulkUpsert inserts records with replace-on-conflict semantics keyed by
// date, keeping lazy ten-at-a-time generation idempotent.
func (r *PostgresDayRecordRepository) BulkUpsert(ctx context.Context, records []*plan.DayRecord) error {
	if len(records) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for day record upsert: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, dayRecordUpsertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for day record upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		args := append([]any{plan.DateOnly(rec.Date), rec.CycleID, rec.DayInCycle}, dayRecordTaskArgs(rec)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("error upserting day record %s: %w", rec.DateString(), err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit day record upsert: %w", err)
	}
	r.notifier.Publish(plan.TopicDayRecords)
	return nil
}

func (r *PostgresDayRecordRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM day_records`); err != nil {
		return fmt.Errorf("error deleting all day records: %w", err)
	}
	r.notifier.Publish(plan.TopicDayRecords)
	return nil
}
