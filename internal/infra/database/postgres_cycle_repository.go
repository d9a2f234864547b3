// internal/infra/database/postgres_cycle_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"tendays_plan_bot/internal/domain/plan"
)

// Custom errors specific to the plan repositories
var ErrCycleNotFound = fmt.Errorf("cycle not found")
var ErrDayRecordNotFound = fmt.Errorf("day record not found")

type PostgresCycleRepository struct {
	db       *sql.DB
	notifier *plan.ChangeNotifier
}

// NewPostgresCycleRepository creates a cycle repository. The notifier may be
// nil; mutations are then silent.
func NewPostgresCycleRepository(db *sql.DB, notifier *plan.ChangeNotifier) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db, notifier: notifier}
}

const cycleColumns = `cycle_id, year, cycle_number, start_date, end_date, goal1, goal2, goal3`

func scanCycle(row *sql.Row) (*plan.Cycle, error) {
	c := plan.Cycle{}
	err := row.Scan(&c.ID, &c.Year, &c.Number, &c.StartDate, &c.EndDate, &c.Goal1, &c.Goal2, &c.Goal3)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error scanning cycle row: %w", err)
	}
	c.StartDate = plan.DateOnly(c.StartDate)
	c.EndDate = plan.DateOnly(c.EndDate)
	return &c, nil
}

func scanCycles(rows *sql.Rows) ([]*plan.Cycle, error) {
	cycles := make([]*plan.Cycle, 0)
	for rows.Next() {
		c := plan.Cycle{}
		if err := rows.Scan(&c.ID, &c.Year, &c.Number, &c.StartDate, &c.EndDate, &c.Goal1, &c.Goal2, &c.Goal3); err != nil {
			return nil, fmt.Errorf("error scanning cycle row: %w", err)
		}
		c.StartDate = plan.DateOnly(c.StartDate)
		c.EndDate = plan.DateOnly(c.EndDate)
		cycles = append(cycles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}
	return cycles, nil
}

func (r *PostgresCycleRepository) GetByYearAndNumber(ctx context.Context, year, number int) (*plan.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles WHERE year = $1 AND cycle_number = $2`
	return scanCycle(r.db.QueryRowContext(ctx, query, year, number))
}

func (r *PostgresCycleRepository) GetByID(ctx context.Context, id int64) (*plan.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles WHERE cycle_id = $1`
	return scanCycle(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresCycleRepository) ListByYear(ctx context.Context, year int) ([]*plan.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles WHERE year = $1 ORDER BY cycle_number`
	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("error querying cycles by year: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}

func (r *PostgresCycleRepository) ListAll(ctx context.Context) ([]*plan.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM cycles ORDER BY year, cycle_number`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying all cycles: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}

// Update persists goal edits. Identity fields are calendar-derived and are
// never rewritten here.
func (r *PostgresCycleRepository) Update(ctx context.Context, cycle *plan.Cycle) error {
	query := `UPDATE cycles SET goal1 = $1, goal2 = $2, goal3 = $3 WHERE cycle_id = $4`
	result, err := r.db.ExecContext(ctx, query, cycle.Goal1, cycle.Goal2, cycle.Goal3, cycle.ID)
	if err != nil {
		return fmt.Errorf("error updating cycle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking cycle update result: %w", err)
	}
	if affected == 0 {
		return ErrCycleNotFound
	}
	r.notifier.Publish(plan.TopicCycles)
	return nil
}

// BulkUpsert inserts cycles with replace-on-conflict semantics keyed by
// cycle_id, so concurrent "ensure year exists" calls stay idempotent.
func (r *PostgresCycleRepository) BulkUpsert(ctx context.Context, cycles []*plan.Cycle) error {
	if len(cycles) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for cycle upsert: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO cycles (`+cycleColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (cycle_id) DO UPDATE SET
            year = EXCLUDED.year,
            cycle_number = EXCLUDED.cycle_number,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date,
            goal1 = EXCLUDED.goal1,
            goal2 = EXCLUDED.goal2,
            goal3 = EXCLUDED.goal3`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for cycle upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cycles {
		_, err := stmt.ExecContext(ctx, c.ID, c.Year, c.Number, c.StartDate, c.EndDate, c.Goal1, c.Goal2, c.Goal3)
		if err != nil {
			return fmt.Errorf("error upserting cycle %d/%d: %w", c.Year, c.Number, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle upsert: %w", err)
	}
	r.notifier.Publish(plan.TopicCycles)
	return nil
}

func (r *PostgresCycleRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cycles`); err != nil {
		return fmt.Errorf("error deleting all cycles: %w", err)
	}
	r.notifier.Publish(plan.TopicCycles)
	return nil
}
