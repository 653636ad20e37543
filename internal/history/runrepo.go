package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/reviewloop/rcr/internal/domain"
)

// ErrRunNotFound indicates no stored run matches the given ID.
var ErrRunNotFound = errors.New("run not found")

// RunRepo stores and retrieves workflow runs.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save persists a closed run and its outcomes in one transaction.
func (r *RunRepo) Save(ctx context.Context, run domain.WorkflowRun) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, pr, status, abort_reason, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.PR, run.Status.String(), run.AbortReason,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	for i, o := range run.Outcomes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_outcomes (run_id, position, comment_id, path, final_state, attempts, justification)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, o.CommentID, o.Path, o.FinalState.String(), o.Attempts, o.Justification,
		)
		if err != nil {
			return fmt.Errorf("insert outcome %s/%s: %w", run.ID, o.CommentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// List returns stored runs, newest first, without their outcomes. A
// non-empty pr filters to that pull request; limit <= 0 means no limit.
func (r *RunRepo) List(ctx context.Context, pr string, limit int) ([]domain.WorkflowRun, error) {
	query := `SELECT id, pr, status, abort_reason, started_at, finished_at FROM runs`
	var args []any
	if pr != "" {
		query += ` WHERE pr = ?`
		args = append(args, pr)
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.WorkflowRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run with its outcomes in processing order.
func (r *RunRepo) Get(ctx context.Context, id string) (domain.WorkflowRun, error) {
	row := r.db.Reader.QueryRowContext(ctx, `
		SELECT id, pr, status, abort_reason, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WorkflowRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return domain.WorkflowRun{}, err
	}

	rows, err := r.db.Reader.QueryContext(ctx, `
		SELECT comment_id, path, final_state, attempts, justification
		FROM run_outcomes WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return domain.WorkflowRun{}, fmt.Errorf("list outcomes for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o domain.CommentOutcome
		var state string
		if err := rows.Scan(&o.CommentID, &o.Path, &state, &o.Attempts, &o.Justification); err != nil {
			return domain.WorkflowRun{}, fmt.Errorf("scan outcome: %w", err)
		}
		o.FinalState, err = domain.ParseStateKind(state)
		if err != nil {
			return domain.WorkflowRun{}, err
		}
		run.Outcomes = append(run.Outcomes, o)
	}
	return run, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.WorkflowRun, error) {
	var run domain.WorkflowRun
	var status, started, finished string
	if err := row.Scan(&run.ID, &run.PR, &status, &run.AbortReason, &started, &finished); err != nil {
		return domain.WorkflowRun{}, err
	}

	if status == domain.RunAborted.String() {
		run.Status = domain.RunAborted
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return domain.WorkflowRun{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return domain.WorkflowRun{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}
