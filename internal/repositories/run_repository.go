package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/glscope/internal/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, status, config, report, error_message, worker_id, started_at, completed_at, created_at, updated_at`

// RunRepository handles database operations for runs
type RunRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create creates a new run
func (r *RunRepository) Create(run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	config, report, err := encodeRun(run)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Status,
		config,
		report,
		run.ErrorMessage,
		run.WorkerID,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
		run.UpdatedAt,
	)
	return err
}

// GetByID retrieves a run by ID
func (r *RunRepository) GetByID(id string) (*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

// List retrieves all runs, newest first, without their reports
func (r *RunRepository) List() ([]*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, status, config, NULL, error_message, worker_id, started_at, completed_at, created_at, updated_at
		FROM runs
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetNextPending claims the oldest pending run (FIFO) for workerID and marks
// it in-progress. It returns nil when nothing is pending.
func (r *RunRepository) GetNextPending(workerID string) (*models.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	run, err := scanRun(tx.QueryRow(query, models.RunStatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	run.MarkStarted(workerID)
	run.UpdatedAt = time.Now()

	updateQuery := `
		UPDATE runs
		SET status = ?, worker_id = ?, started_at = ?, updated_at = ?
		WHERE id = ?
	`

	if _, err = tx.Exec(updateQuery, run.Status, run.WorkerID, run.StartedAt, run.UpdatedAt, run.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return run, nil
}

// Update updates a run
func (r *RunRepository) Update(run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	config, report, err := encodeRun(run)
	if err != nil {
		return err
	}
	run.UpdatedAt = time.Now()

	query := `
		UPDATE runs
		SET status = ?, config = ?, report = ?, error_message = ?, worker_id = ?,
		    started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.Exec(query,
		run.Status,
		config,
		report,
		run.ErrorMessage,
		run.WorkerID,
		run.StartedAt,
		run.CompletedAt,
		run.UpdatedAt,
		run.ID,
	)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// FailUnfinished marks every pending or in-progress run as failed with
// message and returns how many runs changed
func (r *RunRepository) FailUnfinished(message string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	query := `
		UPDATE runs
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE status IN (?, ?)
	`

	res, err := r.db.Exec(query,
		models.RunStatusFailed,
		message,
		now,
		now,
		models.RunStatusPending,
		models.RunStatusInProgress,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run    models.Run
		config string
		report sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&run.Status,
		&config,
		&report,
		&run.ErrorMessage,
		&run.WorkerID,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(config), &run.Config); err != nil {
		return nil, fmt.Errorf("decode config of run %s: %w", run.ID, err)
	}
	if report.Valid && report.String != "" {
		run.Report = &models.Report{}
		if err := json.Unmarshal([]byte(report.String), run.Report); err != nil {
			return nil, fmt.Errorf("decode report of run %s: %w", run.ID, err)
		}
	}

	return &run, nil
}

func encodeRun(run *models.Run) (string, sql.NullString, error) {
	config, err := json.Marshal(run.Config.Redacted())
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("encode config: %w", err)
	}

	var report sql.NullString
	if run.Report != nil {
		data, err := json.Marshal(run.Report)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("encode report: %w", err)
		}
		report = sql.NullString{String: string(data), Valid: true}
	}

	return string(config), report, nil
}
