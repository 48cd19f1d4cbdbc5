package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the status of an analysis run
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in-progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one queued or executed analysis
type Run struct {
	ID           string     `json:"id"`
	Status       RunStatus  `json:"status"`
	Config       Config     `json:"config"`
	Report       *Report    `json:"report,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	WorkerID     *string    `json:"worker_id,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewRun creates a pending run with a generated UUID. The token is stripped
// from the stored config.
func NewRun(cfg Config) *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.New().String(),
		Status:    RunStatusPending,
		Config:    cfg.Redacted(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPending checks if the run is pending
func (r *Run) IsPending() bool {
	return r.Status == RunStatusPending
}

// IsCompleted checks if the run is completed
func (r *Run) IsCompleted() bool {
	return r.Status == RunStatusCompleted
}

// IsFailed checks if the run is failed
func (r *Run) IsFailed() bool {
	return r.Status == RunStatusFailed
}

// MarkStarted marks the run as started by a worker
func (r *Run) MarkStarted(workerID string) {
	now := time.Now()
	r.Status = RunStatusInProgress
	r.WorkerID = &workerID
	r.StartedAt = &now
}

// MarkCompleted marks the run as completed with its report
func (r *Run) MarkCompleted(report *Report) {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.Report = report
	r.CompletedAt = &now
}

// MarkFailed marks the run as failed
func (r *Run) MarkFailed(message string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.ErrorMessage = &message
	r.CompletedAt = &now
}
