package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/repositories"
	"github.com/alimgiray/glscope/pkg/metrics"
)

// Analyzer produces a report for a config
type Analyzer interface {
	Analyze(ctx context.Context, cfg models.Config) (*models.Report, error)
}

// RunService handles run creation and bookkeeping. Tokens never reach the
// database; they are held in memory until the run settles.
type RunService struct {
	runRepo  *repositories.RunRepository
	analyzer Analyzer

	mu     sync.Mutex
	tokens map[string]string
}

// NewRunService creates a new run service
func NewRunService(runRepo *repositories.RunRepository, analyzer Analyzer) *RunService {
	return &RunService{
		runRepo:  runRepo,
		analyzer: analyzer,
		tokens:   make(map[string]string),
	}
}

// CreateRun validates cfg and enqueues a pending run for it
func (s *RunService) CreateRun(cfg models.Config) (*models.Run, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run := models.NewRun(cfg)

	s.mu.Lock()
	s.tokens[run.ID] = cfg.Token
	s.mu.Unlock()

	if err := s.runRepo.Create(run); err != nil {
		s.forgetToken(run.ID)
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// GetRun retrieves a run by ID
func (s *RunService) GetRun(id string) (*models.Run, error) {
	return s.runRepo.GetByID(id)
}

// ListRuns retrieves all runs without their reports
func (s *RunService) ListRuns() ([]*models.Run, error) {
	return s.runRepo.List()
}

// InterruptedRunMessage is the error message of runs left unfinished by a
// previous process
const InterruptedRunMessage = "run interrupted by server restart"

// RecoverInterrupted fails runs that a previous process left pending or in
// progress. Their tokens died with that process, so they can never execute.
func (s *RunService) RecoverInterrupted() (int64, error) {
	n, err := s.runRepo.FailUnfinished(InterruptedRunMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to recover interrupted runs: %w", err)
	}
	if n > 0 {
		metrics.Runs.WithLabelValues(string(models.RunStatusFailed)).Add(float64(n))
	}
	return n, nil
}

// ClaimNext marks the oldest pending run as started by workerID
func (s *RunService) ClaimNext(workerID string) (*models.Run, error) {
	return s.runRepo.GetNextPending(workerID)
}

// Execute analyzes a claimed run and stores its outcome
func (s *RunService) Execute(ctx context.Context, run *models.Run) error {
	cfg := run.Config
	cfg.Token = s.forgetToken(run.ID)

	report, err := s.analyzer.Analyze(ctx, cfg)
	if err != nil {
		run.MarkFailed(err.Error())
	} else {
		run.MarkCompleted(report)
	}
	metrics.Runs.WithLabelValues(string(run.Status)).Inc()

	if updateErr := s.runRepo.Update(run); updateErr != nil {
		return fmt.Errorf("failed to store run %s: %w", run.ID, updateErr)
	}
	return err
}

func (s *RunService) forgetToken(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.tokens[id]
	delete(s.tokens, id)
	return token
}
