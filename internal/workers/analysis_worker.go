package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alimgiray/glscope/internal/models"
)

// RunExecutor claims queued runs and executes them
type RunExecutor interface {
	ClaimNext(workerID string) (*models.Run, error)
	Execute(ctx context.Context, run *models.Run) error
}

// AnalysisWorker executes queued analysis runs one at a time
type AnalysisWorker struct {
	*BaseWorker
	runs         RunExecutor
	pollInterval time.Duration
	log          logrus.FieldLogger
}

// NewAnalysisWorker creates a new analysis worker
func NewAnalysisWorker(workerID string, runs RunExecutor, pollInterval time.Duration, log logrus.FieldLogger) *AnalysisWorker {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &AnalysisWorker{
		BaseWorker:   NewBaseWorker(workerID),
		runs:         runs,
		pollInterval: pollInterval,
		log:          log.WithField("worker_id", workerID),
	}
}

// Start polls for pending runs until ctx is done or the worker is stopped
func (w *AnalysisWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)
	w.log.Info("Analysis worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Analysis worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			w.log.Info("Analysis worker stopping")
			return nil
		default:
		}

		run, err := w.runs.ClaimNext(w.WorkerID)
		if err != nil {
			w.log.WithError(err).Error("Error getting run")
			w.wait(ctx)
			continue
		}

		if run == nil {
			w.wait(ctx)
			continue
		}

		w.processRun(ctx, run)
	}
}

func (w *AnalysisWorker) processRun(ctx context.Context, run *models.Run) {
	log := w.log.WithField("run_id", run.ID)
	log.Info("Processing run")

	started := time.Now()
	if err := w.runs.Execute(ctx, run); err != nil {
		log.WithError(err).Error("Run failed")
		return
	}

	log.WithField("elapsed", time.Since(started).String()).Info("Run completed")
}

func (w *AnalysisWorker) wait(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.StopChan:
	case <-timer.C:
	}
}
