package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// WorkerManager manages the analysis workers
type WorkerManager struct {
	workers []Worker
	runs    RunExecutor
	log     logrus.FieldLogger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(runs RunExecutor, log logrus.FieldLogger) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers: make([]Worker, 0),
		runs:    runs,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartAll starts count analysis workers polling every pollInterval
func (wm *WorkerManager) StartAll(count int, pollInterval time.Duration) error {
	if count < 1 {
		return fmt.Errorf("worker count must be positive, got %d", count)
	}

	wm.log.Infof("Starting %d analysis workers", count)

	for i := 0; i < count; i++ {
		worker := NewAnalysisWorker(fmt.Sprintf("analysis-%d", i+1), wm.runs, pollInterval, wm.log)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	wm.log.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			wm.log.WithError(err).Errorf("Error stopping worker %s", worker.GetWorkerID())
		}
	}

	wm.wg.Wait()

	wm.log.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			wm.log.WithError(err).Errorf("Worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool, len(wm.workers))
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
