package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker represents a background job worker
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop. It blocks until ctx is cancelled
// or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log := logging.L().With(zap.Duration("poll_interval", w.pollInterval))
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Info("worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Error("error processing jobs", zap.Error(err))
			}
		}
	}
}

// Stop gracefully stops the worker and waits for the current poll to finish.
// It must only be called after Start.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
	logging.L().Info("worker shutdown complete")
}
