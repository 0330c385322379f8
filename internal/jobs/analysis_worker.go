package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/logging"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3
)

// AnalysisJobRepository defines the interface for analysis job persistence
type AnalysisJobRepository interface {
	// GetPendingJobs retrieves and claims pending analysis jobs
	GetPendingJobs(ctx context.Context) ([]*domain.AnalysisJob, error)

	// UpdateJobStatus updates the status of an analysis job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.AnalysisJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// ProductAnalyzer runs the review analysis for one product.
type ProductAnalyzer interface {
	AnalyzeProduct(ctx context.Context, productID int64) error
}

// AnalysisWorker processes analysis jobs
type AnalysisWorker struct {
	repo     AnalysisJobRepository
	analyzer ProductAnalyzer
}

// NewAnalysisWorker creates a new AnalysisWorker instance
func NewAnalysisWorker(repo AnalysisJobRepository, analyzer ProductAnalyzer) *AnalysisWorker {
	return &AnalysisWorker{
		repo:     repo,
		analyzer: analyzer,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *AnalysisWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	logging.L().Info("processing pending analysis jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			logging.L().Error("error processing job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	return nil
}

func (w *AnalysisWorker) processJob(ctx context.Context, job *domain.AnalysisJob) error {
	if job.ProductID <= 0 {
		return fmt.Errorf("job %s has no product_id", job.ID)
	}

	log := logging.L().With(zap.String("job_id", job.ID), zap.Int64("product_id", job.ProductID))
	log.Info("processing analysis job")

	if err := w.analyzer.AnalyzeProduct(ctx, job.ProductID); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.AnalysisJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Info("analysis job completed")
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *AnalysisWorker) handleJobFailure(ctx context.Context, job *domain.AnalysisJob, jobErr error) error {
	log := logging.L().With(zap.String("job_id", job.ID))
	log.Warn("analysis job failed", zap.Error(jobErr))

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Warn("analysis job exceeded max retries, marking as failed", zap.Int("max_retries", MaxRetries))
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.AnalysisJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Info("analysis job will be retried", zap.Int32("attempt", job.Retries+1), zap.Int("max_retries", MaxRetries))
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.AnalysisJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
