package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

const defaultClaimLimit = 10

type AnalysisJobRepository struct {
	db dbtx
}

func NewAnalysisJobRepository(pool *pgxpool.Pool) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: pool}
}

func NewAnalysisJobRepositoryWithTx(tx pgx.Tx) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: tx}
}

const analysisJobColumns = `id, product_id, status, retries, error, created_at, processed_at`

func scanAnalysisJob(row pgx.Row) (*domain.AnalysisJob, error) {
	var job domain.AnalysisJob
	var errMsg pgtype.Text
	if err := row.Scan(&job.ID, &job.ProductID, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

func (r *AnalysisJobRepository) Create(ctx context.Context, job *domain.AnalysisJob) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO analysis_jobs (id, product_id, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.ProductID, job.Status, job.Retries, nullableString(job.Error), job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *AnalysisJobRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	job, err := scanAnalysisJob(r.db.QueryRow(ctx,
		`SELECT `+analysisJobColumns+` FROM analysis_jobs WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// GetPendingJobs claims up to ten pending jobs, oldest first. Claimed rows
// move to processing, so concurrent workers never receive the same job.
func (r *AnalysisJobRepository) GetPendingJobs(ctx context.Context) ([]*domain.AnalysisJob, error) {
	return r.ClaimPending(ctx, defaultClaimLimit)
}

func (r *AnalysisJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.AnalysisJob, error) {
	if limit <= 0 {
		limit = defaultClaimLimit
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM analysis_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE analysis_jobs
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE analysis_jobs.id = cte.id
		 RETURNING analysis_jobs.id, analysis_jobs.product_id, analysis_jobs.status, analysis_jobs.retries,
		           analysis_jobs.error, analysis_jobs.created_at, analysis_jobs.processed_at`,
		domain.AnalysisJobStatusPending, limit, domain.AnalysisJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.AnalysisJob
	for rows.Next() {
		job, err := scanAnalysisJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *AnalysisJobRepository) UpdateJobStatus(ctx context.Context, jobID string, status domain.AnalysisJobStatus, errMsg string) error {
	var processedAt *time.Time
	if status == domain.AnalysisJobStatusCompleted || status == domain.AnalysisJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE analysis_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableString(errMsg), processedAt, jobID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnalysisJobNotFound
	}
	return nil
}

func (r *AnalysisJobRepository) IncrementRetries(ctx context.Context, jobID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE analysis_jobs SET retries = retries + 1 WHERE id = $1`,
		jobID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnalysisJobNotFound
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
