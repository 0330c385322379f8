package domain

import (
	"fmt"
	"time"
)

// AnalysisJobStatus represents the status of an analysis job
type AnalysisJobStatus string

const (
	AnalysisJobStatusPending    AnalysisJobStatus = "pending"
	AnalysisJobStatusProcessing AnalysisJobStatus = "processing"
	AnalysisJobStatusCompleted  AnalysisJobStatus = "completed"
	AnalysisJobStatusFailed     AnalysisJobStatus = "failed"
)

// AnalysisJob represents an async review analysis job
type AnalysisJob struct {
	ID          string
	ProductID   int64
	Status      AnalysisJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewAnalysisJob creates a pending AnalysisJob for the given product
func NewAnalysisJob(id string, productID int64, createdAt time.Time) *AnalysisJob {
	return &AnalysisJob{
		ID:        id,
		ProductID: productID,
		Status:    AnalysisJobStatusPending,
		CreatedAt: createdAt,
	}
}

// ValidateAnalysisJob validates an AnalysisJob instance
func ValidateAnalysisJob(j *AnalysisJob) error {
	if j == nil {
		return fmt.Errorf("analysis job cannot be nil")
	}
	if j.ID == "" {
		return fmt.Errorf("analysis job ID is required")
	}
	if j.ProductID <= 0 {
		return fmt.Errorf("analysis job ProductID is required")
	}
	if !isValidAnalysisJobStatus(j.Status) {
		return fmt.Errorf("analysis job Status is invalid: %s", j.Status)
	}
	if j.Retries < 0 {
		return fmt.Errorf("analysis job Retries cannot be negative")
	}
	return nil
}

func isValidAnalysisJobStatus(s AnalysisJobStatus) bool {
	switch s {
	case AnalysisJobStatusPending, AnalysisJobStatusProcessing,
		AnalysisJobStatusCompleted, AnalysisJobStatusFailed:
		return true
	}
	return false
}
