package domain

import "time"

// AnalysisStatus represents the state of the review analysis for a product
type AnalysisStatus string

const (
	AnalysisStatusNone       AnalysisStatus = "none"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusError      AnalysisStatus = "error"
)

// Insight is the language-model summary of a product's reviews.
type Insight struct {
	ProductID int64
	Status    AnalysisStatus
	Summary   string
	Pros      string
	Cons      string
	UpdatedAt time.Time
}

// NeedsAnalysis reports whether a product with this insight should be queued
// for analysis. A nil insight has never been analyzed.
func (i *Insight) NeedsAnalysis() bool {
	return i == nil || i.Status == AnalysisStatusNone
}

// IsValidAnalysisStatus checks if an AnalysisStatus is valid
func IsValidAnalysisStatus(s AnalysisStatus) bool {
	switch s {
	case AnalysisStatusNone, AnalysisStatusProcessing,
		AnalysisStatusCompleted, AnalysisStatusError:
		return true
	}
	return false
}
