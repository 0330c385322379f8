package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/logging"
)

// ActivityRecorder appends one line per dispatch outcome. Recording never
// fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityEntry)
}

// ActivityLogRepositoryInterface persists activity entries.
type ActivityLogRepositoryInterface interface {
	Append(ctx context.Context, entry domain.ActivityEntry) error
}

// LogActivityRecorder writes entries as structured log lines.
type LogActivityRecorder struct {
	logger *zap.Logger
}

// NewLogActivityRecorder creates a recorder on logger, or the shared logger when nil.
func NewLogActivityRecorder(logger *zap.Logger) *LogActivityRecorder {
	return &LogActivityRecorder{logger: logger}
}

func (r *LogActivityRecorder) Record(_ context.Context, entry domain.ActivityEntry) {
	logger := r.logger
	if logger == nil {
		logger = logging.L()
	}
	fields := []zap.Field{
		zap.String("source", entry.Source),
		zap.String("status", string(entry.Status)),
		zap.String("detail", entry.Detail),
	}
	switch entry.Status {
	case domain.ActivityError:
		logger.Error("activity", fields...)
	case domain.ActivityWarn:
		logger.Warn("activity", fields...)
	default:
		logger.Info("activity", fields...)
	}
}

// StoreActivityRecorder persists entries through a repository.
type StoreActivityRecorder struct {
	repo ActivityLogRepositoryInterface
}

// NewStoreActivityRecorder creates a repository-backed recorder.
func NewStoreActivityRecorder(repo ActivityLogRepositoryInterface) *StoreActivityRecorder {
	return &StoreActivityRecorder{repo: repo}
}

func (r *StoreActivityRecorder) Record(ctx context.Context, entry domain.ActivityEntry) {
	if err := r.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		logging.L().Warn("failed to persist activity entry",
			zap.String("source", entry.Source),
			zap.Error(err),
		)
	}
}

// MultiActivityRecorder fans an entry out to several recorders.
type MultiActivityRecorder []ActivityRecorder

func (m MultiActivityRecorder) Record(ctx context.Context, entry domain.ActivityEntry) {
	for _, r := range m {
		r.Record(ctx, entry)
	}
}
