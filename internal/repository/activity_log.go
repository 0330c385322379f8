package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

// ActivityLogRepository persists dispatcher activity entries.
type ActivityLogRepository struct {
	pool *pgxpool.Pool
}

func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{pool: pool}
}

func (r *ActivityLogRepository) Append(ctx context.Context, entry domain.ActivityEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_log (source, status, detail, created_at) VALUES ($1, $2, $3, $4)`,
		entry.Source, entry.Status, entry.Detail, time.Now().UTC(),
	)
	return err
}

// ActivityRecord is a stored activity entry.
type ActivityRecord struct {
	ID        int64
	Entry     domain.ActivityEntry
	CreatedAt time.Time
}

// ListRecent returns the newest entries first.
func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]ActivityRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, source, status, detail, created_at
		 FROM activity_log ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ActivityRecord, 0)
	for rows.Next() {
		var rec ActivityRecord
		if err := rows.Scan(&rec.ID, &rec.Entry.Source, &rec.Entry.Status, &rec.Entry.Detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
