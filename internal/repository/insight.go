package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

type InsightRepository struct {
	db dbtx
}

func NewInsightRepository(pool *pgxpool.Pool) *InsightRepository {
	return &InsightRepository{db: pool}
}

func NewInsightRepositoryWithTx(tx pgx.Tx) *InsightRepository {
	return &InsightRepository{db: tx}
}

// Upsert writes the insight for its product, replacing any previous one.
func (r *InsightRepository) Upsert(ctx context.Context, i *domain.Insight) error {
	if !domain.IsValidAnalysisStatus(i.Status) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid analysis status: "+string(i.Status))
	}
	updatedAt := i.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO insights (product_id, status, summary, pros, cons, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (product_id) DO UPDATE
		 SET status = EXCLUDED.status,
		     summary = EXCLUDED.summary,
		     pros = EXCLUDED.pros,
		     cons = EXCLUDED.cons,
		     updated_at = EXCLUDED.updated_at`,
		i.ProductID, i.Status, i.Summary, i.Pros, i.Cons, updatedAt,
	)
	return err
}

func (r *InsightRepository) GetByProductID(ctx context.Context, productID int64) (*domain.Insight, error) {
	var i domain.Insight
	err := r.db.QueryRow(ctx,
		`SELECT product_id, status, summary, pros, cons, updated_at
		 FROM insights WHERE product_id = $1`,
		productID,
	).Scan(&i.ProductID, &i.Status, &i.Summary, &i.Pros, &i.Cons, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsightNotFound
		}
		return nil, err
	}
	return &i, nil
}
