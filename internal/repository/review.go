package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

type ReviewRepository struct {
	db dbtx
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: pool}
}

func NewReviewRepositoryWithTx(tx pgx.Tx) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	source := rev.Source
	if source == "" {
		source = "unknown"
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO reviews (product_id, content, rating, source)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		rev.ProductID, rev.Content, rev.Rating, source,
	).Scan(&rev.ID)
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, content, rating, source
		 FROM reviews WHERE product_id = $1 ORDER BY id ASC`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.Content, &rev.Rating, &rev.Source); err != nil {
			return nil, err
		}
		reviews = append(reviews, &rev)
	}
	return reviews, rows.Err()
}
