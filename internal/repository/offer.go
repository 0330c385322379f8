package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/domain"
)

type OfferRepository struct {
	db dbtx
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{db: pool}
}

func NewOfferRepositoryWithTx(tx pgx.Tx) *OfferRepository {
	return &OfferRepository{db: tx}
}

func (r *OfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO offers (product_id, store_name, price, link)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		o.ProductID, o.StoreName, o.Price, o.Link,
	).Scan(&o.ID)
}

// ListByProduct returns offers in insertion order.
func (r *OfferRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Offer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, store_name, price, link
		 FROM offers WHERE product_id = $1 ORDER BY id ASC`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]*domain.Offer, 0)
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.ProductID, &o.StoreName, &o.Price, &o.Link); err != nil {
			return nil, err
		}
		offers = append(offers, &o)
	}
	return offers, rows.Err()
}
