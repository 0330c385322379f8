package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/domain"
	"github.com/cloo-solutions/shopmate/internal/pagination"
	"github.com/cloo-solutions/shopmate/internal/service"
)

type ProductRepository struct {
	db dbtx
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: pool}
}

func NewProductRepositoryWithTx(tx pgx.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

const productColumns = `id, name, price, image_url, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts p and sets its generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO products (name, price, image_url, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		p.Name, p.Price, p.ImageURL, p.CreatedAt,
	).Scan(&p.ID)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		id,
	))
}

// GetByName returns the newest product with exactly this name.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE name = $1 ORDER BY id DESC LIMIT 1`,
		name,
	))
}

// FindLatestByNameSubstring returns the newest product whose name contains
// term, ignoring case. LIKE wildcards in term match literally.
func (r *ProductRepository) FindLatestByNameSubstring(ctx context.Context, term string) (*domain.Product, error) {
	return scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY id DESC
		 LIMIT 1`,
		escapeLike(term),
	))
}

func (r *ProductRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.ProductPageResult, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if cursor == nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+productColumns+` FROM products
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+productColumns+` FROM products
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	result := &service.ProductPageResult{Items: items, HasMore: hasMore}
	if hasMore {
		last := items[len(items)-1]
		result.NextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
