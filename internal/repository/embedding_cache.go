package repository

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingCacheRepository stores chunk vectors keyed by model and content hash.
type EmbeddingCacheRepository struct {
	db dbtx
}

func NewEmbeddingCacheRepository(pool *pgxpool.Pool) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{db: pool}
}

// GetMany returns the cached vectors among hashes. Misses are absent from the map.
func (r *EmbeddingCacheRepository) GetMany(ctx context.Context, model string, hashes []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(hashes))
	if len(hashes) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT content_hash, embedding FROM embedding_cache
		 WHERE model = $1 AND content_hash = ANY($2)`,
		model, hashes,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		var vec pgvector.Vector
		if err := rows.Scan(&hash, &vec); err != nil {
			return nil, err
		}
		out[hash] = vec.Slice()
	}
	return out, rows.Err()
}

// PutMany stores vectors. Existing entries are kept.
func (r *EmbeddingCacheRepository) PutMany(ctx context.Context, model string, vectors map[string][]float32) error {
	hashes := make([]string, 0, len(vectors))
	for h := range vectors {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	for _, h := range hashes {
		_, err := r.db.Exec(ctx,
			`INSERT INTO embedding_cache (model, content_hash, embedding)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (model, content_hash) DO NOTHING`,
			model, h, pgvector.NewVector(vectors[h]),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
