package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
)

// CacheStore persists vectors keyed by model and content hash.
type CacheStore interface {
	GetMany(ctx context.Context, model string, hashes []string) (map[string][]float32, error)
	PutMany(ctx context.Context, model string, vectors map[string][]float32) error
}

// ModelNamer is implemented by embedders that can name their vector space.
type ModelNamer interface {
	Model() string
}

// CachedEmbedder serves vectors from a CacheStore and embeds only misses.
// Cache failures degrade to a direct call on the inner embedder.
type CachedEmbedder struct {
	inner Embedder
	store CacheStore
	model string
}

// NewCachedEmbedder wraps inner with a vector cache.
func NewCachedEmbedder(inner Embedder, store CacheStore) *CachedEmbedder {
	model := "unknown"
	if n, ok := inner.(ModelNamer); ok {
		model = n.Model()
	}
	return &CachedEmbedder{inner: inner, store: store, model: model}
}

// Model returns the inner embedder's model name, the cache key namespace.
func (c *CachedEmbedder) Model() string {
	return c.model
}

// Dimensions returns the inner embedder's vector length.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// Embed returns one vector per text, reading the cache first.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	hashes := make([]string, len(texts))
	for i, t := range texts {
		hashes[i] = ContentHash(t)
	}

	cached, err := c.store.GetMany(ctx, c.model, hashes)
	if err != nil {
		logging.L().Warn("embedding cache read failed", zap.String("model", c.model), zap.Error(err))
		cached = nil
	}

	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, h := range hashes {
		if v, ok := cached[h]; ok && len(v) == c.inner.Dimensions() {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, texts[i])
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	toStore := make(map[string][]float32, len(fresh))
	for j, v := range fresh {
		out[missIdx[j]] = v
		toStore[hashes[missIdx[j]]] = v
	}
	if err := c.store.PutMany(ctx, c.model, toStore); err != nil {
		logging.L().Warn("embedding cache write failed", zap.String("model", c.model), zap.Error(err))
	}
	return out, nil
}

// ContentHash returns the hex sha256 of text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
