// Package index is an in-memory exact nearest-neighbour index over
// paragraph chunks of a knowledge document.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cloo-solutions/shopmate/internal/embedding"
)

// DefaultTopK is the number of chunks returned when k is not positive.
const DefaultTopK = 2

const (
	embedBatchSize   = 16
	embedParallelism = 4
)

// ErrAlreadyBuilt is returned by a second call to Build.
var ErrAlreadyBuilt = errors.New("index already built")

// Chunk is one retrievable paragraph and its vector.
type Chunk struct {
	Text   string
	Vector []float32
}

// Index stores chunk vectors in insertion order. It is built once and
// read-only afterwards; queries wait for the build to finish.
type Index struct {
	embedder embedding.Embedder

	built  bool
	mu     sync.Mutex
	ready  chan struct{}
	chunks []Chunk
}

// New creates an empty, unbuilt index.
func New(embedder embedding.Embedder) *Index {
	return &Index{
		embedder: embedder,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Build has finished, successfully or not.
func (ix *Index) Ready() <-chan struct{} {
	return ix.ready
}

// Len returns the number of stored chunks. It is zero before Build completes.
func (ix *Index) Len() int {
	select {
	case <-ix.ready:
		return len(ix.chunks)
	default:
		return 0
	}
}

// Build splits documentText into chunks, embeds them and releases the
// ready barrier. Empty text yields an empty built index. On embedding
// failure the index stays empty and the error is returned.
func (ix *Index) Build(ctx context.Context, documentText string) error {
	ix.mu.Lock()
	if ix.built {
		ix.mu.Unlock()
		return ErrAlreadyBuilt
	}
	ix.built = true
	ix.mu.Unlock()
	defer close(ix.ready)

	texts := SplitParagraphs(documentText, MinChunkLength)
	if len(texts) == 0 {
		return nil
	}

	vectors, err := ix.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	chunks := make([]Chunk, len(texts))
	for i := range texts {
		chunks[i] = Chunk{Text: texts[i], Vector: vectors[i]}
	}
	ix.chunks = chunks
	return nil
}

func (ix *Index) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	dim := ix.embedder.Dimensions()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedParallelism)
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		g.Go(func() error {
			batch, err := ix.embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), end-start)
			}
			for i, v := range batch {
				if len(v) != dim {
					return &embedding.WrongDimensionsError{Expected: dim, Got: len(v)}
				}
				vectors[start+i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Query returns the texts of the k chunks nearest to text by Euclidean
// distance, nearest first. Ties keep insertion order. An empty index
// returns an empty slice.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]string, error) {
	select {
	case <-ix.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if len(ix.chunks) == 0 {
		return []string{}, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	qv, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, embedding.ErrNoEmbeddings
	}
	if len(qv[0]) != len(ix.chunks[0].Vector) {
		return nil, &embedding.WrongDimensionsError{Expected: len(ix.chunks[0].Vector), Got: len(qv[0])}
	}

	type scored struct {
		pos  int
		dist float64
	}
	results := make([]scored, len(ix.chunks))
	for i, c := range ix.chunks {
		results[i] = scored{pos: i, dist: squaredL2(qv[0], c.Vector)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].dist < results[j].dist
	})

	if len(results) > k {
		results = results[:k]
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = ix.chunks[r.pos].Text
	}
	return out, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
