// Package embedding turns text into fixed-dimension vectors for the
// knowledge index.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// DefaultDimensions matches the multilingual MiniLM vector space the
// knowledge index was designed around.
const DefaultDimensions = 384

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoEmbeddings is returned when a provider answers without vectors
	ErrNoEmbeddings = errors.New("no embedding data returned")
)

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// WrongDimensionsError reports a vector whose length differs from the configured dimension.
type WrongDimensionsError struct {
	Expected int
	Got      int
}

func (e *WrongDimensionsError) Error() string {
	return fmt.Sprintf("embedding has wrong dimensions, expected %d got %d", e.Expected, e.Got)
}

func checkDimensions(vectors [][]float32, expected int) error {
	for _, v := range vectors {
		if len(v) != expected {
			return &WrongDimensionsError{Expected: expected, Got: len(v)}
		}
	}
	return nil
}

func checkTexts(texts []string) error {
	for _, t := range texts {
		if t == "" {
			return ErrEmptyText
		}
	}
	return nil
}
