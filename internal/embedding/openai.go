package embedding

import (
	"context"
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel supports a reduced output dimension.
const DefaultOpenAIModel = openai.SmallEmbedding3

// EmbeddingAPI defines the interface for batch embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIAdapter calls the OpenAI embeddings endpoint.
type OpenAIAdapter struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIAdapter creates an adapter requesting vectors of the given dimension.
func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel, dimensions int) *OpenAIAdapter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      a.model,
		Dimensions: a.dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, ErrNoEmbeddings
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, len(data))
	for i, d := range data {
		out[i] = d.Embedding
	}
	return out, nil
}

// OpenAIConfig configures an OpenAIEmbedder.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Dimensions int
}

// OpenAIEmbedder wraps the OpenAI API client
type OpenAIEmbedder struct {
	api        EmbeddingAPI
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder from explicit configuration.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	model := openai.EmbeddingModel(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIEmbedder{
		api:        NewOpenAIAdapter(cfg.APIKey, model, dimensions),
		model:      string(model),
		dimensions: dimensions,
	}
}

// Dimensions returns the vector length.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string {
	return "openai:" + e.model
}

// Embed generates embeddings for the given texts
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := checkTexts(texts); err != nil {
		return nil, err
	}

	vectors, err := e.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if err := checkDimensions(vectors, e.dimensions); err != nil {
		return nil, err
	}
	return vectors, nil
}
