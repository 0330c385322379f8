package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini embedding model.
const DefaultGeminiModel = "gemini-embedding-001"

// GeminiAPI is the slice of the genai client the embedder needs.
type GeminiAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder generates embeddings using Google's Gemini API.
type GeminiEmbedder struct {
	api        GeminiAPI
	model      string
	dimensions int
}

// NewGeminiEmbedder creates a Gemini embedder truncated to the given dimension.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dimensions int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiEmbedder(client.Models, model, dimensions), nil
}

func newGeminiEmbedder(api GeminiAPI, model string, dimensions int) *GeminiEmbedder {
	if model == "" {
		model = DefaultGeminiModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &GeminiEmbedder{api: api, model: model, dimensions: dimensions}
}

// Dimensions returns the vector length.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model name.
func (e *GeminiEmbedder) Model() string {
	return "gemini:" + e.model
}

// Embed generates embeddings for multiple texts in one request.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := checkTexts(texts); err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(e.dimensions)
	result, err := e.api.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, ErrNoEmbeddings
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	if err := checkDimensions(out, e.dimensions); err != nil {
		return nil, err
	}
	return out, nil
}
