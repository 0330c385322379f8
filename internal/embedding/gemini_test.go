package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type MockGeminiAPI struct {
	mock.Mock
}

func (m *MockGeminiAPI) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.EmbedContentResponse), args.Error(1)
}

func TestGeminiEmbedder_Embed_RequestsDimension(t *testing.T) {
	api := new(MockGeminiAPI)
	e := newGeminiEmbedder(api, "", 3)

	resp := &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{
		{Values: []float32{1, 0, 0}},
		{Values: []float32{0, 1, 0}},
	}}
	api.On("EmbedContent", mock.Anything, DefaultGeminiModel, mock.Anything,
		mock.MatchedBy(func(cfg *genai.EmbedContentConfig) bool {
			return cfg.OutputDimensionality != nil && *cfg.OutputDimensionality == 3
		}),
	).Return(resp, nil)

	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vecs)
	api.AssertExpectations(t)
}

func TestGeminiEmbedder_Embed_Errors(t *testing.T) {
	api := new(MockGeminiAPI)
	e := newGeminiEmbedder(api, "m", 3)

	api.On("EmbedContent", mock.Anything, "m", mock.Anything, mock.Anything).
		Return(nil, errors.New("quota")).Once()
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "gemini embed failed")

	api.On("EmbedContent", mock.Anything, "m", mock.Anything, mock.Anything).
		Return(&genai.EmbedContentResponse{}, nil).Once()
	_, err = e.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrNoEmbeddings)
}

func TestNewGeminiEmbedder_RequiresKey(t *testing.T) {
	_, err := NewGeminiEmbedder(context.Background(), "", "", 0)
	assert.Error(t, err)
}
