package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingAPI is a mock for the OpenAI API
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func TestOpenAIEmbedder_Embed_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	e := &OpenAIEmbedder{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	texts := []string{"pierwszy", "drugi"}
	expected := [][]float32{{0.1, 0.2, 0.3, 0.4}, {0.4, 0.3, 0.2, 0.1}}

	mockAPI.On("CreateEmbeddings", ctx, texts).Return(expected, nil)

	vecs, err := e.Embed(ctx, texts)

	assert.NoError(t, err)
	assert.Equal(t, expected, vecs)
	mockAPI.AssertExpectations(t)
}

func TestOpenAIEmbedder_Embed_EmptyText(t *testing.T) {
	e := NewOpenAIEmbedder(OpenAIConfig{})

	vecs, err := e.Embed(context.Background(), []string{"ok", ""})

	assert.Nil(t, vecs)
	assert.Equal(t, ErrEmptyText, err)
}

func TestOpenAIEmbedder_Embed_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	e := &OpenAIEmbedder{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"x"}).Return(nil, errors.New("API rate limit exceeded"))

	vecs, err := e.Embed(ctx, []string{"x"})

	assert.Error(t, err)
	assert.Nil(t, vecs)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestOpenAIEmbedder_Embed_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	e := &OpenAIEmbedder{api: mockAPI, dimensions: 4}

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"x"}).Return([][]float32{{1, 2}}, nil)

	_, err := e.Embed(ctx, []string{"x"})

	var dimErr *WrongDimensionsError
	assert.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestNewOpenAIEmbedder_Defaults(t *testing.T) {
	e := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test-api-key"})

	assert.NotNil(t, e.api)
	assert.Equal(t, DefaultDimensions, e.Dimensions())
	assert.Equal(t, "openai:text-embedding-3-small", e.Model())
}
