package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultGroqModel is used when no model is configured.
	DefaultGroqModel = "llama3-70b-8192"
	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

// ChatCompleter is the slice of the go-openai client the provider needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAICompatProvider completes prompts against any OpenAI-compatible
// chat completions endpoint.
type OpenAICompatProvider struct {
	name   string
	client ChatCompleter
	model  string
}

// NewGroqProvider creates a provider for Groq.
func NewGroqProvider(apiKey, model, baseURL string) *OpenAICompatProvider {
	if model == "" {
		model = DefaultGroqModel
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAICompatProvider{
		name:   "groq",
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAICompatProvider) Name() string { return p.name }

// Complete sends prompt as a single user message.
func (p *OpenAICompatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
