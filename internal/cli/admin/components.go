package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/config"
	"github.com/cloo-solutions/shopmate/internal/database"
	"github.com/cloo-solutions/shopmate/internal/embedding"
	"github.com/cloo-solutions/shopmate/internal/guard"
	"github.com/cloo-solutions/shopmate/internal/index"
	"github.com/cloo-solutions/shopmate/internal/knowledge"
	"github.com/cloo-solutions/shopmate/internal/llm"
	"github.com/cloo-solutions/shopmate/internal/logging"
	"github.com/cloo-solutions/shopmate/internal/storage"
)

// Embedding provider names accepted in SHOPMATE_EMBEDDING_PROVIDER.
const (
	embedderAuto   = "auto"
	embedderOpenAI = "openai"
	embedderGemini = "gemini"
	embedderHash   = "hash"
)

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolOptions{})
	if err != nil {
		return nil, err
	}
	logging.L().Info("connected to database")
	return pool, nil
}

// newObjectStore returns nil when no S3 endpoint or s3:// source is configured.
func newObjectStore(ctx context.Context, cfg *config.Config) (*storage.S3Client, error) {
	if !cfg.HasS3() {
		return nil, nil
	}
	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		UsePathStyle:    cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return client, nil
}

// newEmbedder picks the embedding backend. Auto prefers OpenAI, then
// Gemini, then the offline hash embedder.
func newEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.EmbeddingProvider))
	if provider == embedderAuto || provider == "" {
		switch {
		case cfg.HasOpenAI():
			provider = embedderOpenAI
		case cfg.HasGemini():
			provider = embedderGemini
		default:
			provider = embedderHash
		}
	}

	switch provider {
	case embedderOpenAI:
		if !cfg.HasOpenAI() {
			return nil, fmt.Errorf("embedding provider %q requires SHOPMATE_OPENAI_API_KEY", provider)
		}
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
		}), nil
	case embedderGemini:
		if !cfg.HasGemini() {
			return nil, fmt.Errorf("embedding provider %q requires SHOPMATE_GEMINI_API_KEY", provider)
		}
		return embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	case embedderHash:
		return embedding.NewHashEmbedder(cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// newProviders builds the auto chain in fallback order: Gemini, Groq,
// Anthropic. Providers without a key are skipped.
func newProviders(ctx context.Context, cfg *config.Config) ([]llm.Provider, error) {
	var providers []llm.Provider
	if cfg.HasGemini() {
		gemini, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini provider: %w", err)
		}
		providers = append(providers, gemini)
	}
	if cfg.HasGroq() {
		providers = append(providers, llm.NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL))
	}
	if cfg.HasAnthropic() {
		providers = append(providers, llm.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}
	if len(providers) == 0 {
		logging.L().Warn("no model provider configured, chat answers with the overloaded message")
	}
	return providers, nil
}

func newGuard(cfg *config.Config) (*guard.Guard, error) {
	if cfg.GuardRules == "" {
		return guard.Default(), nil
	}
	rules, err := guard.LoadRules(cfg.GuardRules)
	if err != nil {
		return nil, err
	}
	g, err := guard.New(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid guard rules %s: %w", cfg.GuardRules, err)
	}
	logging.L().Info("guard rules loaded", zap.String("path", cfg.GuardRules))
	return g, nil
}

// buildIndex fetches the knowledge document and builds ix. Failures leave
// the index empty and are only logged.
func buildIndex(ctx context.Context, ix *index.Index, loader *knowledge.Loader, source string) {
	text := loader.Fetch(ctx, source)
	if err := ix.Build(ctx, text); err != nil {
		logging.L().Error("knowledge index build failed", zap.Error(err))
		return
	}
	logging.L().Info("knowledge index ready", zap.Int("chunks", ix.Len()))
}

// objectGetter avoids handing the loader a typed nil client.
func objectGetter(client *storage.S3Client) knowledge.ObjectGetter {
	if client == nil {
		return nil
	}
	return client
}
