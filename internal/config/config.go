package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable, e.g. SHOPMATE_PORT.
const EnvPrefix = "SHOPMATE"

type Config struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// APIKey protects write endpoints when set.
	APIKey      string   `envconfig:"API_KEY"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:8051,http://127.0.0.1:8051,*"`

	GeminiAPIKey    string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GroqAPIKey      string        `envconfig:"GROQ_API_KEY"`
	GroqModel       string        `envconfig:"GROQ_MODEL" default:"llama3-70b-8192"`
	GroqBaseURL     string        `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	AnthropicAPIKey string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-haiku-latest"`
	LLMTimeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"30s"`

	// EmbeddingProvider is auto, openai, gemini or hash. Auto prefers
	// OpenAI, then Gemini, then the offline hash embedder.
	EmbeddingProvider   string `envconfig:"EMBEDDING_PROVIDER" default:"auto"`
	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"384"`

	// KnowledgeSource is a Google Doc id, an s3://bucket/key URI, a URL or a file path.
	KnowledgeSource string `envconfig:"KNOWLEDGE_SOURCE"`

	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3UsePathStyle bool   `envconfig:"S3_USE_PATH_STYLE" default:"true"`

	SerpAPIKey string `envconfig:"SERPAPI_KEY"`

	GuardRules string `envconfig:"GUARD_RULES"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"2s"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.EmbeddingDimensions <= 0 {
		return nil, fmt.Errorf("failed to process config: EMBEDDING_DIMENSIONS must be positive, got %d", cfg.EmbeddingDimensions)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) HasGroq() bool {
	return c.GroqAPIKey != ""
}

func (c *Config) HasAnthropic() bool {
	return c.AnthropicAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasS3 reports whether object storage is configured. Credentials may come
// from the default AWS chain, so only the knowledge source or an endpoint
// is required.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" || (len(c.KnowledgeSource) > 5 && c.KnowledgeSource[:5] == "s3://")
}

func (c *Config) HasSerpAPI() bool {
	return c.SerpAPIKey != ""
}

// TracesSampleRate samples every trace in development and 10% elsewhere.
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
