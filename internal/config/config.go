package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
)

// Config holds every environment dependent setting of the service.
type Config struct {
	Port     int    `env:"TR_PORT" envDefault:"8011"`
	LogLevel string `env:"TR_LOG_LEVEL" envDefault:"info"`

	GeminiAPIKey      string `env:"TR_GEMINI_API_KEY"`
	GeminiModel       string `env:"TR_GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	GeminiEmbedModel  string `env:"TR_GEMINI_EMBED_MODEL" envDefault:"text-embedding-004"`
	OllamaHost        string `env:"TR_OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaLLMModel    string `env:"TR_OLLAMA_LLM_MODEL" envDefault:"llama3"`
	OllamaEmbedModel  string `env:"TR_OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	OllamaPullOnStart bool   `env:"TR_OLLAMA_PULL_ON_START" envDefault:"false"`
	UseLocalOnlyLLM   bool   `env:"TR_USE_LOCAL_ONLY_LLM" envDefault:"false"`
	EmbedWithLocal    bool   `env:"TR_EMBED_WITH_LOCAL" envDefault:"false"`
	EmbeddingDim      int    `env:"TR_EMBEDDING_DIM" envDefault:"768"`
	ModelTimeoutSec   int    `env:"TR_MODEL_TIMEOUT_SEC" envDefault:"60"`

	CacheBackend          string `env:"TR_CACHE_BACKEND" envDefault:"redis"`
	RedisURL              string `env:"TR_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SQLitePath            string `env:"TR_SQLITE_PATH" envDefault:"taskrouter.db"`
	CacheNamespace        string `env:"TR_CACHE_NAMESPACE" envDefault:"llm_server"`
	CacheTTLHours         int    `env:"TR_CACHE_TTL_HOURS" envDefault:"4320"`
	MemoryCacheCapacity   int    `env:"TR_MEMORY_CACHE_CAPACITY" envDefault:"10000"`
	CacheBreakerThreshold int    `env:"TR_CACHE_BREAKER_THRESHOLD" envDefault:"5"`
	CacheBreakerOpenSec   int    `env:"TR_CACHE_BREAKER_OPEN_SEC" envDefault:"30"`

	QdrantHost       string `env:"TR_QDRANT_HOST"`
	QdrantPort       int    `env:"TR_QDRANT_PORT" envDefault:"6334"`
	QdrantCollection string `env:"TR_QDRANT_COLLECTION" envDefault:"envelopes"`

	OTelExporter string `env:"TR_OTEL_EXPORTER" envDefault:"none"`
	OTelEndpoint string `env:"TR_OTEL_ENDPOINT"`

	CatalogFile string `env:"TR_CATALOG_FILE"`
}

func (c *Config) Validate() error {
	if !c.UseLocalOnlyLLM && c.GeminiAPIKey == "" {
		return fmt.Errorf("TR_GEMINI_API_KEY is required when TR_USE_LOCAL_ONLY_LLM is false")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("TR_PORT must be between 1 and 65535")
	}

	switch c.CacheBackend {
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("TR_REDIS_URL is required when TR_CACHE_BACKEND is redis")
		}
	case CacheSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("TR_SQLITE_PATH is required when TR_CACHE_BACKEND is sqlite")
		}
	case CacheMemory:
	default:
		return fmt.Errorf("TR_CACHE_BACKEND must be one of redis, sqlite, memory; got %q", c.CacheBackend)
	}

	if c.CacheTTLHours <= 0 {
		return fmt.Errorf("TR_CACHE_TTL_HOURS must be positive")
	}

	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("TR_EMBEDDING_DIM must be positive")
	}

	if c.ModelTimeoutSec <= 0 {
		return fmt.Errorf("TR_MODEL_TIMEOUT_SEC must be positive")
	}

	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.ModelTimeoutSec) * time.Second
}

func (c *Config) CacheBreakerOpen() time.Duration {
	return time.Duration(c.CacheBreakerOpenSec) * time.Second
}

// IndexEnabled reports whether envelope embeddings are indexed in Qdrant.
func (c *Config) IndexEnabled() bool {
	return c.QdrantHost != ""
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
