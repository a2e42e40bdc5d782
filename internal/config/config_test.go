package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TR_GEMINI_API_KEY", "dummy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8011 {
		t.Errorf("expected Port to be 8011, got %v", cfg.Port)
	}
	if cfg.CacheBackend != CacheRedis {
		t.Errorf("expected CacheBackend to be redis, got %v", cfg.CacheBackend)
	}
	if cfg.CacheNamespace != "llm_server" {
		t.Errorf("expected CacheNamespace to be llm_server, got %v", cfg.CacheNamespace)
	}
	if cfg.CacheTTL() != 180*24*time.Hour {
		t.Errorf("expected CacheTTL to be 180 days, got %v", cfg.CacheTTL())
	}
	if cfg.EmbeddingDim != 768 {
		t.Errorf("expected EmbeddingDim to be 768, got %v", cfg.EmbeddingDim)
	}
	if cfg.ModelTimeout() != time.Minute {
		t.Errorf("expected ModelTimeout to be 1m, got %v", cfg.ModelTimeout())
	}
	if cfg.IndexEnabled() {
		t.Error("expected index to be disabled without TR_QDRANT_HOST")
	}
	if cfg.OTelExporter != "none" {
		t.Errorf("expected OTelExporter to be none, got %v", cfg.OTelExporter)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TR_USE_LOCAL_ONLY_LLM", "true")
	t.Setenv("TR_PORT", "9000")
	t.Setenv("TR_CACHE_BACKEND", "sqlite")
	t.Setenv("TR_QDRANT_HOST", "qdrant")
	t.Setenv("TR_CACHE_TTL_HOURS", "24")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected Port to be 9000, got %v", cfg.Port)
	}
	if cfg.CacheBackend != CacheSQLite {
		t.Errorf("expected sqlite backend, got %v", cfg.CacheBackend)
	}
	if !cfg.IndexEnabled() {
		t.Error("expected index to be enabled")
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Errorf("expected CacheTTL to be 24h, got %v", cfg.CacheTTL())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:            8011,
			GeminiAPIKey:    "key",
			CacheBackend:    CacheMemory,
			CacheTTLHours:   1,
			EmbeddingDim:    768,
			ModelTimeoutSec: 60,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing gemini key", func(c *Config) { c.GeminiAPIKey = "" }, true},
		{"local only without key", func(c *Config) { c.GeminiAPIKey = ""; c.UseLocalOnlyLLM = true }, false},
		{"port out of range", func(c *Config) { c.Port = 70000 }, true},
		{"unknown backend", func(c *Config) { c.CacheBackend = "memcached" }, true},
		{"redis without url", func(c *Config) { c.CacheBackend = CacheRedis }, true},
		{"sqlite without path", func(c *Config) { c.CacheBackend = CacheSQLite }, true},
		{"zero ttl", func(c *Config) { c.CacheTTLHours = 0 }, true},
		{"zero dimension", func(c *Config) { c.EmbeddingDim = 0 }, true},
		{"zero timeout", func(c *Config) { c.ModelTimeoutSec = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("TR_GEMINI_API_KEY", "dummy")
	t.Setenv("TR_PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
