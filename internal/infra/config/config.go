package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Context   ContextConfig   `yaml:"context"`
	Cache     CacheConfig     `yaml:"cache"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// EmbeddingConfig contains Hugging Face inference settings. An empty token
// is a valid state: the embedding client then reports every call as
// unavailable and the service runs on the keyword fallback.
type EmbeddingConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Token   string        `yaml:"token"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// ContextConfig controls context assembly and answer generation.
type ContextConfig struct {
	SemanticMatchLimit  int     `yaml:"semanticMatchLimit"`
	RecentQueriesLimit  int     `yaml:"recentQueriesLimit"`
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	FallbackAnswer      string  `yaml:"fallbackAnswer"`
}

// CacheConfig controls the per-user recency cache.
type CacheConfig struct {
	TTL               time.Duration `yaml:"ttl"`
	MaxQueriesPerUser int           `yaml:"maxQueriesPerUser"`
	SweepInterval     time.Duration `yaml:"sweepInterval"`
	Valkey            ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache backend.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// AnalyticsConfig controls the audit analytics endpoint.
type AnalyticsConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HF_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("HF_TOKEN"); v != "" {
		cfg.Embedding.Token = v
	}
	if v := os.Getenv("HF_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("HF_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Embedding.Timeout = parsed
		}
	}
	if v := os.Getenv("CONTEXT_SEMANTIC_MATCHES_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Context.SemanticMatchLimit = parsed
		}
	}
	if v := os.Getenv("CONTEXT_RECENT_QUERIES_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Context.RecentQueriesLimit = parsed
		}
	}
	if v := os.Getenv("CONTEXT_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Context.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("CONTEXT_FALLBACK_ANSWER"); v != "" {
		cfg.Context.FallbackAnswer = v
	}
	if v := os.Getenv("CACHE_STD_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("CACHE_MAX_QUERIES_PER_USER"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxQueriesPerUser = parsed
		}
	}
	if v := os.Getenv("CACHE_CHECK_PERIOD"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.SweepInterval = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("ANALYTICS_DEFAULT_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Analytics.DefaultLimit = parsed
		}
	}
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://router.huggingface.co/hf-inference/models",
			Model:   "sentence-transformers/all-MiniLM-L6-v2",
			Timeout: 10 * time.Second,
		},
		Context: ContextConfig{
			SemanticMatchLimit:  5,
			RecentQueriesLimit:  5,
			SimilarityThreshold: 0.5,
			FallbackAnswer:      "I don't have enough information to answer that question accurately. Could you please rephrase or provide more details?",
		},
		Cache: CacheConfig{
			TTL:               time.Hour,
			MaxQueriesPerUser: 100,
			SweepInterval:     10 * time.Minute,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Analytics: AnalyticsConfig{
			DefaultLimit: 100,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Embedding.Model) == "" {
		return errors.New("embedding.model cannot be empty")
	}
	if c.Embedding.Timeout <= 0 {
		return errors.New("embedding.timeout must be positive")
	}
	if c.Context.SemanticMatchLimit <= 0 {
		return errors.New("context.semanticMatchLimit must be positive")
	}
	if c.Context.RecentQueriesLimit <= 0 {
		return errors.New("context.recentQueriesLimit must be positive")
	}
	if c.Context.SimilarityThreshold < 0 || c.Context.SimilarityThreshold > 1 {
		return errors.New("context.similarityThreshold must be within [0,1]")
	}
	if c.Context.FallbackAnswer == "" {
		return errors.New("context.fallbackAnswer cannot be empty")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Cache.MaxQueriesPerUser <= 0 {
		return errors.New("cache.maxQueriesPerUser must be positive")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Analytics.DefaultLimit <= 0 {
		return errors.New("analytics.defaultLimit must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
