// Package config loads runtime configuration from an optional config file and
// VAIDYA_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Model     ModelConfig     `mapstructure:"model"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig configures the Postgres connection backing the document
// corpus and user logs. An empty DSN selects the in-memory backends.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig configures the durable session store. An empty address selects
// the in-memory store.
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// ModelConfig selects the chat and embedding providers.
type ModelConfig struct {
	Provider  string  `mapstructure:"provider"` // openai or anthropic
	Name      string  `mapstructure:"name"`
	APIKey    string  `mapstructure:"api_key"`
	MaxTokens int64   `mapstructure:"max_tokens"`
	Temp      float64 `mapstructure:"temperature"`

	EmbeddingModel string `mapstructure:"embedding_model"`
}

// PipelineConfig bounds the orchestration pipeline.
type PipelineConfig struct {
	TopK             int           `mapstructure:"top_k"`
	MaxRounds        int           `mapstructure:"max_rounds"`
	TurnTimeout      time.Duration `mapstructure:"turn_timeout"`
	RetrievalTimeout time.Duration `mapstructure:"retrieval_timeout"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the VAIDYA_ prefix with underscores,
// e.g. VAIDYA_SERVER_ADDR, VAIDYA_MODEL_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("redis.session_ttl", 24*time.Hour)
	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "gpt-4o-mini")
	v.SetDefault("model.max_tokens", 1024)
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.embedding_model", "text-embedding-3-small")
	v.SetDefault("pipeline.top_k", 5)
	v.SetDefault("pipeline.max_rounds", 10)
	v.SetDefault("pipeline.turn_timeout", 60*time.Second)
	v.SetDefault("pipeline.retrieval_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("VAIDYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
