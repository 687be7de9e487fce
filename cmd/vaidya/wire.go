package main

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	vaidya "github.com/vaidya-ai/vaidya"
	"github.com/vaidya-ai/vaidya/config"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/history"
	"github.com/vaidya-ai/vaidya/logging"
	"github.com/vaidya-ai/vaidya/model"
	"github.com/vaidya-ai/vaidya/model/anthropic"
	"github.com/vaidya-ai/vaidya/model/openai"
	"github.com/vaidya-ai/vaidya/retrieval"
	"github.com/vaidya-ai/vaidya/retrieval/embedding"
	pgretriever "github.com/vaidya-ai/vaidya/retrieval/pgvector"
	redissession "github.com/vaidya-ai/vaidya/session/redis"
)

// buildVaidya assembles the pipeline from configuration. Unconfigured
// backends fall back to in-memory implementations so the binary runs without
// external services.
func buildVaidya(cfg *config.Config) (*vaidya.Vaidya, logging.Logger, error) {
	logger := buildLogger(cfg.Log)

	llm, err := buildModel(cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	if cfg.Database.DSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
	}

	retriever := buildRetriever(cfg.Model, db)

	optFns := []func(o *vaidya.Options){
		func(o *vaidya.Options) {
			o.TopK = cfg.Pipeline.TopK
			o.MaxRounds = cfg.Pipeline.MaxRounds
			o.TurnTimeout = cfg.Pipeline.TurnTimeout
			o.RetrievalTimeout = cfg.Pipeline.RetrievalTimeout
			o.Logger = logger
		},
	}

	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redissession.New(client, func(o *redissession.Options) {
			o.TTL = cfg.Redis.SessionTTL
		})
		optFns = append(optFns, func(o *vaidya.Options) { o.SessionStore = store })
	}

	if db != nil {
		logs := history.NewPostgresStore(db)
		optFns = append(optFns, func(o *vaidya.Options) { o.History = logs })
	}

	return vaidya.New(llm, retriever, optFns...), logger, nil
}

func buildLogger(cfg config.LogConfig) logging.Logger {
	level := logging.LogLevelInfo
	switch cfg.Level {
	case "debug":
		level = logging.LogLevelDebug
	case "warn":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	}
	return logging.NewLogger(&logging.Config{Level: level, Format: cfg.Format})
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai", "":
		var clientOpts []option.RequestOption
		if cfg.APIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
		}
		client := openaisdk.NewClient(clientOpts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temp
			o.MaxCompletionTokens = cfg.MaxTokens
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			o.Temperature = cfg.Temp
			o.MaxTokens = cfg.MaxTokens
			o.APIKey = cfg.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// buildRetriever picks the Postgres corpus when a database is configured and
// an empty in-memory index otherwise. Both use the same embedding provider so
// swapping backends never changes distances.
func buildRetriever(cfg config.ModelConfig, db *gorm.DB) core.Retriever {
	provider := buildEmbedding(cfg)
	if db != nil {
		return pgretriever.New(db, provider)
	}
	return retrieval.NewInMemoryIndex(provider)
}

func buildEmbedding(cfg config.ModelConfig) embedding.Provider {
	if cfg.Provider != "openai" && cfg.Provider != "" {
		// Query embeddings come from the OpenAI Embeddings API. Without
		// OpenAI credentials, deterministic local embeddings keep the
		// pipeline usable for development.
		return embedding.NewHashProvider(0)
	}
	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	client := openaisdk.NewClient(clientOpts...)
	return embedding.NewOpenAIProviderFromClient(&client, func(o *embedding.OpenAIOptions) {
		if cfg.EmbeddingModel != "" {
			o.Model = cfg.EmbeddingModel
		}
	})
}
