package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/embedding"
	"github.com/signedhq/signed-matcher/internal/embedding/gemini"
	"github.com/signedhq/signed-matcher/internal/embedding/openai"
	"github.com/signedhq/signed-matcher/internal/logger"
	"github.com/signedhq/signed-matcher/internal/secrets"
	"github.com/signedhq/signed-matcher/internal/store"
)

func newLogger() *zap.Logger {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return lg
}

func matchingConfig(config *Config) MatchingConfig {
	if config == nil || config.Matching == nil {
		return MatchingConfig{}
	}
	return *config.Matching
}

func openStore(ctx context.Context, config *Config) (*store.Store, error) {
	if config == nil || strings.TrimSpace(config.DatabaseURL) == "" {
		return nil, errors.New("database-url is not configured (set DATABASE_URL or the 'database-url' key in the configuration file)")
	}

	pool, err := store.NewPool(ctx, config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return store.New(pool), nil
}

// openMirror returns nil without error when no redis url is configured; the
// mirror is an optional read-scaling layer.
func openMirror(ctx context.Context, config *Config) (*store.Mirror, error) {
	if config == nil || strings.TrimSpace(config.RedisURL) == "" {
		return nil, nil
	}

	rdb, err := store.NewRedisClient(ctx, config.RedisURL)
	if err != nil {
		return nil, err
	}

	return store.NewMirror(rdb), nil
}

// newTextEncoder builds the configured embedding provider and returns the
// model tag stored alongside every vector it produces.
func newTextEncoder(ctx context.Context, config *Config, lg *zap.Logger) (*embedding.TextEncoder, string, error) {
	cfg := config.Encoder
	if cfg == nil {
		return nil, "", errors.New("encoder configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "gemini":
		if cfg.Gemini == nil {
			return nil, "", errors.New("gemini configuration is required under encoder.gemini")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set encoder.gemini.api-key-file)", err)
		}

		model := strings.TrimSpace(cfg.Gemini.Model)
		if model == "" {
			model = gemini.DefaultModel
		}

		encLogger := logger.WithEncoderFields(lg, "gemini", model)

		enc, err := gemini.NewEncoder(ctx, apiKey, model, cfg.Gemini.MaxRetries, encLogger)
		if err != nil {
			return nil, "", err
		}

		return embedding.NewTextEncoder(enc, encLogger), model, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, "", errors.New("openai configuration is required under encoder.openai")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: cfg.OpenAI.APIKeyFile,
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w (set encoder.openai.api-key-file)", err)
		}

		model := strings.TrimSpace(cfg.OpenAI.Model)
		if model == "" {
			model = openai.DefaultModel
		}

		enc, err := openai.NewEncoder(openai.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  apiKey,
			Model:   model,
		})
		if err != nil {
			return nil, "", err
		}

		return embedding.NewTextEncoder(enc, logger.WithEncoderFields(lg, "openai", model)), model, nil
	default:
		return nil, "", fmt.Errorf("unsupported encoder provider: %s", cfg.Provider)
	}
}
