package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/ai"
	"github.com/spigell/cv-ranker/internal/ai/gemini"
	"github.com/spigell/cv-ranker/internal/ai/openai"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/prompt"
	"github.com/spigell/cv-ranker/internal/secrets"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"
)

// newCompleter builds the configured provider. Configuration problems never
// stop the command: they are reported as the completion error of the run.
func newCompleter(ctx context.Context, cfg *AIConfig, log *zap.Logger) ai.Completer {
	completer, err := buildCompleter(ctx, cfg, log)
	if err != nil {
		log.Warn("completion provider is unavailable", zap.Error(err))
		return ai.Unavailable{Err: err}
	}
	return completer
}

func buildCompleter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Completer, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	settings := ai.Settings{
		SystemInstruction: prompt.SystemInstruction,
		Temperature:       cfg.Temperature,
		MaxOutputTokens:   cfg.MaxOutputTokens,
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerOpenAI:
		openaiCfg := cfg.OpenAI
		if openaiCfg == nil {
			openaiCfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: openaiCfg.APIKey,
			File:  openaiCfg.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		settings.Model = openaiCfg.Model
		client, err := openai.New(openai.Config{
			APIKey:   apiKey,
			BaseURL:  openaiCfg.BaseURL,
			Timeout:  cfg.Timeout,
			Settings: settings,
		})
		if err != nil {
			return nil, err
		}

		providerLogger := logger.WithCommonFields(log, providerOpenAI, client.Model())
		return ai.NewInstrumented(client, providerOpenAI, cfg.Timeout, 0, providerLogger), nil

	case providerGemini:
		geminiCfg := cfg.Gemini
		if geminiCfg == nil {
			geminiCfg = &GeminiConfig{}
		}

		var apiKey string
		if !strings.EqualFold(strings.TrimSpace(geminiCfg.Backend), gemini.BackendVertexAI) {
			var err error
			apiKey, err = secrets.Load(secrets.Source{
				Name:  "gemini api key",
				Value: geminiCfg.APIKey,
				File:  geminiCfg.APIKeyFile,
				Env:   "GEMINI_API_KEY",
			})
			if err != nil {
				return nil, err
			}
		}

		settings.Model = geminiCfg.Model
		providerLogger := logger.WithCommonFields(log, providerGemini, geminiCfg.Model)

		generator, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:     apiKey,
			Backend:    geminiCfg.Backend,
			Project:    geminiCfg.Project,
			Location:   geminiCfg.Location,
			MaxRetries: geminiCfg.MaxRetries,
			Settings:   settings,
		}, providerLogger.With(zap.Int("ai_retry_attempts", geminiCfg.MaxRetries)))
		if err != nil {
			return nil, err
		}

		return ai.NewInstrumented(generator, providerGemini, cfg.Timeout, geminiCfg.MaxLogLength, providerLogger), nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
