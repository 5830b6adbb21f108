package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Matza-labs/atlas-ai/internal/advisor"
	"github.com/Matza-labs/atlas-ai/internal/config"
	"github.com/Matza-labs/atlas-ai/internal/llm"
	"github.com/Matza-labs/atlas-ai/internal/logger"
)

// Deps bundles the runtime dependencies shared by all modes.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
}

// Build loads the environment, resolves configuration, and prepares the
// logger. The LLM backend is built separately so informational commands
// never construct a client.
func Build() (Deps, error) {
	_ = godotenv.Load() // A .env file is optional

	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	return Deps{Config: cfg, Log: log}, nil
}

// BuildAdvisor constructs the generation backend for the configured
// provider and wraps it in an Advisor. The caller owns the Advisor's
// lifetime and must close it.
func BuildAdvisor(deps Deps) (*advisor.Advisor, error) {
	gen, err := llm.New(llmConfig(deps.Config))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	deps.Log.Info("using LLM backend",
		"provider", deps.Config.Provider,
		"model", deps.Config.Model,
		"base_url", deps.Config.BaseURL)

	return advisor.New(gen, deps.Log), nil
}

func llmConfig(cfg config.Config) llm.Config {
	return llm.Config{
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}
