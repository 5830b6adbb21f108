package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Operation modes. The set is closed; Validate rejects anything else.
const (
	ModeStdin  = "stdin"
	ModeStream = "stream"
)

// Config holds the full runtime configuration, resolved once per process.
type Config struct {
	// LLM backend
	Provider       string  `env:"LLM_PROVIDER" envDefault:"local" validate:"oneof=local openai"` // "local" (Ollama-style server) or "openai" (OpenAI-compatible API)
	BaseURL        string  `env:"LLM_BASE_URL" envDefault:"http://localhost:11434"`
	Model          string  `env:"LLM_MODEL" envDefault:"mistral"`
	APIKey         string  `env:"LLM_API_KEY"`
	MaxTokens      int     `env:"LLM_MAX_TOKENS" envDefault:"2048" validate:"min=1"`
	Temperature    float64 `env:"LLM_TEMPERATURE" envDefault:"0.3" validate:"gte=0,lte=2"`
	TimeoutSeconds int     `env:"LLM_TIMEOUT" envDefault:"120" validate:"min=1"`

	// Operation
	Mode     string `env:"ATLAS_AI_MODE" envDefault:"stdin" validate:"oneof=stdin stream"` // "stdin" (one-shot) or "stream" (Redis consumer)
	RedisURL string `env:"ATLAS_REDIS_URL" envDefault:"redis://localhost:6379"`

	// Process
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     int    `env:"PORT" envDefault:"8080"`
}

var validate = validator.New()

// Load reads configuration from environment variables with defaults and
// rejects invalid values before any client is built.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the closed value sets and numeric bounds. Load calls it,
// and the CLI calls it again after flag overrides are applied.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.New(describeFieldError(fieldErrs[0], c))
	}
	return err
}

func describeFieldError(fe validator.FieldError, c Config) string {
	switch fe.StructField() {
	case "Provider":
		return fmt.Sprintf("invalid LLM_PROVIDER: %q (valid options: local, openai)", c.Provider)
	case "Mode":
		return fmt.Sprintf("invalid ATLAS_AI_MODE: %q (valid options: stdin, stream)", c.Mode)
	case "MaxTokens":
		return fmt.Sprintf("invalid LLM_MAX_TOKENS: %d (must be positive)", c.MaxTokens)
	case "Temperature":
		return fmt.Sprintf("invalid LLM_TEMPERATURE: %v (must be between 0 and 2)", c.Temperature)
	case "TimeoutSeconds":
		return fmt.Sprintf("invalid LLM_TIMEOUT: %d (must be positive)", c.TimeoutSeconds)
	default:
		return fmt.Sprintf("invalid configuration: %s failed %s validation", fe.StructField(), fe.Tag())
	}
}
