package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"gridiron/pkg/errors"
)

type Config struct {
	App           AppConfig
	AI            AIConfig
	Advice        AdviceConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"gridiron"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// MetricsAddr exposes Prometheus metrics when non-empty.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`
}

type AIConfig struct {
	OpenAIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	GeminiKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	OpenAIReqMin int    `envconfig:"OPENAI_REQ_PER_MINUTE" default:"500"`
	GeminiReqMin int    `envconfig:"GEMINI_REQ_PER_MINUTE" default:"300"`
}

// AdviceConfig configures the trade-advice consensus engine.
// Mode and primary provider are resolved once at startup; callers may
// override them per invocation through advice.Options.
type AdviceConfig struct {
	Mode        string        `envconfig:"ADVICE_MODE" default:"both"`             // off|openai|gemini|both
	Primary     string        `envconfig:"ADVICE_PRIMARY_PROVIDER" default:"openai"`
	CallTimeout time.Duration `envconfig:"ADVICE_CALL_TIMEOUT" default:"15s"`
	Temperature float64       `envconfig:"ADVICE_TEMPERATURE" default:"0.3"`
	MaxTokens   int           `envconfig:"ADVICE_MAX_TOKENS" default:"2048"`
	ReviewMode  bool          `envconfig:"ADVICE_REVIEW_MODE" default:"false"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
