package advice

import (
	"strings"
	"time"

	"gridiron/internal/adapters/config"
	domain "gridiron/internal/domain/advice"
)

// Mode selects which model backends the orchestrator consults.
type Mode string

const (
	ModeOff    Mode = "off"
	ModeOpenAI Mode = "openai"
	ModeGemini Mode = "gemini"
	ModeBoth   Mode = "both"
)

// ParseMode normalizes a mode string, defaulting to both.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "disabled":
		return ModeOff
	case "openai":
		return ModeOpenAI
	case "gemini":
		return ModeGemini
	default:
		return ModeBoth
	}
}

// Options is the orchestration configuration, resolved once at startup from
// process-wide config and overridable per invocation. Business logic never
// reads environment variables directly.
type Options struct {
	Mode    Mode
	Primary domain.Provider
	Timeout time.Duration
	// Temperature is a pointer so an override can pin it to an explicit
	// zero; nil means "keep the configured value".
	Temperature *float64
	MaxTokens   int
	ReviewMode  bool
}

// OptionsFromConfig snapshots the advice section of process configuration.
func OptionsFromConfig(cfg config.AdviceConfig) Options {
	primary := domain.Provider(strings.ToLower(cfg.Primary))
	if primary != domain.ProviderOpenAI && primary != domain.ProviderGemini {
		primary = domain.ProviderOpenAI
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return Options{
		Mode:        ParseMode(cfg.Mode),
		Primary:     primary,
		Timeout:     timeout,
		Temperature: Temperature(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
		ReviewMode:  cfg.ReviewMode,
	}
}

// Temperature wraps a sampling temperature for use in Options.
func Temperature(v float64) *float64 {
	return &v
}

// merged returns a copy of base with any set override applied. A nil
// Temperature keeps the base value; a non-nil one replaces it, zero included.
func (base Options) merged(override Options) Options {
	out := base
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.Primary != "" {
		out.Primary = override.Primary
	}
	if override.Timeout > 0 {
		out.Timeout = override.Timeout
	}
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		out.MaxTokens = override.MaxTokens
	}
	if override.ReviewMode {
		out.ReviewMode = true
	}
	return out
}

// Prompt is the system+user message pair sent to each backend. Prompt
// construction itself happens upstream.
type Prompt struct {
	System string
	User   string
}
