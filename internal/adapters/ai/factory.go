package ai

import (
	"time"

	"gridiron/internal/adapters/config"
	"gridiron/pkg/errors"
)

// BuildRegistry initializes a ProviderRegistry with all backends that have
// API keys configured. A registry with zero providers is an error: the
// advice engine can run deterministic-only, but that decision belongs to
// the orchestrator mode, not to silent misconfiguration.
func BuildRegistry(cfg config.AIConfig, timeout time.Duration) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.OpenAIKey != "" {
		limiter := NewLimiter(ProviderNameOpenAI, cfg.OpenAIReqMin)
		provider, err := NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, timeout, limiter)
		if err != nil {
			return nil, errors.Wrap(err, "build openai provider")
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.GeminiKey != "" {
		limiter := NewLimiter(ProviderNameGemini, cfg.GeminiReqMin)
		provider, err := NewGeminiProvider(cfg.GeminiKey, cfg.GeminiModel, timeout, limiter)
		if err != nil {
			return nil, errors.Wrap(err, "build gemini provider")
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no model providers configured")
	}

	return registry, nil
}
