package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gridiron", cfg.App.Name)
	assert.Equal(t, "both", cfg.Advice.Mode)
	assert.Equal(t, "openai", cfg.Advice.Primary)
	assert.Equal(t, 15*time.Second, cfg.Advice.CallTimeout)
	assert.Equal(t, 0.3, cfg.Advice.Temperature)
	assert.Equal(t, 2048, cfg.Advice.MaxTokens)
	assert.False(t, cfg.Advice.ReviewMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADVICE_MODE", "gemini")
	t.Setenv("ADVICE_PRIMARY_PROVIDER", "gemini")
	t.Setenv("ADVICE_CALL_TIMEOUT", "5s")
	t.Setenv("ADVICE_REVIEW_MODE", "true")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Advice.Mode)
	assert.Equal(t, "gemini", cfg.Advice.Primary)
	assert.Equal(t, 5*time.Second, cfg.Advice.CallTimeout)
	assert.True(t, cfg.Advice.ReviewMode)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.GeminiModel)
}
