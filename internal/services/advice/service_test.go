package advice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridiron/internal/adapters/ai"
	domain "gridiron/internal/domain/advice"
	"gridiron/pkg/errors"
)

func TestEngineRejectsBadContexts(t *testing.T) {
	engine := NewEngine(ai.NewProviderRegistry(), testOptions(ModeOff))

	t.Run("nil context", func(t *testing.T) {
		_, err := engine.Advise(context.Background(), nil, Prompt{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("future major version", func(t *testing.T) {
		c := richContext()
		c.Version = "2.0.0"
		_, err := engine.Advise(context.Background(), c, Prompt{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnsupportedContextVersion))
	})

	t.Run("garbage version", func(t *testing.T) {
		c := richContext()
		c.Version = "latest"
		_, err := engine.Advise(context.Background(), c, Prompt{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})
}

func TestEngineDeterministicOnly(t *testing.T) {
	openai := &stubProvider{name: ai.ProviderNameOpenAI}
	engine := NewEngine(testRegistry(t, openai), testOptions(ModeOff))

	result, err := engine.Advise(context.Background(), richContext(), Prompt{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Zero(t, openai.calls, "mode off must not touch providers")
	assert.Equal(t, 0, result.OriginalLLMConfidence)
	assert.Empty(t, result.ConsensusMethod)
	assert.NotEmpty(t, result.FilteredReasons)
	assert.True(t, result.Passed)
}

func TestEngineEndToEnd(t *testing.T) {
	openai := &stubProvider{name: ai.ProviderNameOpenAI}
	gemini := &stubProvider{name: ai.ProviderNameGemini}
	engine := NewEngine(testRegistry(t, openai, gemini), testOptions(ModeBoth))

	result, err := engine.Advise(context.Background(), richContext(), Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Both stubs return the same strict payload, so the merge is a clean
	// weighted merge with no contradictions.
	assert.Equal(t, domain.ConsensusWeightedMerge, result.ConsensusMethod)
	assert.Equal(t, 72, result.OriginalLLMConfidence)
	assert.True(t, result.Passed)
	assert.GreaterOrEqual(t, result.AdjustedConfidence, ConfidenceFloor)
	assert.LessOrEqual(t, result.AdjustedConfidence, ConfidenceCeil)
}

func TestEngineDegradesWhenAllProvidersFail(t *testing.T) {
	failing := func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, errors.Wrap(errors.ErrExternal, "backend down")
	}
	openai := &stubProvider{name: ai.ProviderNameOpenAI, chatFunc: failing}
	gemini := &stubProvider{name: ai.ProviderNameGemini, chatFunc: failing}
	engine := NewEngine(testRegistry(t, openai, gemini), testOptions(ModeBoth))

	result, err := engine.Advise(context.Background(), richContext(), Prompt{})
	require.NoError(t, err, "provider failures degrade, they do not error")
	require.NotNil(t, result)

	assert.Empty(t, result.ConsensusMethod)
	assert.Equal(t, 0, result.OriginalLLMConfidence)
	assert.NotEmpty(t, result.FilteredReasons)
}

func TestEnginePerRequestModeOverride(t *testing.T) {
	openai := &stubProvider{name: ai.ProviderNameOpenAI}
	gemini := &stubProvider{name: ai.ProviderNameGemini}
	engine := NewEngine(testRegistry(t, openai, gemini), testOptions(ModeBoth))

	_, err := engine.AdviseWithOptions(context.Background(), richContext(), Prompt{}, Options{Mode: ModeGemini})
	require.NoError(t, err)

	assert.Zero(t, openai.calls)
	assert.Equal(t, 1, gemini.calls)
}
