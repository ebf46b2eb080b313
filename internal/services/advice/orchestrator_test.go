package advice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridiron/internal/adapters/ai"
	domain "gridiron/internal/domain/advice"
	"gridiron/pkg/errors"
)

// stubProvider implements ai.ChatProvider for testing
type stubProvider struct {
	name     ai.ProviderName
	chatFunc func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error)
	calls    int
}

func (s *stubProvider) Name() ai.ProviderName {
	return s.name
}

func (s *stubProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	s.calls++
	if s.chatFunc != nil {
		return s.chatFunc(ctx, req)
	}
	return &ai.ChatResponse{Content: strictPayload, FinishReason: ai.FinishReasonStop}, nil
}

func testRegistry(t *testing.T, providers ...ai.ChatProvider) *ai.ProviderRegistry {
	t.Helper()
	registry := ai.NewProviderRegistry()
	for _, p := range providers {
		require.NoError(t, registry.Register(p))
	}
	return registry
}

func testOptions(mode Mode) Options {
	return Options{
		Mode:    mode,
		Primary: domain.ProviderOpenAI,
		Timeout: 2 * time.Second,
	}
}

func TestOrchestratorModeBoth(t *testing.T) {
	openai := &stubProvider{name: ai.ProviderNameOpenAI}
	gemini := &stubProvider{name: ai.ProviderNameGemini}
	o := NewOrchestrator(testRegistry(t, openai, gemini), NewValidator(), testOptions(ModeBoth))

	results := o.Analyze(context.Background(), Prompt{System: "sys", User: "user"})

	require.Len(t, results, 2)
	assert.Equal(t, domain.ProviderOpenAI, results[0].Provider)
	assert.Equal(t, domain.ProviderGemini, results[1].Provider)
	for _, r := range results {
		assert.True(t, r.SchemaValid)
		assert.Equal(t, domain.ParseStrict, r.ParseState)
		assert.NotNil(t, r.Analysis)
		assert.Greater(t, r.ConfidenceScore, 0)
	}
	assert.Equal(t, 1, openai.calls)
	assert.Equal(t, 1, gemini.calls)
}

func TestOrchestratorModeBothSurvivesOneFailure(t *testing.T) {
	openai := &stubProvider{
		name: ai.ProviderNameOpenAI,
		chatFunc: func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
			return nil, errors.Wrap(errors.ErrTimeout, "openai deadline")
		},
	}
	gemini := &stubProvider{name: ai.ProviderNameGemini}
	o := NewOrchestrator(testRegistry(t, openai, gemini), NewValidator(), testOptions(ModeBoth))

	results := o.Analyze(context.Background(), Prompt{})

	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Error)
	assert.Nil(t, results[0].Analysis)
	assert.True(t, results[1].SchemaValid)
}

func TestOrchestratorModeOff(t *testing.T) {
	openai := &stubProvider{name: ai.ProviderNameOpenAI}
	o := NewOrchestrator(testRegistry(t, openai), NewValidator(), testOptions(ModeOff))

	results := o.Analyze(context.Background(), Prompt{})

	assert.Empty(t, results)
	assert.Zero(t, openai.calls)
}

func TestOrchestratorSingleModeFallback(t *testing.T) {
	t.Run("healthy primary is the only call", func(t *testing.T) {
		openai := &stubProvider{name: ai.ProviderNameOpenAI}
		gemini := &stubProvider{name: ai.ProviderNameGemini}
		o := NewOrchestrator(testRegistry(t, openai, gemini), NewValidator(), testOptions(ModeOpenAI))

		results := o.Analyze(context.Background(), Prompt{})

		require.Len(t, results, 1)
		assert.Equal(t, domain.ProviderOpenAI, results[0].Provider)
		assert.Zero(t, gemini.calls)
	})

	t.Run("failed primary triggers the sibling", func(t *testing.T) {
		openai := &stubProvider{
			name: ai.ProviderNameOpenAI,
			chatFunc: func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
				return nil, errors.Wrap(errors.ErrExternal, "boom")
			},
		}
		gemini := &stubProvider{name: ai.ProviderNameGemini}
		o := NewOrchestrator(testRegistry(t, openai, gemini), NewValidator(), testOptions(ModeOpenAI))

		results := o.Analyze(context.Background(), Prompt{})

		require.Len(t, results, 2)
		assert.NotEmpty(t, results[0].Error)
		assert.Equal(t, domain.ProviderGemini, results[1].Provider)
		assert.True(t, results[1].SchemaValid)
	})

	t.Run("unparseable primary also falls back", func(t *testing.T) {
		gemini := &stubProvider{
			name: ai.ProviderNameGemini,
			chatFunc: func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
				return &ai.ChatResponse{Content: "I am unable to help with that."}, nil
			},
		}
		openai := &stubProvider{name: ai.ProviderNameOpenAI}
		o := NewOrchestrator(testRegistry(t, openai, gemini), NewValidator(), testOptions(ModeGemini))

		results := o.Analyze(context.Background(), Prompt{})

		require.Len(t, results, 2)
		assert.Equal(t, domain.ParseFailed, results[0].ParseState)
		assert.Equal(t, domain.ProviderOpenAI, results[1].Provider)
		assert.True(t, results[1].SchemaValid)
	})
}

func TestOrchestratorMissingProvider(t *testing.T) {
	// Only OpenAI registered; mode both should still produce two results,
	// with the missing backend marked disabled.
	openai := &stubProvider{name: ai.ProviderNameOpenAI}
	o := NewOrchestrator(testRegistry(t, openai), NewValidator(), testOptions(ModeBoth))

	results := o.Analyze(context.Background(), Prompt{})

	require.Len(t, results, 2)
	assert.True(t, results[0].SchemaValid)
	assert.Equal(t, errors.ErrProviderDisabled.Error(), results[1].Error)
}

func TestOrchestratorAppliesTimeout(t *testing.T) {
	slow := &stubProvider{
		name: ai.ProviderNameOpenAI,
		chatFunc: func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
			<-ctx.Done()
			return nil, errors.Wrap(errors.ErrTimeout, ctx.Err().Error())
		},
	}
	opts := testOptions(ModeOpenAI)
	opts.Timeout = 20 * time.Millisecond
	o := NewOrchestrator(testRegistry(t, slow), NewValidator(), opts)

	started := time.Now()
	results := o.Analyze(context.Background(), Prompt{})

	require.NotEmpty(t, results)
	assert.NotEmpty(t, results[0].Error)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestOrchestratorPerCallOverride(t *testing.T) {
	var gotTemp *float64
	openai := &stubProvider{
		name: ai.ProviderNameOpenAI,
		chatFunc: func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
			gotTemp = req.Temperature
			return &ai.ChatResponse{Content: strictPayload}, nil
		},
	}
	opts := testOptions(ModeOpenAI)
	opts.Temperature = Temperature(0.3)
	o := NewOrchestrator(testRegistry(t, openai), NewValidator(), opts)

	o.AnalyzeWithOptions(context.Background(), Prompt{}, Options{Temperature: Temperature(0.9)})
	require.NotNil(t, gotTemp)
	assert.Equal(t, 0.9, *gotTemp)

	t.Run("explicit zero survives the merge", func(t *testing.T) {
		o.AnalyzeWithOptions(context.Background(), Prompt{}, Options{Temperature: Temperature(0)})
		require.NotNil(t, gotTemp)
		assert.Equal(t, 0.0, *gotTemp)
	})

	t.Run("nil keeps the configured value", func(t *testing.T) {
		o.AnalyzeWithOptions(context.Background(), Prompt{}, Options{})
		require.NotNil(t, gotTemp)
		assert.Equal(t, 0.3, *gotTemp)
	})
}
