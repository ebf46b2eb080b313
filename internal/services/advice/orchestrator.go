package advice

import (
	"context"
	"sync"
	"time"

	"gridiron/internal/adapters/ai"
	domain "gridiron/internal/domain/advice"
	"gridiron/internal/metrics"
	"gridiron/pkg/errors"
	"gridiron/pkg/logger"
)

// Orchestrator fans a prompt out to the configured model backends and
// collects one ProviderResult per consulted backend. It never returns an
// error: transport failures, timeouts and schema problems are all recorded
// on the individual results.
type Orchestrator struct {
	openai    ai.ChatProvider // nil when not configured
	gemini    ai.ChatProvider
	validator *Validator
	opts      Options
	log       *logger.Logger
}

// NewOrchestrator creates an orchestrator over the registered backends.
// Options are resolved once here; per-invocation overrides go through
// AnalyzeWithOptions.
func NewOrchestrator(registry *ai.ProviderRegistry, validator *Validator, opts Options) *Orchestrator {
	return &Orchestrator{
		openai:    registry.Get(ai.ProviderNameOpenAI),
		gemini:    registry.Get(ai.ProviderNameGemini),
		validator: validator,
		opts:      opts,
		log:       logger.Get().With("component", "advice_orchestrator"),
	}
}

// Analyze consults backends according to the configured mode.
func (o *Orchestrator) Analyze(ctx context.Context, prompt Prompt) []domain.ProviderResult {
	return o.AnalyzeWithOptions(ctx, prompt, Options{})
}

// AnalyzeWithOptions is Analyze with per-invocation overrides. Zero-value
// override fields keep the configured defaults.
//
// Result ordering is stable: when both backends are consulted the OpenAI
// result always precedes the Gemini result.
func (o *Orchestrator) AnalyzeWithOptions(ctx context.Context, prompt Prompt, override Options) []domain.ProviderResult {
	opts := o.opts.merged(override)

	switch opts.Mode {
	case ModeOff:
		return []domain.ProviderResult{}

	case ModeBoth:
		return o.callBoth(ctx, prompt, opts)

	case ModeOpenAI:
		return o.callWithFallback(ctx, prompt, opts, domain.ProviderOpenAI)

	case ModeGemini:
		return o.callWithFallback(ctx, prompt, opts, domain.ProviderGemini)

	default:
		return o.callBoth(ctx, prompt, opts)
	}
}

// callBoth issues both provider calls concurrently. Each goroutine owns a
// disjoint result slot, so no locking is needed; the slower call is never
// cancelled by the faster one and worst-case latency is bounded by the
// larger of the two timeouts.
func (o *Orchestrator) callBoth(ctx context.Context, prompt Prompt, opts Options) []domain.ProviderResult {
	var openaiRes, geminiRes domain.ProviderResult

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		openaiRes = o.call(ctx, o.openai, domain.ProviderOpenAI, prompt, opts)
	}()
	go func() {
		defer wg.Done()
		geminiRes = o.call(ctx, o.gemini, domain.ProviderGemini, prompt, opts)
	}()
	wg.Wait()

	return []domain.ProviderResult{openaiRes, geminiRes}
}

// callWithFallback calls the requested provider and, when it fails to
// produce any analysis, synchronously tries the other backend and appends
// its result too.
func (o *Orchestrator) callWithFallback(ctx context.Context, prompt Prompt, opts Options, requested domain.Provider) []domain.ProviderResult {
	primary, fallback := o.openai, o.gemini
	fallbackName := domain.ProviderGemini
	if requested == domain.ProviderGemini {
		primary, fallback = o.gemini, o.openai
		fallbackName = domain.ProviderOpenAI
	}

	results := []domain.ProviderResult{o.call(ctx, primary, requested, prompt, opts)}

	if results[0].Error != "" || results[0].Analysis == nil {
		o.log.Warnw("Primary provider failed, trying fallback",
			"primary", requested,
			"fallback", fallbackName,
			"error", results[0].Error,
		)
		results = append(results, o.call(ctx, fallback, fallbackName, prompt, opts))
	}

	return results
}

// call performs one backend call, validates the payload, and scores the
// result. It always returns a complete ProviderResult.
func (o *Orchestrator) call(ctx context.Context, provider ai.ChatProvider, name domain.Provider, prompt Prompt, opts Options) domain.ProviderResult {
	result := domain.ProviderResult{Provider: name}

	if provider == nil {
		result.Error = errors.ErrProviderDisabled.Error()
		metrics.ProviderCalls.WithLabelValues(string(name), "error").Inc()
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	started := time.Now()
	resp, err := provider.Chat(callCtx, ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: prompt.System},
			{Role: ai.RoleUser, Content: prompt.User},
		},
		Temperature:    opts.Temperature,
		MaxTokens:      opts.MaxTokens,
		ResponseSchema: TradeAnalysisSchema,
	})
	result.Latency = time.Since(started)
	metrics.ProviderLatency.WithLabelValues(string(name)).Observe(result.Latency.Seconds())

	if err != nil {
		result.Error = err.Error()
		status := "error"
		if errors.Is(err, errors.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		metrics.ProviderCalls.WithLabelValues(string(name), status).Inc()
		o.log.Warnw("Provider call failed", "provider", name, "error", err, "latency", result.Latency)
		return result
	}

	metrics.ProviderCalls.WithLabelValues(string(name), "success").Inc()
	result.Raw = resp.Content

	validation := o.validator.Validate(resp.Content)
	result.SchemaValid = validation.Valid
	result.ParseState = validation.State
	result.Analysis = validation.Analysis
	result.ConfidenceScore = ScoreResult(result)
	metrics.ParseOutcomes.WithLabelValues(string(name), string(validation.State)).Inc()

	o.log.Debugw("Provider result",
		"provider", name,
		"schema_valid", result.SchemaValid,
		"parse_state", result.ParseState,
		"score", result.ConfidenceScore,
		"latency", result.Latency,
	)

	return result
}
