package advice

import (
	"context"

	"gridiron/internal/adapters/ai"
	domain "gridiron/internal/domain/advice"
	"gridiron/internal/domain/tradecontext"
	"gridiron/pkg/errors"
	"gridiron/pkg/logger"
)

// Engine is the advice pipeline: deterministic scorer and model consensus in
// parallel, followed by the quality gate. It is the only entry point callers
// should use; the stage types exist separately for testing.
type Engine struct {
	orchestrator *Orchestrator
	merger       *Merger
	scorer       *DeterministicScorer
	gate         *QualityGate
	opts         Options
	log          *logger.Logger
}

// NewEngine wires the pipeline from a provider registry and options.
func NewEngine(registry *ai.ProviderRegistry, opts Options) *Engine {
	return &Engine{
		orchestrator: NewOrchestrator(registry, NewValidator(), opts),
		merger:       NewMerger(),
		scorer:       NewDeterministicScorer(),
		gate:         NewQualityGate(opts.ReviewMode),
		opts:         opts,
		log:          logger.Get().With("component", "advice_engine"),
	}
}

// Advise evaluates the trade described by the context. The only error
// conditions are a nil or version-incompatible context; provider failures,
// parse failures and rule violations all degrade into the result instead.
func (e *Engine) Advise(ctx context.Context, c *tradecontext.TradeDecisionContext, prompt Prompt) (*domain.QualityGateResult, error) {
	return e.AdviseWithOptions(ctx, c, prompt, Options{})
}

// AdviseWithOptions is Advise with per-request option overrides. Zero-value
// fields in override fall back to the engine's configured options.
func (e *Engine) AdviseWithOptions(ctx context.Context, c *tradecontext.TradeDecisionContext, prompt Prompt, override Options) (*domain.QualityGateResult, error) {
	if c == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "trade context is required")
	}
	if err := c.CheckVersion(); err != nil {
		return nil, err
	}
	opts := e.opts.merged(override)

	deterministic := e.scorer.Score(c)

	var consensus *domain.ConsensusAnalysis
	if opts.Mode != ModeOff {
		results := e.orchestrator.AnalyzeWithOptions(ctx, prompt, opts)
		consensus = e.merger.Merge(results, opts.Primary)
	} else {
		e.log.Debug("Model advice disabled, running deterministic-only")
	}

	result := e.gate.Run(consensus, c, deterministic)
	return &result, nil
}
