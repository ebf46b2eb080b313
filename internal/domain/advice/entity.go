package advice

import (
	"time"

	"gridiron/internal/domain/tradecontext"
)

// Provider identifies which model backend produced an analysis.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Winner is the verdict enum a model analysis must choose from.
type Winner string

const (
	WinnerTeamA       Winner = "team_a"
	WinnerTeamB       Winner = "team_b"
	WinnerEven        Winner = "even"
	WinnerSlightEdgeA Winner = "slight_edge_a"
	WinnerSlightEdgeB Winner = "slight_edge_b"
)

// FavorsSide maps the verdict to the trade side it favors, or "" for even.
func (w Winner) FavorsSide() tradecontext.Side {
	switch w {
	case WinnerTeamA, WinnerSlightEdgeA:
		return tradecontext.SideA
	case WinnerTeamB, WinnerSlightEdgeB:
		return tradecontext.SideB
	default:
		return ""
	}
}

// Opposes reports whether two verdicts favor opposite teams.
func (w Winner) Opposes(other Winner) bool {
	a, b := w.FavorsSide(), other.FavorsSide()
	return a != "" && b != "" && a != b
}

// TradeAnalysis is one model backend's opinion of the trade. Instances are
// only ever constructed by the schema validator; no code path may hand-build
// one from unchecked input.
type TradeAnalysis struct {
	Winner          Winner   `json:"winner" validate:"required,oneof=team_a team_b even slight_edge_a slight_edge_b"`
	ValueDelta      string   `json:"valueDelta" validate:"required"`
	Factors         []string `json:"factors" validate:"min=1,dive,required"`
	Confidence      int      `json:"confidence" validate:"gte=0,lte=100"`
	DynastyVerdict  string   `json:"dynastyVerdict" validate:"required"`
	VetoRisk        string   `json:"vetoRisk,omitempty"`
	AgingConcerns   []string `json:"agingConcerns,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ParseState records how far the schema validator got with a payload.
type ParseState string

const (
	ParseStrict   ParseState = "strict"
	ParseCoerced  ParseState = "coerced"
	ParseSalvaged ParseState = "salvaged"
	ParseFailed   ParseState = "failed"
)

// ProviderResult is the outcome of a single backend call. Created once per
// orchestrator call and never mutated afterwards.
type ProviderResult struct {
	Provider        Provider       `json:"provider"`
	Analysis        *TradeAnalysis `json:"analysis,omitempty"`
	Raw             string         `json:"raw,omitempty"`
	Latency         time.Duration  `json:"latency"`
	Error           string         `json:"error,omitempty"`
	SchemaValid     bool           `json:"schemaValid"`
	ParseState      ParseState     `json:"parseState,omitempty"`
	ConfidenceScore int            `json:"confidenceScore"`
}

// ConsensusMethod describes how a consensus analysis was derived.
type ConsensusMethod string

const (
	ConsensusSingle          ConsensusMethod = "single"
	ConsensusWeightedMerge   ConsensusMethod = "weighted_merge"
	ConsensusPrimaryFallback ConsensusMethod = "primary_fallback"
)

// Contradiction codes attached to consensus meta as advisory signals.
// They inform the quality gate's confidence arithmetic but never change
// the merge result itself.
const (
	ContradictionWinnerMismatch = "winner_mismatch"
	ContradictionConfidenceGap  = "confidence_gap"
)

// ConsensusMeta documents the provenance of a merged analysis.
type ConsensusMeta struct {
	Method         ConsensusMethod  `json:"method"`
	Primary        Provider         `json:"primary"`
	Sources        []ProviderResult `json:"sources"`
	TotalLatency   time.Duration    `json:"totalLatency"`
	Contradictions []string         `json:"contradictions,omitempty"`
}

// ConsensusAnalysis is the single merged model opinion. Built once per merge
// call; immutable.
type ConsensusAnalysis struct {
	TradeAnalysis
	Meta ConsensusMeta `json:"meta"`
}

// Severity grades a quality violation. Hard violations flip the gate's
// passed flag; soft ones only discount confidence.
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// QualityViolation is a rule breach detected by the quality gate. Purely
// diagnostic: violations are data, never errors.
type QualityViolation struct {
	Rule       string   `json:"rule"`
	Severity   Severity `json:"severity"`
	Detail     string   `json:"detail"`
	Adjustment string   `json:"adjustment,omitempty"`
}

// ConditionalRecommendation marks output that depends on currently-missing
// upstream data.
type ConditionalRecommendation struct {
	IsConditional bool     `json:"isConditional"`
	Reasons       []string `json:"reasons,omitempty"`
	Label         string   `json:"label,omitempty"`
}

// QualityGateResult is the engine's only externally visible output, intended
// to be serialized as-is by any calling surface.
type QualityGateResult struct {
	Passed                  bool                      `json:"passed"`
	Violations              []QualityViolation        `json:"violations"`
	AdjustedConfidence      int                       `json:"adjustedConfidence"`
	DeterministicConfidence int                       `json:"deterministicConfidence"`
	OriginalLLMConfidence   int                       `json:"originalLLMConfidence"`
	FilteredReasons         []string                  `json:"filteredReasons"`
	FilteredCounters        []string                  `json:"filteredCounters"`
	FilteredWarnings        []string                  `json:"filteredWarnings"`
	Conditional             ConditionalRecommendation `json:"conditionalRecommendation"`
	ConsensusMethod         ConsensusMethod           `json:"consensusMethod,omitempty"`
}

// HardViolations counts violations with hard severity.
func (r *QualityGateResult) HardViolations() int {
	count := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityHard {
			count++
		}
	}
	return count
}
