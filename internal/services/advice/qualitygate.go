package advice

import (
	"fmt"
	"strconv"
	"strings"

	domain "gridiron/internal/domain/advice"
	"gridiron/internal/domain/tradecontext"
	"gridiron/internal/metrics"
	"gridiron/pkg/logger"
)

// similarityThreshold is the word-overlap ratio above which an LLM line is
// treated as a paraphrase of a deterministic line and dropped.
const similarityThreshold = 0.6

// counterPrefixWords is how many leading words two counters must share to be
// considered duplicates.
const counterPrefixWords = 8

// QualityGate audits a consensus analysis against the ground-truth trade
// context. It is a pure function over its inputs: it never fails, never
// mutates the context or consensus, and computes the same result for the
// same inputs.
type QualityGate struct {
	reviewMode bool
	log        *logger.Logger
}

// NewQualityGate creates a quality gate. In review mode the gate discounts
// provider disagreement more aggressively.
func NewQualityGate(reviewMode bool) *QualityGate {
	return &QualityGate{
		reviewMode: reviewMode,
		log:        logger.Get().With("component", "quality_gate"),
	}
}

// gateState accumulates violations, the tightest confidence ceiling seen so
// far and the set of consensus lines excluded from the filtered output.
type gateState struct {
	violations []domain.QualityViolation
	ceiling    int
	excluded   map[string]struct{}
}

func (st *gateState) add(rule string, severity domain.Severity, detail, adjustment string) {
	st.violations = append(st.violations, domain.QualityViolation{
		Rule:       rule,
		Severity:   severity,
		Detail:     detail,
		Adjustment: adjustment,
	})
}

func (st *gateState) cap(ceiling int) {
	if ceiling < st.ceiling {
		st.ceiling = ceiling
	}
}

func (st *gateState) exclude(line string) {
	st.excluded[strings.ToLower(strings.TrimSpace(line))] = struct{}{}
}

func (st *gateState) isExcluded(line string) bool {
	_, ok := st.excluded[strings.ToLower(strings.TrimSpace(line))]
	return ok
}

// Run audits the consensus against the trade context and the deterministic
// assessment. A nil consensus (all providers failed or advice disabled)
// degrades to a deterministic-only result rather than an error.
func (g *QualityGate) Run(consensus *domain.ConsensusAnalysis, c *tradecontext.TradeDecisionContext, det Assessment) domain.QualityGateResult {
	st := &gateState{
		ceiling:  100,
		excluded: make(map[string]struct{}),
	}

	g.checkCompleteness(st, c)
	if consensus != nil {
		known := c.KnownAssetNames()
		g.checkPhantoms(st, consensus, known)
		g.checkLeagueConstraints(st, consensus, c.League)
		g.checkValuationBounds(st, consensus, c)
	}
	g.checkInjuryCompound(st, c)
	conditional := g.checkConditional(st, c)

	confidence := g.adjustConfidence(st, consensus, c, det)

	result := domain.QualityGateResult{
		Passed:                  true,
		Violations:              st.violations,
		AdjustedConfidence:      confidence,
		DeterministicConfidence: det.Confidence,
		FilteredReasons:         g.filterReasons(st, consensus, det),
		FilteredCounters:        g.filterCounters(st, consensus, det),
		FilteredWarnings:        g.filterWarnings(st, consensus, det),
		Conditional:             conditional,
	}
	if consensus != nil {
		result.OriginalLLMConfidence = consensus.Confidence
		result.ConsensusMethod = consensus.Meta.Method
	}
	for _, v := range st.violations {
		if v.Severity == domain.SeverityHard {
			result.Passed = false
		}
		metrics.GateViolations.WithLabelValues(v.Rule, string(v.Severity)).Inc()
	}
	metrics.GateResults.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()
	metrics.AdjustedConfidence.Observe(float64(confidence))
	if conditional.IsConditional {
		metrics.ConditionalRecommendations.Inc()
	}

	g.log.Infow("quality gate finished",
		"passed", result.Passed,
		"violations", len(st.violations),
		"adjusted_confidence", confidence,
		"ceiling", st.ceiling,
		"conditional", conditional.IsConditional,
	)
	return result
}

// checkCompleteness (stage 1) caps confidence by data coverage, missing
// per-asset fields and stale sources.
func (g *QualityGate) checkCompleteness(st *gateState, c *tradecontext.TradeDecisionContext) {
	tier := coverageTierFor(c.DataQuality.CoveragePercent)
	st.cap(tier.ceiling)
	if tier.ceiling < 90 {
		st.add(RuleCoverageCeiling, domain.SeveritySoft,
			fmt.Sprintf("data coverage at %.0f%%", c.DataQuality.CoveragePercent),
			fmt.Sprintf("confidence capped at %d", tier.ceiling))
	}

	missing := len(c.MissingData.AssetsMissingValuation) +
		len(c.MissingData.AssetsMissingADP) +
		len(c.MissingData.AssetsMissingAnalytics)
	switch {
	case missing >= 6:
		st.cap(60)
		st.add(RuleMissingFieldsCeiling, domain.SeveritySoft,
			fmt.Sprintf("%d asset fields missing across valuation, ADP and analytics", missing),
			"confidence capped at 60")
	case missing >= 3:
		st.cap(70)
		st.add(RuleMissingFieldsCeiling, domain.SeveritySoft,
			fmt.Sprintf("%d asset fields missing across valuation, ADP and analytics", missing),
			"confidence capped at 70")
	}

	staleCount := 0
	for _, src := range tradecontext.TrackedSources {
		if !c.SourceStale(src) {
			continue
		}
		staleCount++
		if ceiling, ok := staleSourceCeilings[src]; ok {
			st.cap(ceiling)
			st.add(RuleStaleSourceCap, domain.SeveritySoft,
				fmt.Sprintf("%s data is stale", src),
				fmt.Sprintf("confidence capped at %d", ceiling))
		}
	}
	if staleCount >= 3 {
		st.cap(50)
		st.add(RuleStaleSources, domain.SeverityHard,
			fmt.Sprintf("%d of %d tracked data sources are stale", staleCount, len(tradecontext.TrackedSources)),
			"confidence capped at 50")
	}
}

// checkPhantoms (stage 2) drops consensus lines that reference players absent
// from the trade context.
func (g *QualityGate) checkPhantoms(st *gateState, consensus *domain.ConsensusAnalysis, known map[string]struct{}) {
	sections := []struct {
		label string
		lines []string
	}{
		{"factor", consensus.Factors},
		{"recommendation", consensus.Recommendations},
		{"aging concern", consensus.AgingConcerns},
	}
	for _, section := range sections {
		for _, line := range section.lines {
			for _, candidate := range nameCandidates(line) {
				if knownName(candidate, known) {
					continue
				}
				st.exclude(line)
				st.add(RulePhantomAsset, domain.SeveritySoft,
					fmt.Sprintf("%s references %q, which is not part of this trade", section.label, candidate),
					"line removed from output")
				break
			}
		}
	}
}

// checkLeagueConstraints (stage 3) flags consensus lines that contradict the
// league's configuration.
func (g *QualityGate) checkLeagueConstraints(st *gateState, consensus *domain.ConsensusAnalysis, lc tradecontext.LeagueConfig) {
	sections := []struct {
		prefix string
		lines  []string
	}{
		{"factor", consensus.Factors},
		{"counter", consensus.Recommendations},
		{"warning", consensus.AgingConcerns},
	}
	for _, section := range sections {
		for _, line := range section.lines {
			for _, rule := range leagueConstraintRules {
				if !rule.applies(lc) || !rule.pattern.MatchString(line) {
					continue
				}
				st.exclude(line)
				st.add(section.prefix+"_"+rule.code, domain.SeveritySoft, rule.detail, "line removed from output")
			}
		}
	}

	// Numeric mismatches only make sense in counter-proposals, where the
	// model describes the league it thinks it is restructuring for.
	for _, line := range consensus.Recommendations {
		if lc.TeamCount > 0 {
			if n, ok := firstNumber(teamCountRe, line); ok && n != lc.TeamCount {
				st.exclude(line)
				st.add(RuleTeamCountMismatch, domain.SeveritySoft,
					fmt.Sprintf("counter mentions a %d-team league; this league has %d teams", n, lc.TeamCount),
					"line removed from output")
			}
		}
		if lc.RosterSize > 0 {
			if n, ok := firstNumber(rosterSizeRe, line); ok && abs(n-lc.RosterSize) > rosterSizeTolerance {
				st.exclude(line)
				st.add(RuleRosterSizeMismatch, domain.SeveritySoft,
					fmt.Sprintf("counter mentions a %d-man roster; this league rosters %d", n, lc.RosterSize),
					"line removed from output")
			}
		}
	}
}

// checkValuationBounds (stage 4) compares the model verdict against the
// deterministic value delta.
func (g *QualityGate) checkValuationBounds(st *gateState, consensus *domain.ConsensusAnalysis, c *tradecontext.TradeDecisionContext) {
	pct := c.ValueDelta.PercentDiff
	if pct < 0 {
		pct = -pct
	}
	favored := c.ValueDelta.FavoredSide
	verdictSide := consensus.Winner.FavorsSide()

	if pct > 20 && favored != "" && verdictSide != "" && verdictSide != favored {
		st.add(RuleVerdictContradicts, domain.SeverityHard,
			fmt.Sprintf("verdict favors team %s while valuations favor team %s by %.1f%%", verdictSide, favored, pct), "")
	}
	if pct > 30 && consensus.Winner == domain.WinnerEven {
		st.add(RuleEvenOnLopsided, domain.SeveritySoft,
			fmt.Sprintf("verdict calls the trade even despite a %.1f%% value gap", pct), "")
	}
	if pct <= 5 && consensus.Confidence > 85 && verdictSide != "" {
		st.add(RuleOverconfidentEven, domain.SeveritySoft,
			fmt.Sprintf("%d%% confidence in a one-sided verdict on a near-even trade (%.1f%% gap)", consensus.Confidence, pct), "")
	}
}

// checkInjuryCompound (stage 5) detects the combination of injury risk, stale
// injury data and a thin value margin.
func (g *QualityGate) checkInjuryCompound(st *gateState, c *tradecontext.TradeDecisionContext) {
	atRisk := []string{}
	for _, m := range c.AllRiskMarkers() {
		if m.ElevatedReinjuryRisk() || m.ActiveInjury() {
			atRisk = append(atRisk, m.PlayerName)
		}
	}
	if len(atRisk) == 0 || !c.SourceStale(tradecontext.SourceInjury) {
		return
	}

	pct := c.ValueDelta.PercentDiff
	if pct < 0 {
		pct = -pct
	}
	if pct <= 10 {
		st.cap(55)
		st.add(RuleInjuryCompound, domain.SeverityHard,
			fmt.Sprintf("injury-flagged players (%s) with stale injury data on a thin %.1f%% margin", strings.Join(atRisk, ", "), pct),
			"confidence capped at 55")
		return
	}
	st.cap(65)
	st.add(RuleInjuryStaleData, domain.SeveritySoft,
		fmt.Sprintf("injury-flagged players (%s) evaluated against stale injury data", strings.Join(atRisk, ", ")),
		"confidence capped at 65")
}

// checkConditional (stage 6) marks the recommendation conditional when core
// context inputs are missing rather than merely imperfect.
func (g *QualityGate) checkConditional(st *gateState, c *tradecontext.TradeDecisionContext) domain.ConditionalRecommendation {
	var reasons []string

	for _, side := range []tradecontext.Side{tradecontext.SideA, tradecontext.SideB} {
		roster := c.Snapshot(side).Roster
		if roster.Empty() || roster.Expired {
			reason := fmt.Sprintf("roster data for team %s is unavailable", side)
			reasons = append(reasons, reason)
			st.add(RuleMissingRoster, domain.SeveritySoft, reason, "")
		}
	}
	if c.MissingData.CompetitorDataMissing {
		reason := "league competitor context is missing"
		reasons = append(reasons, reason)
		st.add(RuleMissingCompetitor, domain.SeveritySoft, reason, "")
	}
	if c.SideA.TradeHistorySize == 0 && c.SideB.TradeHistorySize == 0 {
		reason := "no trade history available for either manager"
		reasons = append(reasons, reason)
		st.add(RuleNoTradeHistory, domain.SeveritySoft, reason, "")
	}
	if n := len(c.MissingData.AssetsMissingValuation); n >= 3 {
		reason := fmt.Sprintf("%d traded assets have no market valuation", n)
		reasons = append(reasons, reason)
		st.add(RuleMissingValuations, domain.SeveritySoft, reason, "")
	}

	if len(reasons) == 0 {
		return domain.ConditionalRecommendation{}
	}
	return domain.ConditionalRecommendation{
		IsConditional: true,
		Reasons:       reasons,
		Label:         "conditional pending additional data",
	}
}

// adjustConfidence runs the final confidence arithmetic. The order of
// operations is fixed: model corroboration or contradiction, disagreement
// discount, violation penalties, coverage adjustment, ceiling, bounds.
func (g *QualityGate) adjustConfidence(st *gateState, consensus *domain.ConsensusAnalysis, c *tradecontext.TradeDecisionContext, det Assessment) int {
	conf := det.Confidence

	if consensus != nil {
		detSide := c.ValueDelta.FavoredSide
		llmSide := consensus.Winner.FavorsSide()
		switch {
		case detSide != "" && llmSide == detSide:
			bonus := (consensus.Confidence - det.Confidence) / 4
			if bonus > 10 {
				bonus = 10
			}
			if bonus > 0 {
				conf += bonus
			}
		case detSide != "" && llmSide != "" && llmSide != detSide:
			conf -= 8
		}

		if consensus.Meta.Method == domain.ConsensusPrimaryFallback || hasContradiction(consensus, domain.ContradictionConfidenceGap) {
			conf -= 5
			if g.reviewMode {
				conf -= 3
			}
		}
	}

	for _, v := range st.violations {
		if v.Severity == domain.SeverityHard {
			conf -= 15
		} else {
			conf -= 3
		}
	}

	conf += coverageTierFor(c.DataQuality.CoveragePercent).adjustment

	if conf > st.ceiling {
		conf = st.ceiling
	}
	return clampConfidence(conf)
}

func hasContradiction(consensus *domain.ConsensusAnalysis, code string) bool {
	for _, c := range consensus.Meta.Contradictions {
		if c == code {
			return true
		}
	}
	return false
}

// filterReasons merges deterministic reasons with non-excluded,
// non-duplicative model factors. Deterministic reasons always come first.
func (g *QualityGate) filterReasons(st *gateState, consensus *domain.ConsensusAnalysis, det Assessment) []string {
	out := append([]string{}, det.Reasons...)
	if consensus == nil {
		return out
	}
	for _, factor := range consensus.Factors {
		if st.isExcluded(factor) || similarToAny(factor, det.Reasons) {
			continue
		}
		out = append(out, factor)
	}
	return out
}

// filterCounters merges deterministic counter-proposals with model
// recommendations, deduplicating on a shared leading-words prefix.
func (g *QualityGate) filterCounters(st *gateState, consensus *domain.ConsensusAnalysis, det Assessment) []string {
	out := append([]string{}, det.Counters...)
	if consensus == nil {
		return out
	}
	for _, rec := range consensus.Recommendations {
		if st.isExcluded(rec) || sharesPrefix(rec, out) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// filterWarnings merges deterministic warnings, surviving model aging
// concerns, and a trail entry for every non-phantom violation.
func (g *QualityGate) filterWarnings(st *gateState, consensus *domain.ConsensusAnalysis, det Assessment) []string {
	out := append([]string{}, det.Warnings...)
	if consensus != nil {
		for _, concern := range consensus.AgingConcerns {
			if st.isExcluded(concern) || similarToAny(concern, det.Warnings) {
				continue
			}
			out = append(out, concern)
		}
	} else {
		out = append(out, "[QualityGate] no model consensus available; deterministic-only result")
	}
	for _, v := range st.violations {
		if v.Rule == RulePhantomAsset {
			continue
		}
		out = append(out, fmt.Sprintf("[QualityGate] %s: %s", v.Rule, v.Detail))
	}
	return out
}

// similarToAny reports whether a line is a near-paraphrase of any existing
// line, measured by word-set overlap against the shorter line.
func similarToAny(line string, existing []string) bool {
	words := wordSet(line)
	if len(words) == 0 {
		return false
	}
	for _, other := range existing {
		otherWords := wordSet(other)
		if len(otherWords) == 0 {
			continue
		}
		shared := 0
		for w := range words {
			if _, ok := otherWords[w]; ok {
				shared++
			}
		}
		min := len(words)
		if len(otherWords) < min {
			min = len(otherWords)
		}
		if float64(shared)/float64(min) >= similarityThreshold {
			return true
		}
	}
	return false
}

func wordSet(line string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(line)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// sharesPrefix reports whether a line starts with the same leading words as
// any existing line.
func sharesPrefix(line string, existing []string) bool {
	prefix := leadingWords(line, counterPrefixWords)
	if prefix == "" {
		return false
	}
	for _, other := range existing {
		if leadingWords(other, counterPrefixWords) == prefix {
			return true
		}
	}
	return false
}

func leadingWords(line string, n int) string {
	words := strings.Fields(strings.ToLower(line))
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
