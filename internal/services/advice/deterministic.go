package advice

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"gridiron/internal/domain/tradecontext"
	"gridiron/pkg/logger"
)

// Confidence bounds shared by the deterministic scorer and the quality gate.
const (
	ConfidenceFloor = 15
	ConfidenceCeil  = 90
)

// minTradeHistorySample is the sample size below which manager trade
// tendencies are considered unknown.
const minTradeHistorySample = 3

// Assessment is the deterministic branch's output: a confidence score plus
// reasons, warnings and counter-suggestions computed purely from structured
// data, with no model involvement.
type Assessment struct {
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Warnings   []string `json:"warnings"`
	Counters   []string `json:"counters"`
}

// DeterministicScorer computes an Assessment from a trade context. It is a
// pure, total function of its input: no network, no randomness, no mutable
// state, safe to call concurrently from any number of goroutines.
type DeterministicScorer struct {
	log *logger.Logger
}

// NewDeterministicScorer creates a deterministic scorer.
func NewDeterministicScorer() *DeterministicScorer {
	return &DeterministicScorer{
		log: logger.Get().With("component", "deterministic_scorer"),
	}
}

// Score evaluates the trade context. It never fails, however sparse the
// context is.
func (s *DeterministicScorer) Score(c *tradecontext.TradeDecisionContext) Assessment {
	return Assessment{
		Confidence: s.confidence(c),
		Reasons:    s.reasons(c),
		Warnings:   s.warnings(c),
		Counters:   s.counters(c),
	}
}

func (s *DeterministicScorer) confidence(c *tradecontext.TradeDecisionContext) int {
	conf := 50

	// Data coverage tiers.
	coverage := c.DataQuality.CoveragePercent
	switch {
	case coverage >= 90:
		conf += 15
	case coverage >= 70:
		conf += 8
	case coverage >= 50:
		// neutral
	case coverage >= 30:
		conf -= 8
	default:
		conf -= 15
	}

	// A clear value gap is easier to call than a near-even trade.
	gap := math.Abs(c.ValueDelta.PercentDiff)
	switch {
	case gap >= 25:
		conf += 10
	case gap >= 15:
		conf += 6
	case gap >= 8:
		conf += 3
	case gap <= 3:
		conf -= 5
	}

	// Stale sources, capped so staleness alone cannot crater the score.
	stalePenalty := 4 * c.StaleSourceCount()
	if stalePenalty > 12 {
		stalePenalty = 12
	}
	conf -= stalePenalty

	if len(c.AllRiskMarkers()) > 0 && !c.SourceStale(tradecontext.SourceInjury) {
		conf += 3
	}
	if c.DataQuality.ADPHitRate >= 0.7 && !c.SourceStale(tradecontext.SourceADP) {
		conf += 3
	}

	return clampConfidence(conf)
}

// reasons generates explanations from concrete computed facts only; every
// sentence traces back to a context field.
func (s *DeterministicScorer) reasons(c *tradecontext.TradeDecisionContext) []string {
	var reasons []string

	gap := math.Abs(c.ValueDelta.PercentDiff)
	if c.ValueDelta.FavoredSide != "" && gap > 3 {
		reasons = append(reasons, fmt.Sprintf(
			"Market values favor side %s by %s points (%.1f%%)",
			c.ValueDelta.FavoredSide,
			humanize.CommafWithDigits(math.Abs(c.ValueDelta.AbsoluteDiff), 1),
			gap,
		))
	} else {
		reasons = append(reasons, fmt.Sprintf("Market values are effectively even (%.1f%% gap)", gap))
	}

	for _, side := range []tradecontext.Side{tradecontext.SideA, tradecontext.SideB} {
		top := c.TopAssets(side, 2)
		if len(top) == 0 {
			continue
		}
		names := make([]string, len(top))
		for i, a := range top {
			names[i] = fmt.Sprintf("%s (%s)", a.Name, humanize.CommafWithDigits(a.MarketValue, 1))
		}
		reasons = append(reasons, fmt.Sprintf("Side %s's most valuable assets: %s", side, strings.Join(names, ", ")))
	}

	if r := needsFilledReason(c, tradecontext.SideA, tradecontext.SideB); r != "" {
		reasons = append(reasons, r)
	}
	if r := needsFilledReason(c, tradecontext.SideB, tradecontext.SideA); r != "" {
		reasons = append(reasons, r)
	}

	reasons = append(reasons, windowAlignmentReasons(c)...)

	for _, marker := range c.AllRiskMarkers() {
		if marker.AgeCliff() {
			reasons = append(reasons, fmt.Sprintf("%s carries age-cliff risk", marker.PlayerName))
		}
		if marker.ElevatedReinjuryRisk() {
			reasons = append(reasons, fmt.Sprintf("%s carries elevated reinjury risk", marker.PlayerName))
		}
	}

	for _, asset := range c.AllAssets() {
		if asset.Cornerstone {
			reasons = append(reasons, fmt.Sprintf("Cornerstone asset %s changes hands", asset.Name))
		}
	}

	return reasons
}

// needsFilledReason counts how many of the receiving side's positional needs
// are covered by positions among the sending side's outgoing assets.
func needsFilledReason(c *tradecontext.TradeDecisionContext, receiving, sending tradecontext.Side) string {
	needs := c.Snapshot(receiving).Needs
	if len(needs) == 0 {
		return ""
	}

	incoming := make(map[string]bool)
	for _, a := range c.Snapshot(sending).Assets {
		if a.Position != "" {
			incoming[strings.ToUpper(a.Position)] = true
		}
	}

	var filled []string
	for _, need := range needs {
		if incoming[strings.ToUpper(need)] {
			filled = append(filled, strings.ToUpper(need))
		}
	}
	if len(filled) == 0 {
		return ""
	}

	return fmt.Sprintf("Side %s fills %d positional need(s) from this deal (%s)",
		receiving, len(filled), strings.Join(filled, ", "))
}

// windowAlignmentReasons reports when a side's acquisition profile matches
// its competitive window: contenders acquiring prime-age talent, rebuilders
// acquiring youth.
func windowAlignmentReasons(c *tradecontext.TradeDecisionContext) []string {
	var out []string

	check := func(receiving, sending tradecontext.Side) {
		tier := c.Snapshot(receiving).Tier
		for _, a := range c.Snapshot(sending).Assets {
			if a.Type != tradecontext.AssetPlayer || a.Age == 0 {
				continue
			}
			switch {
			case (tier == tradecontext.TierChampion || tier == tradecontext.TierContender) && a.Age >= 24 && a.Age <= 29:
				out = append(out, fmt.Sprintf("Side %s (%s window) acquires prime-age talent in %s (age %d)",
					receiving, tier, a.Name, a.Age))
				return
			case tier == tradecontext.TierRebuild && a.Age > 0 && a.Age <= 23:
				out = append(out, fmt.Sprintf("Side %s (rebuild window) acquires youth in %s (age %d)",
					receiving, a.Name, a.Age))
				return
			}
		}
	}

	check(tradecontext.SideA, tradecontext.SideB)
	check(tradecontext.SideB, tradecontext.SideA)
	return out
}

func (s *DeterministicScorer) warnings(c *tradecontext.TradeDecisionContext) []string {
	var warnings []string

	if w := missingSampleWarning("valuations", c.MissingData.AssetsMissingValuation); w != "" {
		warnings = append(warnings, w)
	}
	if w := missingSampleWarning("ADP data", c.MissingData.AssetsMissingADP); w != "" {
		warnings = append(warnings, w)
	}
	if w := missingSampleWarning("analytics grades", c.MissingData.AssetsMissingAnalytics); w != "" {
		warnings = append(warnings, w)
	}

	for _, src := range tradecontext.TrackedSources {
		if c.SourceStale(src) {
			warnings = append(warnings, fmt.Sprintf("Data source %q is stale", src))
		}
	}

	if c.SideA.TradeHistorySize < minTradeHistorySample && c.SideB.TradeHistorySize < minTradeHistorySample {
		warnings = append(warnings, "Insufficient manager trade-history sample for both sides")
	}

	if c.MissingData.CompetitorDataMissing {
		warnings = append(warnings, "League-wide competitor context is unavailable")
	}

	for _, marker := range c.AllRiskMarkers() {
		if marker.AgeCliff() {
			warnings = append(warnings, fmt.Sprintf("%s is in the age-cliff bucket", marker.PlayerName))
		}
		if marker.ActiveInjury() {
			warnings = append(warnings, fmt.Sprintf("%s has active injury status (%s)", marker.PlayerName, marker.InjuryStatus))
		}
	}

	return warnings
}

// missingSampleWarning formats a capped sample list of assets missing a
// data category.
func missingSampleWarning(category string, assets []string) string {
	if len(assets) == 0 {
		return ""
	}
	sample := assets
	if len(sample) > 3 {
		sample = sample[:3]
	}
	return fmt.Sprintf("%d asset(s) missing %s (%s)", len(assets), category, strings.Join(sample, ", "))
}

// counters suggests rebalancing moves. Trivial gaps get no counter at all;
// the suggestion scales with how lopsided the values are.
func (s *DeterministicScorer) counters(c *tradecontext.TradeDecisionContext) []string {
	gap := math.Abs(c.ValueDelta.PercentDiff)
	if gap <= 3 || c.ValueDelta.FavoredSide == "" {
		return nil
	}

	// The favored side is the one winning the trade: its outgoing package is
	// the lighter one, so the sweetener comes from it, and any trim comes
	// from the other side's heavier package.
	lighter := tradecontext.SideB
	heavier := tradecontext.SideA
	if c.ValueDelta.FavoredSide == tradecontext.SideA {
		lighter, heavier = tradecontext.SideA, tradecontext.SideB
	}

	switch {
	case gap <= 15:
		return []string{fmt.Sprintf(
			"Add a low-value pick from side %s to close the %.1f%% gap", lighter, gap)}

	case gap <= 25:
		counter := fmt.Sprintf("Remove side %s's smallest asset or add a mid-round pick from side %s", heavier, lighter)
		if smallest := smallestAsset(c.Snapshot(heavier).Assets); smallest != "" {
			counter = fmt.Sprintf("Remove side %s's smallest asset (%s) or add a mid-round pick from side %s",
				heavier, smallest, lighter)
		}
		return []string{counter}

	default:
		return []string{fmt.Sprintf(
			"The %.1f%% value gap is too wide for a sweetener; this trade needs restructuring", gap)}
	}
}

func smallestAsset(assets []tradecontext.AssetValuation) string {
	name := ""
	best := math.Inf(1)
	for _, a := range assets {
		if a.MarketValue < best {
			best = a.MarketValue
			name = a.Name
		}
	}
	return name
}

func clampConfidence(conf int) int {
	if conf < ConfidenceFloor {
		return ConfidenceFloor
	}
	if conf > ConfidenceCeil {
		return ConfidenceCeil
	}
	return conf
}
