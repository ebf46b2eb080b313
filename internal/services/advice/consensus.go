package advice

import (
	"math"
	"sort"
	"strings"
	"time"

	domain "gridiron/internal/domain/advice"
	"gridiron/internal/metrics"
	"gridiron/pkg/logger"
)

// secondaryScoreFloor is the score below which a secondary analysis is
// treated as noise rather than signal and dropped from the merge.
const secondaryScoreFloor = 30

// contradictionConfidenceGap is the confidence spread beyond which two
// analyses are flagged as contradicting each other.
const contradictionConfidenceGap = 25

// Merger combines zero, one or two provider results into one consensus
// analysis. Stateless and safe for concurrent use.
type Merger struct {
	log *logger.Logger
}

// NewMerger creates a consensus merger.
func NewMerger() *Merger {
	return &Merger{
		log: logger.Get().With("component", "consensus_merger"),
	}
}

// Merge resolves the available analyses into a single consensus, or nil
// when no backend produced an opinion. primaryProvider designates the
// tie-breaking side; when absent the first available result is primary.
func (m *Merger) Merge(results []domain.ProviderResult, primaryProvider domain.Provider) *domain.ConsensusAnalysis {
	var totalLatency time.Duration
	available := make([]domain.ProviderResult, 0, len(results))
	for _, r := range results {
		totalLatency += r.Latency
		if r.Analysis != nil {
			available = append(available, r)
		}
	}

	switch len(available) {
	case 0:
		metrics.ConsensusMethods.WithLabelValues("none").Inc()
		return nil

	case 1:
		metrics.ConsensusMethods.WithLabelValues(string(domain.ConsensusSingle)).Inc()
		return &domain.ConsensusAnalysis{
			TradeAnalysis: *available[0].Analysis,
			Meta: domain.ConsensusMeta{
				Method:       domain.ConsensusSingle,
				Primary:      available[0].Provider,
				Sources:      available,
				TotalLatency: totalLatency,
			},
		}
	}

	primary, secondary := designate(available, primaryProvider)
	contradictions := detectContradictions(primary, secondary)
	if len(contradictions) > 0 {
		metrics.ConsensusContradictions.Inc()
	}

	if secondary.ConfidenceScore < secondaryScoreFloor {
		m.log.Debugw("Discarding low-scoring secondary",
			"secondary", secondary.Provider,
			"score", secondary.ConfidenceScore,
		)
		metrics.ConsensusMethods.WithLabelValues(string(domain.ConsensusPrimaryFallback)).Inc()
		return &domain.ConsensusAnalysis{
			TradeAnalysis: *primary.Analysis,
			Meta: domain.ConsensusMeta{
				Method:         domain.ConsensusPrimaryFallback,
				Primary:        primary.Provider,
				Sources:        available,
				TotalLatency:   totalLatency,
				Contradictions: contradictions,
			},
		}
	}

	merged := m.weightedMerge(primary, secondary)
	metrics.ConsensusMethods.WithLabelValues(string(domain.ConsensusWeightedMerge)).Inc()

	return &domain.ConsensusAnalysis{
		TradeAnalysis: merged,
		Meta: domain.ConsensusMeta{
			Method:         domain.ConsensusWeightedMerge,
			Primary:        primary.Provider,
			Sources:        available,
			TotalLatency:   totalLatency,
			Contradictions: contradictions,
		},
	}
}

// designate splits two available results into primary and secondary.
func designate(available []domain.ProviderResult, primaryProvider domain.Provider) (primary, secondary domain.ProviderResult) {
	primary, secondary = available[0], available[1]
	if secondary.Provider == primaryProvider {
		primary, secondary = secondary, primary
	}
	return primary, secondary
}

// detectContradictions flags advisory disagreement signals. They are
// forwarded on meta for the quality gate and logs; they never change the
// merge result.
func detectContradictions(primary, secondary domain.ProviderResult) []string {
	var out []string
	if primary.Analysis.Winner.Opposes(secondary.Analysis.Winner) {
		out = append(out, domain.ContradictionWinnerMismatch)
	}
	if abs(primary.Analysis.Confidence-secondary.Analysis.Confidence) > contradictionConfidenceGap {
		out = append(out, domain.ContradictionConfidenceGap)
	}
	return out
}

// weightedMerge combines two analyses with weights proportional to their
// provider scores.
func (m *Merger) weightedMerge(primary, secondary domain.ProviderResult) domain.TradeAnalysis {
	pa, sa := primary.Analysis, secondary.Analysis

	scoreSum := float64(primary.ConfidenceScore + secondary.ConfidenceScore)
	weightPrimary := 0.5
	if scoreSum > 0 {
		weightPrimary = float64(primary.ConfidenceScore) / scoreSum
	}
	weightSecondary := 1 - weightPrimary

	merged := domain.TradeAnalysis{
		Confidence: int(math.Round(weightPrimary*float64(pa.Confidence) + weightSecondary*float64(sa.Confidence))),
	}

	// Winner: agreement passes through; disagreement goes to a
	// score-weighted vote rather than a coin flip.
	if pa.Winner == sa.Winner {
		merged.Winner = pa.Winner
	} else {
		ballot := NewBallot[domain.Winner]()
		ballot.Add(pa.Winner, float64(primary.ConfidenceScore))
		ballot.Add(sa.Winner, float64(secondary.ConfidenceScore))
		merged.Winner, _, _ = ballot.Winner()
	}

	// Scalar narratives come from the higher-scoring side. On an exact
	// score tie the primary wins: call-issue order is the documented
	// tie-break.
	best := pa
	if secondary.ConfidenceScore > primary.ConfidenceScore {
		best = sa
	}
	merged.ValueDelta = best.ValueDelta
	merged.DynastyVerdict = best.DynastyVerdict
	merged.VetoRisk = best.VetoRisk

	merged.Factors = mergeRanked(pa.Factors, sa.Factors)
	merged.Recommendations = mergeRanked(pa.Recommendations, sa.Recommendations)
	merged.AgingConcerns = mergeRanked(pa.AgingConcerns, sa.AgingConcerns)

	return merged
}

// mergeRanked dedupes two lists case-insensitively and ranks entries by a
// weighted frequency score: items in the primary list score 2, items only
// in the secondary score 1, so an item both sources mention outranks one
// mentioned once. Ordering is stable for equal scores.
func mergeRanked(primary, secondary []string) []string {
	type entry struct {
		text  string
		score int
		order int
	}

	seen := make(map[string]*entry)
	var entries []*entry

	add := func(items []string, weight int) {
		for _, item := range items {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := strings.ToLower(item)
			if e, ok := seen[key]; ok {
				e.score += weight
				continue
			}
			e := &entry{text: item, score: weight, order: len(entries)}
			seen[key] = e
			entries = append(entries, e)
		}
	}

	add(primary, 2)
	add(secondary, 1)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].order < entries[j].order
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
