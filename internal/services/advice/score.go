package advice

import (
	domain "gridiron/internal/domain/advice"
)

// Provider-result scoring weights. The score is the currency the consensus
// merger uses to weight conflicting sources; it must be deterministic for
// identical input.
const (
	scoreSchemaValidBase    = 40
	scoreSelfConfidenceMax  = 30
	scoreBonusFactors       = 10
	scoreBonusRecommend     = 5
	scoreBonusAging         = 5
	scoreBonusNarrative     = 10
	scoreMinFactorCount     = 3
	scoreMinNarrativeLength = 120
)

// ScoreResult computes the [0,100] quality score for a provider result.
// Schema validity dominates; self-reported confidence and populated optional
// sections add the rest.
func ScoreResult(r domain.ProviderResult) int {
	if r.Analysis == nil {
		return 0
	}

	score := 0
	if r.SchemaValid {
		score += scoreSchemaValidBase
	}

	conf := r.Analysis.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	score += scoreSelfConfidenceMax * conf / 100

	if len(r.Analysis.Factors) >= scoreMinFactorCount {
		score += scoreBonusFactors
	}
	if len(r.Analysis.Recommendations) > 0 {
		score += scoreBonusRecommend
	}
	if len(r.Analysis.AgingConcerns) > 0 {
		score += scoreBonusAging
	}
	if len(r.Analysis.ValueDelta)+len(r.Analysis.DynastyVerdict) >= scoreMinNarrativeLength {
		score += scoreBonusNarrative
	}

	if score > 100 {
		score = 100
	}
	return score
}
