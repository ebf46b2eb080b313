package advice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "gridiron/internal/domain/advice"
)

const strictPayload = `{
	"winner": "team_a",
	"valueDelta": "Side A receives roughly 850 more points of market value",
	"factors": ["Value gap favors A", "A fills a WR need", "B sells an aging RB"],
	"confidence": 72,
	"dynastyVerdict": "Clear long-term win for team A"
}`

func TestValidatorStrict(t *testing.T) {
	v := NewValidator()

	result := v.Validate(strictPayload)
	require.True(t, result.Valid)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, domain.ParseStrict, result.State)
	assert.Equal(t, domain.WinnerTeamA, result.Analysis.Winner)
	assert.Equal(t, 72, result.Analysis.Confidence)
	assert.Len(t, result.Analysis.Factors, 3)
}

func TestValidatorExtractsEmbeddedJSON(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "fenced block",
			payload: "Here is my analysis:\n```json\n" + strictPayload + "\n```\nHope this helps!",
		},
		{
			name:    "unfenced block",
			payload: "```\n" + strictPayload + "\n```",
		},
		{
			name:    "prose wrapped",
			payload: "Based on the numbers, " + strictPayload + " is my final answer.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.payload)
			require.True(t, result.Valid, "payload should validate")
			assert.Equal(t, domain.ParseStrict, result.State)
			assert.Equal(t, domain.WinnerTeamA, result.Analysis.Winner)
		})
	}
}

func TestValidatorCoerced(t *testing.T) {
	v := NewValidator()

	payload := `{
		"winner": "Team A",
		"valueDelta": 850,
		"factors": "Value gap favors A",
		"confidence": "72%",
		"verdict": "Clear long-term win for team A"
	}`

	result := v.Validate(payload)
	require.True(t, result.Valid)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, domain.ParseCoerced, result.State)
	assert.Equal(t, domain.WinnerTeamA, result.Analysis.Winner)
	assert.Equal(t, "850", result.Analysis.ValueDelta)
	assert.Equal(t, []string{"Value gap favors A"}, result.Analysis.Factors)
	assert.Equal(t, 72, result.Analysis.Confidence)
	assert.Equal(t, "Clear long-term win for team A", result.Analysis.DynastyVerdict)
	assert.NotNil(t, result.Analysis.Recommendations)
	assert.NotNil(t, result.Analysis.AgingConcerns)
}

func TestValidatorSalvaged(t *testing.T) {
	v := NewValidator()

	// Missing factors and confidence entirely: cannot pass validation even
	// after coercion, but winner and verdict are salvageable.
	payload := `{"winner": "team_b", "dynastyVerdict": "B wins this comfortably"}`

	result := v.Validate(payload)
	require.NotNil(t, result.Analysis)
	assert.False(t, result.Valid)
	assert.Equal(t, domain.ParseSalvaged, result.State)
	assert.Equal(t, domain.WinnerTeamB, result.Analysis.Winner)
	assert.Equal(t, "B wins this comfortably", result.Analysis.DynastyVerdict)
}

func TestValidatorFailed(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "no json at all", payload: "I cannot evaluate this trade."},
		{name: "unbalanced braces", payload: `{"winner": "team_a"`},
		{name: "json array", payload: `["team_a", "team_b"]`},
		{name: "missing verdict", payload: `{"winner": "team_a", "confidence": 50}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.payload)
			assert.False(t, result.Valid)
			assert.Equal(t, domain.ParseFailed, result.State)
			assert.Nil(t, result.Analysis)
		})
	}
}

func TestNormalizeWinner(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Winner
	}{
		{"team_a", domain.WinnerTeamA},
		{"Team A", domain.WinnerTeamA},
		{"TEAM-B", domain.WinnerTeamB},
		{"even", domain.WinnerEven},
		{"fair", domain.WinnerEven},
		{"slight edge a", domain.WinnerSlightEdgeA},
		{"slight_edge_b", domain.WinnerSlightEdgeB},
		{"nonsense", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeWinner(tt.in), "input %q", tt.in)
	}
}

func TestFirstObjectRespectsStrings(t *testing.T) {
	payload := `noise {"verdict": "brace } inside string", "winner": "even"} trailing`
	got := firstObject(payload)
	assert.Equal(t, `{"verdict": "brace } inside string", "winner": "even"}`, got)
}

func TestScoreResult(t *testing.T) {
	valid := &domain.TradeAnalysis{
		Winner:     domain.WinnerTeamA,
		ValueDelta: "A ahead",
		Factors:    []string{"one", "two", "three"},
		Confidence: 80,
	}

	t.Run("nil analysis scores zero", func(t *testing.T) {
		assert.Equal(t, 0, ScoreResult(domain.ProviderResult{}))
	})

	t.Run("schema valid with factors", func(t *testing.T) {
		score := ScoreResult(domain.ProviderResult{
			Analysis:    valid,
			SchemaValid: true,
		})
		// 40 base + 24 confidence + 10 factor bonus
		assert.Equal(t, 74, score)
	})

	t.Run("salvaged loses the schema base", func(t *testing.T) {
		score := ScoreResult(domain.ProviderResult{
			Analysis:    valid,
			SchemaValid: false,
		})
		assert.Equal(t, 34, score)
	})

	t.Run("optional sections add bonuses", func(t *testing.T) {
		full := *valid
		full.Recommendations = []string{"add a pick"}
		full.AgingConcerns = []string{"RB turns 29"}
		score := ScoreResult(domain.ProviderResult{Analysis: &full, SchemaValid: true})
		assert.Equal(t, 84, score)
	})

	t.Run("never exceeds 100", func(t *testing.T) {
		full := *valid
		full.Confidence = 100
		full.Recommendations = []string{"add a pick"}
		full.AgingConcerns = []string{"RB turns 29"}
		full.ValueDelta = strings.Repeat("a very long value delta ", 10)
		score := ScoreResult(domain.ProviderResult{Analysis: &full, SchemaValid: true})
		assert.Equal(t, 100, score)
	})
}
