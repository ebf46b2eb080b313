package advice

import (
	"google.golang.org/genai"
)

func float64Ptr(v float64) *float64 {
	return &v
}

// TradeAnalysisSchema is the structured-output schema sent to backends with
// native schema support. It mirrors the advice.TradeAnalysis record; the
// schema validator remains the authority either way since backends are
// untrusted.
var TradeAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"winner": {
			Type:        "STRING",
			Description: "Which side wins the trade",
			Enum:        []string{"team_a", "team_b", "even", "slight_edge_a", "slight_edge_b"},
		},
		"valueDelta": {
			Type:        "STRING",
			Description: "One-sentence description of the market value gap between the sides",
		},
		"factors": {
			Type:        "ARRAY",
			Description: "3-5 key factors supporting the verdict",
			Items: &genai.Schema{
				Type: "STRING",
			},
		},
		"confidence": {
			Type:        "NUMBER",
			Description: "Confidence in the verdict (0-100)",
			Minimum:     float64Ptr(0),
			Maximum:     float64Ptr(100),
		},
		"dynastyVerdict": {
			Type:        "STRING",
			Description: "2-3 sentence narrative verdict on the trade's long-term outlook",
		},
		"vetoRisk": {
			Type:        "STRING",
			Description: "Commissioner veto risk assessment, if any",
		},
		"agingConcerns": {
			Type:        "ARRAY",
			Description: "Age-related concerns for specific assets in the deal",
			Items: &genai.Schema{
				Type: "STRING",
			},
		},
		"recommendations": {
			Type:        "ARRAY",
			Description: "Suggested adjustments that would balance the trade",
			Items: &genai.Schema{
				Type: "STRING",
			},
		},
	},
	Required: []string{"winner", "valueDelta", "factors", "confidence", "dynastyVerdict"},
}
