package advice

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "gridiron/internal/domain/advice"
	"gridiron/pkg/logger"
)

// Validation is the tagged outcome of one validation attempt. State records
// which parse stage produced the analysis so provenance stays inspectable.
type Validation struct {
	Valid    bool
	State    domain.ParseState
	Analysis *domain.TradeAnalysis
}

// Validator turns an untrusted backend payload into a typed TradeAnalysis.
// It is the only constructor of TradeAnalysis values in the engine.
// Stateless and safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	log      *logger.Logger
}

// NewValidator creates a schema validator.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
		log:      logger.Get().With("component", "schema_validator"),
	}
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Validate runs the three-stage parse ladder: strict, coerced, salvaged.
// It never returns an error; unusable payloads yield State=failed and a
// nil analysis.
func (v *Validator) Validate(payload string) Validation {
	raw := extractJSON(payload)
	if raw == "" {
		return Validation{State: domain.ParseFailed}
	}

	if analysis, ok := v.parseStrict(raw); ok {
		return Validation{Valid: true, State: domain.ParseStrict, Analysis: analysis}
	}

	if analysis, ok := v.parseCoerced(raw); ok {
		return Validation{Valid: true, State: domain.ParseCoerced, Analysis: analysis}
	}

	if analysis, ok := v.parseSalvaged(raw); ok {
		// Salvage keeps the narrative text usable but the record is not
		// schema-valid: downstream scoring discounts it heavily.
		return Validation{Valid: false, State: domain.ParseSalvaged, Analysis: analysis}
	}

	return Validation{State: domain.ParseFailed}
}

// extractJSON finds the JSON document in a payload that may be raw JSON,
// a fenced code block, or free text containing an embedded object.
func extractJSON(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}

	return firstObject(trimmed)
}

// firstObject returns the first balanced {...} substring, respecting
// string literals and escapes.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

func (v *Validator) parseStrict(raw string) (*domain.TradeAnalysis, bool) {
	var analysis domain.TradeAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, false
	}
	if err := v.validate.Struct(&analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

// parseCoerced applies one repair pass over the loose decoded document:
// stringified numbers become numbers, winner variants are normalized, a
// numeric valueDelta becomes its string form, missing optional arrays
// become empty. Then the repaired record must pass full validation.
func (v *Validator) parseCoerced(raw string) (*domain.TradeAnalysis, bool) {
	doc := decodeLoose(raw)
	if doc == nil {
		return nil, false
	}

	analysis := &domain.TradeAnalysis{
		Winner:          normalizeWinner(doc["winner"]),
		ValueDelta:      coerceString(doc["valueDelta"]),
		Factors:         coerceStrings(doc["factors"]),
		Confidence:      coerceInt(doc["confidence"]),
		DynastyVerdict:  coerceString(firstPresent(doc, "dynastyVerdict", "verdict")),
		VetoRisk:        coerceString(doc["vetoRisk"]),
		AgingConcerns:   coerceStrings(doc["agingConcerns"]),
		Recommendations: coerceStrings(doc["recommendations"]),
	}
	if analysis.AgingConcerns == nil {
		analysis.AgingConcerns = []string{}
	}
	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}

	if err := v.validate.Struct(analysis); err != nil {
		return nil, false
	}
	return analysis, true
}

// parseSalvaged accepts the payload as a best-effort analysis only when the
// two mandatory narrative fields are present.
func (v *Validator) parseSalvaged(raw string) (*domain.TradeAnalysis, bool) {
	doc := decodeLoose(raw)
	if doc == nil {
		return nil, false
	}

	winner := normalizeWinner(doc["winner"])
	verdict := coerceString(firstPresent(doc, "dynastyVerdict", "verdict"))
	if winner == "" || verdict == "" {
		return nil, false
	}

	return &domain.TradeAnalysis{
		Winner:          winner,
		ValueDelta:      coerceString(doc["valueDelta"]),
		Factors:         coerceStrings(doc["factors"]),
		Confidence:      coerceInt(doc["confidence"]),
		DynastyVerdict:  verdict,
		VetoRisk:        coerceString(doc["vetoRisk"]),
		AgingConcerns:   coerceStrings(doc["agingConcerns"]),
		Recommendations: coerceStrings(doc["recommendations"]),
	}, true
}

func decodeLoose(raw string) map[string]interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}
	return doc
}

func firstPresent(doc map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// normalizeWinner maps the enum spellings models actually produce onto the
// canonical Winner values. Unknown spellings yield "".
func normalizeWinner(v interface{}) domain.Winner {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)

	switch s {
	case "team_a", "teama", "a", "side_a":
		return domain.WinnerTeamA
	case "team_b", "teamb", "b", "side_b":
		return domain.WinnerTeamB
	case "even", "fair", "neutral":
		return domain.WinnerEven
	case "slight_edge_a", "slight_a":
		return domain.WinnerSlightEdgeA
	case "slight_edge_b", "slight_b":
		return domain.WinnerSlightEdgeB
	default:
		return ""
	}
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func coerceStrings(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	}
	return nil
}

func coerceInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}
