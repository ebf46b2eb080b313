package advice

import (
	"regexp"
	"strconv"
	"strings"

	"gridiron/internal/domain/tradecontext"
)

// Quality gate rule names. Kept as constants so callers can branch on the
// violation trail without string matching against prose.
const (
	RulePhantomAsset         = "phantom_asset_reference"
	RuleCoverageCeiling      = "coverage_confidence_ceiling"
	RuleMissingFieldsCeiling = "missing_fields_ceiling"
	RuleStaleSourceCap       = "stale_source_cap"
	RuleStaleSources         = "stale_data_sources"
	RuleVerdictContradicts   = "verdict_contradicts_deterministic_valuation"
	RuleEvenOnLopsided       = "even_verdict_on_lopsided_values"
	RuleOverconfidentEven    = "overconfident_on_even_trade"
	RuleInjuryCompound       = "injury_compound_risk"
	RuleInjuryStaleData      = "injury_risk_stale_data"
	RuleMissingRoster        = "missing_roster_data"
	RuleMissingCompetitor    = "missing_competitor_context"
	RuleNoTradeHistory       = "no_trade_history"
	RuleMissingValuations    = "missing_asset_valuations"
	RuleTeamCountMismatch    = "team_count_mismatch"
	RuleRosterSizeMismatch   = "roster_size_mismatch"
)

// coverageTier maps a data-coverage band to its confidence ceiling and the
// signed adjustment applied in the final confidence arithmetic.
type coverageTier struct {
	maxCoverage float64
	ceiling     int
	adjustment  int
}

// coverageTiers is evaluated in order; the first band containing the
// coverage percent wins.
var coverageTiers = []coverageTier{
	{maxCoverage: 30, ceiling: 35, adjustment: -10},
	{maxCoverage: 50, ceiling: 55, adjustment: -5},
	{maxCoverage: 70, ceiling: 75, adjustment: 0},
	{maxCoverage: 85, ceiling: 90, adjustment: 2},
	{maxCoverage: 101, ceiling: 100, adjustment: 5},
}

func coverageTierFor(coverage float64) coverageTier {
	for _, tier := range coverageTiers {
		if coverage <= tier.maxCoverage {
			return tier
		}
	}
	return coverageTiers[len(coverageTiers)-1]
}

// staleSourceCeilings caps confidence per stale tracked source.
var staleSourceCeilings = map[tradecontext.Source]int{
	tradecontext.SourceInjury:       70,
	tradecontext.SourceValuations:   65,
	tradecontext.SourceADP:          75,
	tradecontext.SourceTradeHistory: 75,
}

// constraintRule is one declarative league-constraint check: if the pattern
// matches a consensus line and the predicate holds for this league's
// configuration, the line is a violation. New rules are additive.
type constraintRule struct {
	code    string
	pattern *regexp.Regexp
	applies func(lc tradecontext.LeagueConfig) bool
	detail  string
}

var leagueConstraintRules = []constraintRule{
	{
		code:    "sf_in_non_sf",
		pattern: regexp.MustCompile(`(?i)\bsuper[- ]?flex\b`),
		applies: func(lc tradecontext.LeagueConfig) bool { return !lc.Superflex },
		detail:  "superflex referenced in a non-superflex league",
	},
	{
		code:    "one_qb_in_sf",
		pattern: regexp.MustCompile(`(?i)\b(?:1|one)[- ]?qb\b`),
		applies: func(lc tradecontext.LeagueConfig) bool { return lc.Superflex },
		detail:  "1QB referenced in a superflex league",
	},
	{
		code:    "tep_in_non_tep",
		pattern: regexp.MustCompile(`(?i)\bte[- ]?premium\b|\btep\b`),
		applies: func(lc tradecontext.LeagueConfig) bool { return !lc.TEPremium },
		detail:  "TE premium referenced in a league without TE premium scoring",
	},
	{
		code:    "taxi_without_slots",
		pattern: regexp.MustCompile(`(?i)\btaxi\b`),
		applies: func(lc tradecontext.LeagueConfig) bool { return lc.TaxiSlots == 0 },
		detail:  "taxi squad referenced in a league with no taxi slots",
	},
}

// Numeric configuration mentions, checked in counters only.
var (
	teamCountRe  = regexp.MustCompile(`(?i)\b(\d{1,2})[- ]team\b`)
	rosterSizeRe = regexp.MustCompile(`(?i)\b(\d{1,2})[- ](?:man|player|spot)\s+roster\b`)
)

// rosterSizeTolerance: roster-size mentions within this distance of the
// actual configuration are accepted; team counts must match exactly.
const rosterSizeTolerance = 5

// firstNumber extracts the first captured integer a pattern finds in a line.
func firstNumber(re *regexp.Regexp, line string) (int, bool) {
	m := re.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// nameShapeRe matches two-to-four capitalized words: the shape of a
// person's name in generated prose.
var nameShapeRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:['’-][A-Za-z][a-z]+)?(?:\s+[A-Z][a-z]+(?:['’-][A-Za-z][a-z]+)?){1,3}\b`)

// nameStopWords are common domain terms that produce name-shaped token
// sequences which are not player references ("Super Flex", "Trade Value").
// A candidate containing any stop-word token is never phantom-checked.
var nameStopWords = map[string]struct{}{
	"super": {}, "flex": {}, "superflex": {}, "trade": {}, "value": {},
	"team": {}, "side": {}, "league": {}, "taxi": {}, "squad": {},
	"premium": {}, "tight": {}, "end": {}, "wide": {}, "receiver": {},
	"running": {}, "back": {}, "quarterback": {}, "dynasty": {},
	"draft": {}, "pick": {}, "picks": {}, "round": {}, "win": {},
	"now": {}, "market": {}, "points": {}, "roster": {}, "bench": {},
	"starter": {}, "waiver": {}, "wire": {}, "injury": {}, "risk": {},
	"age": {}, "cliff": {}, "rebuild": {}, "contender": {}, "champion": {},
	"even": {}, "slight": {}, "edge": {}, "first": {}, "second": {},
	"third": {}, "faab": {}, "adp": {}, "vorp": {},
}

// nameCandidates extracts name-shaped sequences from a line, dropping any
// candidate containing a domain stop word.
func nameCandidates(line string) []string {
	matches := nameShapeRe.FindAllString(line, -1)
	out := matches[:0]
	for _, m := range matches {
		if containsStopWord(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func containsStopWord(candidate string) bool {
	for _, token := range strings.Fields(strings.ToLower(candidate)) {
		if _, ok := nameStopWords[strings.Trim(token, "'’-")]; ok {
			return true
		}
	}
	return false
}

// knownName reports whether a name-shaped candidate corresponds to an asset
// in the trade context, either by full name or last-name token.
func knownName(candidate string, known map[string]struct{}) bool {
	lower := strings.ToLower(candidate)
	if _, ok := known[lower]; ok {
		return true
	}
	tokens := strings.Fields(lower)
	if len(tokens) == 0 {
		return false
	}
	_, ok := known[tokens[len(tokens)-1]]
	return ok
}
