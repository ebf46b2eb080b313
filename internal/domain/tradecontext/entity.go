package tradecontext

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gridiron/pkg/errors"
)

// SupportedMajorVersion is the context-assembler schema major version this
// engine understands. Contexts from a future major version are rejected
// rather than guessed at.
const SupportedMajorVersion = 1

// Side identifies one side of the trade.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// AssetType classifies a tradeable asset.
type AssetType string

const (
	AssetPlayer AssetType = "PLAYER"
	AssetPick   AssetType = "PICK"
	AssetFAAB   AssetType = "FAAB"
)

// ContenderTier places a roster on the competitive window.
type ContenderTier string

const (
	TierChampion  ContenderTier = "champion"
	TierContender ContenderTier = "contender"
	TierMiddle    ContenderTier = "middle"
	TierRebuild   ContenderTier = "rebuild"
)

// Source names a tracked upstream data source. The quality gate watches
// exactly these five for staleness.
type Source string

const (
	SourceValuations   Source = "valuations"
	SourceADP          Source = "adp"
	SourceInjury       Source = "injury"
	SourceTradeHistory Source = "trade_history"
	SourceRosters      Source = "rosters"
)

// TrackedSources lists every source the engine audits for freshness.
var TrackedSources = []Source{
	SourceValuations,
	SourceADP,
	SourceInjury,
	SourceTradeHistory,
	SourceRosters,
}

// FreshnessGrade grades how current a data source is.
type FreshnessGrade string

const (
	FreshnessFresh FreshnessGrade = "fresh"
	FreshnessAging FreshnessGrade = "aging"
	FreshnessStale FreshnessGrade = "stale"
)

// AssetValuation is a single asset on one side of the trade with its
// market pricing as computed by the valuation layer.
type AssetValuation struct {
	Name        string    `json:"name"`
	Type        AssetType `json:"type"`
	Position    string    `json:"position,omitempty"`
	Age         int       `json:"age,omitempty"`
	MarketValue float64   `json:"marketValue"`
	ImpactValue float64   `json:"impactValue,omitempty"`
	VORP        float64   `json:"vorp,omitempty"`
	Volatility  float64   `json:"volatility,omitempty"`
	ADP         float64   `json:"adp,omitempty"`
	Cornerstone bool      `json:"cornerstone,omitempty"`
}

// PlayerRiskMarker captures the risk profile of a player involved in the trade.
type PlayerRiskMarker struct {
	PlayerName     string `json:"playerName"`
	AgeBucket      string `json:"ageBucket,omitempty"`      // ascending|prime|declining|age_cliff
	InjuryStatus   string `json:"injuryStatus,omitempty"`   // healthy|questionable|doubtful|out|ir
	ReinjuryRisk   string `json:"reinjuryRisk,omitempty"`   // low|moderate|elevated|high
	AnalyticsGrade string `json:"analyticsGrade,omitempty"` // A..F
}

// AgeCliff reports whether the player sits in the age-cliff bucket.
func (m PlayerRiskMarker) AgeCliff() bool {
	return m.AgeBucket == "age_cliff"
}

// ElevatedReinjuryRisk reports whether reinjury risk is elevated or high.
func (m PlayerRiskMarker) ElevatedReinjuryRisk() bool {
	return m.ReinjuryRisk == "elevated" || m.ReinjuryRisk == "high"
}

// ActiveInjury reports whether the player carries a non-healthy status.
func (m PlayerRiskMarker) ActiveInjury() bool {
	return m.InjuryStatus != "" && m.InjuryStatus != "healthy"
}

// RosterComposition summarizes a roster's positional makeup.
type RosterComposition struct {
	PositionCounts map[string]int `json:"positionCounts,omitempty"`
	TotalSpots     int            `json:"totalSpots,omitempty"`
	Expired        bool           `json:"expired,omitempty"`
}

// Empty reports whether no roster data is present.
func (r RosterComposition) Empty() bool {
	return len(r.PositionCounts) == 0
}

// TeamSnapshot is one side of the trade as assembled upstream.
type TeamSnapshot struct {
	TeamName         string             `json:"teamName,omitempty"`
	Assets           []AssetValuation   `json:"assets"`
	RiskMarkers      []PlayerRiskMarker `json:"riskMarkers,omitempty"`
	Roster           RosterComposition  `json:"roster,omitempty"`
	Needs            []string           `json:"needs,omitempty"`
	Surplus          []string           `json:"surplus,omitempty"`
	Tier             ContenderTier      `json:"tier,omitempty"`
	TradeHistorySize int                `json:"tradeHistorySize,omitempty"`
}

// LeagueConfig describes league rules relevant to trade evaluation.
type LeagueConfig struct {
	ScoringFormat string `json:"scoringFormat,omitempty"` // standard|half_ppr|ppr
	Superflex     bool   `json:"superflex,omitempty"`
	TEPremium     bool   `json:"tePremium,omitempty"`
	TaxiSlots     int    `json:"taxiSlots,omitempty"`
	RosterSize    int    `json:"rosterSize,omitempty"`
	TeamCount     int    `json:"teamCount,omitempty"`
}

// ValueDelta is the deterministic market-value gap between the two sides.
type ValueDelta struct {
	AbsoluteDiff float64 `json:"absoluteDiff"`
	PercentDiff  float64 `json:"percentDiff"`
	FavoredSide  Side    `json:"favoredSide,omitempty"`
}

// MissingData flags which inputs the assembler could not populate.
type MissingData struct {
	AssetsMissingValuation []string `json:"assetsMissingValuation,omitempty"`
	AssetsMissingADP       []string `json:"assetsMissingADP,omitempty"`
	AssetsMissingAnalytics []string `json:"assetsMissingAnalytics,omitempty"`
	StaleSources           []Source `json:"staleSources,omitempty"`
	CompetitorDataMissing  bool     `json:"competitorDataMissing,omitempty"`
}

// DataQuality summarizes upstream data completeness.
type DataQuality struct {
	CoveragePercent float64 `json:"coveragePercent"`
	ADPHitRate      float64 `json:"adpHitRate,omitempty"`
}

// TradeDecisionContext is the versioned, immutable ground-truth snapshot of
// a proposed trade. The engine only reads it; no component may mutate it.
type TradeDecisionContext struct {
	ContextID       uuid.UUID                 `json:"contextId"`
	Version         string                    `json:"version"`
	AssembledAt     time.Time                 `json:"assembledAt"`
	SideA           TeamSnapshot              `json:"sideA"`
	SideB           TeamSnapshot              `json:"sideB"`
	League          LeagueConfig              `json:"league"`
	ValueDelta      ValueDelta                `json:"valueDelta"`
	MissingData     MissingData               `json:"missingData,omitempty"`
	DataQuality     DataQuality               `json:"dataQuality"`
	SourceFreshness map[Source]FreshnessGrade `json:"sourceFreshness,omitempty"`
}

// CheckVersion rejects contexts built by a newer assembler major version.
func (c *TradeDecisionContext) CheckVersion() error {
	if c.Version == "" {
		return errors.Wrap(errors.ErrInvalidInput, "trade context has no version")
	}
	major := c.Version
	if i := strings.IndexByte(major, '.'); i >= 0 {
		major = major[:i]
	}
	n, err := strconv.Atoi(strings.TrimPrefix(major, "v"))
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "malformed context version %q", c.Version)
	}
	if n != SupportedMajorVersion {
		return errors.Wrapf(errors.ErrUnsupportedContextVersion, "context version %s", c.Version)
	}
	return nil
}

// Snapshot returns the snapshot for the given side.
func (c *TradeDecisionContext) Snapshot(side Side) *TeamSnapshot {
	if side == SideB {
		return &c.SideB
	}
	return &c.SideA
}

// AllAssets returns every asset on both sides.
func (c *TradeDecisionContext) AllAssets() []AssetValuation {
	out := make([]AssetValuation, 0, len(c.SideA.Assets)+len(c.SideB.Assets))
	out = append(out, c.SideA.Assets...)
	out = append(out, c.SideB.Assets...)
	return out
}

// AllRiskMarkers returns every risk marker on both sides.
func (c *TradeDecisionContext) AllRiskMarkers() []PlayerRiskMarker {
	out := make([]PlayerRiskMarker, 0, len(c.SideA.RiskMarkers)+len(c.SideB.RiskMarkers))
	out = append(out, c.SideA.RiskMarkers...)
	out = append(out, c.SideB.RiskMarkers...)
	return out
}

// KnownAssetNames returns the lowercase set of every asset name in the
// context plus each name's last token. The quality gate uses it as the
// whitelist for phantom-reference detection.
func (c *TradeDecisionContext) KnownAssetNames() map[string]struct{} {
	known := make(map[string]struct{})
	for _, a := range c.AllAssets() {
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			continue
		}
		known[name] = struct{}{}
		parts := strings.Fields(name)
		if len(parts) > 1 {
			known[parts[len(parts)-1]] = struct{}{}
		}
	}
	return known
}

// TopAssets returns the n highest market-value assets on the given side,
// descending. Ties keep input order.
func (c *TradeDecisionContext) TopAssets(side Side, n int) []AssetValuation {
	snap := c.Snapshot(side)
	assets := make([]AssetValuation, len(snap.Assets))
	copy(assets, snap.Assets)
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].MarketValue > assets[j].MarketValue
	})
	if n > len(assets) {
		n = len(assets)
	}
	return assets[:n]
}

// SourceStale reports whether a tracked source is flagged stale, either via
// the missing-data list or a stale freshness grade.
func (c *TradeDecisionContext) SourceStale(src Source) bool {
	for _, s := range c.MissingData.StaleSources {
		if s == src {
			return true
		}
	}
	return c.SourceFreshness[src] == FreshnessStale
}

// StaleSourceCount counts tracked sources currently flagged stale.
func (c *TradeDecisionContext) StaleSourceCount() int {
	count := 0
	for _, src := range TrackedSources {
		if c.SourceStale(src) {
			count++
		}
	}
	return count
}
