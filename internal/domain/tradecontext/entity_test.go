package tradecontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridiron/pkg/errors"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr error
	}{
		{name: "supported major", version: "1.0.0", wantErr: nil},
		{name: "supported with minor drift", version: "1.7.3", wantErr: nil},
		{name: "major only", version: "1", wantErr: nil},
		{name: "v prefix", version: "v1.2.0", wantErr: nil},
		{name: "future major", version: "2.0.0", wantErr: errors.ErrUnsupportedContextVersion},
		{name: "empty", version: "", wantErr: errors.ErrInvalidInput},
		{name: "garbage", version: "latest", wantErr: errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &TradeDecisionContext{Version: tt.version}
			err := c.CheckVersion()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestKnownAssetNames(t *testing.T) {
	c := &TradeDecisionContext{
		SideA: TeamSnapshot{Assets: []AssetValuation{
			{Name: "Justin Jefferson"},
			{Name: "2027 1st"},
		}},
		SideB: TeamSnapshot{Assets: []AssetValuation{
			{Name: "  CeeDee Lamb "},
		}},
	}

	known := c.KnownAssetNames()

	for _, want := range []string{"justin jefferson", "jefferson", "2027 1st", "1st", "ceedee lamb", "lamb"} {
		_, ok := known[want]
		assert.True(t, ok, "expected %q in known set", want)
	}
	_, ok := known["tyreek hill"]
	assert.False(t, ok)
}

func TestTopAssets(t *testing.T) {
	c := &TradeDecisionContext{
		SideA: TeamSnapshot{Assets: []AssetValuation{
			{Name: "low", MarketValue: 100},
			{Name: "high", MarketValue: 900},
			{Name: "mid", MarketValue: 500},
		}},
	}

	top := c.TopAssets(SideA, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].Name)
	assert.Equal(t, "mid", top[1].Name)

	// n larger than the roster is fine.
	assert.Len(t, c.TopAssets(SideA, 10), 3)
	assert.Empty(t, c.TopAssets(SideB, 2))
}

func TestSourceStaleness(t *testing.T) {
	c := &TradeDecisionContext{
		MissingData: MissingData{StaleSources: []Source{SourceADP}},
		SourceFreshness: map[Source]FreshnessGrade{
			SourceInjury:     FreshnessStale,
			SourceValuations: FreshnessFresh,
			SourceRosters:    FreshnessAging,
		},
	}

	assert.True(t, c.SourceStale(SourceADP), "listed in stale sources")
	assert.True(t, c.SourceStale(SourceInjury), "graded stale")
	assert.False(t, c.SourceStale(SourceValuations))
	assert.False(t, c.SourceStale(SourceRosters), "aging is not stale")
	assert.Equal(t, 2, c.StaleSourceCount())
}

func TestRiskMarkerPredicates(t *testing.T) {
	assert.True(t, PlayerRiskMarker{AgeBucket: "age_cliff"}.AgeCliff())
	assert.False(t, PlayerRiskMarker{AgeBucket: "prime"}.AgeCliff())

	assert.True(t, PlayerRiskMarker{ReinjuryRisk: "elevated"}.ElevatedReinjuryRisk())
	assert.True(t, PlayerRiskMarker{ReinjuryRisk: "high"}.ElevatedReinjuryRisk())
	assert.False(t, PlayerRiskMarker{ReinjuryRisk: "moderate"}.ElevatedReinjuryRisk())

	assert.True(t, PlayerRiskMarker{InjuryStatus: "questionable"}.ActiveInjury())
	assert.False(t, PlayerRiskMarker{InjuryStatus: "healthy"}.ActiveInjury())
	assert.False(t, PlayerRiskMarker{}.ActiveInjury())
}

func TestSnapshotAndAggregates(t *testing.T) {
	c := &TradeDecisionContext{
		SideA: TeamSnapshot{
			TeamName:    "Alpha",
			Assets:      []AssetValuation{{Name: "a1"}},
			RiskMarkers: []PlayerRiskMarker{{PlayerName: "a1"}},
		},
		SideB: TeamSnapshot{
			TeamName:    "Bravo",
			Assets:      []AssetValuation{{Name: "b1"}, {Name: "b2"}},
			RiskMarkers: []PlayerRiskMarker{{PlayerName: "b1"}},
		},
	}

	assert.Equal(t, "Alpha", c.Snapshot(SideA).TeamName)
	assert.Equal(t, "Bravo", c.Snapshot(SideB).TeamName)
	assert.Len(t, c.AllAssets(), 3)
	assert.Len(t, c.AllRiskMarkers(), 2)
}
