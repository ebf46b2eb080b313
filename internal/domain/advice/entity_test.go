package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gridiron/internal/domain/tradecontext"
)

func TestWinnerFavorsSide(t *testing.T) {
	assert.Equal(t, tradecontext.SideA, WinnerTeamA.FavorsSide())
	assert.Equal(t, tradecontext.SideA, WinnerSlightEdgeA.FavorsSide())
	assert.Equal(t, tradecontext.SideB, WinnerTeamB.FavorsSide())
	assert.Equal(t, tradecontext.SideB, WinnerSlightEdgeB.FavorsSide())
	assert.Empty(t, WinnerEven.FavorsSide())
}

func TestWinnerOpposes(t *testing.T) {
	assert.True(t, WinnerTeamA.Opposes(WinnerTeamB))
	assert.True(t, WinnerSlightEdgeA.Opposes(WinnerTeamB))
	assert.False(t, WinnerTeamA.Opposes(WinnerSlightEdgeA))
	assert.False(t, WinnerTeamA.Opposes(WinnerEven), "even opposes nothing")
	assert.False(t, WinnerEven.Opposes(WinnerEven))
}

func TestHardViolations(t *testing.T) {
	r := &QualityGateResult{Violations: []QualityViolation{
		{Rule: "a", Severity: SeverityHard},
		{Rule: "b", Severity: SeveritySoft},
		{Rule: "c", Severity: SeverityHard},
	}}
	assert.Equal(t, 2, r.HardViolations())
	assert.Equal(t, 0, (&QualityGateResult{}).HardViolations())
}
