package features

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/theory-engine/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 19, 0, 0, 0, time.UTC)
}

func testGame(id uuid.UUID, date time.Time, home, away string) *models.Game {
	h, a := 100, 95
	return &models.Game{
		ID: id, League: models.LeagueNBA, Season: 2025, Date: date,
		HomeTeam: home, AwayTeam: away, HomeScore: &h, AwayScore: &a, Status: "final",
	}
}

func teamLine(gameID uuid.UUID, team string, points float64) *models.StatLine {
	return &models.StatLine{GameID: gameID, Team: team, Stats: map[string]float64{"points": points}}
}

func TestRollingMeanIsStrictlyCausal(t *testing.T) {
	g1, g2, g3 := uuid.New(), uuid.New(), uuid.New()
	games := []*models.Game{
		testGame(g1, day(1), "Boston", "Denver"),
		testGame(g2, day(3), "Boston", "Miami"),
		testGame(g3, day(5), "Boston", "Dallas"),
	}
	lines := []*models.StatLine{
		teamLine(g1, "Boston", 100),
		teamLine(g2, "Boston", 110),
		teamLine(g3, "Boston", 120),
	}
	feats := []models.GeneratedFeature{
		{Name: "points_roll5", Category: models.CategoryRolling, Group: "points", Timing: models.TimingPreGame},
	}

	values, err := ComputeValues(context.Background(), games, lines, feats, 2)
	require.NoError(t, err)

	// First game has no history.
	assert.Nil(t, values[RowKey{GameID: g1, Team: "Boston"}]["points_roll5"])

	// Second game sees only game one.
	v := values[RowKey{GameID: g2, Team: "Boston"}]["points_roll5"]
	require.NotNil(t, v)
	assert.InDelta(t, 100, *v, 1e-9)

	// Third game averages the two prior games, never its own score.
	v = values[RowKey{GameID: g3, Team: "Boston"}]["points_roll5"]
	require.NotNil(t, v)
	assert.InDelta(t, 105, *v, 1e-9)
}

func TestRollingWindowTruncates(t *testing.T) {
	ids := make([]uuid.UUID, 4)
	games := make([]*models.Game, 4)
	lines := make([]*models.StatLine, 4)
	for i := range ids {
		ids[i] = uuid.New()
		games[i] = testGame(ids[i], day(i*2+1), "Boston", "Denver")
		lines[i] = teamLine(ids[i], "Boston", float64(100+10*i))
	}
	feats := []models.GeneratedFeature{
		{Name: "points_roll2", Category: models.CategoryRolling, Group: "points", Timing: models.TimingPreGame},
	}

	values, err := ComputeValues(context.Background(), games, lines, feats, 1)
	require.NoError(t, err)

	// Fourth game only sees the previous two games: (110+120)/2.
	v := values[RowKey{GameID: ids[3], Team: "Boston"}]["points_roll2"]
	require.NotNil(t, v)
	assert.InDelta(t, 115, *v, 1e-9)
}

func TestRestDays(t *testing.T) {
	g1, g2 := uuid.New(), uuid.New()
	games := []*models.Game{
		testGame(g1, day(1), "Boston", "Denver"),
		testGame(g2, day(4), "Miami", "Boston"),
	}
	feats := []models.GeneratedFeature{
		{Name: "rest_days", Category: models.CategoryRest, Group: "schedule", Timing: models.TimingPreGame},
	}

	values, err := ComputeValues(context.Background(), games, nil, feats, 1)
	require.NoError(t, err)

	assert.Nil(t, values[RowKey{GameID: g1, Team: "Boston"}]["rest_days"])
	v := values[RowKey{GameID: g2, Team: "Boston"}]["rest_days"]
	require.NotNil(t, v)
	assert.InDelta(t, 3, *v, 1e-9)
}

func TestRestDaysResetAcrossSeasons(t *testing.T) {
	g1, g2 := uuid.New(), uuid.New()
	first := testGame(g1, day(1), "Boston", "Denver")
	first.Season = 2024
	second := testGame(g2, day(10), "Boston", "Denver")

	feats := []models.GeneratedFeature{
		{Name: "rest_days", Category: models.CategoryRest, Group: "schedule", Timing: models.TimingPreGame},
	}
	values, err := ComputeValues(context.Background(), []*models.Game{first, second}, nil, feats, 1)
	require.NoError(t, err)

	// Season opener has no previous same-season game.
	assert.Nil(t, values[RowKey{GameID: g2, Team: "Boston"}]["rest_days"])
}

func TestLeagueRatioExcludesSameDate(t *testing.T) {
	g1, g2, g3 := uuid.New(), uuid.New(), uuid.New()
	games := []*models.Game{
		testGame(g1, day(1), "Boston", "Denver"),
		testGame(g2, day(3), "Boston", "Miami"),
		testGame(g3, day(3), "Dallas", "Phoenix"),
	}
	lines := []*models.StatLine{
		teamLine(g1, "Boston", 100),
		teamLine(g1, "Denver", 90),
		teamLine(g2, "Boston", 120),
		teamLine(g3, "Dallas", 130),
	}
	feats := []models.GeneratedFeature{
		{Name: "points_roll5", Category: models.CategoryRolling, Group: "points", Timing: models.TimingPreGame},
		{Name: "points_roll5_vs_league", Category: models.CategoryRatio, Group: "points", Timing: models.TimingPreGame},
	}

	values, err := ComputeValues(context.Background(), games, lines, feats, 2)
	require.NoError(t, err)

	// League mean before day 3 is (100+90)/2 = 95; Boston's rolling mean is 100.
	v := values[RowKey{GameID: g2, Team: "Boston"}]["points_roll5_vs_league"]
	require.NotNil(t, v)
	assert.InDelta(t, 100.0/95.0, *v, 1e-9)

	// No league history before the first date.
	assert.Nil(t, values[RowKey{GameID: g1, Team: "Boston"}]["points_roll5_vs_league"])
}
