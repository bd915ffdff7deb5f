package cohort

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

type fakeStore struct {
	games   []*models.Game
	lines   []*models.StatLine
	players []*models.StatLine
	odds    []*models.OddsLine
	recent  time.Time
}

func (f *fakeStore) Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error) {
	if q.Start.IsZero() {
		return f.games, nil
	}
	var out []*models.Game
	for _, g := range f.games {
		if !g.Date.Before(q.Start) && !g.Date.After(q.End) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) TeamLines(ctx context.Context, ids []uuid.UUID) ([]*models.StatLine, error) {
	return f.lines, nil
}

func (f *fakeStore) PlayerLines(ctx context.Context, ids []uuid.UUID, filter string) ([]*models.StatLine, error) {
	return f.players, nil
}

func (f *fakeStore) ClosingLines(ctx context.Context, ids []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	return f.odds, nil
}

func (f *fakeStore) MostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	return f.recent, nil
}

func (f *fakeStore) KnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	return []string{"points"}, nil
}

func gameOn(d int, home, away string, homeScore, awayScore int) *models.Game {
	return &models.Game{
		ID: uuid.New(), League: models.LeagueNBA, Season: 2025,
		Date:     time.Date(2025, time.January, d, 19, 0, 0, 0, time.UTC),
		HomeTeam: home, AwayTeam: away,
		HomeScore: &homeScore, AwayScore: &awayScore, Status: "final",
	}
}

func spreadLine(gameID uuid.UUID, points float64) *models.OddsLine {
	return &models.OddsLine{
		GameID: gameID, Market: models.MarketSpread, Side: models.SideHome,
		Line: decimal.NewFromFloat(points), Price: decimal.NewFromInt(-110),
	}
}

func newTestBuilder(store *fakeStore) *Builder {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewBuilder(store, logger)
}

func TestBuildCohortIsSubsetOfBaseline(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	g2 := gameOn(2, "Miami", "Dallas", 95, 100)
	store := &fakeStore{
		games: []*models.Game{g1, g2},
		odds:  []*models.OddsLine{spreadLine(g1.ID, -3.5), spreadLine(g2.ID, 2.5)},
	}

	filters := models.TheoryFilters{League: models.LeagueNBA, Seasons: []int{2025}, Team: "Boston"}
	target := models.DefaultMarketTarget(models.MarketSpread, models.SideHome)

	mat, err := newTestBuilder(store).Build(context.Background(), filters, target, nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)

	assert.Len(t, mat.Baseline, 2)
	require.Len(t, mat.Cohort, 1)
	assert.Equal(t, "Boston", mat.Cohort[0].Team)

	// Home -3.5, won by 10: covered.
	require.NotNil(t, mat.Cohort[0].TargetValue)
	assert.Equal(t, 1.0, *mat.Cohort[0].TargetValue)
}

func TestBuildDropsRowsWithoutRequiredOdds(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	g2 := gameOn(2, "Miami", "Dallas", 95, 100)
	store := &fakeStore{
		games: []*models.Game{g1, g2},
		odds:  []*models.OddsLine{spreadLine(g1.ID, -3.5)},
	}

	filters := models.TheoryFilters{League: models.LeagueNBA, Seasons: []int{2025}}
	target := models.DefaultMarketTarget(models.MarketSpread, models.SideHome)

	mat, err := newTestBuilder(store).Build(context.Background(), filters, target, nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)
	assert.Len(t, mat.Baseline, 1)
	assert.Equal(t, 1, mat.DroppedMissingOdds)
}

func TestBuildCountsAllGamesMissingRequiredOdds(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	g2 := gameOn(2, "Miami", "Dallas", 95, 100)
	store := &fakeStore{games: []*models.Game{g1, g2}}

	filters := models.TheoryFilters{League: models.LeagueNBA, Seasons: []int{2025}}
	target := models.DefaultMarketTarget(models.MarketSpread, models.SideHome)

	mat, err := newTestBuilder(store).Build(context.Background(), filters, target, nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)
	assert.Empty(t, mat.Baseline)
	assert.Empty(t, mat.Cohort)
	assert.Equal(t, 2, mat.DroppedMissingOdds)
}

func TestBuildSpreadBandFiltersCohortOnly(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	g2 := gameOn(2, "Miami", "Dallas", 95, 100)
	store := &fakeStore{
		games: []*models.Game{g1, g2},
		odds:  []*models.OddsLine{spreadLine(g1.ID, -3.5), spreadLine(g2.ID, -12.0)},
	}

	lo, hi := 0.0, 10.0
	filters := models.TheoryFilters{
		League: models.LeagueNBA, Seasons: []int{2025},
		SpreadAbsMin: &lo, SpreadAbsMax: &hi,
	}
	target := models.DefaultMarketTarget(models.MarketSpread, models.SideHome)

	mat, err := newTestBuilder(store).Build(context.Background(), filters, target, nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)

	assert.Len(t, mat.Baseline, 2)
	require.Len(t, mat.Cohort, 1)
	assert.Equal(t, g1.ID, mat.Cohort[0].GameID)
}

func TestBuildStatTargetCombinedScore(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	store := &fakeStore{games: []*models.Game{g1}}

	filters := models.TheoryFilters{League: models.LeagueNBA, Seasons: []int{2025}}
	mat, err := newTestBuilder(store).Build(context.Background(), filters, models.DefaultStatTarget(), nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)

	require.Len(t, mat.Cohort, 1)
	require.NotNil(t, mat.Cohort[0].TargetValue)
	assert.Equal(t, 210.0, *mat.Cohort[0].TargetValue)
}

func TestBuildRecentScopeNarrowsDates(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	g2 := gameOn(20, "Miami", "Dallas", 95, 100)
	store := &fakeStore{
		games:  []*models.Game{g1, g2},
		recent: g2.Date,
	}

	filters := models.TheoryFilters{
		League: models.LeagueNBA, Seasons: []int{2025},
		Scope: models.ScopeRecent, RecentDays: 7,
	}
	mat, err := newTestBuilder(store).Build(context.Background(), filters, models.DefaultStatTarget(), nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)

	require.Len(t, mat.Cohort, 1)
	assert.Equal(t, g2.ID, mat.Cohort[0].GameID)
}

func TestBuildPlayerFilterRestrictsGames(t *testing.T) {
	g1 := gameOn(1, "Boston", "Denver", 110, 100)
	g2 := gameOn(2, "Miami", "Dallas", 95, 100)
	player := "Jaylen"
	store := &fakeStore{
		games:   []*models.Game{g1, g2},
		players: []*models.StatLine{{GameID: g1.ID, Team: "Boston", Player: &player, Stats: map[string]float64{"points": 30}}},
	}

	filters := models.TheoryFilters{League: models.LeagueNBA, Seasons: []int{2025}, Player: "jaylen"}
	mat, err := newTestBuilder(store).Build(context.Background(), filters, models.DefaultStatTarget(), nil, models.CleaningOptions{}, 1)
	require.NoError(t, err)

	assert.Len(t, mat.Baseline, 2)
	require.Len(t, mat.Cohort, 1)
	assert.Equal(t, g1.ID, mat.Cohort[0].GameID)
}
