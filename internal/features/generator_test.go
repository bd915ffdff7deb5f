package features

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

type fakeStore struct {
	games    []*models.Game
	lines    []*models.StatLine
	statKeys []string
}

func (f *fakeStore) Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error) {
	return f.games, nil
}

func (f *fakeStore) TeamLines(ctx context.Context, ids []uuid.UUID) ([]*models.StatLine, error) {
	return f.lines, nil
}

func (f *fakeStore) PlayerLines(ctx context.Context, ids []uuid.UUID, filter string) ([]*models.StatLine, error) {
	return nil, nil
}

func (f *fakeStore) ClosingLines(ctx context.Context, ids []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	return nil, nil
}

func (f *fakeStore) MostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	return time.Time{}, nil
}

func (f *fakeStore) KnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	return f.statKeys, nil
}

func TestClampWindow(t *testing.T) {
	assert.Equal(t, DefaultRollingWindow, ClampWindow(0))
	assert.Equal(t, MinRollingWindow, ClampWindow(1))
	assert.Equal(t, MaxRollingWindow, ClampWindow(50))
	assert.Equal(t, 7, ClampWindow(7))
}

func TestGenerateSkipsUnknownKeys(t *testing.T) {
	store := &fakeStore{statKeys: []string{"points", "rebounds"}}

	result, err := Generate(context.Background(), store, Request{
		League:          models.LeagueNBA,
		RawStatKeys:     []string{"points", "turnover_luck", "rebounds"},
		IncludeRestDays: true,
		IncludeRolling:  true,
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"turnover_luck"}, result.SkippedKeys)
	assert.Contains(t, result.Summary, "turnover_luck")

	names := make([]string, 0, len(result.Features))
	for _, f := range result.Features {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "rest_days")
	assert.Contains(t, names, "points")
	assert.Contains(t, names, "points_roll5")
	assert.Contains(t, names, "points_roll5_vs_league")
	assert.NotContains(t, names, "turnover_luck")
}

func TestGenerateRejectsUnknownLeague(t *testing.T) {
	_, err := Generate(context.Background(), &fakeStore{}, Request{League: "EPL"})
	assert.Error(t, err)
	assert.True(t, models.IsConfigError(err))
}

func TestRawFeaturesArePostGame(t *testing.T) {
	store := &fakeStore{statKeys: []string{"points"}}
	result, err := Generate(context.Background(), store, Request{
		League:         models.LeagueNBA,
		RawStatKeys:    []string{"points"},
		IncludeRolling: true,
	})
	assert.NoError(t, err)

	byName := make(map[string]models.GeneratedFeature)
	for _, f := range result.Features {
		byName[f.Name] = f
	}
	assert.Equal(t, models.TimingPostGame, byName["points"].Timing)
	assert.Equal(t, models.TimingPreGame, byName["points_roll5"].Timing)
}

func TestFilterForContext(t *testing.T) {
	feats := []models.GeneratedFeature{
		{Name: "rest_days", Timing: models.TimingPreGame},
		{Name: "points", Timing: models.TimingPostGame},
	}

	usable, excluded := FilterForContext(feats, models.ContextDeployable)
	assert.Len(t, usable, 1)
	assert.Equal(t, "rest_days", usable[0].Name)
	assert.Len(t, excluded, 1)

	usable, excluded = FilterForContext(feats, models.ContextDiagnostic)
	assert.Len(t, usable, 2)
	assert.Empty(t, excluded)
}
