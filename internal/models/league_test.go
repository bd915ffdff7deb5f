package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeagueIsKnown(t *testing.T) {
	assert.True(t, LeagueNBA.IsKnown())
	assert.True(t, LeagueNCAAB.IsKnown())
	assert.False(t, League("EPL").IsKnown())
}

func TestMatchesPhase(t *testing.T) {
	november := time.Date(2024, time.November, 20, 19, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 1, 19, 0, 0, 0, time.UTC)
	march := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)

	assert.True(t, MatchesPhase(LeagueNCAAB, PhaseOutOfConference, november))
	assert.False(t, MatchesPhase(LeagueNCAAB, PhaseConference, november))
	assert.True(t, MatchesPhase(LeagueNCAAB, PhaseConference, february))
	assert.True(t, MatchesPhase(LeagueNCAAB, PhasePostseason, march))

	// Empty phase matches everything.
	assert.True(t, MatchesPhase(LeagueNCAAB, PhaseAny, november))

	// Leagues without phase buckets ignore the filter.
	assert.True(t, MatchesPhase(LeagueNBA, PhaseConference, november))
}

func TestEffectiveSeasons(t *testing.T) {
	f := TheoryFilters{League: LeagueNBA, Seasons: []int{2022, 2024, 2023}}
	assert.Equal(t, []int{2022, 2024, 2023}, f.EffectiveSeasons())

	f.Scope = ScopeCurrent
	assert.Equal(t, []int{2024}, f.EffectiveSeasons())
}

func TestTheoryFiltersValidate(t *testing.T) {
	lo, hi := 3.0, 7.0

	valid := TheoryFilters{League: LeagueNBA, Seasons: []int{2024}, SpreadAbsMin: &lo, SpreadAbsMax: &hi}
	assert.NoError(t, valid.Validate())

	unknown := TheoryFilters{League: "EPL", Seasons: []int{2024}}
	err := unknown.Validate()
	assert.Error(t, err)
	assert.True(t, IsConfigError(err))

	inverted := TheoryFilters{League: LeagueNBA, Seasons: []int{2024}, SpreadAbsMin: &hi, SpreadAbsMax: &lo}
	assert.Error(t, inverted.Validate())

	recent := TheoryFilters{League: LeagueNBA, Seasons: []int{2024}, Scope: ScopeRecent}
	assert.Error(t, recent.Validate())
	recent.RecentDays = 30
	assert.NoError(t, recent.Validate())
}
