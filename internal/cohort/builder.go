// Package cohort materializes baseline and cohort row sets for a run.
package cohort

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/gamestore"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

// Builder joins games, stats, features, and closing lines into row sets
type Builder struct {
	store gamestore.Store
	log   *logrus.Entry
}

// NewBuilder creates a cohort builder over the game store
func NewBuilder(store gamestore.Store, logger *logrus.Logger) *Builder {
	return &Builder{
		store: store,
		log:   logger.WithField("component", "cohort"),
	}
}

// Materialized is the output of one build: the baseline rows the league and
// scope admit, the cohort subset the full filters admit, and the audit trail
// of cleaning. Cohort is always a subset of Baseline.
type Materialized struct {
	Baseline []*models.CohortRow    `json:"-"`
	Cohort   []*models.CohortRow    `json:"-"`
	Cleaning models.CleaningSummary `json:"cleaning"`
	// DroppedMissingOdds counts final games excluded because the target
	// requires a closing price none was recorded for.
	DroppedMissingOdds int `json:"dropped_missing_odds"`
}

// Build materializes rows for the filters and target. Feature values are
// computed with workers goroutines.
func (b *Builder) Build(ctx context.Context, filters models.TheoryFilters, target models.TargetDefinition, feats []models.GeneratedFeature, clean models.CleaningOptions, workers int) (*Materialized, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	query := repository.GameQuery{
		League:  filters.League,
		Seasons: filters.EffectiveSeasons(),
	}
	if filters.Scope == models.ScopeRecent {
		recent, err := b.store.MostRecentDate(ctx, filters.League)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve most recent date: %w", err)
		}
		query.Start = recent.AddDate(0, 0, -filters.RecentDays)
		query.End = recent
	}

	games, err := b.store.Games(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	finals := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if !g.IsFinal() {
			continue
		}
		if !models.MatchesPhase(filters.League, filters.Phase, g.Date) {
			continue
		}
		finals = append(finals, g)
	}

	gameIDs := make([]uuid.UUID, len(finals))
	for i, g := range finals {
		gameIDs[i] = g.ID
	}

	teamLines, err := b.store.TeamLines(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load team stat lines: %w", err)
	}

	values, err := features.ComputeValues(ctx, finals, teamLines, feats, workers)
	if err != nil {
		return nil, err
	}

	var lines map[lineKey]*models.OddsLine
	if target.IsMarket() {
		closing, err := b.store.ClosingLines(ctx, gameIDs, target.MarketType)
		if err != nil {
			return nil, fmt.Errorf("failed to load closing lines: %w", err)
		}
		lines = indexLines(closing)
	}

	statByGameTeam := indexTeamStats(teamLines)

	raw := make([]*models.CohortRow, 0, len(finals))
	droppedOdds := 0
	for _, g := range finals {
		rows, missingOdds := b.buildRows(g, target, values, lines, statByGameTeam)
		droppedOdds += missingOdds
		raw = append(raw, rows...)
	}
	sortRows(raw)

	baseline, summary := Clean(raw, clean)

	playerGames, err := b.playerGameSet(ctx, gameIDs, filters.Player)
	if err != nil {
		return nil, err
	}

	cohortRows := make([]*models.CohortRow, 0, len(baseline))
	for _, row := range baseline {
		if !matchesCohort(row, filters, target, playerGames) {
			continue
		}
		cohortRows = append(cohortRows, row)
	}

	b.log.WithFields(logrus.Fields{
		"league":       filters.League,
		"baseline":     len(baseline),
		"cohort":       len(cohortRows),
		"dropped":      summary.RawRows - summary.RowsAfterCleaning,
		"missing_odds": droppedOdds,
	}).Info("Cohort materialized")

	return &Materialized{
		Baseline:           baseline,
		Cohort:             cohortRows,
		Cleaning:           summary,
		DroppedMissingOdds: droppedOdds,
	}, nil
}

type lineKey struct {
	gameID uuid.UUID
	side   models.MarketSide
}

func indexLines(closing []*models.OddsLine) map[lineKey]*models.OddsLine {
	idx := make(map[lineKey]*models.OddsLine, len(closing))
	for _, l := range closing {
		idx[lineKey{gameID: l.GameID, side: l.Side}] = l
	}
	return idx
}

func indexTeamStats(lines []*models.StatLine) map[lineKey2]map[string]float64 {
	idx := make(map[lineKey2]map[string]float64, len(lines))
	for _, l := range lines {
		if l.Player != nil {
			continue
		}
		idx[lineKey2{gameID: l.GameID, team: l.Team}] = l.Stats
	}
	return idx
}

type lineKey2 struct {
	gameID uuid.UUID
	team   string
}

// buildRows projects one final game into cohort rows for the target. Market
// targets produce one row on the target side, or none plus a missing-odds
// count when the target requires a price the game lacks; stat targets produce
// one row per game for game-level stats and one row per team for raw team
// stats.
func (b *Builder) buildRows(g *models.Game, target models.TargetDefinition, values features.ValueSet, lines map[lineKey]*models.OddsLine, stats map[lineKey2]map[string]float64) ([]*models.CohortRow, int) {
	if target.IsMarket() {
		row := b.marketRow(g, target, values, lines)
		if target.OddsRequired && row.Line == nil {
			return nil, 1
		}
		return []*models.CohortRow{row}, 0
	}
	return b.statRows(g, target, values, stats), 0
}

func (b *Builder) marketRow(g *models.Game, target models.TargetDefinition, values features.ValueSet, lines map[lineKey]*models.OddsLine) *models.CohortRow {
	team, opponent := sideTeams(g, target.Side)
	row := &models.CohortRow{
		GameID:   g.ID,
		League:   g.League,
		Season:   g.Season,
		Date:     g.Date,
		Team:     team,
		Opponent: opponent,
		Side:     target.Side,
		Features: values[features.RowKey{GameID: g.ID, Team: team}],
	}
	if line, ok := lines[lineKey{gameID: g.ID, side: target.Side}]; ok {
		row.Line = line
		if won := line.Settle(g); won != nil {
			v := 0.0
			if *won {
				v = 1.0
			}
			row.TargetValue = &v
		}
	}
	return row
}

func (b *Builder) statRows(g *models.Game, target models.TargetDefinition, values features.ValueSet, stats map[lineKey2]map[string]float64) []*models.CohortRow {
	switch target.TargetName {
	case "combined_score":
		if total, ok := g.CombinedScore(); ok {
			return []*models.CohortRow{gameRow(g, values, &total)}
		}
		return nil
	case "margin":
		if margin, ok := g.Margin(); ok {
			return []*models.CohortRow{gameRow(g, values, &margin)}
		}
		return nil
	}

	// Raw team stat: one row per side.
	rows := make([]*models.CohortRow, 0, 2)
	for _, pair := range []struct {
		team, opponent string
		side           models.MarketSide
	}{
		{g.HomeTeam, g.AwayTeam, models.SideHome},
		{g.AwayTeam, g.HomeTeam, models.SideAway},
	} {
		teamStats, ok := stats[lineKey2{gameID: g.ID, team: pair.team}]
		if !ok {
			continue
		}
		v, ok := teamStats[target.TargetName]
		if !ok {
			continue
		}
		value := v
		rows = append(rows, &models.CohortRow{
			GameID:      g.ID,
			League:      g.League,
			Season:      g.Season,
			Date:        g.Date,
			Team:        pair.team,
			Opponent:    pair.opponent,
			Side:        pair.side,
			Features:    values[features.RowKey{GameID: g.ID, Team: pair.team}],
			TargetValue: &value,
		})
	}
	return rows
}

func gameRow(g *models.Game, values features.ValueSet, target *float64) *models.CohortRow {
	return &models.CohortRow{
		GameID:      g.ID,
		League:      g.League,
		Season:      g.Season,
		Date:        g.Date,
		Team:        g.HomeTeam,
		Opponent:    g.AwayTeam,
		Side:        models.SideHome,
		Features:    values[features.RowKey{GameID: g.ID, Team: g.HomeTeam}],
		TargetValue: target,
	}
}

func sideTeams(g *models.Game, side models.MarketSide) (team, opponent string) {
	if side == models.SideAway {
		return g.AwayTeam, g.HomeTeam
	}
	// Over/under rows take the home perspective for feature lookup.
	return g.HomeTeam, g.AwayTeam
}

// playerGameSet resolves the set of games where a matching player appeared.
// Nil means no player filter is in effect.
func (b *Builder) playerGameSet(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) (map[uuid.UUID]bool, error) {
	if playerFilter == "" {
		return nil, nil
	}
	lines, err := b.store.PlayerLines(ctx, gameIDs, playerFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to load player stat lines: %w", err)
	}
	set := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		set[l.GameID] = true
	}
	return set, nil
}

func matchesCohort(row *models.CohortRow, filters models.TheoryFilters, target models.TargetDefinition, playerGames map[uuid.UUID]bool) bool {
	if filters.Team != "" {
		team := strings.ToLower(filters.Team)
		if !strings.Contains(strings.ToLower(row.Team), team) &&
			!strings.Contains(strings.ToLower(row.Opponent), team) {
			return false
		}
	}
	if playerGames != nil && !playerGames[row.GameID] {
		return false
	}
	if (filters.SpreadAbsMin != nil || filters.SpreadAbsMax != nil) &&
		target.IsMarket() && target.MarketType == models.MarketSpread {
		abs, ok := row.SpreadAbs()
		if !ok {
			return false
		}
		if filters.SpreadAbsMin != nil && abs < *filters.SpreadAbsMin {
			return false
		}
		if filters.SpreadAbsMax != nil && abs > *filters.SpreadAbsMax {
			return false
		}
	}
	return true
}

func sortRows(rows []*models.CohortRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].GameID != rows[j].GameID {
			return rows[i].GameID.String() < rows[j].GameID.String()
		}
		return rows[i].Team < rows[j].Team
	})
}

// DateRange returns the inclusive date span of the rows
func DateRange(rows []*models.CohortRow) (start, end time.Time, ok bool) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = rows[0].Date, rows[0].Date
	for _, r := range rows[1:] {
		if r.Date.Before(start) {
			start = r.Date
		}
		if r.Date.After(end) {
			end = r.Date
		}
	}
	return start, end, true
}
