package features

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

// RowKey identifies one side of one game
type RowKey struct {
	GameID uuid.UUID
	Team   string
}

// ValueSet holds computed feature values for a set of game sides
type ValueSet map[RowKey]map[string]*float64

type teamGame struct {
	game  *models.Game
	stats map[string]float64
}

// ComputeValues evaluates every feature for every (game, team) row. Rolling
// and ratio features only read games strictly before the row's date, within
// the same season. A nil value means the feature is unknown for that row.
func ComputeValues(ctx context.Context, games []*models.Game, lines []*models.StatLine, feats []models.GeneratedFeature, workers int) (ValueSet, error) {
	if workers < 1 {
		workers = 1
	}

	ordered := make([]*models.Game, len(games))
	copy(ordered, games)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	statsByGame := indexStats(lines)
	leagueMeans := leagueMeansBeforeDate(ordered, statsByGame, feats)
	histories := teamHistories(ordered, statsByGame)

	teams := make([]string, 0, len(histories))
	for team := range histories {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	values := make(ValueSet)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, team := range teams {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("feature computation cancelled: %w", ctx.Err())
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(team string, history []teamGame) {
			defer wg.Done()
			defer func() { <-sem }()

			rows := computeTeamRows(team, history, feats, leagueMeans)

			mu.Lock()
			for key, row := range rows {
				values[key] = row
			}
			mu.Unlock()
		}(team, histories[team])
	}

	wg.Wait()
	return values, nil
}

func indexStats(lines []*models.StatLine) map[uuid.UUID]map[string]map[string]float64 {
	byGame := make(map[uuid.UUID]map[string]map[string]float64)
	for _, line := range lines {
		if line.Player != nil {
			continue
		}
		teams, ok := byGame[line.GameID]
		if !ok {
			teams = make(map[string]map[string]float64)
			byGame[line.GameID] = teams
		}
		teams[line.Team] = line.Stats
	}
	return byGame
}

// leagueMeansBeforeDate snapshots the league running mean of each ratio
// feature's base stat as of each game's date. Games on the same date do not
// see each other.
func leagueMeansBeforeDate(ordered []*models.Game, statsByGame map[uuid.UUID]map[string]map[string]float64, feats []models.GeneratedFeature) map[uuid.UUID]map[string]float64 {
	keys := make(map[string]bool)
	for _, f := range feats {
		if f.Category == models.CategoryRatio {
			keys[f.Group] = true
		}
	}
	snapshots := make(map[uuid.UUID]map[string]float64, len(ordered))
	if len(keys) == 0 {
		return snapshots
	}

	sums := make(map[string]float64, len(keys))
	counts := make(map[string]int, len(keys))

	i := 0
	for i < len(ordered) {
		j := i
		for j < len(ordered) && ordered[j].Date.Equal(ordered[i].Date) {
			j++
		}

		snap := make(map[string]float64, len(keys))
		for key := range keys {
			if counts[key] > 0 {
				snap[key] = sums[key] / float64(counts[key])
			}
		}
		for k := i; k < j; k++ {
			snapshots[ordered[k].ID] = snap
			for _, stats := range statsByGame[ordered[k].ID] {
				for key := range keys {
					if v, ok := stats[key]; ok {
						sums[key] += v
						counts[key]++
					}
				}
			}
		}
		i = j
	}
	return snapshots
}

func teamHistories(ordered []*models.Game, statsByGame map[uuid.UUID]map[string]map[string]float64) map[string][]teamGame {
	histories := make(map[string][]teamGame)
	for _, g := range ordered {
		for _, team := range []string{g.HomeTeam, g.AwayTeam} {
			var stats map[string]float64
			if teams, ok := statsByGame[g.ID]; ok {
				stats = teams[team]
			}
			histories[team] = append(histories[team], teamGame{game: g, stats: stats})
		}
	}
	return histories
}

func computeTeamRows(team string, history []teamGame, feats []models.GeneratedFeature, leagueMeans map[uuid.UUID]map[string]float64) ValueSet {
	rows := make(ValueSet, len(history))
	for idx, tg := range history {
		row := make(map[string]*float64, len(feats))
		for _, f := range feats {
			row[f.Name] = featureValue(f, team, history, idx, leagueMeans)
		}
		rows[RowKey{GameID: tg.game.ID, Team: team}] = row
	}
	return rows
}

func featureValue(f models.GeneratedFeature, team string, history []teamGame, idx int, leagueMeans map[uuid.UUID]map[string]float64) *float64 {
	current := history[idx]

	switch f.Category {
	case models.CategoryRest:
		return restDays(history, idx)

	case models.CategoryRaw:
		if current.stats == nil {
			return nil
		}
		if v, ok := current.stats[f.Group]; ok {
			return &v
		}
		return nil

	case models.CategoryRolling:
		return rollingMean(history, idx, f.Group, windowFromName(f.Name))

	case models.CategoryRatio:
		roll := rollingMean(history, idx, f.Group, windowFromName(f.Name))
		if roll == nil {
			return nil
		}
		snap, ok := leagueMeans[current.game.ID]
		if !ok {
			return nil
		}
		mean, ok := snap[f.Group]
		if !ok || mean == 0 {
			return nil
		}
		ratio := *roll / mean
		return &ratio
	}
	return nil
}

// restDays is the calendar gap to the team's previous game in the same
// season, nil for a season opener.
func restDays(history []teamGame, idx int) *float64 {
	current := history[idx]
	for prev := idx - 1; prev >= 0; prev-- {
		if history[prev].game.Season != current.game.Season {
			break
		}
		days := current.game.Date.Sub(history[prev].game.Date).Hours() / 24
		return &days
	}
	return nil
}

// rollingMean averages the stat over up to window prior games in the same
// season, strictly before the current game. Nil with no prior observations.
func rollingMean(history []teamGame, idx int, key string, window int) *float64 {
	current := history[idx]
	var sum float64
	var count int
	for prev := idx - 1; prev >= 0 && count < window; prev-- {
		tg := history[prev]
		if tg.game.Season != current.game.Season {
			break
		}
		if !tg.game.Date.Before(current.game.Date) {
			continue
		}
		if tg.stats == nil {
			continue
		}
		if v, ok := tg.stats[key]; ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// windowFromName recovers the window from a "…_rollN" or "…_rollN_vs_league"
// feature name.
func windowFromName(name string) int {
	i := strings.LastIndex(name, "_roll")
	if i < 0 {
		return DefaultRollingWindow
	}
	var window int
	if _, err := fmt.Sscanf(name[i:], "_roll%d", &window); err != nil || window == 0 {
		return DefaultRollingWindow
	}
	return ClampWindow(window)
}
