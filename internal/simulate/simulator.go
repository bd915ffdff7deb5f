// Package simulate applies trigger rules and exposure caps to model-scored
// rows and replays the resulting bets chronologically.
package simulate

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/models"
)

// Predictor scores one row. A false second return means the row cannot be
// scored and is skipped. *model.Fit satisfies this.
type Predictor interface {
	Predict(row *models.CohortRow) (float64, bool)
}

// ScoredRow is one cohort row with its model probability and edge
type ScoredRow struct {
	Row       *models.CohortRow `json:"-"`
	GameID    uuid.UUID         `json:"game_id"`
	Prob      float64           `json:"prob"`
	Implied   float64           `json:"implied"`
	Edge      float64           `json:"edge"`
	Triggered bool              `json:"triggered"`
}

// Bet is one entry on the bet tape, in chronological order
type Bet struct {
	GameID     uuid.UUID        `json:"game_id"`
	Date       time.Time        `json:"date"`
	Team       string           `json:"team"`
	Opponent   string           `json:"opponent"`
	Side       models.MarketSide `json:"side"`
	Prob       float64          `json:"prob"`
	Implied    float64          `json:"implied"`
	Edge       float64          `json:"edge"`
	SpreadAbs  *float64         `json:"spread_abs,omitempty"`
	Stake      float64          `json:"stake"`
	Won        *bool            `json:"won"`
	PnL        float64          `json:"pnl"`
	Cumulative float64          `json:"cumulative"`
	Drawdown   float64          `json:"drawdown"`
}

// ExposureSummary reports how the caps shaped the tape
type ExposureSummary struct {
	TriggeredCount int      `json:"triggered_count"`
	SelectedCount  int      `json:"selected_count"`
	UniqueDays     int      `json:"unique_days"`
	AvgBetsPerDay  float64  `json:"avg_bets_per_day"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Result is the full simulator output
type Result struct {
	Exposure    ExposureSummary `json:"exposure"`
	Tape        []Bet           `json:"tape"`
	Slices      []Slice         `json:"slices,omitempty"`
	FinalPnL    float64         `json:"final_pnl"`
	MaxDrawdown float64         `json:"max_drawdown"`
	Notes       []models.Note   `json:"notes,omitempty"`
}

// Outcomes returns the per-bet unit PnL sequence of decided bets, the input
// the Monte Carlo engine resamples.
func (r *Result) Outcomes() []float64 {
	outcomes := make([]float64, 0, len(r.Tape))
	for _, bet := range r.Tape {
		if bet.Won == nil {
			continue
		}
		outcomes = append(outcomes, bet.PnL)
	}
	return outcomes
}

// Simulator turns scored rows into a capped, settled bet tape
type Simulator struct {
	log *logrus.Entry
}

// NewSimulator creates a simulator
func NewSimulator(logger *logrus.Logger) *Simulator {
	return &Simulator{log: logger.WithField("component", "simulator")}
}

// Run scores every row with the fit, applies the trigger and exposure rules,
// and replays the selected bets in order.
func (s *Simulator) Run(rows []*models.CohortRow, fit Predictor, trigger models.TriggerDefinition, exposure models.ExposureControls, assumption models.OddsAssumption) (*Result, error) {
	if err := exposure.Validate(); err != nil {
		return nil, err
	}

	scored := Score(rows, fit, trigger, exposure, assumption)

	triggered := make([]ScoredRow, 0, len(scored))
	for _, sr := range scored {
		if sr.Triggered {
			triggered = append(triggered, sr)
		}
	}

	selected, warnings := selectWithinCaps(triggered, exposure)
	result := &Result{
		Exposure: ExposureSummary{
			TriggeredCount: len(triggered),
			SelectedCount:  len(selected),
			Warnings:       warnings,
		},
	}

	if len(selected) == 0 {
		result.Notes = append(result.Notes, models.NewNote(models.ReasonNoTriggeredBets,
			"no rows cleared the trigger rules"))
		return result, nil
	}

	s.replay(result, selected, assumption)
	result.Slices = buildSlices(result.Tape)

	s.log.WithFields(logrus.Fields{
		"triggered": len(triggered),
		"selected":  len(selected),
		"final_pnl": result.FinalPnL,
	}).Info("Simulation complete")
	return result, nil
}

// Score computes probability, implied probability, edge, and trigger state
// for every row the exposure spread band admits. Rows the model cannot score
// are omitted.
func Score(rows []*models.CohortRow, fit Predictor, trigger models.TriggerDefinition, exposure models.ExposureControls, assumption models.OddsAssumption) []ScoredRow {
	scored := make([]ScoredRow, 0, len(rows))
	for _, row := range rows {
		if !withinSpreadBand(row, exposure) {
			continue
		}
		prob, ok := fit.Predict(row)
		if !ok {
			continue
		}

		implied := impliedFor(row, assumption)
		edge := prob - 0.5
		if implied > 0 {
			edge = prob - implied
		}

		sr := ScoredRow{
			Row:     row,
			GameID:  row.GameID,
			Prob:    prob,
			Implied: implied,
			Edge:    edge,
		}
		sr.Triggered = isTriggered(sr, trigger)
		scored = append(scored, sr)
	}
	return scored
}

func isTriggered(sr ScoredRow, trigger models.TriggerDefinition) bool {
	if sr.Prob < trigger.ProbThreshold {
		return false
	}
	if trigger.ConfidenceBand != nil {
		band := sr.Prob - 0.5
		if band < 0 {
			band = -band
		}
		if band < *trigger.ConfidenceBand {
			return false
		}
	}
	if trigger.MinEdgeVsImplied != nil && sr.Edge < *trigger.MinEdgeVsImplied {
		return false
	}
	return true
}

func withinSpreadBand(row *models.CohortRow, exposure models.ExposureControls) bool {
	if exposure.SpreadAbsMin == nil && exposure.SpreadAbsMax == nil {
		return true
	}
	abs, ok := row.SpreadAbs()
	if !ok {
		return true
	}
	if exposure.SpreadAbsMin != nil && abs < *exposure.SpreadAbsMin {
		return false
	}
	if exposure.SpreadAbsMax != nil && abs > *exposure.SpreadAbsMax {
		return false
	}
	return true
}

// selectWithinCaps groups triggered rows by calendar day, ranks each group by
// edge descending with game id as the deterministic tie-break, and takes the
// top rows up to the day and side caps.
func selectWithinCaps(triggered []ScoredRow, exposure models.ExposureControls) ([]ScoredRow, []string) {
	byDay := make(map[time.Time][]ScoredRow)
	for _, sr := range triggered {
		day := sr.Row.Day()
		byDay[day] = append(byDay[day], sr)
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var selected []ScoredRow
	var warnings []string
	for _, day := range days {
		group := byDay[day]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Edge != group[j].Edge {
				return group[i].Edge > group[j].Edge
			}
			return group[i].GameID.String() < group[j].GameID.String()
		})

		taken := 0
		perSide := make(map[models.MarketSide]int)
		for _, sr := range group {
			if exposure.MaxBetsPerDay > 0 && taken >= exposure.MaxBetsPerDay {
				break
			}
			if exposure.MaxBetsPerSidePerDay > 0 && perSide[sr.Row.Side] >= exposure.MaxBetsPerSidePerDay {
				continue
			}
			selected = append(selected, sr)
			perSide[sr.Row.Side]++
			taken++
		}

		if taken < len(group) {
			warnings = append(warnings, fmt.Sprintf("%s: %d triggered, %d selected under exposure caps",
				day.Format("2006-01-02"), len(group), taken))
		}
	}
	return selected, warnings
}

// replay walks the selected rows chronologically, settling each at unit
// stake and tracking cumulative PnL and peak-to-trough drawdown.
func (s *Simulator) replay(result *Result, selected []ScoredRow, assumption models.OddsAssumption) {
	sort.Slice(selected, func(i, j int) bool {
		if !selected[i].Row.Date.Equal(selected[j].Row.Date) {
			return selected[i].Row.Date.Before(selected[j].Row.Date)
		}
		return selected[i].GameID.String() < selected[j].GameID.String()
	})

	var cumulative, peak, maxDrawdown float64
	uniqueDays := make(map[time.Time]bool)

	for _, sr := range selected {
		row := sr.Row
		uniqueDays[row.Day()] = true

		bet := Bet{
			GameID:   row.GameID,
			Date:     row.Date,
			Team:     row.Team,
			Opponent: row.Opponent,
			Side:     row.Side,
			Prob:     sr.Prob,
			Implied:  sr.Implied,
			Edge:     sr.Edge,
			Stake:    1,
		}
		if abs, ok := row.SpreadAbs(); ok {
			bet.SpreadAbs = &abs
		}

		if row.TargetValue != nil {
			won := *row.TargetValue > 0
			bet.Won = &won
			if won {
				bet.PnL = payoutFor(row, assumption)
			} else {
				bet.PnL = -1
			}
		}

		cumulative += bet.PnL
		if cumulative > peak {
			peak = cumulative
		}
		bet.Cumulative = cumulative
		bet.Drawdown = peak - cumulative
		if bet.Drawdown > maxDrawdown {
			maxDrawdown = bet.Drawdown
		}
		result.Tape = append(result.Tape, bet)
	}

	result.FinalPnL = cumulative
	result.MaxDrawdown = maxDrawdown
	result.Exposure.UniqueDays = len(uniqueDays)
	if len(uniqueDays) > 0 {
		result.Exposure.AvgBetsPerDay = float64(len(selected)) / float64(len(uniqueDays))
	}
}

func impliedFor(row *models.CohortRow, assumption models.OddsAssumption) float64 {
	if !row.HasOdds() {
		return 0
	}
	if assumption == models.OddsFlat {
		return models.ImpliedFromAmerican(models.FlatReferencePrice)
	}
	return row.Line.ImpliedProbability()
}

func payoutFor(row *models.CohortRow, assumption models.OddsAssumption) float64 {
	if row.HasOdds() && assumption != models.OddsFlat {
		return row.Line.PayoutMultiple()
	}
	return models.PayoutFromAmerican(models.FlatReferencePrice)
}
