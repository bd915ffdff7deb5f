package models

import (
	"time"

	"github.com/google/uuid"
)

// CohortRow is one game/side joined with its generated feature values,
// target value, and (for market targets) closing line. Rows are materialized
// per request and never persisted beyond the run snapshot.
type CohortRow struct {
	GameID   uuid.UUID          `json:"game_id"`
	League   League             `json:"league"`
	Season   int                `json:"season"`
	Date     time.Time          `json:"date"`
	Team     string             `json:"team"`
	Opponent string             `json:"opponent"`
	Side     MarketSide         `json:"side"`
	Features map[string]*float64 `json:"features"`
	// TargetValue is the numeric value for numeric targets, 1/0 for binary
	// targets, nil when the row's outcome is unresolved (push, missing odds).
	TargetValue *float64  `json:"target_value"`
	Line        *OddsLine `json:"line,omitempty"`
}

// Day returns the row's calendar day in UTC, the grouping key for exposure caps
func (r *CohortRow) Day() time.Time {
	d := r.Date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// SpreadAbs returns the absolute closing spread when the row carries a spread line
func (r *CohortRow) SpreadAbs() (float64, bool) {
	if r.Line == nil || r.Line.Market != MarketSpread {
		return 0, false
	}
	line, _ := r.Line.Line.Float64()
	if line < 0 {
		line = -line
	}
	return line, true
}

// FeatureValue returns the named feature value if present and non-null
func (r *CohortRow) FeatureValue(name string) (float64, bool) {
	v, ok := r.Features[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// HasOdds reports whether the row carries a usable closing price
func (r *CohortRow) HasOdds() bool {
	return r.Line != nil && r.Line.ImpliedProbability() > 0
}
