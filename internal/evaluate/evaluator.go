// Package evaluate computes baseline vs cohort statistics and verdicts.
package evaluate

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/models"
)

// Advisory is attached to every verdict. The bands are tunable policy labels,
// not statistical tests.
const Advisory = "verdict and sample-size bands are advisory labels, not statistical tests"

// Verdict labels for the cohort-vs-baseline delta
const (
	VerdictStrongLift   = "strong_lift"
	VerdictModerateLift = "moderate_lift"
	VerdictSmallLift    = "small_lift"
	VerdictNoLift       = "no_lift"
	VerdictNotAvailable = "not_available"
)

// Sample-size band labels
const (
	SampleLarge    = "large"
	SampleModerate = "moderate"
	SampleSmall    = "small"
)

// VerdictPolicy holds the tunable band thresholds
type VerdictPolicy struct {
	StrongLiftDelta    float64
	ModerateLiftDelta  float64
	LargeSampleSize    int
	ModerateSampleSize int
}

// PolicyFromConfig reads the band thresholds from engine configuration
func PolicyFromConfig(cfg config.EngineConfig) VerdictPolicy {
	return VerdictPolicy{
		StrongLiftDelta:    cfg.StrongLiftDelta,
		ModerateLiftDelta:  cfg.ModerateLiftDelta,
		LargeSampleSize:    cfg.LargeSampleSize,
		ModerateSampleSize: cfg.ModerateSampleSize,
	}
}

// LiftVerdict maps a delta to its band
func (p VerdictPolicy) LiftVerdict(delta float64) string {
	switch {
	case delta > p.StrongLiftDelta:
		return VerdictStrongLift
	case delta >= p.ModerateLiftDelta:
		return VerdictModerateLift
	case delta > 0:
		return VerdictSmallLift
	default:
		return VerdictNoLift
	}
}

// SampleBand maps a sample size to its band
func (p VerdictPolicy) SampleBand(n int) string {
	switch {
	case n >= p.LargeSampleSize:
		return SampleLarge
	case n >= p.ModerateSampleSize:
		return SampleModerate
	default:
		return SampleSmall
	}
}

// Stats summarizes one row population against the target. Pointers are nil
// when the population is empty or the statistic does not apply.
type Stats struct {
	SampleSize      int      `json:"sample_size"`
	Mean            *float64 `json:"mean,omitempty"`
	Std             *float64 `json:"std,omitempty"`
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	HitRate         *float64 `json:"hit_rate,omitempty"`
	OddsCoveragePct *float64 `json:"odds_coverage_pct,omitempty"`
}

// Result is the evaluator output for one run
type Result struct {
	Target         models.TargetDefinition `json:"target"`
	Baseline       Stats                   `json:"baseline"`
	Cohort         Stats                   `json:"cohort"`
	Delta          *float64                `json:"delta,omitempty"`
	Verdict        string                  `json:"verdict"`
	SampleBand     string                  `json:"sample_band"`
	AvgImpliedProb *float64                `json:"avg_implied_prob,omitempty"`
	EVVsImplied    *float64                `json:"ev_vs_implied,omitempty"`
	ROIUnits       *float64                `json:"roi_units_per_bet,omitempty"`
	OddsAssumption models.OddsAssumption   `json:"odds_assumption,omitempty"`
	Advisory       string                  `json:"advisory"`
	Notes          []models.Note           `json:"notes,omitempty"`
}

// Evaluator computes lift results under a verdict policy
type Evaluator struct {
	policy VerdictPolicy
	log    *logrus.Entry
}

// NewEvaluator creates an evaluator
func NewEvaluator(policy VerdictPolicy, logger *logrus.Logger) *Evaluator {
	return &Evaluator{
		policy: policy,
		log:    logger.WithField("component", "evaluator"),
	}
}

// Evaluate compares the cohort against the baseline for the target. A zero
// cohort never errors; it yields nulled statistics with a reason note.
// droppedMissingOdds distinguishes a cohort emptied by a required closing
// price no game carried from one emptied by the filters.
func (e *Evaluator) Evaluate(baseline, cohortRows []*models.CohortRow, target models.TargetDefinition, droppedMissingOdds int) *Result {
	result := &Result{
		Target:   target,
		Advisory: Advisory,
	}

	result.Baseline = populationStats(baseline, target)
	result.Cohort = populationStats(cohortRows, target)
	result.SampleBand = e.policy.SampleBand(result.Cohort.SampleSize)

	if result.Cohort.SampleSize == 0 {
		result.Verdict = VerdictNotAvailable
		if droppedMissingOdds > 0 && result.Baseline.SampleSize == 0 {
			result.Notes = append(result.Notes, models.NewNote(models.ReasonNoOddsCoverage,
				fmt.Sprintf("%d final games lack the required %s closing price", droppedMissingOdds, target.MarketType)))
		} else {
			result.Notes = append(result.Notes, models.NewNote(models.ReasonInsufficientSample,
				"cohort has no rows with a resolved target value"))
		}
		e.log.WithField("target", target.TargetName).Warn("Evaluation skipped: empty cohort")
		return result
	}

	delta := delta(result.Baseline, result.Cohort, target)
	if delta != nil {
		result.Delta = delta
		result.Verdict = e.policy.LiftVerdict(*delta)
	} else {
		result.Verdict = VerdictNotAvailable
	}

	if target.IsMarket() {
		e.priceCohort(result, cohortRows, target)
	}
	return result
}

func delta(baseline, cohortStats Stats, target models.TargetDefinition) *float64 {
	if target.IsBinary() {
		if baseline.HitRate == nil || cohortStats.HitRate == nil {
			return nil
		}
		d := *cohortStats.HitRate - *baseline.HitRate
		return &d
	}
	if baseline.Mean == nil || cohortStats.Mean == nil {
		return nil
	}
	d := *cohortStats.Mean - *baseline.Mean
	return &d
}

// priceCohort adds the odds-aware metrics for a market target: the average
// implied probability, the hit rate's edge over it, and the realized ROI in
// units at the declared odds assumption.
func (e *Evaluator) priceCohort(result *Result, rows []*models.CohortRow, target models.TargetDefinition) {
	assumption := target.OddsAssumed
	if assumption == "" {
		assumption = models.OddsUseClosing
	}
	result.OddsAssumption = assumption

	var impliedSum, pnl float64
	var priced int
	for _, row := range rows {
		if row.TargetValue == nil || !row.HasOdds() {
			continue
		}
		implied, payout := rowPricing(row, assumption)
		if implied == 0 {
			continue
		}
		impliedSum += implied
		if *row.TargetValue > 0 {
			pnl += payout
		} else {
			pnl -= 1
		}
		priced++
	}

	if priced == 0 {
		result.Notes = append(result.Notes, models.NewNote(models.ReasonNoOddsCoverage,
			fmt.Sprintf("no %s closing prices cover the cohort", target.MarketType)))
		return
	}

	avgImplied := impliedSum / float64(priced)
	result.AvgImpliedProb = &avgImplied
	if result.Cohort.HitRate != nil {
		ev := *result.Cohort.HitRate - avgImplied
		result.EVVsImplied = &ev
	}
	roi := pnl / float64(priced)
	result.ROIUnits = &roi
}

func rowPricing(row *models.CohortRow, assumption models.OddsAssumption) (implied, payout float64) {
	if assumption == models.OddsFlat {
		return models.ImpliedFromAmerican(models.FlatReferencePrice),
			models.PayoutFromAmerican(models.FlatReferencePrice)
	}
	return row.Line.ImpliedProbability(), row.Line.PayoutMultiple()
}

// populationStats summarizes resolved target values for one population
func populationStats(rows []*models.CohortRow, target models.TargetDefinition) Stats {
	values := make([]float64, 0, len(rows))
	withOdds := 0
	for _, row := range rows {
		if row.HasOdds() {
			withOdds++
		}
		if row.TargetValue != nil {
			values = append(values, *row.TargetValue)
		}
	}

	stats := Stats{SampleSize: len(values)}
	if len(values) == 0 {
		return stats
	}

	if target.IsBinary() {
		wins := 0.0
		for _, v := range values {
			if v > 0 {
				wins++
			}
		}
		rate := wins / float64(len(values))
		stats.HitRate = &rate
	} else {
		mean, std := meanStd(values)
		minV, maxV := values[0], values[0]
		for _, v := range values[1:] {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		stats.Mean = &mean
		stats.Std = &std
		stats.Min = &minV
		stats.Max = &maxV
	}

	if target.IsMarket() && len(rows) > 0 {
		coverage := float64(withOdds) / float64(len(rows)) * 100
		stats.OddsCoveragePct = &coverage
	}
	return stats
}

func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
