// Package walkforward estimates edge decay with rolling train/test windows.
package walkforward

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/cohort"
	"github.com/yourusername/theory-engine/internal/model"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/simulate"
)

// Result is the walk-forward output. Eligible is false for stat targets.
type Result struct {
	Eligible         bool                      `json:"eligible"`
	Window           models.WalkforwardWindow  `json:"window"`
	Slices           []models.WalkforwardSlice `json:"slices,omitempty"`
	EdgeHalfLifeDays *float64                  `json:"edge_half_life_days"`
	Cleaning         models.CleaningSummary    `json:"cleaning"`
	Notes            []models.Note             `json:"notes,omitempty"`
}

// Validator re-runs the fit/trigger pipeline over rolling windows
type Validator struct {
	builder *cohort.Builder
	modeler *model.Builder
	sim     *simulate.Simulator
	workers int
	log     *logrus.Entry
}

// NewValidator wires the validator from the pipeline stages
func NewValidator(builder *cohort.Builder, modeler *model.Builder, sim *simulate.Simulator, workers int, logger *logrus.Logger) *Validator {
	return &Validator{
		builder: builder,
		modeler: modeler,
		sim:     sim,
		workers: workers,
		log:     logger.WithField("component", "walkforward"),
	}
}

// Run materializes the cohort once, then walks train/test windows forward.
// Test windows are scored with the trigger rules fitted on the preceding
// train window only.
func (v *Validator) Run(ctx context.Context, filters models.TheoryFilters, target models.TargetDefinition, feats []models.GeneratedFeature, clean models.CleaningOptions, trigger models.TriggerDefinition, exposure models.ExposureControls, window models.WalkforwardWindow) (*Result, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}

	result := &Result{Window: window}
	if !target.IsMarket() {
		result.Notes = append(result.Notes, models.NewNote(models.ReasonStatTargetNotEligible,
			"walk-forward needs a market target; stat targets have no market to settle against"))
		return result, nil
	}
	result.Eligible = true

	mat, err := v.builder.Build(ctx, filters, target, feats, clean, v.workers)
	if err != nil {
		return nil, err
	}
	result.Cleaning = mat.Cleaning

	rows := mat.Cohort
	start, end, ok := cohort.DateRange(rows)
	if !ok {
		result.Notes = append(result.Notes, models.NewNote(models.ReasonInsufficientSample,
			"no cohort rows in the eligible date range"))
		return result, nil
	}

	assumption := target.OddsAssumed
	if assumption == "" {
		assumption = models.OddsUseClosing
	}

	trainStart := startOfDay(start)
	for trainStart.AddDate(0, 0, window.TrainDays).Before(end) || trainStart.AddDate(0, 0, window.TrainDays).Equal(end) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("walk-forward cancelled: %w", ctx.Err())
		default:
		}

		trainEnd := trainStart.AddDate(0, 0, window.TrainDays)
		testEnd := trainEnd.AddDate(0, 0, window.TestDays)

		train := rowsBetween(rows, trainStart, trainEnd)
		test := rowsBetween(rows, trainEnd, testEnd)
		result.Slices = append(result.Slices, v.runSlice(train, test, trainEnd, testEnd, feats, target, trigger, exposure, assumption))

		trainStart = trainStart.AddDate(0, 0, window.StepDays)
	}

	if len(result.Slices) == 0 {
		result.Notes = append(result.Notes, models.NewNote(models.ReasonInsufficientSample,
			fmt.Sprintf("date range %s to %s is narrower than one train window",
				start.Format("2006-01-02"), end.Format("2006-01-02"))))
		return result, nil
	}

	result.EdgeHalfLifeDays = edgeHalfLife(result.Slices)
	v.log.WithFields(logrus.Fields{
		"slices":    len(result.Slices),
		"half_life": result.EdgeHalfLifeDays,
	}).Info("Walk-forward complete")
	return result, nil
}

// runSlice fits on the train rows and settles the test rows out of sample
func (v *Validator) runSlice(train, test []*models.CohortRow, testStart, testEnd time.Time, feats []models.GeneratedFeature, target models.TargetDefinition, trigger models.TriggerDefinition, exposure models.ExposureControls, assumption models.OddsAssumption) models.WalkforwardSlice {
	slice := models.WalkforwardSlice{StartDate: testStart, EndDate: testEnd}

	withOdds := 0
	for _, row := range test {
		if row.HasOdds() {
			withOdds++
		}
	}
	if len(test) > 0 {
		slice.OddsCoveragePct = float64(withOdds) / float64(len(test)) * 100
	}

	fit := v.modeler.Fit(train, feats, target)
	if !fit.Available {
		return slice
	}

	sim, err := v.sim.Run(test, fit, trigger, exposure, assumption)
	if err != nil || len(sim.Tape) == 0 {
		return slice
	}

	var wins, decided int
	var edgeSum float64
	for _, bet := range sim.Tape {
		edgeSum += bet.Edge
		if bet.Won == nil {
			continue
		}
		decided++
		if *bet.Won {
			wins++
		}
	}

	slice.SampleSize = len(sim.Tape)
	slice.EdgeAvg = edgeSum / float64(len(sim.Tape))
	if decided > 0 {
		slice.HitRate = float64(wins) / float64(decided)
		slice.ROIUnits = sim.FinalPnL / float64(decided)
	}
	return slice
}

// edgeHalfLife finds the days until the observed edge first decays to half
// the initial slice's value, interpolating linearly between the straddling
// slices. Nil when the initial edge is not positive or never halves.
func edgeHalfLife(slices []models.WalkforwardSlice) *float64 {
	initial := slices[0].EdgeAvg
	if initial <= 0 {
		return nil
	}
	half := initial / 2
	origin := slices[0].StartDate

	for i := 1; i < len(slices); i++ {
		if slices[i].EdgeAvg > half {
			continue
		}
		prev, cur := slices[i-1], slices[i]
		prevDays := prev.StartDate.Sub(origin).Hours() / 24
		curDays := cur.StartDate.Sub(origin).Hours() / 24
		if prev.EdgeAvg == cur.EdgeAvg {
			return &curDays
		}
		frac := (prev.EdgeAvg - half) / (prev.EdgeAvg - cur.EdgeAvg)
		days := prevDays + frac*(curDays-prevDays)
		return &days
	}
	return nil
}

func validateWindow(w models.WalkforwardWindow) error {
	if w.TrainDays < 30 || w.TrainDays > 730 {
		return models.NewConfigError("train_days", "must be between 30 and 730")
	}
	if w.TestDays < 3 || w.TestDays > 90 {
		return models.NewConfigError("test_days", "must be between 3 and 90")
	}
	if w.StepDays < 3 || w.StepDays > 90 {
		return models.NewConfigError("step_days", "must be between 3 and 90")
	}
	if w.StepDays < w.TestDays {
		return models.NewConfigError("step_days", "must be at least test_days so test windows do not overlap")
	}
	return nil
}

func rowsBetween(rows []*models.CohortRow, start, end time.Time) []*models.CohortRow {
	out := make([]*models.CohortRow, 0)
	for _, row := range rows {
		if row.Date.Before(start) || !row.Date.Before(end) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
