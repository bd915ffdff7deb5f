package main

import (
	"fmt"

	"github.com/yourusername/theory-engine/internal/engine"
	"github.com/yourusername/theory-engine/internal/evaluate"
	"github.com/yourusername/theory-engine/internal/features"
)

func printFeatures(result *features.Result) {
	fmt.Println(result.Summary)
	for _, f := range result.Features {
		fmt.Printf("  %-28s %-16s %-9s %s\n", f.Name, f.Category, f.Timing, f.Formula)
	}
}

func printAnalyze(result *engine.AnalyzeResult) {
	fmt.Printf("run %s (%s)\n", result.RunID, result.ContentHash[:12])
	fmt.Println(result.FeatureSummary)
	fmt.Printf("cleaning: %d raw rows, %d kept (%d null-dropped, %d non-numeric)\n",
		result.Cleaning.RawRows, result.Cleaning.RowsAfterCleaning,
		result.Cleaning.DroppedNull, result.Cleaning.DroppedNonNumeric)
	printEvaluation(result.Evaluation)
	for _, c := range result.Correlations {
		fmt.Printf("  corr %-28s %+.3f (n=%d)\n", c.Feature, c.Correlation, c.SampleSize)
	}
	for _, insight := range result.Insights {
		fmt.Printf("insight: %s\n", insight)
	}
}

func printEvaluation(ev *evaluate.Result) {
	fmt.Printf("verdict: %s (sample band %s, cohort n=%d, baseline n=%d)\n",
		ev.Verdict, ev.SampleBand, ev.Cohort.SampleSize, ev.Baseline.SampleSize)
	if ev.Delta != nil {
		fmt.Printf("delta: %+.4f\n", *ev.Delta)
	}
	if ev.Cohort.HitRate != nil && ev.Baseline.HitRate != nil {
		fmt.Printf("hit rate: cohort %.4f vs baseline %.4f\n", *ev.Cohort.HitRate, *ev.Baseline.HitRate)
	}
	if ev.Cohort.Mean != nil && ev.Baseline.Mean != nil {
		fmt.Printf("mean: cohort %.3f vs baseline %.3f (std %.3f, min %.1f, max %.1f)\n",
			*ev.Cohort.Mean, *ev.Baseline.Mean, deref(ev.Cohort.Std), deref(ev.Cohort.Min), deref(ev.Cohort.Max))
	}
	if ev.EVVsImplied != nil {
		fmt.Printf("ev vs implied: %+.4f (avg implied %.4f, %s)\n",
			*ev.EVVsImplied, deref(ev.AvgImpliedProb), ev.OddsAssumption)
	}
	if ev.ROIUnits != nil {
		fmt.Printf("roi: %+.4f units/bet\n", *ev.ROIUnits)
	}
	for _, note := range ev.Notes {
		fmt.Printf("note [%s]: %s\n", note.Code, note.Message)
	}
	fmt.Println(ev.Advisory)
}

func printBuildModel(result *engine.BuildModelResult) {
	fmt.Printf("run %s (%s)\n", result.RunID, result.ContentHash[:12])
	printEvaluation(result.Evaluation)

	if len(result.ExcludedFeatures) > 0 {
		fmt.Printf("excluded post-game features: %v\n", result.ExcludedFeatures)
	}

	m := result.Model
	if !m.Available {
		fmt.Println("model: not available")
	} else {
		fmt.Printf("model: %d weights, intercept %.4f\n", len(m.Weights), m.Intercept)
		for _, d := range m.Drivers {
			fmt.Printf("  driver %-20s |w| %.4f\n", d.Group, d.AbsWeight)
		}
		if m.Accuracy != nil {
			fmt.Printf("accuracy: %.4f\n", *m.Accuracy)
		}
		if m.ROIProxy != nil {
			fmt.Printf("roi proxy: %+.4f (%s)\n", *m.ROIProxy, m.ROIProxyCaveat)
		}
	}
	for _, d := range m.Dropped {
		fmt.Printf("  dropped %-28s %s %s\n", d.Name, d.Reason, d.Detail)
	}

	if sim := result.Simulation; sim != nil {
		fmt.Printf("simulation: %d triggered, %d selected over %d days (%.2f bets/day)\n",
			sim.Exposure.TriggeredCount, sim.Exposure.SelectedCount,
			sim.Exposure.UniqueDays, sim.Exposure.AvgBetsPerDay)
		fmt.Printf("final pnl: %+.2f units, max drawdown %.2f\n", sim.FinalPnL, sim.MaxDrawdown)
		for _, w := range sim.Exposure.Warnings {
			fmt.Printf("  cap: %s\n", w)
		}
		for _, slice := range sim.Slices {
			marker := " "
			if slice.RedZone {
				marker = "!"
			}
			fmt.Printf(" %s %s\n", marker, slice.String())
		}
	}

	if mc := result.MonteCarlo; mc != nil {
		if !mc.Available {
			fmt.Printf("monte carlo: not available (%s)\n", mc.ReasonNotAvailable)
		} else {
			fmt.Printf("monte carlo: %d trials, pnl p5 %+.2f / p50 %+.2f / p95 %+.2f\n",
				mc.Trials, mc.FinalPnL.P5, mc.FinalPnL.P50, mc.FinalPnL.P95)
			fmt.Printf("max drawdown p5 %.2f / p50 %.2f / p95 %.2f\n",
				mc.MaxDrawdown.P5, mc.MaxDrawdown.P50, mc.MaxDrawdown.P95)
			if mc.LuckScore != nil {
				fmt.Printf("luck score: %.3f (percentile of actual %+.2f)\n", *mc.LuckScore, mc.ActualFinalPnL)
			}
			fmt.Println(mc.Caveat)
		}
	}

	for _, note := range result.Notes {
		fmt.Printf("note [%s]: %s\n", note.Code, note.Message)
	}
}

func printWalkforward(result *engine.WalkforwardResult) {
	fmt.Printf("run %s (%s)\n", result.RunID, result.ContentHash[:12])
	v := result.Validation
	if !v.Eligible {
		fmt.Println("walk-forward: not eligible")
		for _, note := range v.Notes {
			fmt.Printf("note [%s]: %s\n", note.Code, note.Message)
		}
		return
	}

	fmt.Printf("window: train %dd / test %dd / step %dd, %d slices\n",
		v.Window.TrainDays, v.Window.TestDays, v.Window.StepDays, len(v.Slices))
	for _, s := range v.Slices {
		fmt.Printf("  %s..%s n=%-4d hit %.3f roi %+.3f edge %+.4f odds %.0f%%\n",
			s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"),
			s.SampleSize, s.HitRate, s.ROIUnits, s.EdgeAvg, s.OddsCoveragePct)
	}
	if v.EdgeHalfLifeDays != nil {
		fmt.Printf("edge half-life: %.1f days\n", *v.EdgeHalfLifeDays)
	} else {
		fmt.Println("edge half-life: null (edge never decayed below half)")
	}
	for _, note := range v.Notes {
		fmt.Printf("note [%s]: %s\n", note.Code, note.Message)
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
