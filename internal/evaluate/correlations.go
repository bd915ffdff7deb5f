package evaluate

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/theory-engine/internal/models"
)

// FeatureCorrelation is the Pearson correlation of one feature column
// against the resolved target values of the cohort.
type FeatureCorrelation struct {
	Feature     string  `json:"feature"`
	Correlation float64 `json:"correlation"`
	SampleSize  int     `json:"sample_size"`
}

// Correlations computes per-feature correlation against the target over rows
// where both the feature and the target resolve, strongest first. Features
// with fewer than two paired observations or zero variance are skipped.
func Correlations(rows []*models.CohortRow, feats []models.GeneratedFeature) []FeatureCorrelation {
	out := make([]FeatureCorrelation, 0, len(feats))
	for _, f := range feats {
		xs := make([]float64, 0, len(rows))
		ys := make([]float64, 0, len(rows))
		for _, row := range rows {
			if row.TargetValue == nil {
				continue
			}
			v, ok := row.FeatureValue(f.Name)
			if !ok {
				continue
			}
			xs = append(xs, v)
			ys = append(ys, *row.TargetValue)
		}
		r, ok := pearson(xs, ys)
		if !ok {
			continue
		}
		out = append(out, FeatureCorrelation{
			Feature:     f.Name,
			Correlation: r,
			SampleSize:  len(xs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Correlation) > math.Abs(out[j].Correlation)
	})
	return out
}

func pearson(xs, ys []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(len(xs))
	meanY := sumY / float64(len(ys))

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// Insights derives short statements from the evaluation and the correlation
// pass for callers that render plain text.
func Insights(result *Result, correlations []FeatureCorrelation) []string {
	insights := make([]string, 0, 3)
	if result.Delta != nil {
		switch {
		case *result.Delta > 0:
			insights = append(insights, fmt.Sprintf("cohort outperforms the baseline by %+.4f over %d rows (%s)",
				*result.Delta, result.Cohort.SampleSize, result.Verdict))
		case *result.Delta < 0:
			insights = append(insights, fmt.Sprintf("cohort trails the baseline by %.4f over %d rows",
				-*result.Delta, result.Cohort.SampleSize))
		default:
			insights = append(insights, fmt.Sprintf("cohort matches the baseline over %d rows",
				result.Cohort.SampleSize))
		}
	}
	if len(correlations) > 0 {
		top := correlations[0]
		insights = append(insights, fmt.Sprintf("%s has the strongest association with %s (r=%+.2f, n=%d)",
			top.Feature, result.Target.TargetName, top.Correlation, top.SampleSize))
	}
	if result.EVVsImplied != nil && result.AvgImpliedProb != nil {
		insights = append(insights, fmt.Sprintf("cohort hit rate runs %+.4f against an average implied probability of %.4f",
			*result.EVVsImplied, *result.AvgImpliedProb))
	}
	return insights
}
