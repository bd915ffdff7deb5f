// Package model fits linear weights over generated features to predict a
// target from cohort rows.
package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/models"
)

// Drop reasons logged per pruned feature
const (
	DropZeroVariance  = "zero_variance"
	DropMissingValues = "missing_values"
	DropNearDuplicate = "near_duplicate"
	DropZeroWeight    = "zero_weight"
	DropFitFailure    = "fit_failure"
)

// ROIProxyCaveat labels the unit-ROI figure for what it is
const ROIProxyCaveat = "exploratory unit-ROI proxy at a flat reference price; a sanity check, not a profitability claim"

// DroppedFeature records one pruned feature and why
type DroppedFeature struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// FeatureWeight is one fitted weight
type FeatureWeight struct {
	Name   string  `json:"name"`
	Group  string  `json:"group"`
	Weight float64 `json:"weight"`
}

// SignalDriver aggregates absolute weight by feature group
type SignalDriver struct {
	Group     string  `json:"group"`
	AbsWeight float64 `json:"abs_weight"`
}

// Fit is the model builder output. When Available is false the Notes explain
// why and the rest of the fields are zero.
type Fit struct {
	Available      bool              `json:"available"`
	MetricType     models.MetricType `json:"metric_type"`
	Intercept      float64           `json:"intercept"`
	Weights        []FeatureWeight   `json:"weights,omitempty"`
	Drivers        []SignalDriver    `json:"primary_signal_drivers,omitempty"`
	Accuracy       *float64          `json:"accuracy,omitempty"`
	ROIProxy       *float64          `json:"roi_proxy,omitempty"`
	ROIProxyCaveat string            `json:"roi_proxy_caveat,omitempty"`
	Dropped        []DroppedFeature  `json:"features_dropped,omitempty"`
	Notes          []models.Note     `json:"notes,omitempty"`

	featureNames []string
	means        []float64
	stds         []float64
	weights      []float64
}

// Builder fits models per engine configuration
type Builder struct {
	cfg config.EngineConfig
	log *logrus.Entry
}

// NewBuilder creates a model builder
func NewBuilder(cfg config.EngineConfig, logger *logrus.Logger) *Builder {
	return &Builder{
		cfg: cfg,
		log: logger.WithField("component", "model"),
	}
}

// Fit trains a model over the rows. Fit never returns an error: every
// failure degrades to an unavailable fit whose dropped features and notes
// explain what happened.
func (b *Builder) Fit(rows []*models.CohortRow, feats []models.GeneratedFeature, target models.TargetDefinition) *Fit {
	fit := &Fit{MetricType: target.MetricType}

	resolved := make([]*models.CohortRow, 0, len(rows))
	for _, row := range rows {
		if row.TargetValue != nil {
			resolved = append(resolved, row)
		}
	}
	if len(resolved) == 0 {
		fit.Notes = append(fit.Notes, models.NewNote(models.ReasonInsufficientSample,
			"no rows with a resolved target value to fit against"))
		return fit
	}

	kept, dropped := b.pruneBeforeFit(resolved, feats)
	fit.Dropped = dropped
	if len(kept) == 0 {
		fit.Notes = append(fit.Notes, models.NewNote(models.ReasonNoEligibleFeatures,
			"every candidate feature was pruned before fitting"))
		return fit
	}

	matrix, means, stds := designMatrix(resolved, kept)
	targets := make([]float64, len(resolved))
	for i, row := range resolved {
		targets[i] = *row.TargetValue
	}

	weights, intercept, ok := b.gradientDescent(matrix, targets, target.IsBinary())
	if !ok {
		fit.Notes = append(fit.Notes, models.NewNote(models.ReasonModelFitFailed,
			"gradient descent diverged; the feature matrix is likely degenerate"))
		for _, f := range kept {
			fit.Dropped = append(fit.Dropped, DroppedFeature{Name: f.Name, Reason: DropFitFailure})
		}
		return fit
	}

	// Zero-weight features carry no signal after regularization.
	finalFeats := make([]models.GeneratedFeature, 0, len(kept))
	finalWeights := make([]float64, 0, len(weights))
	finalMeans := make([]float64, 0, len(means))
	finalStds := make([]float64, 0, len(stds))
	for i, f := range kept {
		if math.Abs(weights[i]) < 1e-12 {
			fit.Dropped = append(fit.Dropped, DroppedFeature{Name: f.Name, Reason: DropZeroWeight})
			b.logDrop(f.Name, DropZeroWeight, "")
			continue
		}
		finalFeats = append(finalFeats, f)
		finalWeights = append(finalWeights, weights[i])
		finalMeans = append(finalMeans, means[i])
		finalStds = append(finalStds, stds[i])
	}
	if len(finalFeats) == 0 {
		fit.Notes = append(fit.Notes, models.NewNote(models.ReasonNoEligibleFeatures,
			"every feature weight regularized to zero"))
		return fit
	}

	fit.Available = true
	fit.Intercept = intercept
	fit.weights = finalWeights
	fit.means = finalMeans
	fit.stds = finalStds
	fit.featureNames = make([]string, len(finalFeats))
	for i, f := range finalFeats {
		fit.featureNames[i] = f.Name
		fit.Weights = append(fit.Weights, FeatureWeight{Name: f.Name, Group: f.Group, Weight: finalWeights[i]})
	}
	fit.Drivers = aggregateDrivers(fit.Weights)
	b.score(fit, resolved, target)
	return fit
}

// pruneBeforeFit applies the pre-fit pruning passes in order: degenerate
// columns first, then near-duplicates keeping the first-declared feature.
func (b *Builder) pruneBeforeFit(rows []*models.CohortRow, feats []models.GeneratedFeature) ([]models.GeneratedFeature, []DroppedFeature) {
	var dropped []DroppedFeature
	survivors := make([]models.GeneratedFeature, 0, len(feats))
	columns := make([][]float64, 0, len(feats))

	for _, f := range feats {
		col, missing := column(rows, f.Name)
		missingFrac := float64(missing) / float64(len(rows))
		if missingFrac >= b.cfg.MaxMissingFraction {
			dropped = append(dropped, DroppedFeature{Name: f.Name, Reason: DropMissingValues,
				Detail: fmt.Sprintf("%.0f%% missing", missingFrac*100)})
			b.logDrop(f.Name, DropMissingValues, fmt.Sprintf("%.2f", missingFrac))
			continue
		}
		if variance(col) == 0 {
			dropped = append(dropped, DroppedFeature{Name: f.Name, Reason: DropZeroVariance})
			b.logDrop(f.Name, DropZeroVariance, "")
			continue
		}
		survivors = append(survivors, f)
		columns = append(columns, col)
	}

	kept := make([]models.GeneratedFeature, 0, len(survivors))
	keptCols := make([][]float64, 0, len(columns))
	for i, f := range survivors {
		duplicate := ""
		for j := range keptCols {
			if math.Abs(correlation(keptCols[j], columns[i])) > b.cfg.CorrelationThreshold {
				duplicate = kept[j].Name
				break
			}
		}
		if duplicate != "" {
			dropped = append(dropped, DroppedFeature{Name: f.Name, Reason: DropNearDuplicate,
				Detail: "duplicate of " + duplicate})
			b.logDrop(f.Name, DropNearDuplicate, duplicate)
			continue
		}
		kept = append(kept, f)
		keptCols = append(keptCols, columns[i])
	}
	return kept, dropped
}

func (b *Builder) logDrop(name, reason, detail string) {
	b.log.WithFields(logrus.Fields{
		"feature": name,
		"reason":  reason,
		"detail":  detail,
	}).Info("Feature dropped")
}

// score computes agreement accuracy and the flat-price ROI proxy over the
// training rows.
func (b *Builder) score(fit *Fit, rows []*models.CohortRow, target models.TargetDefinition) {
	threshold := 0.5
	if !target.IsBinary() {
		// Numeric targets score above/below the training mean.
		var sum float64
		for _, row := range rows {
			sum += *row.TargetValue
		}
		threshold = sum / float64(len(rows))
	}

	agree, scored := 0, 0
	var pnl float64
	var bets int
	payout := models.PayoutFromAmerican(models.FlatReferencePrice)

	for _, row := range rows {
		pred, ok := fit.Predict(row)
		if !ok {
			continue
		}
		scored++
		actual := *row.TargetValue
		if (pred >= threshold) == (actual >= threshold) {
			agree++
		}
		if target.IsBinary() && pred >= 0.5 {
			bets++
			if actual > 0 {
				pnl += payout
			} else {
				pnl -= 1
			}
		}
	}

	if scored > 0 {
		acc := float64(agree) / float64(scored)
		fit.Accuracy = &acc
	}
	if bets > 0 {
		roi := pnl / float64(bets)
		fit.ROIProxy = &roi
		fit.ROIProxyCaveat = ROIProxyCaveat
	}
}

// Predict evaluates the fitted model on one row, imputing missing features
// at their training mean. Binary fits return a probability.
func (f *Fit) Predict(row *models.CohortRow) (float64, bool) {
	if !f.Available {
		return 0, false
	}
	z := f.Intercept
	for i, name := range f.featureNames {
		v, ok := row.FeatureValue(name)
		if !ok {
			v = f.means[i]
		}
		z += f.weights[i] * standardize(v, f.means[i], f.stds[i])
	}
	if f.MetricType == models.MetricBinary {
		return sigmoid(z), true
	}
	return z, true
}

func aggregateDrivers(weights []FeatureWeight) []SignalDriver {
	byGroup := make(map[string]float64)
	for _, w := range weights {
		byGroup[w.Group] += math.Abs(w.Weight)
	}
	drivers := make([]SignalDriver, 0, len(byGroup))
	for group, abs := range byGroup {
		drivers = append(drivers, SignalDriver{Group: group, AbsWeight: abs})
	}
	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].AbsWeight != drivers[j].AbsWeight {
			return drivers[i].AbsWeight > drivers[j].AbsWeight
		}
		return drivers[i].Group < drivers[j].Group
	})
	return drivers
}
