package engine

import (
	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/evaluate"
	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/model"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/montecarlo"
	"github.com/yourusername/theory-engine/internal/simulate"
	"github.com/yourusername/theory-engine/internal/walkforward"
)

// FeatureSpec selects and parameterizes the generated features for a run
type FeatureSpec struct {
	RawStatKeys     []string `json:"raw_stat_keys"`
	IncludeRestDays bool     `json:"include_rest_days"`
	IncludeRolling  bool     `json:"include_rolling"`
	RollingWindow   int      `json:"rolling_window" validate:"omitempty,gte=2,lte=20"`
}

// AnalyzeRequest evaluates a theory's cohort against its baseline
type AnalyzeRequest struct {
	Filters  models.TheoryFilters    `json:"filters" validate:"required"`
	Target   models.TargetDefinition `json:"target" validate:"required"`
	Features FeatureSpec             `json:"features"`
	Cleaning models.CleaningOptions  `json:"cleaning"`
}

// AnalyzeResult is the evaluator output plus the run identity
type AnalyzeResult struct {
	RunID          uuid.UUID                     `json:"run_id"`
	ContentHash    string                        `json:"content_hash"`
	Evaluation     *evaluate.Result              `json:"evaluation"`
	Correlations   []evaluate.FeatureCorrelation `json:"correlations,omitempty"`
	Insights       []string                      `json:"insights,omitempty"`
	Cleaning       models.CleaningSummary        `json:"cleaning"`
	FeatureSummary string                        `json:"feature_summary"`
}

// BuildModelRequest fits a model and simulates its triggers. RunContext
// decides whether post-game features stay eligible.
type BuildModelRequest struct {
	Filters    models.TheoryFilters     `json:"filters" validate:"required"`
	Target     models.TargetDefinition  `json:"target" validate:"required"`
	Features   FeatureSpec              `json:"features"`
	Cleaning   models.CleaningOptions   `json:"cleaning"`
	RunContext models.RunContext        `json:"run_context" validate:"omitempty,oneof=deployable diagnostic"`
	Trigger    models.TriggerDefinition `json:"trigger"`
	Exposure   models.ExposureControls  `json:"exposure"`
	MonteCarlo bool                     `json:"monte_carlo"`
}

// BuildModelResult carries every stage that completed. A failed model fit
// does not discard the evaluation that preceded it.
type BuildModelResult struct {
	RunID            uuid.UUID              `json:"run_id"`
	ContentHash      string                 `json:"content_hash"`
	Evaluation       *evaluate.Result       `json:"evaluation"`
	Model            *model.Fit             `json:"model"`
	Simulation       *simulate.Result       `json:"simulation,omitempty"`
	MonteCarlo       *montecarlo.Summary    `json:"monte_carlo,omitempty"`
	ExcludedFeatures []string               `json:"excluded_features,omitempty"`
	Cleaning         models.CleaningSummary `json:"cleaning"`
	FeatureSummary   string                 `json:"feature_summary"`
	Notes            []models.Note          `json:"notes,omitempty"`
}

// WalkforwardRequest re-runs the fit/trigger pipeline over rolling windows
type WalkforwardRequest struct {
	Filters  models.TheoryFilters     `json:"filters" validate:"required"`
	Target   models.TargetDefinition  `json:"target" validate:"required"`
	Features FeatureSpec              `json:"features"`
	Cleaning models.CleaningOptions   `json:"cleaning"`
	Trigger  models.TriggerDefinition `json:"trigger"`
	Exposure models.ExposureControls  `json:"exposure"`
	Window   models.WalkforwardWindow `json:"window" validate:"required"`
}

// WalkforwardResult is the validator output plus the run identity
type WalkforwardResult struct {
	RunID          uuid.UUID           `json:"run_id"`
	ContentHash    string              `json:"content_hash"`
	Validation     *walkforward.Result `json:"validation"`
	FeatureSummary string              `json:"feature_summary"`
}

// GenerateFeaturesRequest derives the feature list without running anything
type GenerateFeaturesRequest struct {
	League   models.League `json:"league" validate:"required"`
	Features FeatureSpec   `json:"features"`
}

func (r GenerateFeaturesRequest) featureRequest() features.Request {
	return features.Request{
		League:          r.League,
		RawStatKeys:     r.Features.RawStatKeys,
		IncludeRestDays: r.Features.IncludeRestDays,
		IncludeRolling:  r.Features.IncludeRolling,
		RollingWindow:   r.Features.RollingWindow,
	}
}

func featureRequestFor(league models.League, spec FeatureSpec) features.Request {
	return features.Request{
		League:          league,
		RawStatKeys:     spec.RawStatKeys,
		IncludeRestDays: spec.IncludeRestDays,
		IncludeRolling:  spec.IncludeRolling,
		RollingWindow:   spec.RollingWindow,
	}
}
