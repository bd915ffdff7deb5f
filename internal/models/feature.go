package models

// FeatureTiming tags when a feature's inputs become known
type FeatureTiming string

const (
	// TimingPreGame features use only information available before tip-off.
	TimingPreGame FeatureTiming = "pre_game"
	// TimingPostGame features read in-game or final box-score data and are
	// excluded from forward-looking models outside diagnostic context.
	TimingPostGame FeatureTiming = "post_game"
)

// FeatureCategory groups features by how they are derived
type FeatureCategory string

const (
	CategoryRolling FeatureCategory = "rolling_average"
	CategoryRest    FeatureCategory = "rest_days"
	CategoryRatio   FeatureCategory = "ratio"
	CategoryRaw     FeatureCategory = "raw_stat"
)

// GeneratedFeature represents one derived feature available to a run
type GeneratedFeature struct {
	Name     string          `json:"name" validate:"required"`
	Formula  string          `json:"formula"`
	Category FeatureCategory `json:"category"`
	Group    string          `json:"group"`
	Timing   FeatureTiming   `json:"timing" validate:"required,oneof=pre_game post_game"`
}

// RunContext distinguishes forward-looking runs from diagnostic ones
type RunContext string

const (
	ContextDeployable RunContext = "deployable"
	ContextDiagnostic RunContext = "diagnostic"
)

// UsableIn reports whether the feature may feed a model run in the given
// context. Post-game features leak outcome information and are only usable
// diagnostically.
func (f GeneratedFeature) UsableIn(ctx RunContext) bool {
	if f.Timing == TimingPreGame {
		return true
	}
	return ctx == ContextDiagnostic
}
