package models

// TriggerDefinition flags rows whose model probability clears entry rules.
// A row is triggered iff every condition that is present holds.
type TriggerDefinition struct {
	ProbThreshold    float64  `json:"prob_threshold" validate:"gte=0,lte=1"`
	ConfidenceBand   *float64 `json:"confidence_band,omitempty" validate:"omitempty,gte=0,lte=0.5"`
	MinEdgeVsImplied *float64 `json:"min_edge_vs_implied,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// ExposureControls bounds how many triggered rows become bets
type ExposureControls struct {
	MaxBetsPerDay        int      `json:"max_bets_per_day" validate:"gte=0"`
	MaxBetsPerSidePerDay int      `json:"max_bets_per_side_per_day" validate:"gte=0"`
	SpreadAbsMin         *float64 `json:"spread_abs_min,omitempty" validate:"omitempty,gte=0"`
	SpreadAbsMax         *float64 `json:"spread_abs_max,omitempty" validate:"omitempty,gte=0"`
}

// Validate checks cross-field consistency of the exposure controls
func (e ExposureControls) Validate() error {
	if e.SpreadAbsMin != nil && e.SpreadAbsMax != nil && *e.SpreadAbsMin > *e.SpreadAbsMax {
		return NewConfigError("spread_abs_min", "spread_abs_min exceeds spread_abs_max")
	}
	return nil
}
