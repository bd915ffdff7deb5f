package models

// SeasonScope selects which of the listed seasons a run addresses
type SeasonScope string

const (
	// ScopeFull uses every listed season.
	ScopeFull SeasonScope = "full"
	// ScopeCurrent uses only the max of the listed seasons.
	ScopeCurrent SeasonScope = "current"
	// ScopeRecent uses the trailing RecentDays from the most recent available date.
	ScopeRecent SeasonScope = "recent"
)

// TheoryFilters is the filter bundle every operation accepts
type TheoryFilters struct {
	League     League      `json:"league" validate:"required"`
	Seasons    []int       `json:"seasons" validate:"required,min=1,dive,gt=1900"`
	Scope      SeasonScope `json:"scope" validate:"omitempty,oneof=full current recent"`
	RecentDays int         `json:"recent_days,omitempty" validate:"omitempty,gt=0"`
	Phase      SeasonPhase `json:"phase,omitempty"`
	Team       string      `json:"team,omitempty"`
	Player     string      `json:"player,omitempty"`
	// Spread band applies only when the target market is spread.
	SpreadAbsMin *float64 `json:"spread_abs_min,omitempty" validate:"omitempty,gte=0"`
	SpreadAbsMax *float64 `json:"spread_abs_max,omitempty" validate:"omitempty,gte=0"`
}

// EffectiveSeasons resolves the scope against the listed seasons
func (f TheoryFilters) EffectiveSeasons() []int {
	if f.Scope != ScopeCurrent || len(f.Seasons) == 0 {
		return f.Seasons
	}
	latest := f.Seasons[0]
	for _, s := range f.Seasons[1:] {
		if s > latest {
			latest = s
		}
	}
	return []int{latest}
}

// Validate performs cross-field checks the struct tags cannot express
func (f TheoryFilters) Validate() error {
	if !f.League.IsKnown() {
		return NewConfigError("league", "unknown league "+string(f.League))
	}
	if f.SpreadAbsMin != nil && f.SpreadAbsMax != nil && *f.SpreadAbsMin > *f.SpreadAbsMax {
		return NewConfigError("spread_abs_min", "spread_abs_min exceeds spread_abs_max")
	}
	if f.Scope == ScopeRecent && f.RecentDays <= 0 {
		return NewConfigError("recent_days", "recent_days must be positive when scope is recent")
	}
	if f.Phase != PhaseAny && PhaseWindows(f.League) == nil {
		// Phases only carry meaning for leagues with phase buckets; the
		// filter is ignored rather than rejected for other leagues.
		return nil
	}
	return nil
}

// CleaningOptions controls row admission before any statistics are computed
type CleaningOptions struct {
	DropIfAllNull      bool `json:"drop_if_all_null"`
	DropIfAnyNull      bool `json:"drop_if_any_null"`
	DropIfNonNumeric   bool `json:"drop_if_non_numeric"`
	MinNonNullFeatures int  `json:"min_non_null_features" validate:"gte=0"`
}

// CleaningSummary makes every dropped row auditable
type CleaningSummary struct {
	RawRows           int `json:"raw_rows"`
	RowsAfterCleaning int `json:"rows_after_cleaning"`
	DroppedNull       int `json:"dropped_null"`
	DroppedNonNumeric int `json:"dropped_non_numeric"`
}
