package models

// TargetClass distinguishes stat targets from market targets
type TargetClass string

const (
	TargetStat   TargetClass = "stat"
	TargetMarket TargetClass = "market"
)

// MetricType distinguishes numeric targets (means) from binary targets (rates)
type MetricType string

const (
	MetricNumeric MetricType = "numeric"
	MetricBinary  MetricType = "binary"
)

// OddsAssumption selects how market rows are priced for settlement
type OddsAssumption string

const (
	// OddsUseClosing settles each row at its own closing price.
	OddsUseClosing OddsAssumption = "use_closing"
	// OddsFlat settles every row at FlatReferencePrice. Diagnostic only.
	OddsFlat OddsAssumption = "flat"
)

// TargetDefinition describes the outcome a theory is evaluated against
type TargetDefinition struct {
	TargetClass  TargetClass    `json:"target_class" validate:"required,oneof=stat market"`
	TargetName   string         `json:"target_name" validate:"required"`
	MetricType   MetricType     `json:"metric_type" validate:"required,oneof=numeric binary"`
	MarketType   MarketType     `json:"market_type,omitempty" validate:"required_if=TargetClass market,omitempty,oneof=spread total moneyline"`
	Side         MarketSide     `json:"side,omitempty" validate:"required_if=TargetClass market,omitempty,oneof=home away over under"`
	OddsAssumed  OddsAssumption `json:"odds_assumption,omitempty" validate:"omitempty,oneof=use_closing flat"`
	OddsRequired bool           `json:"odds_required"`
}

// DefaultStatTarget returns the default numeric stat target. Callers get a
// fresh value each time; there is no shared mutable default.
func DefaultStatTarget() TargetDefinition {
	return TargetDefinition{
		TargetClass: TargetStat,
		TargetName:  "combined_score",
		MetricType:  MetricNumeric,
	}
}

// DefaultMarketTarget returns a market target settling the named market/side
// at closing prices.
func DefaultMarketTarget(market MarketType, side MarketSide) TargetDefinition {
	return TargetDefinition{
		TargetClass:  TargetMarket,
		TargetName:   string(market) + "_" + string(side),
		MetricType:   MetricBinary,
		MarketType:   market,
		Side:         side,
		OddsAssumed:  OddsUseClosing,
		OddsRequired: true,
	}
}

// IsMarket reports whether the target settles against a market
func (t TargetDefinition) IsMarket() bool {
	return t.TargetClass == TargetMarket
}

// IsBinary reports whether the target has win/loss semantics
func (t TargetDefinition) IsBinary() bool {
	return t.MetricType == MetricBinary
}
