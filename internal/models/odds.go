package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MarketType represents the wagering market a line settles against
type MarketType string

const (
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
	MarketMoneyline MarketType = "moneyline"
)

// MarketSide represents which side of a market a row is on
type MarketSide string

const (
	SideHome  MarketSide = "home"
	SideAway  MarketSide = "away"
	SideOver  MarketSide = "over"
	SideUnder MarketSide = "under"
)

// OddsLine represents a closing line for one game/market/side
type OddsLine struct {
	GameID   uuid.UUID       `db:"game_id" json:"game_id" validate:"required,uuid4"`
	Market   MarketType      `db:"market" json:"market" validate:"required,oneof=spread total moneyline"`
	Side     MarketSide      `db:"side" json:"side" validate:"required,oneof=home away over under"`
	Line     decimal.Decimal `db:"line" json:"line"`
	Price    decimal.Decimal `db:"price" json:"price"`
	ClosedAt time.Time       `db:"closed_at" json:"closed_at"`
}

// FlatReferencePrice is the diagnostic-only flat price used when a run settles
// every row at the same assumed juice instead of its true closing price.
var FlatReferencePrice = decimal.NewFromInt(-110)

// ImpliedProbability converts the American price to its implied win probability
func (o *OddsLine) ImpliedProbability() float64 {
	return ImpliedFromAmerican(o.Price)
}

// PayoutMultiple returns profit per unit stake on a win at this price
func (o *OddsLine) PayoutMultiple() float64 {
	return PayoutFromAmerican(o.Price)
}

// ImpliedFromAmerican converts an American price to implied probability.
// Prices between -100 and 100 exclusive are not valid American odds; callers
// get 0 so the row drops out of odds-dependent math.
func ImpliedFromAmerican(price decimal.Decimal) float64 {
	p, _ := price.Float64()
	switch {
	case p <= -100:
		return -p / (-p + 100)
	case p >= 100:
		return 100 / (p + 100)
	default:
		return 0
	}
}

// PayoutFromAmerican converts an American price to profit per unit stake
func PayoutFromAmerican(price decimal.Decimal) float64 {
	p, _ := price.Float64()
	switch {
	case p <= -100:
		return 100 / -p
	case p >= 100:
		return p / 100
	default:
		return 0
	}
}

// SettleSpread resolves a spread bet for the line's side against a final game.
// Returns nil on a push or when the game has no final score.
func (o *OddsLine) SettleSpread(game *Game) *bool {
	margin, ok := game.Margin()
	if !ok {
		return nil
	}
	line, _ := o.Line.Float64()
	var cover float64
	switch o.Side {
	case SideHome:
		cover = margin + line
	case SideAway:
		cover = -margin + line
	default:
		return nil
	}
	if cover == 0 {
		return nil // push
	}
	won := cover > 0
	return &won
}

// SettleTotal resolves an over/under bet against a final game
func (o *OddsLine) SettleTotal(game *Game) *bool {
	total, ok := game.CombinedScore()
	if !ok {
		return nil
	}
	line, _ := o.Line.Float64()
	if total == line {
		return nil // push
	}
	var won bool
	switch o.Side {
	case SideOver:
		won = total > line
	case SideUnder:
		won = total < line
	default:
		return nil
	}
	return &won
}

// SettleMoneyline resolves a moneyline bet against a final game
func (o *OddsLine) SettleMoneyline(game *Game) *bool {
	margin, ok := game.Margin()
	if !ok {
		return nil
	}
	if margin == 0 {
		return nil
	}
	var won bool
	switch o.Side {
	case SideHome:
		won = margin > 0
	case SideAway:
		won = margin < 0
	default:
		return nil
	}
	return &won
}

// Settle resolves the bet per the line's market type
func (o *OddsLine) Settle(game *Game) *bool {
	switch o.Market {
	case MarketSpread:
		return o.SettleSpread(game)
	case MarketTotal:
		return o.SettleTotal(game)
	case MarketMoneyline:
		return o.SettleMoneyline(game)
	}
	return nil
}
