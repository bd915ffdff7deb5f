package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestImpliedFromAmerican(t *testing.T) {
	assert.InDelta(t, 110.0/210.0, ImpliedFromAmerican(decimal.NewFromInt(-110)), 1e-9)
	assert.InDelta(t, 100.0/250.0, ImpliedFromAmerican(decimal.NewFromInt(150)), 1e-9)
	assert.InDelta(t, 0.5, ImpliedFromAmerican(decimal.NewFromInt(100)), 1e-9)
	assert.InDelta(t, 0.5, ImpliedFromAmerican(decimal.NewFromInt(-100)), 1e-9)

	// Prices inside (-100, 100) are not valid American odds.
	assert.Zero(t, ImpliedFromAmerican(decimal.NewFromInt(50)))
	assert.Zero(t, ImpliedFromAmerican(decimal.Zero))
}

func TestPayoutFromAmerican(t *testing.T) {
	assert.InDelta(t, 100.0/110.0, PayoutFromAmerican(decimal.NewFromInt(-110)), 1e-9)
	assert.InDelta(t, 1.5, PayoutFromAmerican(decimal.NewFromInt(150)), 1e-9)
	assert.Zero(t, PayoutFromAmerican(decimal.NewFromInt(99)))
}

func finalGame(home, away int) *Game {
	return &Game{
		HomeTeam:  "Boston",
		AwayTeam:  "Denver",
		HomeScore: &home,
		AwayScore: &away,
		Status:    "final",
	}
}

func TestSettleSpread(t *testing.T) {
	line := func(side MarketSide, points float64) *OddsLine {
		return &OddsLine{Market: MarketSpread, Side: side, Line: decimal.NewFromFloat(points), Price: decimal.NewFromInt(-110)}
	}

	// Home -3.5, wins by 5: covers.
	won := line(SideHome, -3.5).SettleSpread(finalGame(105, 100))
	assert.NotNil(t, won)
	assert.True(t, *won)

	// Home -3, wins by exactly 3: push.
	assert.Nil(t, line(SideHome, -3).SettleSpread(finalGame(103, 100)))

	// Away +3, loses by 2: covers.
	won = line(SideAway, 3).SettleSpread(finalGame(102, 100))
	assert.NotNil(t, won)
	assert.True(t, *won)

	// Not final: unresolved.
	g := &Game{Status: "scheduled"}
	assert.Nil(t, line(SideHome, -3).SettleSpread(g))
}

func TestSettleTotal(t *testing.T) {
	over := &OddsLine{Market: MarketTotal, Side: SideOver, Line: decimal.NewFromFloat(210.5), Price: decimal.NewFromInt(-110)}
	under := &OddsLine{Market: MarketTotal, Side: SideUnder, Line: decimal.NewFromFloat(210.5), Price: decimal.NewFromInt(-110)}
	push := &OddsLine{Market: MarketTotal, Side: SideOver, Line: decimal.NewFromInt(205), Price: decimal.NewFromInt(-110)}

	won := over.SettleTotal(finalGame(110, 101))
	assert.NotNil(t, won)
	assert.True(t, *won)

	won = under.SettleTotal(finalGame(110, 101))
	assert.NotNil(t, won)
	assert.False(t, *won)

	assert.Nil(t, push.SettleTotal(finalGame(105, 100)))
}

func TestSettleMoneyline(t *testing.T) {
	home := &OddsLine{Market: MarketMoneyline, Side: SideHome, Price: decimal.NewFromInt(-150)}
	away := &OddsLine{Market: MarketMoneyline, Side: SideAway, Price: decimal.NewFromInt(130)}

	won := home.SettleMoneyline(finalGame(100, 95))
	assert.NotNil(t, won)
	assert.True(t, *won)

	won = away.SettleMoneyline(finalGame(100, 95))
	assert.NotNil(t, won)
	assert.False(t, *won)

	// Ties settle as a push.
	assert.Nil(t, home.SettleMoneyline(finalGame(100, 100)))
}
