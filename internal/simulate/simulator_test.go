package simulate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/theory-engine/internal/models"
)

type fakePredictor struct {
	probs map[uuid.UUID]float64
}

func (f fakePredictor) Predict(row *models.CohortRow) (float64, bool) {
	p, ok := f.probs[row.GameID]
	return p, ok
}

func newTestSimulator() *Simulator {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSimulator(logger)
}

func simDay(d int) time.Time {
	return time.Date(2025, 1, d, 19, 0, 0, 0, time.UTC)
}

func simRow(date time.Time, side models.MarketSide, won float64) *models.CohortRow {
	return &models.CohortRow{
		GameID:      uuid.New(),
		Date:        date,
		Team:        "DUKE",
		Opponent:    "UNC",
		Side:        side,
		TargetValue: &won,
	}
}

func withSpread(row *models.CohortRow, line float64, price int64) *models.CohortRow {
	row.Line = &models.OddsLine{
		GameID: row.GameID, Market: models.MarketSpread, Side: row.Side,
		Line: decimal.NewFromFloat(line), Price: decimal.NewFromInt(price),
	}
	return row
}

func TestTriggerThresholdBoundary(t *testing.T) {
	below := simRow(simDay(1), models.SideHome, 1)
	at := simRow(simDay(1), models.SideHome, 1)
	pred := fakePredictor{probs: map[uuid.UUID]float64{
		below.GameID: 0.54,
		at.GameID:    0.55,
	}}
	trigger := models.TriggerDefinition{ProbThreshold: 0.55}

	scored := Score([]*models.CohortRow{below, at}, pred, trigger, models.ExposureControls{}, models.OddsUseClosing)
	require.Len(t, scored, 2)
	byID := map[uuid.UUID]ScoredRow{}
	for _, sr := range scored {
		byID[sr.GameID] = sr
	}
	assert.False(t, byID[below.GameID].Triggered)
	assert.True(t, byID[at.GameID].Triggered)
}

func TestTriggerConfidenceBandAndMinEdge(t *testing.T) {
	row := withSpread(simRow(simDay(1), models.SideHome, 1), -3.5, -110)
	pred := fakePredictor{probs: map[uuid.UUID]float64{row.GameID: 0.58}}

	band := 0.10
	trigger := models.TriggerDefinition{ProbThreshold: 0.5, ConfidenceBand: &band}
	scored := Score([]*models.CohortRow{row}, pred, trigger, models.ExposureControls{}, models.OddsUseClosing)
	require.Len(t, scored, 1)
	assert.False(t, scored[0].Triggered, "|0.58-0.5| is inside the 0.10 band")

	// Edge vs the -110 implied probability is 0.58 - 0.5238 = 0.056.
	minEdge := 0.06
	trigger = models.TriggerDefinition{ProbThreshold: 0.5, MinEdgeVsImplied: &minEdge}
	scored = Score([]*models.CohortRow{row}, pred, trigger, models.ExposureControls{}, models.OddsUseClosing)
	require.Len(t, scored, 1)
	assert.False(t, scored[0].Triggered)

	minEdge = 0.05
	scored = Score([]*models.CohortRow{row}, pred, trigger, models.ExposureControls{}, models.OddsUseClosing)
	assert.True(t, scored[0].Triggered)
}

func TestEdgeFallsBackWithoutOdds(t *testing.T) {
	row := simRow(simDay(1), models.SideHome, 1)
	pred := fakePredictor{probs: map[uuid.UUID]float64{row.GameID: 0.6}}

	scored := Score([]*models.CohortRow{row}, pred, models.TriggerDefinition{}, models.ExposureControls{}, models.OddsUseClosing)
	require.Len(t, scored, 1)
	assert.Zero(t, scored[0].Implied)
	assert.InDelta(t, 0.1, scored[0].Edge, 1e-9)
}

func TestSpreadBandExcludesRows(t *testing.T) {
	inside := withSpread(simRow(simDay(1), models.SideHome, 1), -7, -110)
	outside := withSpread(simRow(simDay(1), models.SideHome, 1), -12, -110)
	pred := fakePredictor{probs: map[uuid.UUID]float64{inside.GameID: 0.6, outside.GameID: 0.6}}
	maxAbs := 10.0
	exposure := models.ExposureControls{SpreadAbsMax: &maxAbs}

	scored := Score([]*models.CohortRow{inside, outside}, pred, models.TriggerDefinition{}, exposure, models.OddsUseClosing)
	require.Len(t, scored, 1)
	assert.Equal(t, inside.GameID, scored[0].GameID)
}

func TestRunCapsBetsPerDay(t *testing.T) {
	rows := []*models.CohortRow{
		simRow(simDay(1), models.SideHome, 1),
		simRow(simDay(1), models.SideHome, 1),
		simRow(simDay(1), models.SideHome, 0),
	}
	pred := fakePredictor{probs: map[uuid.UUID]float64{
		rows[0].GameID: 0.70,
		rows[1].GameID: 0.65,
		rows[2].GameID: 0.60,
	}}
	exposure := models.ExposureControls{MaxBetsPerDay: 2}

	result, err := newTestSimulator().Run(rows, pred, models.TriggerDefinition{ProbThreshold: 0.5}, exposure, models.OddsUseClosing)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Exposure.TriggeredCount)
	assert.Equal(t, 2, result.Exposure.SelectedCount)
	require.Len(t, result.Tape, 2)
	// The two highest-edge rows survive the cap.
	probs := []float64{result.Tape[0].Prob, result.Tape[1].Prob}
	assert.ElementsMatch(t, []float64{0.70, 0.65}, probs)
	require.Len(t, result.Exposure.Warnings, 1)
	assert.Contains(t, result.Exposure.Warnings[0], "2025-01-01")
}

func TestRunCapsBetsPerSide(t *testing.T) {
	home1 := simRow(simDay(1), models.SideHome, 1)
	home2 := simRow(simDay(1), models.SideHome, 1)
	away := simRow(simDay(1), models.SideAway, 1)
	pred := fakePredictor{probs: map[uuid.UUID]float64{
		home1.GameID: 0.70,
		home2.GameID: 0.68,
		away.GameID:  0.60,
	}}
	exposure := models.ExposureControls{MaxBetsPerSidePerDay: 1}

	result, err := newTestSimulator().Run([]*models.CohortRow{home1, home2, away}, pred,
		models.TriggerDefinition{ProbThreshold: 0.5}, exposure, models.OddsUseClosing)
	require.NoError(t, err)
	require.Equal(t, 2, result.Exposure.SelectedCount)
	sides := map[models.MarketSide]int{}
	for _, bet := range result.Tape {
		sides[bet.Side]++
	}
	assert.Equal(t, 1, sides[models.SideHome])
	assert.Equal(t, 1, sides[models.SideAway])
}

func TestCapTieBreaksByGameID(t *testing.T) {
	a := simRow(simDay(1), models.SideHome, 1)
	b := simRow(simDay(1), models.SideHome, 1)
	pred := fakePredictor{probs: map[uuid.UUID]float64{a.GameID: 0.6, b.GameID: 0.6}}
	exposure := models.ExposureControls{MaxBetsPerDay: 1}

	want := a.GameID
	if b.GameID.String() < a.GameID.String() {
		want = b.GameID
	}

	result, err := newTestSimulator().Run([]*models.CohortRow{a, b}, pred,
		models.TriggerDefinition{}, exposure, models.OddsUseClosing)
	require.NoError(t, err)
	require.Len(t, result.Tape, 1)
	assert.Equal(t, want, result.Tape[0].GameID)
}

func TestReplayDrawdownAndFinalPnL(t *testing.T) {
	rows := []*models.CohortRow{
		simRow(simDay(1), models.SideHome, 0),
		simRow(simDay(2), models.SideHome, 0),
		simRow(simDay(3), models.SideHome, 1),
	}
	pred := fakePredictor{probs: map[uuid.UUID]float64{
		rows[0].GameID: 0.6, rows[1].GameID: 0.6, rows[2].GameID: 0.6,
	}}

	result, err := newTestSimulator().Run(rows, pred, models.TriggerDefinition{}, models.ExposureControls{}, models.OddsUseClosing)
	require.NoError(t, err)
	require.Len(t, result.Tape, 3)

	payout := models.PayoutFromAmerican(models.FlatReferencePrice)
	assert.Equal(t, -1.0, result.Tape[0].Cumulative)
	assert.Equal(t, -2.0, result.Tape[1].Cumulative)
	assert.InDelta(t, -2+payout, result.FinalPnL, 1e-9)
	assert.Equal(t, 2.0, result.MaxDrawdown)
	assert.Equal(t, 3, result.Exposure.UniqueDays)
	assert.Equal(t, 1.0, result.Exposure.AvgBetsPerDay)
}

func TestPushesStayOnTapeButLeaveOutcomes(t *testing.T) {
	push := simRow(simDay(1), models.SideHome, 0)
	push.TargetValue = nil
	win := simRow(simDay(2), models.SideHome, 1)
	pred := fakePredictor{probs: map[uuid.UUID]float64{push.GameID: 0.6, win.GameID: 0.6}}

	result, err := newTestSimulator().Run([]*models.CohortRow{push, win}, pred,
		models.TriggerDefinition{}, models.ExposureControls{}, models.OddsUseClosing)
	require.NoError(t, err)
	require.Len(t, result.Tape, 2)
	assert.Nil(t, result.Tape[0].Won)
	assert.Zero(t, result.Tape[0].PnL)
	assert.Len(t, result.Outcomes(), 1)
}

func TestRunWithNoTriggeredBets(t *testing.T) {
	row := simRow(simDay(1), models.SideHome, 1)
	pred := fakePredictor{probs: map[uuid.UUID]float64{row.GameID: 0.51}}

	result, err := newTestSimulator().Run([]*models.CohortRow{row}, pred,
		models.TriggerDefinition{ProbThreshold: 0.6}, models.ExposureControls{}, models.OddsUseClosing)
	require.NoError(t, err)
	assert.Empty(t, result.Tape)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, models.ReasonNoTriggeredBets, result.Notes[0].Code)
}

func TestRunRejectsInvertedSpreadBand(t *testing.T) {
	lo, hi := 8.0, 3.0
	exposure := models.ExposureControls{SpreadAbsMin: &lo, SpreadAbsMax: &hi}
	_, err := newTestSimulator().Run(nil, fakePredictor{}, models.TriggerDefinition{}, exposure, models.OddsUseClosing)
	require.Error(t, err)
}
