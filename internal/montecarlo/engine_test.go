package montecarlo

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/models"
)

func newTestEngine(workers int) *Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewEngine(config.EngineConfig{
		MonteCarloTrials:  200,
		MonteCarloMinBets: 10,
		WorkerCount:       workers,
	}, logger)
}

func winLossOutcomes(n int) []float64 {
	outcomes := make([]float64, n)
	for i := range outcomes {
		if i%2 == 0 {
			outcomes[i] = 0.9
		} else {
			outcomes[i] = -1
		}
	}
	return outcomes
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	outcomes := winLossOutcomes(40)
	ctx := context.Background()

	first := newTestEngine(4).Run(ctx, outcomes, -1.2, 42)
	second := newTestEngine(4).Run(ctx, outcomes, -1.2, 42)
	require.True(t, first.Available)
	assert.Equal(t, first, second)

	// Worker count changes scheduling, never results.
	serial := newTestEngine(1).Run(ctx, outcomes, -1.2, 42)
	assert.Equal(t, first.FinalPnL, serial.FinalPnL)
	assert.Equal(t, first.MaxDrawdown, serial.MaxDrawdown)
	assert.Equal(t, first.LuckScore, serial.LuckScore)
}

func TestRunDiffersAcrossSeeds(t *testing.T) {
	outcomes := winLossOutcomes(40)
	ctx := context.Background()

	a := newTestEngine(2).Run(ctx, outcomes, 0, 1)
	b := newTestEngine(2).Run(ctx, outcomes, 0, 2)
	require.True(t, a.Available)
	require.True(t, b.Available)
	assert.NotEqual(t, a.FinalPnL, b.FinalPnL)
}

func TestRunTooFewBets(t *testing.T) {
	summary := newTestEngine(2).Run(context.Background(), winLossOutcomes(5), 0, 42)
	assert.False(t, summary.Available)
	assert.Equal(t, string(models.ReasonTooFewBets), summary.ReasonNotAvailable)
	assert.Equal(t, 5, summary.Bets)
	assert.Nil(t, summary.LuckScore)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := newTestEngine(2).Run(ctx, winLossOutcomes(40), 0, 42)
	assert.False(t, summary.Available)
	assert.Equal(t, "cancelled", summary.ReasonNotAvailable)
}

func TestLuckScoreBounds(t *testing.T) {
	outcomes := winLossOutcomes(40)
	summary := newTestEngine(2).Run(context.Background(), outcomes, 0, 7)
	require.True(t, summary.Available)
	require.NotNil(t, summary.LuckScore)
	assert.GreaterOrEqual(t, *summary.LuckScore, 0.0)
	assert.LessOrEqual(t, *summary.LuckScore, 1.0)
	assert.Equal(t, IndependenceCaveat, summary.Caveat)

	// An actual far above every resampled path is pure luck.
	lucky := newTestEngine(2).Run(context.Background(), outcomes, 1e9, 7)
	assert.Equal(t, 1.0, *lucky.LuckScore)
	unlucky := newTestEngine(2).Run(context.Background(), outcomes, -1e9, 7)
	assert.Equal(t, 0.0, *unlucky.LuckScore)
}

func TestRunMedianConvergesToOutcomeMean(t *testing.T) {
	// 12 wins at +1.2 and 8 unit losses. With enough trials the median of
	// the resampled final PnL sits at the bootstrap mean of the multiset,
	// len(outcomes) * mean(outcomes) = 6.4.
	outcomes := make([]float64, 0, 20)
	for i := 0; i < 12; i++ {
		outcomes = append(outcomes, 1.2)
	}
	for i := 0; i < 8; i++ {
		outcomes = append(outcomes, -1)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	eng := NewEngine(config.EngineConfig{
		MonteCarloTrials:  4000,
		MonteCarloMinBets: 10,
		WorkerCount:       4,
	}, logger)

	summary := eng.Run(context.Background(), outcomes, 0, 7)
	require.True(t, summary.Available)

	var mean float64
	for _, o := range outcomes {
		mean += o
	}
	mean /= float64(len(outcomes))
	assert.InDelta(t, float64(len(outcomes))*mean, summary.FinalPnL.P50, 1.0)
}

func TestPercentileMidrankCountsTiesHalf(t *testing.T) {
	sample := []float64{1, 2, 2, 3}
	assert.Equal(t, 0.5, percentileMidrank(sample, 2))
	assert.Equal(t, 0.0, percentileMidrank(sample, 0))
	assert.Equal(t, 1.0, percentileMidrank(sample, 5))
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{0, 10, 20, 30, 40}
	assert.Equal(t, 20.0, percentile(sorted, 0.5))
	assert.Equal(t, 10.0, percentile(sorted, 0.25))
	assert.Equal(t, 5.0, percentile(sorted, 0.125))
	assert.Equal(t, 40.0, percentile(sorted, 1))
	assert.Equal(t, 0.0, percentile(nil, 0.5))
}

func TestPercentilesOfDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	percentilesOf(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}
