// Package montecarlo bootstraps realized bet outcomes to place the actual
// result inside a resampled distribution.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/models"
)

// IndependenceCaveat is attached to every available summary. Resampling with
// replacement treats bets as exchangeable, so correlated same-day outcomes
// are not modeled.
const IndependenceCaveat = "bootstrap treats each bet as exchangeable; correlated outcomes (same game day, same side) are not modeled"

// Percentiles holds the p5/p50/p95 of one resampled statistic
type Percentiles struct {
	P5  float64 `json:"p5"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// Summary is the Monte Carlo output. Available is false when too few
// realized bets exist to resample.
type Summary struct {
	Available          bool          `json:"available"`
	ReasonNotAvailable string        `json:"reason_not_available,omitempty"`
	Trials             int           `json:"trials,omitempty"`
	Seed               int64         `json:"seed,omitempty"`
	Bets               int           `json:"bets"`
	FinalPnL           Percentiles   `json:"final_pnl"`
	MaxDrawdown        Percentiles   `json:"max_drawdown"`
	ActualFinalPnL     float64       `json:"actual_final_pnl"`
	LuckScore          *float64      `json:"luck_score,omitempty"`
	Caveat             string        `json:"caveat,omitempty"`
	Notes              []models.Note `json:"notes,omitempty"`
}

// Engine runs bootstrap resampling per engine configuration
type Engine struct {
	cfg config.EngineConfig
	log *logrus.Entry
}

// NewEngine creates a Monte Carlo engine
func NewEngine(cfg config.EngineConfig, logger *logrus.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: logger.WithField("component", "montecarlo"),
	}
}

// Run resamples the outcome sequence with replacement. Each trial draws from
// its own seeded source so results are reproducible regardless of worker
// scheduling. The luck score is the percentile midrank of the actual final
// PnL within the resampled final-PnL distribution.
func (e *Engine) Run(ctx context.Context, outcomes []float64, actualFinalPnL float64, seed int64) *Summary {
	summary := &Summary{
		Bets:           len(outcomes),
		ActualFinalPnL: actualFinalPnL,
	}

	if len(outcomes) < e.cfg.MonteCarloMinBets {
		summary.ReasonNotAvailable = string(models.ReasonTooFewBets)
		summary.Notes = append(summary.Notes, models.NewNote(models.ReasonTooFewBets,
			fmt.Sprintf("%d realized bets, need at least %d", len(outcomes), e.cfg.MonteCarloMinBets)))
		return summary
	}

	trials := e.cfg.MonteCarloTrials
	finals := make([]float64, trials)
	drawdowns := make([]float64, trials)

	workers := e.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				finals[i], drawdowns[i] = runTrial(outcomes, seed+int64(i))
			}
		}()
	}

	cancelled := false
	for i := 0; i < trials; i++ {
		select {
		case <-ctx.Done():
			cancelled = true
		case indices <- i:
			continue
		}
		break
	}
	close(indices)
	wg.Wait()
	if cancelled {
		summary.ReasonNotAvailable = "cancelled"
		return summary
	}

	summary.Available = true
	summary.Trials = trials
	summary.Seed = seed
	summary.FinalPnL = percentilesOf(finals)
	summary.MaxDrawdown = percentilesOf(drawdowns)
	luck := percentileMidrank(finals, actualFinalPnL)
	summary.LuckScore = &luck
	summary.Caveat = IndependenceCaveat

	e.log.WithFields(logrus.Fields{
		"trials": trials,
		"bets":   len(outcomes),
		"luck":   luck,
	}).Info("Monte Carlo complete")
	return summary
}

// runTrial resamples one cumulative-PnL path and returns its final PnL and
// peak-to-trough max drawdown.
func runTrial(outcomes []float64, seed int64) (finalPnL, maxDrawdown float64) {
	rng := rand.New(rand.NewSource(seed))
	var cumulative, peak float64
	for range outcomes {
		cumulative += outcomes[rng.Intn(len(outcomes))]
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return cumulative, maxDrawdown
}

func percentilesOf(values []float64) Percentiles {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentiles{
		P5:  percentile(sorted, 0.05),
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
	}
}

// percentile interpolates linearly over a sorted slice
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[lower+1]*frac
}

// percentileMidrank places a value inside a sample: ties count half
func percentileMidrank(sample []float64, value float64) float64 {
	below, equal := 0, 0
	for _, v := range sample {
		switch {
		case v < value:
			below++
		case v == value:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(len(sample))
}
