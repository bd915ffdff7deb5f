// Package features derives named model features from raw box-score stat keys.
package features

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/theory-engine/internal/gamestore"
	"github.com/yourusername/theory-engine/internal/models"
)

const (
	// MinRollingWindow and MaxRollingWindow bound the rolling-average window.
	MinRollingWindow     = 2
	MaxRollingWindow     = 20
	DefaultRollingWindow = 5
)

// Request describes which features to generate for a league
type Request struct {
	League          models.League `json:"league" validate:"required"`
	RawStatKeys     []string      `json:"raw_stat_keys"`
	IncludeRestDays bool          `json:"include_rest_days"`
	IncludeRolling  bool          `json:"include_rolling"`
	RollingWindow   int           `json:"rolling_window"`
}

// Result is the ordered feature list plus a summary of skipped stat keys
type Result struct {
	Features    []models.GeneratedFeature `json:"features"`
	SkippedKeys []string                  `json:"skipped_keys"`
	Summary     string                    `json:"summary"`
}

// ClampWindow normalizes a requested rolling window into the supported range
func ClampWindow(window int) int {
	if window == 0 {
		return DefaultRollingWindow
	}
	if window < MinRollingWindow {
		return MinRollingWindow
	}
	if window > MaxRollingWindow {
		return MaxRollingWindow
	}
	return window
}

// Generate derives the ordered feature list for the request. Unknown stat
// keys are skipped and reported, never an error.
func Generate(ctx context.Context, store gamestore.Store, req Request) (Result, error) {
	if !req.League.IsKnown() {
		return Result{}, models.NewConfigError("league", "unknown league "+string(req.League))
	}

	knownKeys, err := store.KnownStatKeys(ctx, req.League)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load stat keys: %w", err)
	}
	known := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		known[k] = true
	}

	window := ClampWindow(req.RollingWindow)
	result := Result{}

	if req.IncludeRestDays {
		result.Features = append(result.Features, restDaysFeature())
	}

	for _, key := range req.RawStatKeys {
		if !known[key] {
			result.SkippedKeys = append(result.SkippedKeys, key)
			continue
		}

		// The raw box-score value is only known after the game ends.
		result.Features = append(result.Features, rawFeature(key))

		if req.IncludeRolling {
			result.Features = append(result.Features, rollingFeature(key, window))
			result.Features = append(result.Features, ratioFeature(key, window))
		}
	}

	result.Summary = buildSummary(result)
	return result, nil
}

func restDaysFeature() models.GeneratedFeature {
	return models.GeneratedFeature{
		Name:     "rest_days",
		Formula:  "calendar days since the team's previous game this season",
		Category: models.CategoryRest,
		Group:    "schedule",
		Timing:   models.TimingPreGame,
	}
}

func rawFeature(key string) models.GeneratedFeature {
	return models.GeneratedFeature{
		Name:     key,
		Formula:  fmt.Sprintf("final box-score %s", key),
		Category: models.CategoryRaw,
		Group:    key,
		Timing:   models.TimingPostGame,
	}
}

func rollingFeature(key string, window int) models.GeneratedFeature {
	return models.GeneratedFeature{
		Name:     fmt.Sprintf("%s_roll%d", key, window),
		Formula:  fmt.Sprintf("mean of %s over the team's previous %d games", key, window),
		Category: models.CategoryRolling,
		Group:    key,
		Timing:   models.TimingPreGame,
	}
}

func ratioFeature(key string, window int) models.GeneratedFeature {
	return models.GeneratedFeature{
		Name:     fmt.Sprintf("%s_roll%d_vs_league", key, window),
		Formula:  fmt.Sprintf("team rolling mean of %s divided by the league running mean before tip-off", key),
		Category: models.CategoryRatio,
		Group:    key,
		Timing:   models.TimingPreGame,
	}
}

func buildSummary(result Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "generated %d features", len(result.Features))
	if len(result.SkippedKeys) > 0 {
		fmt.Fprintf(&b, "; skipped unknown stat keys: %s", strings.Join(result.SkippedKeys, ", "))
	}
	return b.String()
}

// FilterForContext returns features usable in the run context, preserving
// declaration order. Post-game features drop out of deployable runs.
func FilterForContext(features []models.GeneratedFeature, ctx models.RunContext) (usable, excluded []models.GeneratedFeature) {
	for _, f := range features {
		if f.UsableIn(ctx) {
			usable = append(usable, f)
		} else {
			excluded = append(excluded, f)
		}
	}
	return usable, excluded
}
