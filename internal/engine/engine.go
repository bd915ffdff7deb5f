// Package engine orchestrates the analysis pipeline behind the public
// operations: feature generation, analyze, model building, walk-forward
// validation, and snapshot retrieval.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/cohort"
	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/evaluate"
	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/gamestore"
	"github.com/yourusername/theory-engine/internal/logger"
	"github.com/yourusername/theory-engine/internal/metrics"
	"github.com/yourusername/theory-engine/internal/model"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/montecarlo"
	"github.com/yourusername/theory-engine/internal/simulate"
	"github.com/yourusername/theory-engine/internal/snapshot"
	"github.com/yourusername/theory-engine/internal/walkforward"
)

// Engine wires the pipeline stages together
type Engine struct {
	cfg       *config.Config
	store     gamestore.Store
	snapshots *snapshot.Store
	builder   *cohort.Builder
	evaluator *evaluate.Evaluator
	modeler   *model.Builder
	sim       *simulate.Simulator
	mc        *montecarlo.Engine
	wf        *walkforward.Validator
	validate  *config.CustomValidator
	log       *logrus.Entry
	runLog    *logger.RunLogger
}

// New creates the engine from its configuration and stores
func New(cfg *config.Config, store gamestore.Store, snapshots *snapshot.Store, baseLogger *logrus.Logger) *Engine {
	builder := cohort.NewBuilder(store, baseLogger)
	modeler := model.NewBuilder(cfg.Engine, baseLogger)
	sim := simulate.NewSimulator(baseLogger)

	return &Engine{
		cfg:       cfg,
		store:     store,
		snapshots: snapshots,
		builder:   builder,
		evaluator: evaluate.NewEvaluator(evaluate.PolicyFromConfig(cfg.Engine), baseLogger),
		modeler:   modeler,
		sim:       sim,
		mc:        montecarlo.NewEngine(cfg.Engine, baseLogger),
		wf:        walkforward.NewValidator(builder, modeler, sim, cfg.Engine.WorkerCount, baseLogger),
		validate:  config.NewValidator(),
		log:       baseLogger.WithField("component", "engine"),
		runLog:    logger.NewRunLogger(baseLogger),
	}
}

// GenerateFeatures derives the feature list for a league without touching
// game rows.
func (e *Engine) GenerateFeatures(ctx context.Context, req GenerateFeaturesRequest) (*features.Result, error) {
	if err := e.validate.ValidateStruct(req); err != nil {
		return nil, err
	}
	result, err := features.Generate(ctx, e.store, req.featureRequest())
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRun returns one run snapshot by id
func (e *Engine) GetRun(ctx context.Context, id uuid.UUID) (*models.RunSnapshot, error) {
	return e.snapshots.Get(ctx, id)
}

// ListRuns returns the most recent snapshots
func (e *Engine) ListRuns(ctx context.Context, limit int) ([]*models.RunSnapshot, error) {
	return e.snapshots.List(ctx, limit)
}

// prepare validates a request, generates its features, and materializes the
// baseline and cohort rows. Every operation funnels through here.
func (e *Engine) prepare(ctx context.Context, req any, filters models.TheoryFilters, target models.TargetDefinition, spec FeatureSpec, clean models.CleaningOptions) (*features.Result, *cohort.Materialized, error) {
	if err := e.validate.ValidateStruct(req); err != nil {
		return nil, nil, err
	}
	if err := filters.Validate(); err != nil {
		return nil, nil, err
	}

	feats, err := features.Generate(ctx, e.store, featureRequestFor(filters.League, spec))
	if err != nil {
		return nil, nil, err
	}

	mat, err := e.builder.Build(ctx, filters, target, feats.Features, clean, e.cfg.Engine.WorkerCount)
	if err != nil {
		return nil, nil, err
	}

	e.runLog.LogCleaning(mat.Cleaning.RawRows, mat.Cleaning.RowsAfterCleaning,
		mat.Cleaning.DroppedNull, mat.Cleaning.DroppedNonNumeric)
	metrics.UpdateCohortSize(string(filters.League), float64(len(mat.Cohort)))
	return &feats, mat, nil
}

// commit writes the run snapshot after the whole pipeline succeeded. A
// cancelled context never produces a partial snapshot.
func (e *Engine) commit(ctx context.Context, kind models.RunKind, league models.League, input, result any) (*models.RunSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled before snapshot commit: %w", err)
	}
	snap, err := e.snapshots.Commit(ctx, kind, league, input, result)
	if err != nil {
		return nil, err
	}
	e.runLog.LogSnapshotWritten(snap.ID.String(), snap.ContentHash)
	metrics.RecordSnapshotWritten()
	return snap, nil
}

// observe records the operation outcome in the metrics registry
func observe(operation string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecordRun(operation, status, time.Since(started).Seconds())
}
