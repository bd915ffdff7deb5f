package engine

import (
	"context"
	"time"

	"github.com/yourusername/theory-engine/internal/evaluate"
	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/metrics"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/snapshot"
)

// Analyze evaluates the cohort against the baseline and snapshots the result
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) (result *AnalyzeResult, err error) {
	started := time.Now()
	defer func() { observe("analyze", started, err) }()

	hash, err := snapshot.ContentHash(models.RunAnalyze, req)
	if err != nil {
		return nil, err
	}
	e.runLog.LogRunStarted(string(models.RunAnalyze), string(req.Filters.League), hash, 0)

	feats, mat, err := e.prepare(ctx, req, req.Filters, req.Target, req.Features, req.Cleaning)
	if err != nil {
		return nil, err
	}

	evaluation := e.evaluator.Evaluate(mat.Baseline, mat.Cohort, req.Target, mat.DroppedMissingOdds)
	for _, note := range evaluation.Notes {
		e.runLog.LogInsufficientData("evaluate", string(note.Code), note.Message)
	}

	correlations := evaluate.Correlations(mat.Cohort, feats.Features)
	result = &AnalyzeResult{
		ContentHash:    hash,
		Evaluation:     evaluation,
		Correlations:   correlations,
		Insights:       evaluate.Insights(evaluation, correlations),
		Cleaning:       mat.Cleaning,
		FeatureSummary: feats.Summary,
	}

	snap, err := e.commit(ctx, models.RunAnalyze, req.Filters.League, req, result)
	if err != nil {
		return nil, err
	}
	result.RunID = snap.ID
	return result, nil
}

// BuildModel runs the full pipeline: evaluate, fit, simulate, and optionally
// bootstrap. Later stages failing never discards earlier results; the
// partial result ships with notes explaining what is missing.
func (e *Engine) BuildModel(ctx context.Context, req BuildModelRequest) (result *BuildModelResult, err error) {
	started := time.Now()
	defer func() { observe("build_model", started, err) }()

	hash, err := snapshot.ContentHash(models.RunBuildModel, req)
	if err != nil {
		return nil, err
	}
	e.runLog.LogRunStarted(string(models.RunBuildModel), string(req.Filters.League), hash, 0)

	feats, mat, err := e.prepare(ctx, req, req.Filters, req.Target, req.Features, req.Cleaning)
	if err != nil {
		return nil, err
	}

	runCtx := req.RunContext
	if runCtx == "" {
		runCtx = models.ContextDeployable
	}
	usable, excluded := features.FilterForContext(feats.Features, runCtx)

	result = &BuildModelResult{
		ContentHash:    hash,
		Evaluation:     e.evaluator.Evaluate(mat.Baseline, mat.Cohort, req.Target, mat.DroppedMissingOdds),
		Cleaning:       mat.Cleaning,
		FeatureSummary: feats.Summary,
	}
	for _, f := range excluded {
		result.ExcludedFeatures = append(result.ExcludedFeatures, f.Name)
	}

	result.Model = e.modeler.Fit(mat.Cohort, usable, req.Target)
	result.Notes = append(result.Notes, result.Model.Notes...)

	if result.Model.Available {
		assumption := req.Target.OddsAssumed
		if assumption == "" {
			assumption = models.OddsUseClosing
		}
		sim, simErr := e.sim.Run(mat.Cohort, result.Model, req.Trigger, req.Exposure, assumption)
		if simErr != nil {
			return nil, simErr
		}
		result.Simulation = sim
		result.Notes = append(result.Notes, sim.Notes...)

		if req.MonteCarlo {
			mcStarted := time.Now()
			result.MonteCarlo = e.mc.Run(ctx, sim.Outcomes(), sim.FinalPnL, snapshot.SeedFromHash(hash))
			metrics.RecordMonteCarloDuration(time.Since(mcStarted).Seconds())
			result.Notes = append(result.Notes, result.MonteCarlo.Notes...)
		}
	}

	for _, note := range result.Notes {
		e.runLog.LogInsufficientData("build_model", string(note.Code), note.Message)
	}

	snap, err := e.commit(ctx, models.RunBuildModel, req.Filters.League, req, result)
	if err != nil {
		return nil, err
	}
	result.RunID = snap.ID
	return result, nil
}

// RunWalkforward validates edge persistence over rolling windows
func (e *Engine) RunWalkforward(ctx context.Context, req WalkforwardRequest) (result *WalkforwardResult, err error) {
	started := time.Now()
	defer func() { observe("walkforward", started, err) }()

	if err = e.validate.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err = req.Filters.Validate(); err != nil {
		return nil, err
	}

	hash, err := snapshot.ContentHash(models.RunWalkforward, req)
	if err != nil {
		return nil, err
	}
	e.runLog.LogRunStarted(string(models.RunWalkforward), string(req.Filters.League), hash, 0)

	feats, err := features.Generate(ctx, e.store, featureRequestFor(req.Filters.League, req.Features))
	if err != nil {
		return nil, err
	}

	validation, err := e.wf.Run(ctx, req.Filters, req.Target, feats.Features, req.Cleaning, req.Trigger, req.Exposure, req.Window)
	if err != nil {
		return nil, err
	}
	for _, note := range validation.Notes {
		e.runLog.LogInsufficientData("walkforward", string(note.Code), note.Message)
	}

	result = &WalkforwardResult{
		ContentHash:    hash,
		Validation:     validation,
		FeatureSummary: feats.Summary,
	}

	snap, err := e.commit(ctx, models.RunWalkforward, req.Filters.League, req, result)
	if err != nil {
		return nil, err
	}
	result.RunID = snap.ID
	return result, nil
}
