package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/internal/agents"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/models"
)

// RunResult is the report of one run plus the per-stage outcome.
type RunResult struct {
	Report *models.Report
	Events []StageEvent
}

type Option func(*options)

type options struct {
	logger    zerolog.Logger
	overrides map[string]agents.Stage
	handlers  []callbacks.Handler
	now       func() time.Time
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStage replaces the default stage that has the same name.
func WithStage(s agents.Stage) Option {
	return func(o *options) { o.overrides[s.Name()] = s }
}

// WithCallbacks attaches eino callback handlers to every run.
func WithCallbacks(h ...callbacks.Handler) Option {
	return func(o *options) { o.handlers = append(o.handlers, h...) }
}

func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// AnalysisGraph runs the six pipeline stages for one request at a time per
// call. It holds no per-run state and is safe for concurrent use.
type AnalysisGraph struct {
	runnable compose.Runnable[*models.AnalysisState, *models.AnalysisState]
	logger   zerolog.Logger
	handlers []callbacks.Handler
	now      func() time.Time
}

func NewAnalysisGraph(ctx context.Context, deps agents.Deps, opts ...Option) (*AnalysisGraph, error) {
	o := &options{
		logger:    deps.Logger,
		overrides: map[string]agents.Stage{},
		now:       deps.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	deps.Logger = o.logger
	deps.Now = o.now

	stages := agents.NewStages(deps)
	for i, s := range stages {
		if override, ok := o.overrides[s.Name()]; ok {
			stages[i] = override
		}
	}

	runnable, err := NewAnalysisOrchestrator(ctx, stages, o.logger)
	if err != nil {
		return nil, fmt.Errorf("build analysis graph: %w", err)
	}
	return &AnalysisGraph{
		runnable: runnable,
		logger:   o.logger,
		handlers: o.handlers,
		now:      o.now,
	}, nil
}

// Analyze runs the pipeline and returns the report. Only invalid preferences
// fail the call; stage failures are recorded in Report.Errors.
func (g *AnalysisGraph) Analyze(ctx context.Context, userID string, txns []models.Transaction, prefs models.Preferences) (*models.Report, error) {
	res, err := g.Run(ctx, userID, txns, prefs)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

func (g *AnalysisGraph) Run(ctx context.Context, userID string, txns []models.Transaction, prefs models.Preferences) (*RunResult, error) {
	prefs = prefs.WithDefaults()
	if err := models.ValidatePreferences(prefs); err != nil {
		return nil, err
	}

	state := models.NewAnalysisState(userID, txns, prefs)
	state.StartedAt = g.now()
	log := g.logger.With().Str("user_id", userID).Logger()
	log.Info().Int("transactions", len(txns)).Msg("analysis started")

	ctx, events := withEventLog(ctx)
	var invokeOpts []compose.Option
	if len(g.handlers) > 0 {
		invokeOpts = append(invokeOpts, compose.WithCallbacks(g.handlers...))
	}

	out, err := g.runnable.Invoke(ctx, state, invokeOpts...)
	if err != nil {
		// The stage wrappers never return errors, so this is the graph
		// runtime itself; keep whatever the stages produced.
		log.Error().Err(err).Msg("graph invoke failed")
		state.AddError(fmt.Sprintf("Pipeline error: %v", err))
		out = state
	}
	if out.Report == nil {
		out.Report = g.safeReport(out)
	}

	log.Info().Float64("health_score", out.Report.HealthScore).Int("errors", len(out.Report.Errors)).Msg("analysis finished")
	return &RunResult{Report: out.Report, Events: events.snapshot()}, nil
}

// safeReport compiles a report when the compiler stage did not, falling back
// to a bare report carrying the errors.
func (g *AnalysisGraph) safeReport(state *models.AnalysisState) (report *models.Report) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Interface("panic", r).Msg("report compilation panicked")
			errs := make([]string, len(state.Errors))
			copy(errs, state.Errors)
			report = &models.Report{
				UserID:      state.UserID,
				GeneratedAt: g.now(),
				Errors:      errs,
				ExecutiveSummary: models.ExecutiveSummary{
					OverallStatus:   analysis.OverallStatus(0),
					TopInsights:     []string{},
					PriorityActions: []string{},
					CriticalAlerts:  []models.Alert{},
					RiskLevel:       "Unknown",
				},
			}
		}
	}()
	return analysis.CompileReport(state, g.now())
}
