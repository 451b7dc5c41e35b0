package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/FinSage/internal/display"
	"github.com/dyike/FinSage/internal/ingest"
)

// Analyzer loads transactions, runs the analysis graph and records the run
type Analyzer struct {
	app *App
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(a *App) *Analyzer {
	return &Analyzer{app: a}
}

// RunAnalysis runs the full pipeline for one transactions file
func (an *Analyzer) RunAnalysis(ctx context.Context, sel UserSelections) (*AnalysisOutcome, error) {
	if strings.TrimSpace(sel.File) == "" {
		return nil, fmt.Errorf("transactions file is required")
	}
	if sel.UserID == "" {
		sel.UserID = defaultUserID
	}

	txns, err := ingest.LoadFile(sel.File)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	rt, err := an.app.Runtime()
	if err != nil {
		return nil, err
	}
	engine := rt.Engine()

	log := an.app.logger.With().Str("user_id", sel.UserID).Str("file", sel.File).Logger()
	log.Info().Int("transactions", len(txns)).Msg("starting analysis")

	res, err := engine.Graph.Run(ctx, sel.UserID, txns, sel.Preferences)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	outcome := &AnalysisOutcome{File: sel.File, Result: res}

	if !sel.NoRecord {
		rec, err := an.app.Recorder()
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		id, err := rec.Record(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		outcome.RunID = id
	}

	if sel.SavePath != "" {
		if err := display.SaveReport(res.Report, sel.SavePath); err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	log.Info().
		Str("run_id", outcome.RunID).
		Float64("health_score", res.Report.HealthScore).
		Int("errors", len(res.Report.Errors)).
		Msg("analysis finished")
	return outcome, nil
}
