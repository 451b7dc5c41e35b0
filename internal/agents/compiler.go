package agents

import (
	"context"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/models"
)

// Compiler derives the health score and executive summary and attaches the
// final report to the state.
type Compiler struct {
	deps Deps
}

func NewCompiler(deps Deps) *Compiler {
	return &Compiler{deps: deps.withDefaults()}
}

func (c *Compiler) Name() string { return consts.Compiler }

func (c *Compiler) Process(_ context.Context, state *models.AnalysisState) error {
	state.Report = analysis.CompileReport(state, c.deps.Now())
	return nil
}
