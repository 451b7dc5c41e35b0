package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/forecast"
	"github.com/dyike/FinSage/internal/llm"
	"github.com/dyike/FinSage/internal/models"
	"github.com/dyike/FinSage/internal/policy"
	"github.com/dyike/FinSage/internal/utils"
)

// Stage is one step of the analysis pipeline. A stage writes only its own
// output block and replaces it as a whole, so a failed stage leaves the
// state as it found it.
type Stage interface {
	Name() string
	Process(ctx context.Context, state *models.AnalysisState) error
}

// StageError is recorded in the state when a stage fails or panics.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Deps are the collaborators shared by all stages. Nil services select the
// deterministic fallbacks.
type Deps struct {
	Generator  llm.TextGenerator
	Policy     policy.PolicyFunction
	Forecaster forecast.Forecaster
	External   external.Options
	Currency   string
	Logger     zerolog.Logger
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Currency == "" {
		d.Currency = analysis.DefaultCurrency
	}
	if d.Forecaster == nil {
		d.Forecaster = forecast.NewLinearForecaster()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.External.Timeout <= 0 {
		d.External = external.DefaultOptions()
	}
	return d
}

// NewStages builds the pipeline stages in execution order.
func NewStages(deps Deps) []Stage {
	deps = deps.withDefaults()
	return []Stage{
		NewAnalyst(deps),
		NewOptimizer(deps),
		NewRiskAssessor(deps),
		NewCoach(deps),
		NewMonitor(deps),
		NewCompiler(deps),
	}
}

var errGeneratorDisabled = errors.New("no text generator configured")

// complete asks the text generator for a JSON answer decoded into T. Any
// failure, including a missing generator, yields fallback and the cause.
func complete[T any](ctx context.Context, deps Deps, stage string, vars map[string]any, fallback T) (T, error) {
	if deps.Generator == nil {
		return fallback, errGeneratorDisabled
	}
	system, user, err := utils.RenderStagePrompt(ctx, stage, vars)
	if err != nil {
		deps.Logger.Error().Err(err).Str("stage", stage).Msg("render prompt")
		return fallback, err
	}

	res := external.Call(ctx, "llm", deps.External, func(ctx context.Context) (T, error) {
		text, err := deps.Generator.Complete(ctx, system, user)
		if err != nil {
			return fallback, err
		}
		v, err := llm.DecodeJSON[T](text)
		if err != nil {
			return fallback, external.NewServiceError("llm", external.CodeBadResponse, "decode completion", err)
		}
		return v, nil
	}, fallback)
	if !res.OK() {
		deps.Logger.Warn().Err(res.Err).Str("stage", stage).Msg("text generation failed, using fallback")
	}
	return res.Value, res.Err
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func metricVars(m models.Metrics, currency string) map[string]any {
	return map[string]any{
		"currency":          currency,
		"total_income":      num(m.TotalIncome),
		"total_expenses":    num(m.TotalExpenses),
		"net_cash_flow":     num(m.NetCashFlow),
		"savings_rate":      fmt.Sprintf("%.1f", m.SavingsRate),
		"income_volatility": num(m.IncomeVolatility),
		"transaction_count": m.TransactionCount,
		"income_count":      m.IncomeCount,
		"expense_count":     m.ExpenseCount,
	}
}
