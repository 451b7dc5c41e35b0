package agents

import (
	"context"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/forecast"
	"github.com/dyike/FinSage/internal/models"
)

const (
	forecastHorizonDays = 7
	noTransactionData   = "No transaction data available"
)

// Analyst computes metrics, spending patterns, a narrative and an income
// forecast.
type Analyst struct {
	deps Deps
}

func NewAnalyst(deps Deps) *Analyst {
	return &Analyst{deps: deps.withDefaults()}
}

func (a *Analyst) Name() string { return consts.Analyst }

func (a *Analyst) Process(ctx context.Context, state *models.AnalysisState) error {
	out := &models.FinancialAnalysis{Timestamp: a.deps.Now()}
	if len(state.Transactions) == 0 {
		out.Error = noTransactionData
		state.FinancialAnalysis = out
		return nil
	}

	m := analysis.CalculateMetrics(state.Transactions)
	patterns := analysis.AnalyzePatterns(state.Transactions, a.deps.Currency)

	vars := metricVars(m, a.deps.Currency)
	vars["patterns"] = patterns.Summary
	insights, _ := complete(ctx, a.deps, "analyst", vars, analysis.FallbackInsights(m, a.deps.Currency))
	if insights.HealthAssessment == "" {
		insights = analysis.FallbackInsights(m, a.deps.Currency)
	}

	out.Metrics = &m
	out.Patterns = &patterns
	out.Insights = &insights
	out.IncomeForecast = a.forecastIncome(ctx, state)

	state.FinancialAnalysis = out
	return nil
}

func (a *Analyst) forecastIncome(ctx context.Context, state *models.AnalysisState) []models.ForecastPoint {
	series := forecast.DailySeries(state.Transactions, models.KindInflow)
	if len(series) == 0 {
		return nil
	}
	res := external.Call(ctx, "forecaster", a.deps.External, func(ctx context.Context) ([]models.ForecastPoint, error) {
		return a.deps.Forecaster.Forecast(ctx, series, forecastHorizonDays)
	}, nil)
	if !res.OK() {
		a.deps.Logger.Warn().Err(res.Err).Str("user_id", state.UserID).Msg("income forecast unavailable")
	}
	return res.Value
}
