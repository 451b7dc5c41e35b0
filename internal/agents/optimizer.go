package agents

import (
	"context"
	"fmt"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/models"
)

const (
	optimizerConfidence = 0.8
	noOptimizationData  = "No financial data for optimization"
	ruleBasedNote       = "Rule-based allocation applied"
)

// Optimizer turns the analyst's metrics into a budget allocation and advice.
type Optimizer struct {
	deps      Deps
	allocator *analysis.BudgetAllocator
}

func NewOptimizer(deps Deps) *Optimizer {
	deps = deps.withDefaults()
	return &Optimizer{
		deps:      deps,
		allocator: analysis.NewBudgetAllocator(deps.Policy, deps.External),
	}
}

func (o *Optimizer) Name() string { return consts.Optimizer }

func (o *Optimizer) Process(ctx context.Context, state *models.AnalysisState) error {
	m := state.Metrics()
	if m == nil {
		state.BudgetRecommendation = &models.BudgetRecommendation{Error: noOptimizationData}
		return nil
	}

	prefs := state.Preferences.WithDefaults()
	target := m.TotalIncome * prefs.TargetSavingsRate
	spendable := m.TotalIncome - target

	profile := analysis.BuildProfile(*m, state.Transactions, prefs)
	res := o.allocator.Allocate(ctx, profile.Vector(), spendable, prefs.RiskTolerance)

	explanations := analysis.ExplainAllocation(res.Amounts, m.IncomeVolatility)
	if res.Source == models.SourceRuleBased {
		o.deps.Logger.Warn().Err(res.PolicyErr).Str("user_id", state.UserID).Msg("allocation policy unavailable, using rule-based split")
		explanations = append(explanations, ruleBasedNote)
	}

	vars := metricVars(*m, o.deps.Currency)
	vars["target_savings"] = num(target)
	vars["target_rate"] = fmt.Sprintf("%.0f", prefs.TargetSavingsRate*100)
	vars["spendable_budget"] = num(spendable)
	vars["allocation"] = analysis.FormatAllocation(res.Amounts, o.deps.Currency)
	fallback := analysis.FallbackBudgetAdvice(res.Amounts, *m, o.deps.Currency)
	advice, _ := complete(ctx, o.deps, "optimizer", vars, fallback)
	if advice.Assessment == "" {
		advice = fallback
	}

	state.BudgetRecommendation = &models.BudgetRecommendation{
		Allocation:      res.Amounts,
		Source:          res.Source,
		TargetSavings:   target,
		SpendableBudget: spendable,
		Advice:          &advice,
		Explanations:    explanations,
		Confidence:      optimizerConfidence,
	}
	return nil
}
