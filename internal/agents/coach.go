package agents

import (
	"context"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/models"
)

const noSavingsData = "No data for savings strategy"

// Coach builds the savings plan, milestones and challenges.
type Coach struct {
	deps Deps
}

func NewCoach(deps Deps) *Coach {
	return &Coach{deps: deps.withDefaults()}
}

func (c *Coach) Name() string { return consts.Coach }

func (c *Coach) Process(ctx context.Context, state *models.AnalysisState) error {
	m := state.Metrics()
	if m == nil {
		state.SavingsStrategy = &models.SavingsStrategy{Error: noSavingsData}
		return nil
	}

	target := m.TotalIncome * state.Preferences.WithDefaults().TargetSavingsRate
	if b := state.BudgetRecommendation; b != nil && b.Error == "" {
		target = b.TargetSavings
	}

	vars := metricVars(*m, c.deps.Currency)
	vars["target_savings"] = num(target)
	fallback := analysis.FallbackSavingsPlan(*m, target, c.deps.Currency)
	plan, _ := complete(ctx, c.deps, "coach", vars, fallback)
	if plan.Encouragement == "" || len(plan.MicroActions) == 0 {
		plan = fallback
	}

	state.SavingsStrategy = &models.SavingsStrategy{
		Plan:       &plan,
		Milestones: analysis.Milestones(target),
		Challenges: analysis.Challenges(c.deps.Currency),
		CurrentProgress: models.SavingsProgress{
			SavingsRate:    m.SavingsRate,
			MonthlySavings: m.NetCashFlow,
			TargetSavings:  target,
		},
	}
	return nil
}
