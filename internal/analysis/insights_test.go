package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/internal/models"
)

func TestFallbackInsightsHealthy(t *testing.T) {
	m := models.Metrics{NetCashFlow: 14000, SavingsRate: 46.67, IncomeVolatility: 0.1, TransactionCount: 25}
	in := FallbackInsights(m, DefaultCurrency)

	assert.Equal(t, "Financial analysis complete. Positive cash flow of ₹14000.00.", in.HealthAssessment)
	assert.Equal(t, []string{"Savings rate: 46.7%", "Income volatility: 0.10", "25 transactions processed"}, in.KeyFindings)
	assert.Equal(t, []string{"Continue monitoring financial health"}, in.Concerns)
	assert.Equal(t, []string{"Maintaining positive cash flow", "Strong savings rate", "Good transaction tracking habits"}, in.Positives)
}

func TestFallbackInsightsStrained(t *testing.T) {
	m := models.Metrics{NetCashFlow: -2500, SavingsRate: -25, IncomeVolatility: 0.8, TransactionCount: 4}
	in := FallbackInsights(m, DefaultCurrency)

	assert.Equal(t, "Financial analysis complete. Negative cash flow of ₹2500.00 - expenses exceed income.", in.HealthAssessment)
	assert.Equal(t, []string{
		"Spending exceeds income",
		"High income volatility - build emergency fund",
		"Low savings rate - aim for 15-20%",
	}, in.Concerns)
	assert.Equal(t, []string{"Keep tracking your finances"}, in.Positives)
}

func TestMilestones(t *testing.T) {
	ms := Milestones(8000)

	assert.Len(t, ms, 4)
	assert.Equal(t, "Week 1", ms[0].Period)
	assert.Equal(t, 2000.0, ms[0].TargetAmount)
	assert.Equal(t, 8000.0, ms[3].TargetAmount)
	assert.Equal(t, "Month End", ms[3].Period)
}

func TestChallengesAreCopied(t *testing.T) {
	c := Challenges(DefaultCurrency)
	c[0].Name = "changed"
	assert.Equal(t, "No-Spend Weekend", Challenges(DefaultCurrency)[0].Name)
}

func TestChallengesUseCurrency(t *testing.T) {
	c := Challenges("$")
	require.Len(t, c, 4)
	assert.Equal(t, "$500-1000", c[0].PotentialSavings)
	assert.Equal(t, "Round up every payment to nearest $10 and save the difference", c[1].Description)
	for _, ch := range c {
		assert.NotContains(t, ch.Description+ch.PotentialSavings, "₹")
	}
	assert.Equal(t, "₹300-500/month", Challenges(DefaultCurrency)[1].PotentialSavings)
}

func TestFallbackSavingsPlanUsesCurrency(t *testing.T) {
	plan := FallbackSavingsPlan(models.Metrics{TotalIncome: 30000}, 6000, "$")
	assert.Contains(t, plan.MicroActions, "Brew coffee at home instead of café (save $100/day)")
	assert.Contains(t, plan.MicroActions, "Pack lunch twice this week (save $200)")
	for _, a := range plan.MicroActions {
		assert.NotContains(t, a, "₹")
	}
}

func TestFallbackSavingsPlan(t *testing.T) {
	tests := []struct {
		name          string
		m             models.Metrics
		target        float64
		encouragement string
		goal          float64
	}{
		{
			name:          "strong saver",
			m:             models.Metrics{TotalIncome: 30000, SavingsRate: 46.7},
			target:        6000,
			encouragement: "Amazing! You're already saving 46.7% - that's better than most people. Let's push it even further!",
			goal:          6000,
		},
		{
			name:          "starting out",
			m:             models.Metrics{TotalIncome: 10000, SavingsRate: 7},
			target:        2000,
			encouragement: "Good start with 7.0% savings rate. Small improvements can make a big difference!",
			goal:          2000,
		},
		{
			name:          "first rupee",
			m:             models.Metrics{TotalIncome: 10000, SavingsRate: 2},
			target:        1000,
			encouragement: "You've started saving - that's the hardest part! Now let's build on this foundation.",
			goal:          1000,
		},
		{
			name:          "ambitious target",
			m:             models.Metrics{TotalIncome: 10000, SavingsRate: -3},
			target:        4000,
			encouragement: "Every savings journey starts with a single rupee. Today is your day one!",
			goal:          1500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := FallbackSavingsPlan(tt.m, tt.target, DefaultCurrency)

			assert.Equal(t, tt.encouragement, plan.Encouragement)
			assert.Equal(t, tt.goal, plan.PrimaryGoal.Amount)
			assert.Len(t, plan.MicroActions, 5)
			assert.Len(t, plan.PsychologyTips, 3)
		})
	}
}

func TestFallbackSavingsPlanCelebration(t *testing.T) {
	plan := FallbackSavingsPlan(models.Metrics{TotalIncome: 30000}, 6000, DefaultCurrency)
	assert.Equal(t, "When you hit ₹6000, treat yourself to your favorite street food (₹50 max)!", plan.CelebrationMilestone)
	assert.Equal(t, "Your target is realistic - let's make it happen!", plan.PrimaryGoal.Description)
}
