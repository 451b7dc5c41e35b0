package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/internal/models"
)

func TestComputeHealthGigMonth(t *testing.T) {
	m := CalculateMetrics(gigMonth())
	risk := &models.RiskAssessment{OverallRiskScore: 0.26}

	h := ComputeHealth(&m, risk)

	assert.Equal(t, 30.0, h.Savings)
	assert.Equal(t, 25.0, h.CashFlow)
	assert.InDelta(t, 18.5, h.Risk, 1e-9)
	assert.InDelta(t, 2.667, h.Tracking, 1e-3)
	assert.Equal(t, 76.2, h.Total)
	assert.Equal(t, "🌟 Excellent", OverallStatus(h.Total))
}

func TestComputeHealthWithoutData(t *testing.T) {
	h := ComputeHealth(nil, nil)
	assert.Equal(t, 12.5, h.Total)

	failed := ComputeHealth(nil, &models.RiskAssessment{Error: "No data for risk assessment"})
	assert.Equal(t, 12.5, failed.Total)
}

func TestComputeHealthRange(t *testing.T) {
	tests := []struct {
		name string
		m    models.Metrics
		risk float64
	}{
		{"deep deficit", models.Metrics{TotalIncome: 100, NetCashFlow: -900, SavingsRate: -900}, 1},
		{"no income", models.Metrics{NetCashFlow: -500, TransactionCount: 3}, 0.9},
		{"perfect", models.Metrics{TotalIncome: 100, NetCashFlow: 100, SavingsRate: 100, TransactionCount: 500}, 0},
		{"out of range risk", models.Metrics{TotalIncome: 100, NetCashFlow: 10, SavingsRate: 10}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ComputeHealth(&tt.m, &models.RiskAssessment{OverallRiskScore: tt.risk})
			assert.GreaterOrEqual(t, h.Total, 0.0)
			assert.LessOrEqual(t, h.Total, 100.0)
			assert.GreaterOrEqual(t, h.Savings, 0.0)
		})
	}
}

func TestStatusBand(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "🌟 Excellent"},
		{75, "🌟 Excellent"},
		{74.9, "✅ Good"},
		{60, "✅ Good"},
		{40, "⚠️ Fair"},
		{39.9, "🚨 Needs Attention"},
		{0, "🚨 Needs Attention"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OverallStatus(tt.score), "score %.1f", tt.score)
	}
}

func fullState() *models.AnalysisState {
	state := models.NewAnalysisState("u1", gigMonth(), models.DefaultPreferences())
	m := CalculateMetrics(state.Transactions)
	state.FinancialAnalysis = &models.FinancialAnalysis{
		Metrics:  &m,
		Insights: &models.Insights{KeyFindings: []string{"f1", "f2", "f3", "f4"}},
	}
	state.SavingsStrategy = &models.SavingsStrategy{
		Plan: &models.SavingsPlan{MicroActions: []string{"a1", "a2", "a3"}},
	}
	state.RiskAssessment = &models.RiskAssessment{
		OverallRiskScore: 0.26,
		Narrative: &models.RiskNarrative{
			OverallRiskLevel: "Low",
			PriorityRisks: []models.PriorityRisk{
				{Risk: "Cash Flow Risk", Mitigation: "m1", Timeline: TimelineImmediate},
			},
		},
	}
	state.BudgetRecommendation = &models.BudgetRecommendation{
		TargetSavings: 6000,
		Advice:        &models.BudgetAdvice{Adjustments: []string{"b1", "b2"}},
	}
	state.MonitoringAlerts = &models.MonitoringAlerts{Alerts: []models.Alert{
		{Severity: models.SeverityUrgent, Message: "u1"},
		{Severity: models.SeverityWarning, Message: "w1"},
		{Severity: models.SeverityWarning, Message: "w2"},
		{Severity: models.SeverityWarning, Message: "w3"},
		{Severity: models.SeverityInfo, Message: "i1"},
	}}
	return state
}

func TestPriorityActions(t *testing.T) {
	state := fullState()
	assert.Equal(t, []string{"a1", "a2", "m1", "b1"}, PriorityActions(state))

	state.RiskAssessment.Narrative.PriorityRisks[0].Timeline = "3-months"
	assert.Equal(t, []string{"a1", "a2", "b1"}, PriorityActions(state))

	assert.Empty(t, PriorityActions(models.NewAnalysisState("u1", nil, models.DefaultPreferences())))
}

func TestBuildExecutiveSummary(t *testing.T) {
	s := BuildExecutiveSummary(fullState(), 76.2)

	assert.Equal(t, "🌟 Excellent", s.OverallStatus)
	assert.Equal(t, []string{"f1", "f2", "f3"}, s.TopInsights)
	require.Len(t, s.CriticalAlerts, 3)
	assert.Equal(t, "u1", s.CriticalAlerts[0].Message)
	assert.Equal(t, "w2", s.CriticalAlerts[2].Message)
	assert.Equal(t, 6000.0, s.SavingsTarget)
	assert.Equal(t, "Low", s.RiskLevel)
	assert.Equal(t, 30000.0, s.KeyMetrics.MonthlyIncome)
}

func TestBuildExecutiveSummaryEmptyState(t *testing.T) {
	s := BuildExecutiveSummary(models.NewAnalysisState("u1", nil, models.DefaultPreferences()), 12.5)

	assert.Equal(t, "Unknown", s.RiskLevel)
	assert.NotNil(t, s.TopInsights)
	assert.NotNil(t, s.CriticalAlerts)
	assert.Equal(t, "🚨 Needs Attention", s.OverallStatus)
}

func TestCompileReport(t *testing.T) {
	state := fullState()
	state.AddError("Coach error: boom")
	now := state.StartedAt.Add(2 * time.Second)

	r := CompileReport(state, now)

	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, 76.2, r.HealthScore)
	assert.InDelta(t, 2.0, r.DurationSeconds, 1e-9)
	assert.Equal(t, []string{"Coach error: boom"}, r.Errors)
	assert.Same(t, state.RiskAssessment, r.RiskProfile)

	state.AddError("later")
	assert.Len(t, r.Errors, 1)
}
