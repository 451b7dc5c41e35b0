package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/internal/models"
)

func TestRiskStepFunctions(t *testing.T) {
	tests := []struct {
		name  string
		score models.RiskScore
		want  float64
		level models.RiskLevel
	}{
		{"stable income", ScoreIncomeStability(0.1), 0.1, models.RiskLevelLow},
		{"moderate volatility", ScoreIncomeStability(0.2), 0.3, models.RiskLevelMedium},
		{"high volatility", ScoreIncomeStability(0.5), 0.6, models.RiskLevelHigh},
		{"erratic income", ScoreIncomeStability(0.6), 0.9, models.RiskLevelCritical},
		{"strong cash flow", ScoreCashFlow(3000, 10000, DefaultCurrency), 0.1, models.RiskLevelLow},
		{"thin cash flow", ScoreCashFlow(1000, 10000, DefaultCurrency), 0.3, models.RiskLevelMedium},
		{"slight deficit", ScoreCashFlow(-500, 10000, DefaultCurrency), 0.6, models.RiskLevelHigh},
		{"deep deficit", ScoreCashFlow(-2000, 10000, DefaultCurrency), 0.9, models.RiskLevelCritical},
		{"no income deficit", ScoreCashFlow(-100, 0, DefaultCurrency), 0.9, models.RiskLevelCritical},
		{"savings 20", ScoreSavings(20), 0.1, models.RiskLevelLow},
		{"savings 10", ScoreSavings(10), 0.3, models.RiskLevelMedium},
		{"savings 0", ScoreSavings(0), 0.6, models.RiskLevelHigh},
		{"dissaving", ScoreSavings(-5), 0.9, models.RiskLevelCritical},
		{"six months", ScoreEmergencyFund(6), 0.1, models.RiskLevelLow},
		{"three months", ScoreEmergencyFund(3), 0.3, models.RiskLevelMedium},
		{"one month", ScoreEmergencyFund(1), 0.6, models.RiskLevelHigh},
		{"no fund", ScoreEmergencyFund(0), 0.9, models.RiskLevelCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.score.Score)
			assert.Equal(t, tt.level, tt.score.Level)
		})
	}
}

func TestOverallRiskBounds(t *testing.T) {
	best := ScoreRisks(models.Metrics{TotalIncome: 1000, NetCashFlow: 500, SavingsRate: 50}, 12, DefaultCurrency)
	worst := ScoreRisks(models.Metrics{TotalIncome: 1000, NetCashFlow: -900, SavingsRate: -90, IncomeVolatility: 2}, 0, DefaultCurrency)

	assert.InDelta(t, 0.1, OverallRisk(best), 1e-9)
	assert.InDelta(t, 0.9, OverallRisk(worst), 1e-9)
	assert.Equal(t, models.RiskLevelLow, OverallRiskLevel(OverallRisk(best)))
	assert.Equal(t, models.RiskLevelCritical, OverallRiskLevel(OverallRisk(worst)))
	assert.Equal(t, 0.0, OverallRisk(nil))
}

func TestScoreRisksGigMonth(t *testing.T) {
	scores := ScoreRisks(CalculateMetrics(gigMonth()), 0, DefaultCurrency)

	assert.Equal(t, models.RiskLevelLow, scores[models.RiskIncomeStability].Level)
	assert.Equal(t, models.RiskLevelLow, scores[models.RiskCashFlow].Level)
	assert.Equal(t, models.RiskLevelLow, scores[models.RiskSavings].Level)
	assert.Equal(t, models.RiskLevelCritical, scores[models.RiskEmergencyFund].Level)
	assert.Equal(t, "Net cash flow: ₹14000.00", scores[models.RiskCashFlow].Description)
	assert.Equal(t, "Emergency fund: 0 months coverage", scores[models.RiskEmergencyFund].Description)
	// 0.1*0.3 + 0.1*0.3 + 0.1*0.2 + 0.9*0.2
	assert.InDelta(t, 0.26, OverallRisk(scores), 1e-9)
}

func TestRankRisksTieBreak(t *testing.T) {
	scores := map[string]models.RiskScore{
		models.RiskIncomeStability: {Score: 0.3, Level: models.RiskLevelMedium},
		models.RiskCashFlow:        {Score: 0.1, Level: models.RiskLevelLow},
		models.RiskSavings:         {Score: 0.3, Level: models.RiskLevelMedium},
		models.RiskEmergencyFund:   {Score: 0.9, Level: models.RiskLevelCritical},
	}
	n := RankRisks(scores)

	require.Len(t, n.PriorityRisks, 3)
	assert.Equal(t, "Emergency Fund Risk", n.PriorityRisks[0].Risk)
	assert.Equal(t, "Income Stability Risk", n.PriorityRisks[1].Risk)
	assert.Equal(t, "Savings Risk", n.PriorityRisks[2].Risk)
	assert.Equal(t, "1-month", n.PriorityRisks[2].Timeline)
	assert.Equal(t, "Critical", n.PriorityRisks[0].Severity)
	// 0.09 + 0.03 + 0.06 + 0.18
	assert.Equal(t, string(models.RiskLevelMedium), n.OverallRiskLevel)
}

func TestRankRisksCashFlowIsImmediate(t *testing.T) {
	scores := ScoreRisks(models.Metrics{TotalIncome: 1000, NetCashFlow: -500, SavingsRate: -50}, 6, DefaultCurrency)
	n := RankRisks(scores)

	require.NotEmpty(t, n.PriorityRisks)
	assert.Equal(t, "Cash Flow Risk", n.PriorityRisks[0].Risk)
	assert.Equal(t, TimelineImmediate, n.PriorityRisks[0].Timeline)
}
