package display

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/graph"
	"github.com/dyike/FinSage/internal/models"
	"github.com/dyike/FinSage/internal/storage/sqlite"
)

func sampleReport() *models.Report {
	return &models.Report{
		UserID:      "u1",
		HealthScore: 72.5,
		ExecutiveSummary: models.ExecutiveSummary{
			OverallStatus:   "Good",
			KeyMetrics:      models.KeyMetrics{MonthlyIncome: 30000, MonthlyExpenses: 16000, NetCashFlow: 14000, SavingsRate: 46.7},
			TopInsights:     []string{"Spending is steady"},
			PriorityActions: []string{"Build an emergency fund"},
			RiskLevel:       "Low",
		},
		BudgetPlan: &models.BudgetRecommendation{
			Allocation:      models.Allocation{"housing": 8000, "food_groceries": 4000},
			Source:          models.SourceRuleBased,
			SpendableBudget: 12000,
		},
		RiskProfile: &models.RiskAssessment{
			OverallRiskScore: 0.3,
			Scores: map[string]models.RiskScore{
				models.RiskSavings: {Score: 0.2, Level: models.RiskLevelLow, Description: "healthy"},
			},
		},
		SavingsPlan: &models.SavingsStrategy{Error: "coach unavailable"},
		Alerts: &models.MonitoringAlerts{
			Alerts: []models.Alert{{Kind: models.AlertDuplicate, Severity: models.SeverityWarning, Message: "Possible duplicate"}},
		},
		Errors: []string{"Coach error: boom"},
	}
}

func TestRenderIncludesSections(t *testing.T) {
	out := NewResultsDisplay("$").Render(sampleReport())

	for _, want := range []string{
		"u1",
		"Executive Summary",
		"72.5/100",
		"Build an emergency fund",
		"Budget Plan",
		"housing",
		"rule_based",
		"Risk Profile",
		"healthy",
		"coach unavailable",
		"Possible duplicate",
		"Coach error: boom",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderSkipsMissingSections(t *testing.T) {
	out := NewResultsDisplay("").Render(&models.Report{UserID: "u2"})
	assert.Contains(t, out, "Executive Summary")
	assert.NotContains(t, out, "Budget Plan")
	assert.NotContains(t, out, "Degraded stages")

	assert.Contains(t, NewResultsDisplay("").Render(nil), "no report")
}

func TestPrintWritesRender(t *testing.T) {
	var buf bytes.Buffer
	d := NewResultsDisplay("$")
	require.NoError(t, d.Print(&buf, sampleReport()))
	assert.Equal(t, d.Render(sampleReport()), buf.String())
}

func TestRenderStages(t *testing.T) {
	out := RenderStages([]graph.StageEvent{
		{Stage: consts.Analyst, Status: consts.State_Completed, Duration: time.Millisecond},
		{Stage: consts.Coach, Status: consts.State_Failed, Message: "Coach error: boom"},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Analyst")
	assert.Contains(t, lines[1], "Coach error: boom")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "No analysis runs")

	out := RenderHistory([]sqlite.RunWithMeta{
		{RunRecord: sqlite.RunRecord{ID: "run-1", UserID: "u1", HealthScore: 64, Status: sqlite.StatusDone}, CreatedAt: "2025-04-01 10:00:00"},
		{RunRecord: sqlite.RunRecord{ID: "run-2", UserID: "u1", HealthScore: 40, Status: sqlite.StatusDegraded}},
	})
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "64.0")
	assert.Contains(t, out, sqlite.StatusDegraded)
}

func TestRenderAllocationChartOrdersByShare(t *testing.T) {
	out := RenderAllocationChart(models.Allocation{"savings": 1000, "housing": 3000}, 10)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "housing"))
	assert.Contains(t, lines[0], "75.0%")
	assert.Contains(t, lines[1], "25.0%")
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, SaveReport(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded models.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "u1", decoded.UserID)
	assert.Equal(t, 72.5, decoded.HealthScore)
}
