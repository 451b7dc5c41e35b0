package analysis

import (
	"math"
	"time"

	"github.com/dyike/FinSage/internal/models"
)

const (
	maxPriorityActions = 5
	maxTopInsights     = 3
	maxCriticalAlerts  = 3

	// defaultRisk stands in when no risk assessment was produced.
	defaultRisk = 0.5
)

type HealthBreakdown struct {
	Savings  float64 `json:"savings"`
	CashFlow float64 `json:"cash_flow"`
	Risk     float64 `json:"risk"`
	Tracking float64 `json:"tracking"`
	Total    float64 `json:"total"`
}

// ComputeHealth scores metrics and overall risk on a 0-100 scale. Each
// component is capped on its own and the total is rounded to one decimal.
func ComputeHealth(m *models.Metrics, risk *models.RiskAssessment) HealthBreakdown {
	var h HealthBreakdown
	if m != nil {
		h.Savings = math.Max(0, math.Min(m.SavingsRate*1.5, 30))
		if m.TotalIncome > 0 {
			h.CashFlow = math.Min(math.Max(m.NetCashFlow/m.TotalIncome*100, 0), 25)
		}
		h.Tracking = math.Min(float64(m.TransactionCount)/30*20, 20)
	}

	r := defaultRisk
	if risk != nil && risk.Error == "" {
		r = clamp(risk.OverallRiskScore, 0, 1)
	}
	h.Risk = (1 - r) * 25

	total := h.Savings + h.CashFlow + h.Risk + h.Tracking
	h.Total = clamp(math.Round(total*10)/10, 0, 100)
	return h
}

// StatusBand maps a health score to its label and emoji.
func StatusBand(score float64) (label, emoji string) {
	switch {
	case score >= 75:
		return "Excellent", "🌟"
	case score >= 60:
		return "Good", "✅"
	case score >= 40:
		return "Fair", "⚠️"
	default:
		return "Needs Attention", "🚨"
	}
}

func OverallStatus(score float64) string {
	label, emoji := StatusBand(score)
	return emoji + " " + label
}

// PriorityActions takes two coach micro-actions, the top risk's mitigation
// when it is due immediately, and the first budget adjustment.
func PriorityActions(state *models.AnalysisState) []string {
	actions := make([]string, 0, maxPriorityActions)
	add := func(a string) {
		if a != "" && len(actions) < maxPriorityActions {
			actions = append(actions, a)
		}
	}

	if s := state.SavingsStrategy; s != nil && s.Plan != nil {
		for i, a := range s.Plan.MicroActions {
			if i >= 2 {
				break
			}
			add(a)
		}
	}
	if r := state.RiskAssessment; r != nil && r.Narrative != nil && len(r.Narrative.PriorityRisks) > 0 {
		if top := r.Narrative.PriorityRisks[0]; top.Timeline == TimelineImmediate {
			add(top.Mitigation)
		}
	}
	if b := state.BudgetRecommendation; b != nil && b.Advice != nil && len(b.Advice.Adjustments) > 0 {
		add(b.Advice.Adjustments[0])
	}
	return actions
}

func BuildExecutiveSummary(state *models.AnalysisState, score float64) models.ExecutiveSummary {
	summary := models.ExecutiveSummary{
		OverallStatus:   OverallStatus(score),
		HealthScore:     score,
		TopInsights:     []string{},
		PriorityActions: PriorityActions(state),
		CriticalAlerts:  []models.Alert{},
		RiskLevel:       "Unknown",
	}

	if m := state.Metrics(); m != nil {
		summary.KeyMetrics = models.KeyMetrics{
			MonthlyIncome:   m.TotalIncome,
			MonthlyExpenses: m.TotalExpenses,
			SavingsRate:     m.SavingsRate,
			NetCashFlow:     m.NetCashFlow,
		}
	}
	if a := state.FinancialAnalysis; a != nil && a.Insights != nil {
		findings := a.Insights.KeyFindings
		if len(findings) > maxTopInsights {
			findings = findings[:maxTopInsights]
		}
		summary.TopInsights = append(summary.TopInsights, findings...)
	}
	if ma := state.MonitoringAlerts; ma != nil {
		for _, alert := range ma.Alerts {
			if len(summary.CriticalAlerts) == maxCriticalAlerts {
				break
			}
			if alert.Severity.Actionable() {
				summary.CriticalAlerts = append(summary.CriticalAlerts, alert)
			}
		}
	}
	if b := state.BudgetRecommendation; b != nil {
		summary.SavingsTarget = b.TargetSavings
	}
	if r := state.RiskAssessment; r != nil && r.Narrative != nil && r.Narrative.OverallRiskLevel != "" {
		summary.RiskLevel = r.Narrative.OverallRiskLevel
	}
	return summary
}

// CompileReport assembles the final report from whatever the stages produced.
func CompileReport(state *models.AnalysisState, generatedAt time.Time) *models.Report {
	health := ComputeHealth(state.Metrics(), state.RiskAssessment)
	errs := append([]string{}, state.Errors...)

	duration := 0.0
	if !state.StartedAt.IsZero() && generatedAt.After(state.StartedAt) {
		duration = generatedAt.Sub(state.StartedAt).Seconds()
	}
	return &models.Report{
		UserID:           state.UserID,
		GeneratedAt:      generatedAt,
		DurationSeconds:  duration,
		HealthScore:      health.Total,
		ExecutiveSummary: BuildExecutiveSummary(state, health.Total),
		Analysis:         state.FinancialAnalysis,
		BudgetPlan:       state.BudgetRecommendation,
		RiskProfile:      state.RiskAssessment,
		SavingsPlan:      state.SavingsStrategy,
		Alerts:           state.MonitoringAlerts,
		Errors:           errs,
	}
}
