package models

import (
	"encoding/json"
	"time"
)

type KeyMetrics struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	SavingsRate     float64 `json:"savings_rate"`
	NetCashFlow     float64 `json:"net_cash_flow"`
}

type ExecutiveSummary struct {
	OverallStatus   string     `json:"overall_status"`
	HealthScore     float64    `json:"health_score"`
	KeyMetrics      KeyMetrics `json:"key_metrics"`
	TopInsights     []string   `json:"top_insights"`
	PriorityActions []string   `json:"priority_actions"`
	CriticalAlerts  []Alert    `json:"critical_alerts"`
	SavingsTarget   float64    `json:"savings_target"`
	RiskLevel       string     `json:"risk_level"`
}

type Report struct {
	UserID           string                `json:"user_id"`
	GeneratedAt      time.Time             `json:"timestamp"`
	DurationSeconds  float64               `json:"workflow_duration"`
	HealthScore      float64               `json:"health_score"`
	ExecutiveSummary ExecutiveSummary      `json:"executive_summary"`
	Analysis         *FinancialAnalysis    `json:"financial_analysis,omitempty"`
	BudgetPlan       *BudgetRecommendation `json:"budget_plan,omitempty"`
	RiskProfile      *RiskAssessment       `json:"risk_profile,omitempty"`
	SavingsPlan      *SavingsStrategy      `json:"savings_plan,omitempty"`
	Alerts           *MonitoringAlerts     `json:"alerts,omitempty"`
	Errors           []string              `json:"errors"`
}

// Fingerprint returns the report as canonical JSON with every timestamp and
// the run duration zeroed, so two runs over identical input compare equal.
func (r *Report) Fingerprint() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	clone := *r
	clone.GeneratedAt = time.Time{}
	clone.DurationSeconds = 0
	if r.Analysis != nil {
		a := *r.Analysis
		a.Timestamp = time.Time{}
		clone.Analysis = &a
	}
	if r.RiskProfile != nil {
		rp := *r.RiskProfile
		rp.Timestamp = time.Time{}
		clone.RiskProfile = &rp
	}
	return json.Marshal(&clone)
}
