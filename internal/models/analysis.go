package models

import "time"

type Metrics struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	NetCashFlow      float64 `json:"net_cash_flow"`
	SavingsRate      float64 `json:"savings_rate"`
	IncomeVolatility float64 `json:"income_volatility"`
	AvgTransaction   float64 `json:"avg_transaction"`
	TransactionCount int     `json:"transaction_count"`
	IncomeCount      int     `json:"income_count"`
	ExpenseCount     int     `json:"expense_count"`
}

type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type Patterns struct {
	TopCategories []CategorySpend    `json:"top_categories"`
	PeakDay       string             `json:"peak_day,omitempty"`
	PeakDayAmount float64            `json:"peak_day_amount,omitempty"`
	WeekdayTotals map[string]float64 `json:"weekday_totals,omitempty"`
	Summary       string             `json:"summary"`
}

type Insights struct {
	HealthAssessment string   `json:"health_assessment"`
	KeyFindings      []string `json:"key_findings"`
	Concerns         []string `json:"concerns"`
	Positives        []string `json:"positives"`
}

type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

type FinancialAnalysis struct {
	Metrics        *Metrics        `json:"metrics,omitempty"`
	Patterns       *Patterns       `json:"patterns,omitempty"`
	Insights       *Insights       `json:"insights,omitempty"`
	IncomeForecast []ForecastPoint `json:"income_forecast,omitempty"`
	Error          string          `json:"error,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

type AllocationSource string

const (
	SourcePolicy    AllocationSource = "policy"
	SourceRuleBased AllocationSource = "rule_based"
)

type BudgetAdvice struct {
	Assessment             string   `json:"assessment"`
	Adjustments            []string `json:"adjustments"`
	ReductionOpportunities []string `json:"reduction_opportunities"`
	EmergencyFundAmount    float64  `json:"emergency_fund_amount"`
}

type BudgetRecommendation struct {
	Allocation      Allocation       `json:"budget_allocation,omitempty"`
	Source          AllocationSource `json:"source,omitempty"`
	TargetSavings   float64          `json:"target_savings"`
	SpendableBudget float64          `json:"spendable_budget"`
	Advice          *BudgetAdvice    `json:"advice,omitempty"`
	Explanations    []string         `json:"explanations,omitempty"`
	Confidence      float64          `json:"confidence"`
	Error           string           `json:"error,omitempty"`
}

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// Named risks in canonical order.
const (
	RiskIncomeStability = "income_stability"
	RiskCashFlow        = "cash_flow"
	RiskSavings         = "savings"
	RiskEmergencyFund   = "emergency_fund"
)

var RiskNames = []string{RiskIncomeStability, RiskCashFlow, RiskSavings, RiskEmergencyFund}

type RiskScore struct {
	Score       float64   `json:"score"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
}

type PriorityRisk struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
	Timeline   string `json:"timeline"`
}

type RiskNarrative struct {
	OverallRiskLevel string         `json:"overall_risk_level"`
	PriorityRisks    []PriorityRisk `json:"priority_risks"`
}

type RiskAssessment struct {
	Scores           map[string]RiskScore `json:"risk_scores,omitempty"`
	OverallRiskScore float64              `json:"overall_risk_score"`
	Narrative        *RiskNarrative       `json:"narrative,omitempty"`
	Error            string               `json:"error,omitempty"`
	Timestamp        time.Time            `json:"timestamp"`
}

type SavingsGoal struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type SavingsPlan struct {
	Encouragement        string      `json:"encouragement"`
	PrimaryGoal          SavingsGoal `json:"primary_goal"`
	MicroActions         []string    `json:"micro_actions"`
	PsychologyTips       []string    `json:"psychology_tips"`
	CelebrationMilestone string      `json:"celebration_milestone"`
}

type Milestone struct {
	Period       string  `json:"period"`
	TargetAmount float64 `json:"target_amount"`
	Description  string  `json:"description"`
	Reward       string  `json:"reward"`
}

type Challenge struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	PotentialSavings string `json:"potential_savings"`
	Difficulty       string `json:"difficulty"`
}

type SavingsProgress struct {
	SavingsRate    float64 `json:"savings_rate"`
	MonthlySavings float64 `json:"monthly_savings"`
	TargetSavings  float64 `json:"target_savings"`
}

type SavingsStrategy struct {
	Plan            *SavingsPlan    `json:"strategy,omitempty"`
	Milestones      []Milestone     `json:"milestones,omitempty"`
	Challenges      []Challenge     `json:"challenges,omitempty"`
	CurrentProgress SavingsProgress `json:"current_progress"`
	Error           string          `json:"error,omitempty"`
}

type AlertKind string

const (
	AlertAnomaly       AlertKind = "anomaly"
	AlertBudgetOverrun AlertKind = "budget_overrun"
	AlertDuplicate     AlertKind = "duplicate"
)

type Severity string

const (
	SeverityUrgent  Severity = "urgent"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities with the most severe first.
func (s Severity) Rank() int {
	switch s {
	case SeverityUrgent:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// Actionable reports whether the severity requires user action.
func (s Severity) Actionable() bool {
	return s == SeverityUrgent || s == SeverityWarning
}

type Alert struct {
	Kind     AlertKind      `json:"type"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Payload  map[string]any `json:"payload,omitempty"`
}

type AlertInterpretation struct {
	Summary        string `json:"summary"`
	ActionNeeded   bool   `json:"action_needed"`
	PriorityAction string `json:"priority_action,omitempty"`
}

type MonitoringAlerts struct {
	Alerts         []Alert              `json:"alerts"`
	AlertCount     int                  `json:"alert_count"`
	Interpretation *AlertInterpretation `json:"ai_interpretation,omitempty"`
	RequiresAction bool                 `json:"requires_action"`
	Summary        string               `json:"summary,omitempty"`
	Error          string               `json:"error,omitempty"`
}
