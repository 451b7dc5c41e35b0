package models

import "time"

// AnalysisState is threaded through every stage of one analysis run. Each
// stage owns exactly one output block and replaces it as a whole.
type AnalysisState struct {
	UserID       string        `json:"user_id"`
	Transactions []Transaction `json:"transactions"`
	Preferences  Preferences   `json:"preferences"`
	CurrentStage string        `json:"current_stage"`
	StartedAt    time.Time     `json:"started_at"`

	FinancialAnalysis    *FinancialAnalysis    `json:"financial_analysis,omitempty"`
	BudgetRecommendation *BudgetRecommendation `json:"budget_recommendation,omitempty"`
	RiskAssessment       *RiskAssessment       `json:"risk_assessment,omitempty"`
	SavingsStrategy      *SavingsStrategy      `json:"savings_strategy,omitempty"`
	MonitoringAlerts     *MonitoringAlerts     `json:"monitoring_alerts,omitempty"`

	Errors []string `json:"errors"`
	Report *Report  `json:"report,omitempty"`
}

func NewAnalysisState(userID string, txns []Transaction, prefs Preferences) *AnalysisState {
	copied := make([]Transaction, len(txns))
	copy(copied, txns)
	return &AnalysisState{
		UserID:       userID,
		Transactions: copied,
		Preferences:  prefs,
		StartedAt:    time.Now().UTC(),
		Errors:       []string{},
	}
}

func (s *AnalysisState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Metrics returns the analyst's metrics or nil when the analyst produced none.
func (s *AnalysisState) Metrics() *Metrics {
	if s.FinancialAnalysis == nil {
		return nil
	}
	return s.FinancialAnalysis.Metrics
}
