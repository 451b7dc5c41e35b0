package analysis

import (
	"fmt"
	"math"

	"github.com/dyike/FinSage/internal/models"
)

// FallbackInsights produces the rule-based analyst narrative.
func FallbackInsights(m models.Metrics, currency string) models.Insights {
	assessment := "Financial analysis complete. "
	if m.NetCashFlow > 0 {
		assessment += fmt.Sprintf("Positive cash flow of %s.", Money(currency, m.NetCashFlow))
	} else {
		assessment += fmt.Sprintf("Negative cash flow of %s - expenses exceed income.", Money(currency, math.Abs(m.NetCashFlow)))
	}

	in := models.Insights{
		HealthAssessment: assessment,
		KeyFindings: []string{
			fmt.Sprintf("Savings rate: %.1f%%", m.SavingsRate),
			fmt.Sprintf("Income volatility: %.2f", m.IncomeVolatility),
			fmt.Sprintf("%d transactions processed", m.TransactionCount),
		},
	}

	if m.NetCashFlow < 0 {
		in.Concerns = append(in.Concerns, "Spending exceeds income")
	}
	if m.IncomeVolatility > 0.5 {
		in.Concerns = append(in.Concerns, "High income volatility - build emergency fund")
	}
	if m.SavingsRate < 10 {
		in.Concerns = append(in.Concerns, "Low savings rate - aim for 15-20%")
	}
	if len(in.Concerns) == 0 {
		in.Concerns = []string{"Continue monitoring financial health"}
	}

	if m.NetCashFlow > 0 {
		in.Positives = append(in.Positives, "Maintaining positive cash flow")
	}
	if m.SavingsRate >= 15 {
		in.Positives = append(in.Positives, "Strong savings rate")
	}
	if m.TransactionCount > 20 {
		in.Positives = append(in.Positives, "Good transaction tracking habits")
	}
	if len(in.Positives) == 0 {
		in.Positives = []string{"Keep tracking your finances"}
	}
	return in
}
