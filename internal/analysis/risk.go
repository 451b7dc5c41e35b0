package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dyike/FinSage/internal/models"
)

// RiskWeights sum to 1 so the weighted overall risk stays in [0,1].
var RiskWeights = map[string]float64{
	models.RiskIncomeStability: 0.3,
	models.RiskCashFlow:        0.3,
	models.RiskSavings:         0.2,
	models.RiskEmergencyFund:   0.2,
}

type mitigation struct {
	action   string
	timeline string
}

var riskMitigations = map[string]mitigation{
	models.RiskIncomeStability: {"Diversify income sources, build larger emergency fund", "3-months"},
	models.RiskCashFlow:        {"Reduce discretionary spending immediately, increase income", "immediate"},
	models.RiskSavings:         {"Cut 10% from discretionary categories, automate savings", "1-month"},
	models.RiskEmergencyFund:   {"Build emergency fund with 10% of each income", "3-months"},
}

const TimelineImmediate = "immediate"

func step(score float64, level models.RiskLevel, description string) models.RiskScore {
	return models.RiskScore{Score: score, Level: level, Description: description}
}

// ScoreIncomeStability maps income volatility onto a risk step.
func ScoreIncomeStability(volatility float64) models.RiskScore {
	desc := fmt.Sprintf("Income volatility of %.2f", volatility)
	switch {
	case volatility < 0.2:
		return step(0.1, models.RiskLevelLow, desc)
	case volatility < 0.4:
		return step(0.3, models.RiskLevelMedium, desc)
	case volatility < 0.6:
		return step(0.6, models.RiskLevelHigh, desc)
	default:
		return step(0.9, models.RiskLevelCritical, desc)
	}
}

// ScoreCashFlow compares net cash flow against total income.
func ScoreCashFlow(netCashFlow, totalIncome float64, currency string) models.RiskScore {
	desc := "Net cash flow: " + Money(currency, netCashFlow)
	switch {
	case netCashFlow > 0 && netCashFlow > totalIncome*0.2:
		return step(0.1, models.RiskLevelLow, desc)
	case netCashFlow > 0:
		return step(0.3, models.RiskLevelMedium, desc)
	case netCashFlow > -totalIncome*0.1:
		return step(0.6, models.RiskLevelHigh, desc)
	default:
		return step(0.9, models.RiskLevelCritical, desc)
	}
}

// ScoreSavings maps the savings rate percentage onto a risk step.
func ScoreSavings(savingsRate float64) models.RiskScore {
	desc := fmt.Sprintf("Savings rate: %.1f%%", savingsRate)
	switch {
	case savingsRate >= 20:
		return step(0.1, models.RiskLevelLow, desc)
	case savingsRate >= 10:
		return step(0.3, models.RiskLevelMedium, desc)
	case savingsRate >= 0:
		return step(0.6, models.RiskLevelHigh, desc)
	default:
		return step(0.9, models.RiskLevelCritical, desc)
	}
}

// ScoreEmergencyFund maps months of covered expenses onto a risk step.
func ScoreEmergencyFund(months float64) models.RiskScore {
	desc := fmt.Sprintf("Emergency fund: %g months coverage", months)
	switch {
	case months >= 6:
		return step(0.1, models.RiskLevelLow, desc)
	case months >= 3:
		return step(0.3, models.RiskLevelMedium, desc)
	case months >= 1:
		return step(0.6, models.RiskLevelHigh, desc)
	default:
		return step(0.9, models.RiskLevelCritical, desc)
	}
}

// ScoreRisks runs the four independent sub-scorers.
func ScoreRisks(m models.Metrics, emergencyMonths float64, currency string) map[string]models.RiskScore {
	return map[string]models.RiskScore{
		models.RiskIncomeStability: ScoreIncomeStability(m.IncomeVolatility),
		models.RiskCashFlow:        ScoreCashFlow(m.NetCashFlow, m.TotalIncome, currency),
		models.RiskSavings:         ScoreSavings(m.SavingsRate),
		models.RiskEmergencyFund:   ScoreEmergencyFund(emergencyMonths),
	}
}

// OverallRisk is the weighted sum of the sub-scores, clamped to [0,1].
func OverallRisk(scores map[string]models.RiskScore) float64 {
	var overall float64
	for _, name := range models.RiskNames {
		if s, ok := scores[name]; ok {
			overall += s.Score * RiskWeights[name]
		}
	}
	return clamp(overall, 0, 1)
}

// OverallRiskLevel buckets the overall risk score.
func OverallRiskLevel(overall float64) models.RiskLevel {
	switch {
	case overall < 0.3:
		return models.RiskLevelLow
	case overall < 0.5:
		return models.RiskLevelMedium
	case overall < 0.7:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelCritical
	}
}

// RankRisks builds the deterministic narrative: the three highest scores,
// ties in canonical order, each with its fixed mitigation.
func RankRisks(scores map[string]models.RiskScore) models.RiskNarrative {
	names := make([]string, 0, len(scores))
	for _, name := range models.RiskNames {
		if _, ok := scores[name]; ok {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return scores[names[i]].Score > scores[names[j]].Score
	})
	if len(names) > 3 {
		names = names[:3]
	}

	priorities := make([]models.PriorityRisk, 0, len(names))
	for _, name := range names {
		mit := riskMitigations[name]
		priorities = append(priorities, models.PriorityRisk{
			Risk:       RiskTitle(name),
			Severity:   string(scores[name].Level),
			Mitigation: mit.action,
			Timeline:   mit.timeline,
		})
	}
	return models.RiskNarrative{
		OverallRiskLevel: string(OverallRiskLevel(OverallRisk(scores))),
		PriorityRisks:    priorities,
	}
}

// RiskTitle turns "cash_flow" into "Cash Flow Risk".
func RiskTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + " Risk"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
