package analysis

import (
	"math"

	"github.com/dyike/FinSage/internal/models"
)

// CalculateMetrics partitions transactions by kind and derives the aggregate
// metrics. Callers short-circuit empty input before calling.
func CalculateMetrics(txns []models.Transaction) models.Metrics {
	var (
		m       models.Metrics
		incomes []float64
	)
	for _, t := range txns {
		switch t.Kind {
		case models.KindInflow:
			v := t.Value()
			m.TotalIncome += v
			m.IncomeCount++
			incomes = append(incomes, v)
		case models.KindOutflow:
			m.TotalExpenses += t.Value()
			m.ExpenseCount++
		}
	}

	m.TransactionCount = len(txns)
	m.NetCashFlow = m.TotalIncome - m.TotalExpenses
	if m.TotalIncome > 0 {
		m.SavingsRate = m.NetCashFlow / m.TotalIncome * 100
	}
	m.IncomeVolatility = coefficientOfVariation(incomes)
	if m.TransactionCount > 0 {
		m.AvgTransaction = (m.TotalIncome + m.TotalExpenses) / float64(m.TransactionCount)
	}
	return m
}

// coefficientOfVariation is stddev/mean, or 0 with fewer than two samples or
// a non-positive mean.
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := meanStd(values)
	if mean <= 0 {
		return 0
	}
	return std / mean
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var varianceSum float64
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	return mean, math.Sqrt(varianceSum / float64(len(values)))
}
