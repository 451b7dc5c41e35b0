package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/FinSage/internal/models"
)

var baseDay = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC) // a Monday

func inflow(day int, amount float64) models.Transaction {
	return models.Transaction{
		Date:     baseDay.AddDate(0, 0, day),
		Amount:   decimal.NewFromFloat(amount),
		Kind:     models.KindInflow,
		Category: "income",
	}
}

func outflow(day int, amount float64, category string) models.Transaction {
	return models.Transaction{
		Date:     baseDay.AddDate(0, 0, day),
		Amount:   decimal.NewFromFloat(-amount),
		Kind:     models.KindOutflow,
		Category: category,
	}
}

// gigMonth is one income of 30000 and three expenses over 30 days.
func gigMonth() []models.Transaction {
	return []models.Transaction{
		inflow(0, 30000),
		outflow(3, 5000, "Rent"),
		outflow(10, 8000, "Food Groceries"),
		outflow(29, 3000, "transport"),
	}
}
