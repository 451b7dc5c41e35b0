package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindInflow  TransactionKind = "inflow"
	KindOutflow TransactionKind = "outflow"
)

// Transaction is a single ingested money movement. Kind decides whether it
// counts as income or expense; the sign of Amount is informational.
type Transaction struct {
	Date        time.Time       `json:"date" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        TransactionKind `json:"kind" validate:"required,oneof=inflow outflow"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// Value returns the absolute amount as a float for statistics.
func (t Transaction) Value() float64 {
	return t.Amount.Abs().InexactFloat64()
}

func (t Transaction) IsInflow() bool  { return t.Kind == KindInflow }
func (t Transaction) IsOutflow() bool { return t.Kind == KindOutflow }

// ParseKind accepts inflow/outflow and the credit/debit aliases.
func ParseKind(raw string) (TransactionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inflow", "credit", "income", "in":
		return KindInflow, true
	case "outflow", "debit", "expense", "out":
		return KindOutflow, true
	}
	return "", false
}

// NormalizeCategory lowercases a free-form category and joins words with
// underscores so "Food Groceries" and "food_groceries" group together.
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return CategoryMiscellaneous
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '_'
	})
	return strings.Join(fields, "_")
}
