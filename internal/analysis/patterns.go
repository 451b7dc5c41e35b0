package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dyike/FinSage/internal/models"
)

const topCategoryCount = 5

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// AnalyzePatterns summarizes outflows by category and by weekday. Purely
// descriptive; nothing downstream scores on it.
func AnalyzePatterns(txns []models.Transaction, currency string) models.Patterns {
	byCategory := make(map[string]float64)
	byWeekday := make(map[time.Weekday]float64)
	for _, t := range txns {
		if !t.IsOutflow() {
			continue
		}
		byCategory[models.NormalizeCategory(t.Category)] += t.Value()
		if !t.Date.IsZero() {
			byWeekday[t.Date.Weekday()] += t.Value()
		}
	}

	cats := make([]models.CategorySpend, 0, len(byCategory))
	for c, amount := range byCategory {
		cats = append(cats, models.CategorySpend{Category: c, Amount: amount})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Amount != cats[j].Amount {
			return cats[i].Amount > cats[j].Amount
		}
		return cats[i].Category < cats[j].Category
	})
	if len(cats) > topCategoryCount {
		cats = cats[:topCategoryCount]
	}

	p := models.Patterns{TopCategories: cats}
	if len(byWeekday) > 0 {
		p.WeekdayTotals = make(map[string]float64, len(byWeekday))
		for _, wd := range weekdayOrder {
			amount, ok := byWeekday[wd]
			if !ok {
				continue
			}
			p.WeekdayTotals[wd.String()] = amount
			if amount > p.PeakDayAmount {
				p.PeakDay = wd.String()
				p.PeakDayAmount = amount
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("Top Spending Categories:\n")
	for _, c := range cats {
		fmt.Fprintf(&sb, "- %s: %s\n", c.Category, Money(currency, c.Amount))
	}
	if p.PeakDay != "" {
		fmt.Fprintf(&sb, "\nPeak spending day: %s (%s)", p.PeakDay, Money(currency, p.PeakDayAmount))
	}
	p.Summary = sb.String()
	return p
}
