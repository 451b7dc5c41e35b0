package models

// Canonical budget categories, in policy output order.
const (
	CategoryFood          = "food_groceries"
	CategoryTransport     = "transport"
	CategoryUtilities     = "utilities"
	CategoryHealthcare    = "healthcare"
	CategoryEntertainment = "entertainment"
	CategoryEducation     = "education"
	CategorySavings       = "savings"
	CategoryMiscellaneous = "miscellaneous"
)

var BudgetCategories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryEntertainment,
	CategoryEducation,
	CategorySavings,
	CategoryMiscellaneous,
}

var categoryAliases = map[string]string{
	"food":           CategoryFood,
	"groceries":      CategoryFood,
	"grocery":        CategoryFood,
	"dining":         CategoryFood,
	"restaurants":    CategoryFood,
	"transportation": CategoryTransport,
	"travel":         CategoryTransport,
	"fuel":           CategoryTransport,
	"commute":        CategoryTransport,
	"rent":           CategoryUtilities,
	"housing":        CategoryUtilities,
	"bills":          CategoryUtilities,
	"electricity":    CategoryUtilities,
	"internet":       CategoryUtilities,
	"phone":          CategoryUtilities,
	"health":         CategoryHealthcare,
	"medical":        CategoryHealthcare,
	"pharmacy":       CategoryHealthcare,
	"fun":            CategoryEntertainment,
	"subscriptions":  CategoryEntertainment,
	"streaming":      CategoryEntertainment,
	"shopping":       CategoryMiscellaneous,
	"personal_care":  CategoryMiscellaneous,
	"other":          CategoryMiscellaneous,
	"tuition":        CategoryEducation,
	"books":          CategoryEducation,
	"courses":        CategoryEducation,
	"investment":     CategorySavings,
	"investments":    CategorySavings,
}

// BudgetCategory maps a free-form category onto BudgetCategories. Names
// with no known alias come back normalized but otherwise unchanged.
func BudgetCategory(raw string) string {
	c := NormalizeCategory(raw)
	if alias, ok := categoryAliases[c]; ok {
		return alias
	}
	return c
}

// CategoryIndex returns the position of a category in BudgetCategories or -1.
func CategoryIndex(category string) int {
	for i, c := range BudgetCategories {
		if c == category {
			return i
		}
	}
	return -1
}

// Allocation maps a category to a non-negative budget amount.
type Allocation map[string]float64

func (a Allocation) Total() float64 {
	var sum float64
	for _, c := range BudgetCategories {
		sum += a[c]
	}
	for c, v := range a {
		if CategoryIndex(c) < 0 {
			sum += v
		}
	}
	return sum
}

// Share returns the category's fraction of the total allocation.
func (a Allocation) Share(category string) float64 {
	total := a.Total()
	if total <= 0 {
		return 0
	}
	return a[category] / total
}
