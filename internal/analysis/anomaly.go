package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/dyike/FinSage/internal/models"
)

const (
	minAnomalySamples = 5
	urgentSigma       = 3.0
	warningSigma      = 2.5
	anomalyEpsilon    = 1e-9
	// minSigmaShare floors the baseline deviation at a share of its mean so
	// near-constant spending does not turn small differences into alerts.
	minSigmaShare = 0.1

	overrunUrgentPct  = 20.0
	overrunWarningPct = 10.0
)

const dayLayout = "2006-01-02"

// DetectAnomalies flags outflows far above the mean of the other outflows.
// Each transaction is compared against a baseline that excludes itself,
// derived in O(1) from running sums. The baseline deviation never drops
// below a tenth of the baseline mean.
func DetectAnomalies(txns []models.Transaction, currency string) []models.Alert {
	outflows := outflowsOf(txns)
	n := len(outflows)
	if n < minAnomalySamples {
		return nil
	}

	var sum, sumSq float64
	for _, t := range outflows {
		v := t.Value()
		sum += v
		sumSq += v * v
	}

	var alerts []models.Alert
	others := float64(n - 1)
	for _, t := range outflows {
		x := t.Value()
		mean := (sum - x) / others
		variance := (sumSq-x*x)/others - mean*mean
		sigma := math.Max(math.Sqrt(math.Max(variance, 0)), minSigmaShare*math.Abs(mean))
		slack := anomalyEpsilon * math.Max(1, mean)

		var alert models.Alert
		switch {
		case x-(mean+urgentSigma*sigma) > slack:
			alert = models.Alert{
				Severity: models.SeverityUrgent,
				Message: fmt.Sprintf("Unusually high expense: %s (expected ~%s)",
					Money(currency, x), Money(currency, mean)),
			}
		case x-(mean+warningSigma*sigma) > slack:
			alert = models.Alert{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("Higher than usual expense: %s", Money(currency, x)),
			}
		default:
			continue
		}

		deviation := 0.0
		if mean > 0 {
			deviation = (x - mean) / mean * 100
		}
		alert.Kind = models.AlertAnomaly
		alert.Payload = map[string]any{
			"amount":        x,
			"date":          t.Date.Format(dayLayout),
			"category":      models.NormalizeCategory(t.Category),
			"description":   t.Description,
			"expected_mean": mean,
			"deviation_pct": deviation,
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// DetectBudgetOverruns compares outflow totals per category with budgets.
// A transaction category counts against a budget of the same name, or else
// against the canonical category it aliases. Categories without a positive
// budget are skipped.
func DetectBudgetOverruns(txns []models.Transaction, budgets map[string]float64, currency string) []models.Alert {
	if len(budgets) == 0 {
		return nil
	}
	normalized := make(map[string]float64, len(budgets))
	for c, b := range budgets {
		normalized[models.NormalizeCategory(c)] += b
	}

	spent := make(map[string]float64)
	for _, t := range outflowsOf(txns) {
		c := models.NormalizeCategory(t.Category)
		if _, ok := normalized[c]; !ok {
			c = models.BudgetCategory(c)
		}
		spent[c] += t.Value()
	}

	categories := make([]string, 0, len(normalized))
	for c := range normalized {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var alerts []models.Alert
	for _, c := range categories {
		budgeted := normalized[c]
		if budgeted <= 0 {
			continue
		}
		actual := spent[c]
		overspend := (actual - budgeted) / budgeted * 100

		var alert models.Alert
		switch {
		case overspend > overrunUrgentPct:
			alert = models.Alert{
				Severity: models.SeverityUrgent,
				Message: fmt.Sprintf("%s: Over budget by %.1f%% (%s/%s)",
					c, overspend, Money(currency, actual), Money(currency, budgeted)),
			}
		case overspend > overrunWarningPct:
			alert = models.Alert{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("%s: Approaching budget limit (%.1f%% over)", c, overspend),
			}
		default:
			continue
		}
		alert.Kind = models.AlertBudgetOverrun
		alert.Payload = map[string]any{
			"category":      c,
			"spent":         actual,
			"budgeted":      budgeted,
			"overspend_pct": overspend,
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

type duplicateKey struct {
	amount   string
	day      string
	category string
}

// DetectDuplicates groups outflows by amount, calendar day and category.
// Groups are reported in order of first appearance.
func DetectDuplicates(txns []models.Transaction, currency string) []models.Alert {
	groups := make(map[duplicateKey]int)
	var order []duplicateKey
	for _, t := range outflowsOf(txns) {
		key := duplicateKey{
			amount:   t.Amount.Abs().Round(2).StringFixed(2),
			day:      t.Date.Format(dayLayout),
			category: models.NormalizeCategory(t.Category),
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key]++
	}

	var alerts []models.Alert
	for _, key := range order {
		count := groups[key]
		if count < 2 {
			continue
		}
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertDuplicate,
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Possible duplicate: %d transactions of %s%s on same day", count, currency, key.amount),
			Payload: map[string]any{
				"count":    count,
				"amount":   key.amount,
				"date":     key.day,
				"category": key.category,
			},
		})
	}
	return alerts
}

// SortAlerts orders alerts most severe first, keeping detection order within
// a severity.
func SortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})
}

// RequiresAction reports whether any alert is urgent or a warning.
func RequiresAction(alerts []models.Alert) bool {
	for _, a := range alerts {
		if a.Severity.Actionable() {
			return true
		}
	}
	return false
}

// MonitorTransactions runs all three detectors and returns the sorted alerts.
func MonitorTransactions(txns []models.Transaction, budgets map[string]float64, currency string) ([]models.Alert, bool) {
	alerts := make([]models.Alert, 0)
	alerts = append(alerts, DetectAnomalies(txns, currency)...)
	alerts = append(alerts, DetectBudgetOverruns(txns, budgets, currency)...)
	alerts = append(alerts, DetectDuplicates(txns, currency)...)
	SortAlerts(alerts)
	return alerts, RequiresAction(alerts)
}

func outflowsOf(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsOutflow() {
			out = append(out, t)
		}
	}
	return out
}
