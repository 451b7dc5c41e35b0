package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/models"
	"github.com/dyike/FinSage/internal/policy"
)

var ErrNoPolicy = errors.New("no allocation policy configured")

// ruleBasedSplit is the fallback split over the canonical categories: rent and
// utilities share one bucket, personal care folds into miscellaneous.
var ruleBasedSplit = map[string]float64{
	models.CategoryFood:          0.25,
	models.CategoryUtilities:     0.30,
	models.CategoryTransport:     0.10,
	models.CategoryHealthcare:    0.08,
	models.CategoryEntertainment: 0.10,
	models.CategoryEducation:     0.07,
	models.CategorySavings:       0,
	models.CategoryMiscellaneous: 0.10,
}

type essentialFloor struct {
	category string
	min      float64
}

var essentialFloors = []essentialFloor{
	{models.CategoryFood, 0.20},
	{models.CategoryUtilities, 0.10},
	{models.CategoryHealthcare, 0.05},
	{models.CategorySavings, 0.10},
}

var donorCategories = []string{models.CategoryEntertainment, models.CategoryMiscellaneous}

const floorTolerance = 1e-12

// AllocationResult carries the allocation and, when the policy failed, the
// reason the rule-based split was used instead.
type AllocationResult struct {
	Amounts     models.Allocation
	Proportions []float64
	Source      models.AllocationSource
	PolicyErr   error
}

type BudgetAllocator struct {
	policy policy.PolicyFunction
	opts   external.Options
}

// NewBudgetAllocator accepts a nil policy, in which case every allocation is
// rule based.
func NewBudgetAllocator(p policy.PolicyFunction, opts external.Options) *BudgetAllocator {
	return &BudgetAllocator{policy: p, opts: opts}
}

// Allocate returns a non-negative allocation summing to total.
func (b *BudgetAllocator) Allocate(ctx context.Context, features policy.FeatureVector, total float64, tolerance models.RiskTolerance) AllocationResult {
	if total < 0 || math.IsNaN(total) {
		total = 0
	}

	policyErr := ErrNoPolicy
	if b.policy != nil {
		res := external.Call(ctx, "policy", b.opts, func(ctx context.Context) ([]float64, error) {
			props, err := b.policy.Allocate(ctx, features, total, tolerance)
			if err != nil {
				return nil, err
			}
			return sanitizeProportions(props)
		}, nil)
		if res.OK() {
			props := finalizeProportions(AdjustForRisk(res.Value, tolerance))
			return AllocationResult{
				Amounts:     toAmounts(props, total),
				Proportions: props,
				Source:      models.SourcePolicy,
			}
		}
		policyErr = res.Err
	}

	props := finalizeProportions(RuleBasedProportions())
	return AllocationResult{
		Amounts:     toAmounts(props, total),
		Proportions: props,
		Source:      models.SourceRuleBased,
		PolicyErr:   policyErr,
	}
}

// RuleBasedProportions returns the fallback split in canonical order.
func RuleBasedProportions() []float64 {
	props := make([]float64, len(models.BudgetCategories))
	for i, c := range models.BudgetCategories {
		props[i] = ruleBasedSplit[c]
	}
	return props
}

func sanitizeProportions(props []float64) ([]float64, error) {
	if len(props) != len(models.BudgetCategories) {
		return nil, external.NewServiceError("policy", external.CodeBadResponse,
			fmt.Sprintf("expected %d proportions, got %d", len(models.BudgetCategories), len(props)), nil)
	}
	var sum float64
	out := make([]float64, len(props))
	for i, p := range props {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, external.NewServiceError("policy", external.CodeBadResponse,
				fmt.Sprintf("invalid proportion %v for %s", p, models.BudgetCategories[i]), nil)
		}
		out[i] = p
		sum += p
	}
	if sum <= 0 {
		return nil, external.NewServiceError("policy", external.CodeBadResponse, "proportions sum to zero", nil)
	}
	return out, nil
}

// AdjustForRisk scales savings and entertainment by risk tolerance.
func AdjustForRisk(props []float64, tolerance models.RiskTolerance) []float64 {
	out := append([]float64(nil), props...)
	savings := models.CategoryIndex(models.CategorySavings)
	ent := models.CategoryIndex(models.CategoryEntertainment)
	switch tolerance {
	case models.RiskLow:
		out[savings] *= 1.3
		out[ent] *= 0.7
	case models.RiskHigh:
		out[savings] *= 0.8
		out[ent] *= 1.2
	}
	return out
}

// EnforceEssentialMinimums raises each essential below its floor and pulls
// the deficit from the donor categories, each donor giving up at most half
// of its current share per pass.
func EnforceEssentialMinimums(props []float64) []float64 {
	out := append([]float64(nil), props...)
	for _, f := range essentialFloors {
		idx := models.CategoryIndex(f.category)
		if out[idx] >= f.min {
			continue
		}
		deficit := f.min - out[idx]
		out[idx] = f.min
		for _, donor := range donorCategories {
			d := models.CategoryIndex(donor)
			reduction := math.Min(out[d]*0.5, deficit/float64(len(donorCategories)))
			out[d] -= reduction
			deficit -= reduction
			if deficit <= 0 {
				break
			}
		}
	}
	return out
}

func normalize(props []float64) []float64 {
	var sum float64
	for _, p := range props {
		sum += p
	}
	out := make([]float64, len(props))
	if sum <= 0 {
		return out
	}
	for i, p := range props {
		out[i] = p / sum
	}
	return out
}

// projectFloors pins essentials that fell below their floor after
// normalization and rescales the free categories so the total stays 1.
// Floors sum to 0.45, so one round per essential is enough.
func projectFloors(props []float64) []float64 {
	out := append([]float64(nil), props...)
	pinned := make(map[int]float64, len(essentialFloors))
	for round := 0; round <= len(essentialFloors); round++ {
		violated := false
		for _, f := range essentialFloors {
			idx := models.CategoryIndex(f.category)
			if _, ok := pinned[idx]; !ok && out[idx] < f.min-floorTolerance {
				pinned[idx] = f.min
				violated = true
			}
		}
		if !violated {
			break
		}

		var pinnedSum, freeSum float64
		for i := range out {
			if floor, ok := pinned[i]; ok {
				out[i] = floor
				pinnedSum += floor
			} else {
				freeSum += out[i]
			}
		}
		remaining := 1 - pinnedSum
		if freeSum <= 0 {
			out[models.CategoryIndex(models.CategoryMiscellaneous)] = remaining
			continue
		}
		scale := remaining / freeSum
		for i := range out {
			if _, ok := pinned[i]; !ok {
				out[i] *= scale
			}
		}
	}
	return out
}

func finalizeProportions(props []float64) []float64 {
	return projectFloors(normalize(EnforceEssentialMinimums(props)))
}

func toAmounts(props []float64, total float64) models.Allocation {
	alloc := make(models.Allocation, len(props))
	for i, c := range models.BudgetCategories {
		alloc[c] = props[i] * total
	}
	return alloc
}

// BuildProfile derives the policy features from metrics and the raw
// transactions.
func BuildProfile(m models.Metrics, txns []models.Transaction, prefs models.Preferences) policy.Profile {
	p := policy.DefaultProfile()
	p.AvgIncome = m.TotalIncome
	p.IncomeVolatility = m.IncomeVolatility
	if m.TotalIncome <= 0 {
		p.IncomeVolatility = 0.5
	}
	p.SavingsRate = m.SavingsRate / 100
	p.DaysSinceIncome = daysSinceIncome(txns)
	if m.TotalIncome > 0 {
		p.ExpensePressure = math.Min(m.TotalExpenses/m.TotalIncome, 1)
	}
	if prefs.EmergencyFundMonths > 0 {
		p.EmergencyMonths = prefs.EmergencyFundMonths
	}
	return p
}

// daysSinceIncome measures from the last inflow to the latest transaction.
func daysSinceIncome(txns []models.Transaction) float64 {
	if len(txns) == 0 {
		return 30
	}
	var latest, lastIncome = txns[0].Date, txns[0].Date
	seenIncome := false
	for _, t := range txns {
		if t.Date.After(latest) {
			latest = t.Date
		}
		if t.IsInflow() && (!seenIncome || t.Date.After(lastIncome)) {
			lastIncome = t.Date
			seenIncome = true
		}
	}
	if !seenIncome {
		return 30
	}
	return math.Floor(latest.Sub(lastIncome).Hours() / 24)
}

// ExplainAllocation produces the threshold-triggered advisory messages.
func ExplainAllocation(alloc models.Allocation, volatility float64) []string {
	var out []string

	savingsPct := alloc.Share(models.CategorySavings) * 100
	switch {
	case savingsPct >= 20:
		out = append(out, fmt.Sprintf("✅ Excellent %.1f%% savings allocation builds your financial cushion", savingsPct))
	case savingsPct >= 10:
		out = append(out, fmt.Sprintf("💰 %.1f%% to savings is a solid start. Aim for 15-20%% over time.", savingsPct))
	default:
		out = append(out, fmt.Sprintf("⚠️ Only %.1f%% savings. Try reducing discretionary spending.", savingsPct))
	}

	if volatility > 0.3 {
		out = append(out, "📊 High income variability detected - prioritized emergency fund building")
	}
	if foodPct := alloc.Share(models.CategoryFood) * 100; foodPct < 15 {
		out = append(out, fmt.Sprintf("🍽️ Food budget at %.1f%% - ensure adequate nutrition", foodPct))
	}
	if entPct := alloc.Share(models.CategoryEntertainment) * 100; entPct > 15 {
		out = append(out, fmt.Sprintf("🎭 Entertainment at %.1f%% - consider if this aligns with your goals", entPct))
	}
	return out
}

// FallbackBudgetAdvice is used when no text generator answers.
func FallbackBudgetAdvice(alloc models.Allocation, m models.Metrics, currency string) models.BudgetAdvice {
	advice := models.BudgetAdvice{
		Assessment:          "Budget needs optimization to increase savings",
		EmergencyFundAmount: m.TotalExpenses * 3,
	}
	if m.SavingsRate >= 15 {
		advice.Assessment = "Good budget allocation with healthy savings rate"
	} else {
		advice.Adjustments = append(advice.Adjustments,
			"Reduce discretionary spending by 10% to boost savings",
			"Look for cheaper alternatives for recurring expenses",
		)
	}
	advice.Adjustments = append(advice.Adjustments,
		"Set up automatic savings transfer on income days",
		"Track daily expenses to identify leakage",
	)

	total := alloc.Total()
	ranked := rankAllocation(alloc)
	if len(ranked) >= 3 {
		end := min(5, len(ranked))
		for _, c := range ranked[2:end] {
			if c.Amount > total*0.15 {
				advice.ReductionOpportunities = append(advice.ReductionOpportunities,
					fmt.Sprintf("Review %s spending (%s)", c.Category, Money(currency, c.Amount)))
			}
		}
	}
	if len(advice.ReductionOpportunities) == 0 {
		advice.ReductionOpportunities = []string{"All categories seem reasonable"}
	}
	return advice
}

// rankAllocation sorts categories by amount, ties in canonical order.
func rankAllocation(alloc models.Allocation) []models.CategorySpend {
	out := make([]models.CategorySpend, 0, len(alloc))
	for _, c := range models.BudgetCategories {
		if v, ok := alloc[c]; ok {
			out = append(out, models.CategorySpend{Category: c, Amount: v})
		}
	}
	extra := make([]string, 0)
	for c := range alloc {
		if models.CategoryIndex(c) < 0 {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	for _, c := range extra {
		out = append(out, models.CategorySpend{Category: c, Amount: alloc[c]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// FormatAllocation renders the allocation largest first, for prompts.
func FormatAllocation(alloc models.Allocation, currency string) string {
	total := alloc.Total()
	var lines []string
	for _, c := range rankAllocation(alloc) {
		pct := 0.0
		if total > 0 {
			pct = c.Amount / total * 100
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (%.1f%%)", c.Category, Money(currency, c.Amount), pct))
	}
	return strings.Join(lines, "\n")
}
