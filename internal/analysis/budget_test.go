package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/models"
	"github.com/dyike/FinSage/internal/policy"
)

var noRetry = external.Options{Timeout: time.Second}

var tolerances = []models.RiskTolerance{models.RiskLow, models.RiskMedium, models.RiskHigh}

func uniform() []float64 {
	props := make([]float64, len(models.BudgetCategories))
	for i := range props {
		props[i] = 1 / float64(len(props))
	}
	return props
}

func assertAllocationInvariants(t *testing.T, res AllocationResult, total float64) {
	t.Helper()
	var sum float64
	for _, c := range models.BudgetCategories {
		v, ok := res.Amounts[c]
		require.True(t, ok, "missing category %s", c)
		assert.GreaterOrEqual(t, v, 0.0, c)
		sum += v
	}
	assert.Less(t, math.Abs(sum-total), 1e-6)

	var propSum float64
	for _, p := range res.Proportions {
		propSum += p
	}
	assert.InDelta(t, 1.0, propSum, 1e-9)

	for _, f := range essentialFloors {
		p := res.Proportions[models.CategoryIndex(f.category)]
		assert.GreaterOrEqual(t, p, f.min-1e-9, "%s below floor", f.category)
	}
}

func TestAllocateRuleBasedWithoutPolicy(t *testing.T) {
	a := NewBudgetAllocator(nil, noRetry)

	for _, tol := range tolerances {
		res := a.Allocate(context.Background(), policy.FeatureVector{}, 24000, tol)

		assert.Equal(t, models.SourceRuleBased, res.Source)
		assert.ErrorIs(t, res.PolicyErr, ErrNoPolicy)
		assertAllocationInvariants(t, res, 24000)
	}
}

func TestAllocateRuleBasedIgnoresTolerance(t *testing.T) {
	a := NewBudgetAllocator(nil, noRetry)
	low := a.Allocate(context.Background(), policy.FeatureVector{}, 1000, models.RiskLow)
	high := a.Allocate(context.Background(), policy.FeatureVector{}, 1000, models.RiskHigh)

	assert.Equal(t, low.Proportions, high.Proportions)
	assert.InDelta(t, 0.10, low.Proportions[models.CategoryIndex(models.CategorySavings)], 1e-9)
}

func TestAllocateWithPolicy(t *testing.T) {
	for _, tol := range tolerances {
		t.Run(string(tol), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			p := policy.NewMockPolicyFunction(ctrl)
			p.EXPECT().Allocate(gomock.Any(), gomock.Any(), 50000.0, tol).Return(uniform(), nil)

			res := NewBudgetAllocator(p, noRetry).Allocate(context.Background(), policy.FeatureVector{}, 50000, tol)

			assert.Equal(t, models.SourcePolicy, res.Source)
			assert.NoError(t, res.PolicyErr)
			assertAllocationInvariants(t, res, 50000)
		})
	}
}

func TestAllocateRiskToleranceShiftsSavings(t *testing.T) {
	props := []float64{0.25, 0.10, 0.15, 0.08, 0.10, 0.07, 0.20, 0.05}
	savings := func(tol models.RiskTolerance) float64 {
		ctrl := gomock.NewController(t)
		p := policy.NewMockPolicyFunction(ctrl)
		p.EXPECT().Allocate(gomock.Any(), gomock.Any(), gomock.Any(), tol).Return(props, nil)
		res := NewBudgetAllocator(p, noRetry).Allocate(context.Background(), policy.FeatureVector{}, 1000, tol)
		return res.Amounts[models.CategorySavings]
	}

	low, medium, high := savings(models.RiskLow), savings(models.RiskMedium), savings(models.RiskHigh)
	assert.Greater(t, low, medium)
	assert.Greater(t, medium, high)
}

func TestAllocateFallsBackOnPolicyFailure(t *testing.T) {
	tests := []struct {
		name  string
		props []float64
		err   error
	}{
		{"error", nil, external.NewServiceError("policy", external.CodeUnavailable, "down", nil)},
		{"wrong length", []float64{0.5, 0.5}, nil},
		{"negative", []float64{0.5, -0.1, 0.2, 0.1, 0.1, 0.1, 0.05, 0.05}, nil},
		{"zero sum", make([]float64, 8), nil},
		{"nan", []float64{math.NaN(), 0.1, 0.2, 0.1, 0.1, 0.1, 0.2, 0.2}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			p := policy.NewMockPolicyFunction(ctrl)
			p.EXPECT().Allocate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.props, tt.err).Times(1)

			res := NewBudgetAllocator(p, noRetry).Allocate(context.Background(), policy.FeatureVector{}, 8000, models.RiskMedium)

			assert.Equal(t, models.SourceRuleBased, res.Source)
			var svcErr *external.ServiceError
			require.True(t, errors.As(res.PolicyErr, &svcErr))
			assertAllocationInvariants(t, res, 8000)
		})
	}
}

func TestAllocateSumHoldsAcrossBudgets(t *testing.T) {
	a := NewBudgetAllocator(nil, noRetry)
	for _, total := range []float64{0, 1, 999.99, 12345.67, 1e7} {
		t.Run(fmt.Sprintf("%.2f", total), func(t *testing.T) {
			assertAllocationInvariants(t, a.Allocate(context.Background(), policy.FeatureVector{}, total, models.RiskMedium), total)
		})
	}
}

func TestAllocateClampsNegativeBudget(t *testing.T) {
	res := NewBudgetAllocator(nil, noRetry).Allocate(context.Background(), policy.FeatureVector{}, -50, models.RiskMedium)
	assert.Equal(t, 0.0, res.Amounts.Total())
}

func TestEnforceEssentialMinimumsCapsDonors(t *testing.T) {
	// savings 0 needs 0.10; entertainment gives 0.05, miscellaneous 0.025
	props := []float64{0.25, 0.10, 0.30, 0.08, 0.10, 0.07, 0, 0.10}
	out := EnforceEssentialMinimums(props)

	assert.InDelta(t, 0.10, out[models.CategoryIndex(models.CategorySavings)], 1e-12)
	assert.InDelta(t, 0.05, out[models.CategoryIndex(models.CategoryEntertainment)], 1e-12)
	assert.InDelta(t, 0.075, out[models.CategoryIndex(models.CategoryMiscellaneous)], 1e-12)
	assert.Equal(t, 0.0, props[models.CategoryIndex(models.CategorySavings)], "input must not be mutated")
}

func TestProjectFloorsPinsEssentials(t *testing.T) {
	props := make([]float64, len(models.BudgetCategories))
	props[models.CategoryIndex(models.CategoryTransport)] = 1

	out := projectFloors(props)
	assert.InDelta(t, 0.20, out[models.CategoryIndex(models.CategoryFood)], 1e-12)
	assert.InDelta(t, 0.10, out[models.CategoryIndex(models.CategorySavings)], 1e-12)
	assert.InDelta(t, 0.55, out[models.CategoryIndex(models.CategoryTransport)], 1e-12)
}

func TestProjectFloorsWithoutFreeMass(t *testing.T) {
	out := projectFloors(make([]float64, len(models.BudgetCategories)))

	var sum float64
	for _, p := range out {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 0.55, out[models.CategoryIndex(models.CategoryMiscellaneous)], 1e-12)
}

func TestBuildProfile(t *testing.T) {
	txns := []models.Transaction{inflow(0, 40000), outflow(2, 10000, "rent"), outflow(9, 30000, "food")}
	m := CalculateMetrics(txns)
	p := BuildProfile(m, txns, models.Preferences{EmergencyFundMonths: 3})

	assert.Equal(t, 40000.0, p.AvgIncome)
	assert.Equal(t, 0.0, p.SavingsRate)
	assert.Equal(t, 9.0, p.DaysSinceIncome)
	assert.Equal(t, 1.0, p.ExpensePressure)
	assert.Equal(t, 3.0, p.EmergencyMonths)

	v := p.Vector()
	assert.InDelta(t, 0.4, v[0], 1e-12)
	assert.InDelta(t, 0.3, v[3], 1e-12)
	assert.InDelta(t, 0.5, v[5], 1e-12)
}

func TestBuildProfileWithoutIncome(t *testing.T) {
	txns := []models.Transaction{outflow(0, 100, "food")}
	p := BuildProfile(CalculateMetrics(txns), txns, models.DefaultPreferences())

	assert.Equal(t, 0.5, p.IncomeVolatility)
	assert.Equal(t, 0.5, p.ExpensePressure)
	assert.Equal(t, 30.0, p.DaysSinceIncome)
	assert.Equal(t, 1.5, p.EmergencyMonths)
}

func TestExplainAllocation(t *testing.T) {
	alloc := models.Allocation{
		models.CategoryFood:          1000,
		models.CategoryEntertainment: 2000,
		models.CategorySavings:       2500,
		models.CategoryMiscellaneous: 4500,
	}
	msgs := ExplainAllocation(alloc, 0.4)

	assert.Equal(t, []string{
		"✅ Excellent 25.0% savings allocation builds your financial cushion",
		"📊 High income variability detected - prioritized emergency fund building",
		"🍽️ Food budget at 10.0% - ensure adequate nutrition",
		"🎭 Entertainment at 20.0% - consider if this aligns with your goals",
	}, msgs)

	low := ExplainAllocation(models.Allocation{models.CategoryFood: 900, models.CategorySavings: 100}, 0)
	assert.Equal(t, []string{"💰 10.0% to savings is a solid start. Aim for 15-20% over time."}, low)
}

func TestFallbackBudgetAdvice(t *testing.T) {
	alloc := models.Allocation{
		models.CategoryFood:          3000,
		models.CategoryUtilities:     2500,
		models.CategoryTransport:     2000,
		models.CategoryEntertainment: 1800,
		models.CategoryMiscellaneous: 700,
	}
	advice := FallbackBudgetAdvice(alloc, models.Metrics{SavingsRate: 8, TotalExpenses: 9000}, DefaultCurrency)

	assert.Equal(t, "Budget needs optimization to increase savings", advice.Assessment)
	assert.Len(t, advice.Adjustments, 4)
	assert.Equal(t, "Reduce discretionary spending by 10% to boost savings", advice.Adjustments[0])
	assert.Equal(t, []string{
		"Review transport spending (₹2000.00)",
		"Review entertainment spending (₹1800.00)",
	}, advice.ReductionOpportunities)
	assert.Equal(t, 27000.0, advice.EmergencyFundAmount)

	healthy := FallbackBudgetAdvice(models.Allocation{models.CategoryFood: 100}, models.Metrics{SavingsRate: 20}, DefaultCurrency)
	assert.Equal(t, "Good budget allocation with healthy savings rate", healthy.Assessment)
	assert.Equal(t, []string{"Set up automatic savings transfer on income days", "Track daily expenses to identify leakage"}, healthy.Adjustments)
	assert.Equal(t, []string{"All categories seem reasonable"}, healthy.ReductionOpportunities)
}
