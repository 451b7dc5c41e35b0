package policy

import (
	"context"

	"github.com/dyike/FinSage/internal/models"
)

const FeatureDim = 10

// FeatureVector is the normalized input of the allocation policy. Every
// component lies in [0,1].
type FeatureVector [FeatureDim]float64

//go:generate mockgen -source=policy.go -destination=policy_mock.go -package=policy

// PolicyFunction returns allocation proportions, one per
// models.BudgetCategories entry.
type PolicyFunction interface {
	Allocate(ctx context.Context, features FeatureVector, budget float64, tolerance models.RiskTolerance) ([]float64, error)
}

// Profile holds the raw financial signals that feed the feature vector.
type Profile struct {
	AvgIncome          float64
	IncomeVolatility   float64
	SavingsRate        float64 // fraction, not percent
	DaysSinceIncome    float64
	ExpensePressure    float64
	EmergencyMonths    float64
	DebtRatio          float64
	OverspendFrequency float64
	SeasonalFactor     float64
	GoalProgress       float64
}

// DefaultProfile carries the neutral values used when a signal is unknown.
func DefaultProfile() Profile {
	return Profile{
		DaysSinceIncome:    3,
		ExpensePressure:    0.5,
		EmergencyMonths:    1.5,
		OverspendFrequency: 0.2,
		SeasonalFactor:     0.5,
		GoalProgress:       0.3,
	}
}

// Vector normalizes the profile and clamps each component to [0,1].
func (p Profile) Vector() FeatureVector {
	return FeatureVector{
		clamp01(p.AvgIncome / 100000),
		clamp01(p.IncomeVolatility),
		clamp01(p.SavingsRate),
		clamp01(p.DaysSinceIncome / 30),
		clamp01(p.ExpensePressure),
		clamp01(p.EmergencyMonths / 6),
		clamp01(p.DebtRatio),
		clamp01(p.OverspendFrequency),
		clamp01(p.SeasonalFactor),
		clamp01(p.GoalProgress),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
