package models

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

const DefaultTargetSavingsRate = 0.2

type Preferences struct {
	TargetSavingsRate   float64       `json:"target_savings_rate" validate:"gte=0,lte=0.5"`
	RiskTolerance       RiskTolerance `json:"risk_tolerance" validate:"oneof=low medium high"`
	EmergencyFundMonths float64       `json:"emergency_fund_months" validate:"gte=0"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		TargetSavingsRate: DefaultTargetSavingsRate,
		RiskTolerance:     RiskMedium,
	}
}

// WithDefaults fills an empty risk tolerance. A zero savings rate is a valid
// choice and is kept.
func (p Preferences) WithDefaults() Preferences {
	if p.RiskTolerance == "" {
		p.RiskTolerance = RiskMedium
	}
	return p
}
