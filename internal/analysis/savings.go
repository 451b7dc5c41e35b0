package analysis

import (
	"fmt"
	"strings"

	"github.com/dyike/FinSage/internal/models"
)

type milestoneStep struct {
	period      string
	fraction    float64
	description string
	reward      string
}

var milestoneSteps = []milestoneStep{
	{"Week 1", 0.25, "Great start! First week savings", "🎉 Treat yourself to your favorite tea"},
	{"Week 2", 0.50, "Halfway there! Building momentum", "🌟 You're crushing it - share your progress"},
	{"Week 3", 0.75, "Almost there! Final push", "💪 Download that book you've been wanting"},
	{"Month End", 1.00, "🎯 GOAL ACHIEVED! You did it!", "🏆 Celebrate with a special meal (budget-friendly)"},
}

type challengeTemplate struct {
	name        string
	description string
	savings     string
	difficulty  string
}

// Texts with {currency} take the currency symbol.
var savingsChallenges = []challengeTemplate{
	{"No-Spend Weekend", "Go one weekend without spending on non-essentials", "{currency}500-1000", "Medium"},
	{"Round-Up Savings", "Round up every payment to nearest {currency}10 and save the difference", "{currency}300-500/month", "Easy"},
	{"Home Cooking Week", "Cook all meals at home for 7 days", "{currency}800-1500", "Medium"},
	{"Side Hustle Sprint", "Take on 1 extra gig or project this week", "{currency}1000-3000", "Hard"},
}

var defaultMicroActions = []string{
	"Set up auto-transfer: save first, spend later",
	"Brew coffee at home instead of café (save {currency}100/day)",
	"Cancel one unused subscription this week",
	"Pack lunch twice this week (save {currency}200)",
	"Use UPI cashback offers strategically",
}

var defaultPsychologyTips = []string{
	"Make savings automatic - you won't miss what you don't see",
	"Label your savings with a goal - makes it harder to touch",
	"Share your goal with a friend for accountability",
}

// Milestones splits the target into quarter steps with a reward each.
func Milestones(target float64) []models.Milestone {
	out := make([]models.Milestone, 0, len(milestoneSteps))
	for _, s := range milestoneSteps {
		out = append(out, models.Milestone{
			Period:       s.period,
			TargetAmount: target * s.fraction,
			Description:  s.description,
			Reward:       s.reward,
		})
	}
	return out
}

// Challenges returns the weekly savings challenges priced in currency.
func Challenges(currency string) []models.Challenge {
	out := make([]models.Challenge, 0, len(savingsChallenges))
	for _, c := range savingsChallenges {
		out = append(out, models.Challenge{
			Name:             c.name,
			Description:      withCurrency(c.description, currency),
			PotentialSavings: withCurrency(c.savings, currency),
			Difficulty:       c.difficulty,
		})
	}
	return out
}

func microActions(currency string) []string {
	out := make([]string, 0, len(defaultMicroActions))
	for _, a := range defaultMicroActions {
		out = append(out, withCurrency(a, currency))
	}
	return out
}

func withCurrency(text, currency string) string {
	return strings.ReplaceAll(text, "{currency}", currency)
}

// FallbackSavingsPlan is the rule-based coaching plan. An ambitious target,
// above 30% of income, is halved and capped at 15% of income.
func FallbackSavingsPlan(m models.Metrics, target float64, currency string) models.SavingsPlan {
	var encouragement string
	switch rate := m.SavingsRate; {
	case rate >= 15:
		encouragement = fmt.Sprintf("Amazing! You're already saving %.1f%% - that's better than most people. Let's push it even further!", rate)
	case rate >= 5:
		encouragement = fmt.Sprintf("Good start with %.1f%% savings rate. Small improvements can make a big difference!", rate)
	case rate > 0:
		encouragement = "You've started saving - that's the hardest part! Now let's build on this foundation."
	default:
		encouragement = "Every savings journey starts with a single rupee. Today is your day one!"
	}

	goal := models.SavingsGoal{Amount: target, Description: "Your target is realistic - let's make it happen!"}
	if target > m.TotalIncome*0.3 {
		goal = models.SavingsGoal{
			Amount:      min(target*0.5, m.TotalIncome*0.15),
			Description: "Start with a achievable goal - we'll scale up gradually",
		}
	}

	return models.SavingsPlan{
		Encouragement:        encouragement,
		PrimaryGoal:          goal,
		MicroActions:         microActions(currency),
		PsychologyTips:       append([]string(nil), defaultPsychologyTips...),
		CelebrationMilestone: fmt.Sprintf("When you hit %s%.0f, treat yourself to your favorite street food (%s50 max)!", currency, goal.Amount, currency),
	}
}
