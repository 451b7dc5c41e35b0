package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/models"
)

const noRiskData = "No data for risk assessment"

// RiskAssessor scores the four named risks and ranks them.
type RiskAssessor struct {
	deps Deps
}

func NewRiskAssessor(deps Deps) *RiskAssessor {
	return &RiskAssessor{deps: deps.withDefaults()}
}

func (r *RiskAssessor) Name() string { return consts.RiskAssessor }

func (r *RiskAssessor) Process(ctx context.Context, state *models.AnalysisState) error {
	now := r.deps.Now()
	m := state.Metrics()
	if m == nil {
		state.RiskAssessment = &models.RiskAssessment{Error: noRiskData, Timestamp: now}
		return nil
	}

	scores := analysis.ScoreRisks(*m, state.Preferences.EmergencyFundMonths, r.deps.Currency)
	overall := analysis.OverallRisk(scores)

	vars := metricVars(*m, r.deps.Currency)
	vars["risk_scores"] = formatRiskScores(scores)
	vars["overall_risk"] = num(overall)
	fallback := analysis.RankRisks(scores)
	narrative, _ := complete(ctx, r.deps, "risk", vars, fallback)
	if narrative.OverallRiskLevel == "" || len(narrative.PriorityRisks) == 0 {
		narrative = fallback
	}

	state.RiskAssessment = &models.RiskAssessment{
		Scores:           scores,
		OverallRiskScore: overall,
		Narrative:        &narrative,
		Timestamp:        now,
	}
	return nil
}

func formatRiskScores(scores map[string]models.RiskScore) string {
	lines := make([]string, 0, len(scores))
	for _, name := range models.RiskNames {
		s, ok := scores[name]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %.1f (%s) %s", name, s.Score, s.Level, s.Description))
	}
	return strings.Join(lines, "\n")
}
