package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/models"
)

const (
	noTransactionsToMonitor = "No transactions to monitor"
	interpretedAlerts       = 5
)

// Monitor runs the anomaly, overrun and duplicate detectors.
type Monitor struct {
	deps Deps
}

func NewMonitor(deps Deps) *Monitor {
	return &Monitor{deps: deps.withDefaults()}
}

func (mo *Monitor) Name() string { return consts.Monitor }

func (mo *Monitor) Process(ctx context.Context, state *models.AnalysisState) error {
	if len(state.Transactions) == 0 {
		state.MonitoringAlerts = &models.MonitoringAlerts{
			Alerts:  []models.Alert{},
			Summary: noTransactionsToMonitor,
			Error:   noTransactionsToMonitor,
		}
		return nil
	}

	var budgets map[string]float64
	if b := state.BudgetRecommendation; b != nil {
		budgets = b.Allocation
	}
	alerts, requiresAction := analysis.MonitorTransactions(state.Transactions, budgets, mo.deps.Currency)

	interpretation := models.AlertInterpretation{Summary: "All transactions normal"}
	if len(alerts) > 0 {
		fallback := models.AlertInterpretation{Summary: "Monitoring alerts detected", ActionNeeded: true}
		interpretation, _ = complete(ctx, mo.deps, "monitor", map[string]any{
			"transaction_count": len(state.Transactions),
			"alerts":            formatAlerts(alerts),
		}, fallback)
		if interpretation.Summary == "" {
			interpretation = fallback
		}
	}

	state.MonitoringAlerts = &models.MonitoringAlerts{
		Alerts:         alerts,
		AlertCount:     len(alerts),
		Interpretation: &interpretation,
		RequiresAction: requiresAction,
	}
	return nil
}

func formatAlerts(alerts []models.Alert) string {
	if len(alerts) > interpretedAlerts {
		alerts = alerts[:interpretedAlerts]
	}
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", a.Severity, a.Kind, a.Message))
	}
	return strings.Join(lines, "\n")
}
