package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/analysis"
	"github.com/dyike/FinSage/internal/graph"
	"github.com/dyike/FinSage/internal/models"
	"github.com/dyike/FinSage/internal/storage/sqlite"
)

const panelWidth = 80

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1).
			Width(panelWidth)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// ResultsDisplay renders analysis reports for the terminal.
type ResultsDisplay struct {
	currency string
}

func NewResultsDisplay(currency string) *ResultsDisplay {
	if currency == "" {
		currency = analysis.DefaultCurrency
	}
	return &ResultsDisplay{currency: currency}
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 60:
		return goodStyle
	case score >= 40:
		return warnStyle
	default:
		return badStyle
	}
}

func severityStyle(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityUrgent:
		return badStyle
	case models.SeverityWarning:
		return warnStyle
	default:
		return mutedStyle
	}
}

func (d *ResultsDisplay) money(v float64) string {
	return analysis.Money(d.currency, v)
}

// Render returns the full report as styled text.
func (d *ResultsDisplay) Render(report *models.Report) string {
	if report == nil {
		return mutedStyle.Render("(no report)") + "\n"
	}
	sections := []string{
		titleStyle.Render(fmt.Sprintf("💰 Financial Report for %s", report.UserID)),
		d.renderSummary(report),
		d.renderBudget(report.BudgetPlan),
		d.renderRisk(report.RiskProfile),
		d.renderSavings(report.SavingsPlan),
		d.renderAlerts(report.Alerts),
		d.renderErrors(report.Errors),
	}
	var b strings.Builder
	for _, s := range sections {
		if s == "" {
			continue
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

// Print writes the rendered report to w.
func (d *ResultsDisplay) Print(w io.Writer, report *models.Report) error {
	_, err := io.WriteString(w, d.Render(report))
	return err
}

func (d *ResultsDisplay) renderSummary(report *models.Report) string {
	s := report.ExecutiveSummary
	var b strings.Builder
	b.WriteString(headingStyle.Render("📈 Executive Summary") + "\n")
	fmt.Fprintf(&b, "Health score: %s  %s\n",
		scoreStyle(report.HealthScore).Render(fmt.Sprintf("%.1f/100", report.HealthScore)), s.OverallStatus)
	fmt.Fprintf(&b, "Income: %s  Expenses: %s  Net: %s  Savings rate: %.1f%%\n",
		d.money(s.KeyMetrics.MonthlyIncome), d.money(s.KeyMetrics.MonthlyExpenses),
		d.money(s.KeyMetrics.NetCashFlow), s.KeyMetrics.SavingsRate)
	fmt.Fprintf(&b, "Savings target: %s  Risk level: %s\n", d.money(s.SavingsTarget), s.RiskLevel)
	if len(s.TopInsights) > 0 {
		b.WriteString("\nInsights:\n")
		for _, in := range s.TopInsights {
			b.WriteString("  • " + in + "\n")
		}
	}
	if len(s.PriorityActions) > 0 {
		b.WriteString("\nPriority actions:\n")
		for i, a := range s.PriorityActions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, a)
		}
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (d *ResultsDisplay) renderBudget(plan *models.BudgetRecommendation) string {
	if plan == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("🧾 Budget Plan") + "\n")
	if plan.Error != "" {
		b.WriteString(mutedStyle.Render(plan.Error))
		return sectionStyle.Render(b.String())
	}
	fmt.Fprintf(&b, "Spendable: %s  (source: %s)\n", d.money(plan.SpendableBudget), plan.Source)
	b.WriteString(analysis.FormatAllocation(plan.Allocation, d.currency) + "\n")
	for _, e := range plan.Explanations {
		b.WriteString(mutedStyle.Render("  "+e) + "\n")
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (d *ResultsDisplay) renderRisk(risk *models.RiskAssessment) string {
	if risk == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("⚠️  Risk Profile") + "\n")
	if risk.Error != "" {
		b.WriteString(mutedStyle.Render(risk.Error))
		return sectionStyle.Render(b.String())
	}
	fmt.Fprintf(&b, "Overall risk: %.2f\n", risk.OverallRiskScore)
	for _, name := range models.RiskNames {
		score, ok := risk.Scores[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %-20s %-8s %s\n", analysis.RiskTitle(name), score.Level, score.Description)
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (d *ResultsDisplay) renderSavings(s *models.SavingsStrategy) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("🎯 Savings Plan") + "\n")
	if s.Error != "" {
		b.WriteString(mutedStyle.Render(s.Error))
		return sectionStyle.Render(b.String())
	}
	if s.Plan != nil {
		b.WriteString(s.Plan.Encouragement + "\n")
		fmt.Fprintf(&b, "Goal: %s (%s)\n", d.money(s.Plan.PrimaryGoal.Amount), s.Plan.PrimaryGoal.Description)
	}
	for _, m := range s.Milestones {
		fmt.Fprintf(&b, "  %-10s %s\n", m.Period, d.money(m.TargetAmount))
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (d *ResultsDisplay) renderAlerts(alerts *models.MonitoringAlerts) string {
	if alerts == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("🔔 Alerts") + "\n")
	if len(alerts.Alerts) == 0 {
		msg := alerts.Summary
		if msg == "" {
			msg = "All transactions normal"
		}
		b.WriteString(goodStyle.Render(msg))
		return sectionStyle.Render(b.String())
	}
	for _, a := range alerts.Alerts {
		tag := severityStyle(a.Severity).Render(fmt.Sprintf("[%s]", a.Severity))
		fmt.Fprintf(&b, "%s %s\n", tag, a.Message)
	}
	if alerts.Interpretation != nil && alerts.Interpretation.PriorityAction != "" {
		b.WriteString("→ " + alerts.Interpretation.PriorityAction + "\n")
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (d *ResultsDisplay) renderErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(badStyle.Render("Degraded stages:") + "\n")
	for _, e := range errs {
		b.WriteString("  " + e + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderStages lists how each stage of a run ended.
func RenderStages(events []graph.StageEvent) string {
	var b strings.Builder
	for _, ev := range events {
		mark := goodStyle.Render("✓")
		switch ev.Status {
		case consts.State_Failed:
			mark = badStyle.Render("✗")
		case consts.State_Degraded:
			mark = warnStyle.Render("~")
		}
		fmt.Fprintf(&b, "%s %-14s %s", mark, consts.StageLabel(ev.Stage), mutedStyle.Render(ev.Duration.String()))
		if ev.Message != "" {
			b.WriteString("  " + mutedStyle.Render(ev.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHistory renders stored runs as a table, newest first.
func RenderHistory(runs []sqlite.RunWithMeta) string {
	if len(runs) == 0 {
		return mutedStyle.Render("No analysis runs recorded yet.") + "\n"
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("%-36s  %-12s  %6s  %-9s  %s", "RUN", "USER", "SCORE", "STATUS", "CREATED")) + "\n")
	for _, r := range runs {
		status := goodStyle.Render(fmt.Sprintf("%-9s", r.Status))
		if r.Status == sqlite.StatusDegraded {
			status = warnStyle.Render(fmt.Sprintf("%-9s", r.Status))
		}
		fmt.Fprintf(&b, "%-36s  %-12s  %6.1f  %s  %s\n", r.ID, r.UserID, r.HealthScore, status, r.CreatedAt)
	}
	return b.String()
}

// RenderAllocationChart draws one bar per category scaled to its share.
func RenderAllocationChart(alloc models.Allocation, width int) string {
	if width <= 0 {
		width = 30
	}
	type row struct {
		name  string
		share float64
	}
	rows := make([]row, 0, len(alloc))
	for name := range alloc {
		rows = append(rows, row{name, alloc.Share(name)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].share != rows[j].share {
			return rows[i].share > rows[j].share
		}
		return rows[i].name < rows[j].name
	})
	var b strings.Builder
	for _, r := range rows {
		n := int(r.share*float64(width) + 0.5)
		fmt.Fprintf(&b, "%-15s %s %5.1f%%\n", r.name, strings.Repeat("█", n)+strings.Repeat("░", width-n), r.share*100)
	}
	return b.String()
}

// SaveReport writes the report as indented JSON, creating parent directories.
func SaveReport(report *models.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DisplayError shows formatted error messages
func DisplayError(err error, context string) {
	fmt.Println(badStyle.Render(fmt.Sprintf("❌ Error in %s:", context)))
	fmt.Printf("   %v\n", err)
}

// DisplayWarning shows formatted warning messages
func DisplayWarning(message string) {
	fmt.Println(warnStyle.Render("⚠️  Warning: ") + message)
}

// DisplaySuccess shows formatted success messages
func DisplaySuccess(message string) {
	fmt.Println(goodStyle.Render("✅ " + message))
}

// DisplayInfo shows formatted info messages
func DisplayInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}
