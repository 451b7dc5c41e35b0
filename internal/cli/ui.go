package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/display"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner(w io.Writer) {
	banner := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Align(lipgloss.Center).
		Width(60).
		Render("💰 FinSage\nPersonal finance analysis pipeline")
	fmt.Fprintln(w, banner)

	fmt.Fprintln(w, headerStyle.Render("Stages:"))
	labels := make([]string, 0, len(consts.Stages))
	for _, s := range consts.Stages {
		labels = append(labels, consts.StageLabel(s))
	}
	fmt.Fprintf(w, "   %s\n\n", strings.Join(labels, " → "))
}

// DisplayRunSummary prints the run id and the stage outcomes
func DisplayRunSummary(w io.Writer, outcome *AnalysisOutcome) {
	if outcome == nil || outcome.Result == nil {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Stages"))
	fmt.Fprint(w, display.RenderStages(outcome.Result.Events))
	if outcome.RunID != "" {
		fmt.Fprintf(w, "\n%s %s\n", completedStyle.Render("Run recorded:"), outcome.RunID)
	}
}
