package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/dyike/FinSage/internal/display"
)

// InteractiveSession walks the user through an analysis with prompts
type InteractiveSession struct {
	app      *App
	analyzer *Analyzer
}

func NewInteractiveSession(a *App) *InteractiveSession {
	return &InteractiveSession{app: a, analyzer: NewAnalyzer(a)}
}

// Start runs prompt-and-analyze rounds until the user stops or interrupts.
func (s *InteractiveSession) Start(ctx context.Context) error {
	DisplayWelcomeBanner(s.app.out)
	for {
		if err := s.runOnce(ctx); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				fmt.Fprintln(s.app.out, "👋 Goodbye!")
				return nil
			}
			display.DisplayError(err, "analysis")
		}
		again, err := ConfirmContinue()
		if err != nil || !again {
			fmt.Fprintln(s.app.out, "👋 Thank you for using FinSage!")
			return nil
		}
	}
}

func (s *InteractiveSession) runOnce(ctx context.Context) error {
	cfg := s.app.Config()

	file, err := PromptForFile()
	if err != nil {
		return err
	}
	userID, err := PromptForUserID()
	if err != nil {
		return err
	}
	prefs, err := PromptForPreferences(preferencesFromConfig(cfg))
	if err != nil {
		return err
	}
	savePath, err := PromptForSavePath(filepath.Join(cfg.ResultsDir, userID+"_report.json"))
	if err != nil {
		return err
	}

	fmt.Fprintln(s.app.out, titleStyle.Render(fmt.Sprintf("🔄 Analyzing %s for %s", filepath.Base(file), userID)))
	outcome, err := s.analyzer.RunAnalysis(ctx, UserSelections{
		File:        file,
		UserID:      userID,
		Preferences: prefs,
		SavePath:    savePath,
	})
	if err != nil {
		return err
	}

	if err := display.NewResultsDisplay(cfg.CurrencySymbol).Print(s.app.out, outcome.Result.Report); err != nil {
		return err
	}
	DisplayRunSummary(s.app.out, outcome)
	if savePath != "" {
		display.DisplaySuccess("Report saved to " + savePath)
	}
	return nil
}
