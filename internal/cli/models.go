package cli

import (
	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/graph"
	"github.com/dyike/FinSage/internal/models"
)

// UserSelections represents what the user asked to analyze
type UserSelections struct {
	File        string
	UserID      string
	Preferences models.Preferences
	SavePath    string
	NoRecord    bool
}

// AnalysisOutcome is one finished analysis and where it was stored
type AnalysisOutcome struct {
	RunID  string
	File   string
	Result *graph.RunResult
}

const defaultUserID = "default"

// preferencesFromConfig seeds preferences with the configured defaults.
func preferencesFromConfig(cfg config.Config) models.Preferences {
	return cfg.DefaultPreferences()
}
