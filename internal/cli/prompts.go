package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/FinSage/internal/models"
)

// validateTransactionsPath accepts an existing .csv or .json file
func validateTransactionsPath(val interface{}) error {
	str := strings.TrimSpace(fmt.Sprint(val))
	if str == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	switch strings.ToLower(filepath.Ext(str)) {
	case ".csv", ".json":
	default:
		return fmt.Errorf("only .csv and .json files are supported")
	}
	info, err := os.Stat(str)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", str, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", str)
	}
	return nil
}

// validateSavingsRate accepts a rate between 0 and 0.5
func validateSavingsRate(val interface{}) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(val)), 64)
	if err != nil {
		return fmt.Errorf("enter a number such as 0.2")
	}
	if v < 0 || v > 0.5 {
		return fmt.Errorf("savings rate must be between 0 and 0.5")
	}
	return nil
}

func validateNonNegative(val interface{}) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(val)), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v < 0 {
		return fmt.Errorf("value cannot be negative")
	}
	return nil
}

// PromptForFile prompts for the transactions file to analyze
func PromptForFile() (string, error) {
	var path string
	prompt := &survey.Input{
		Message: "Transactions file (.csv or .json):",
		Help:    "CSV needs date and amount columns; kind, category and description are optional",
	}
	if err := survey.AskOne(prompt, &path, survey.WithValidator(validateTransactionsPath)); err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// PromptForUserID prompts for the user the run is recorded under
func PromptForUserID() (string, error) {
	var userID string
	prompt := &survey.Input{
		Message: "User ID:",
		Default: defaultUserID,
	}
	if err := survey.AskOne(prompt, &userID, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(userID), nil
}

// PromptForPreferences asks for the savings rate, risk tolerance and
// emergency fund, starting from defaults.
func PromptForPreferences(defaults models.Preferences) (models.Preferences, error) {
	answers := struct {
		Rate      string
		Risk      string
		Emergency string
	}{}

	questions := []*survey.Question{
		{
			Name: "rate",
			Prompt: &survey.Input{
				Message: "Target savings rate (0 to 0.5):",
				Default: strconv.FormatFloat(defaults.TargetSavingsRate, 'f', -1, 64),
			},
			Validate: validateSavingsRate,
		},
		{
			Name: "risk",
			Prompt: &survey.Select{
				Message: "Risk tolerance:",
				Options: []string{string(models.RiskLow), string(models.RiskMedium), string(models.RiskHigh)},
				Default: string(defaults.RiskTolerance),
			},
		},
		{
			Name: "emergency",
			Prompt: &survey.Input{
				Message: "Months of expenses already held as an emergency fund:",
				Default: strconv.FormatFloat(defaults.EmergencyFundMonths, 'f', -1, 64),
			},
			Validate: validateNonNegative,
		},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return models.Preferences{}, err
	}

	rate, _ := strconv.ParseFloat(strings.TrimSpace(answers.Rate), 64)
	months, _ := strconv.ParseFloat(strings.TrimSpace(answers.Emergency), 64)
	return models.Preferences{
		TargetSavingsRate:   rate,
		RiskTolerance:       models.RiskTolerance(answers.Risk),
		EmergencyFundMonths: months,
	}, nil
}

// PromptForSavePath asks whether to save the report as JSON
func PromptForSavePath(defaultPath string) (string, error) {
	save := false
	if err := survey.AskOne(&survey.Confirm{Message: "Save the report as JSON?", Default: false}, &save); err != nil {
		return "", err
	}
	if !save {
		return "", nil
	}
	var path string
	if err := survey.AskOne(&survey.Input{Message: "Report path:", Default: defaultPath}, &path); err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// ConfirmContinue asks whether to run another analysis
func ConfirmContinue() (bool, error) {
	again := false
	err := survey.AskOne(&survey.Confirm{Message: "Analyze another file?", Default: false}, &again)
	return again, err
}
