package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dyike/FinSage/internal/display"
	"github.com/dyike/FinSage/internal/models"
)

var Version = "v0.1.0"

// NewRootCmd creates the root command
func NewRootCmd(a *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finsage",
		Short: "FinSage - personal finance analysis",
		Long: `FinSage analyzes a transaction history through a fixed pipeline of
analyst, optimizer, risk assessor, coach, monitor and compiler stages and
produces a single financial report.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.Config()
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewInteractiveSession(a).Start(cmd.Context())
		},
	}
	rootCmd.SetOut(a.out)

	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newCleanupCmd(a))
	rootCmd.AddCommand(newScheduleCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

type analyzeFlags struct {
	userID          string
	targetSavings   float64
	risk            string
	emergencyMonths float64
	savePath        string
	asJSON          bool
	noRecord        bool
	concurrency     int
}

func (f *analyzeFlags) register(cmd *cobra.Command, a *App) {
	cfg := a.Config()
	cmd.Flags().StringVar(&f.userID, "user", defaultUserID, "User ID the run is recorded under")
	cmd.Flags().Float64Var(&f.targetSavings, "target-savings", cfg.DefaultTargetSavings, "Target savings rate between 0 and 0.5")
	cmd.Flags().StringVar(&f.risk, "risk", cfg.DefaultRiskTolerance, "Risk tolerance: low, medium or high")
	cmd.Flags().Float64Var(&f.emergencyMonths, "emergency-months", 0, "Months of expenses already held as an emergency fund")
	cmd.Flags().BoolVar(&f.noRecord, "no-record", false, "Do not store the run in history")
}

func (f *analyzeFlags) selections(file string) UserSelections {
	return UserSelections{
		File:   file,
		UserID: f.userID,
		Preferences: models.Preferences{
			TargetSavingsRate:   f.targetSavings,
			RiskTolerance:       models.RiskTolerance(f.risk),
			EmergencyFundMonths: f.emergencyMonths,
		},
		SavePath: f.savePath,
		NoRecord: f.noRecord,
	}
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(a *App) *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze FILE [FILE...]",
		Short: "Analyze a CSV or JSON transaction file",
		Long: `Run the analysis pipeline over a transaction file.
Example: finsage analyze march.csv --user alice --target-savings 0.25 --risk low`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an := NewAnalyzer(a)
			if len(args) > 1 {
				results, err := NewBatchManager(an).RunBatch(cmd.Context(), args, flags.selections(""), flags.concurrency)
				if err != nil {
					return err
				}
				PrintBatchSummary(cmd.OutOrStdout(), results)
				return nil
			}

			outcome, err := an.RunAnalysis(cmd.Context(), flags.selections(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(outcome.Result.Report)
			}
			if err := display.NewResultsDisplay(a.Config().CurrencySymbol).Print(out, outcome.Result.Report); err != nil {
				return err
			}
			DisplayRunSummary(out, outcome)
			if flags.savePath != "" {
				fmt.Fprintf(out, "Report saved to %s\n", flags.savePath)
			}
			return nil
		},
	}
	flags.register(cmd, a)
	cmd.Flags().StringVar(&flags.savePath, "save", "", "Write the report as JSON to this path")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 3, "Files analyzed in parallel when several are given")
	return cmd
}

func newHistoryCmd(a *App) *cobra.Command {
	var userID string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := NewResultsManager(a).ListResults(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), display.RenderHistory(runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Only show runs for this user")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func newShowCmd(a *App) *cobra.Command {
	var asJSON bool
	var exportDir string
	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a recorded report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rm := NewResultsManager(a)
			if exportDir != "" {
				path, err := rm.ExportResult(cmd.Context(), args[0], exportDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report exported to %s\n", path)
				return nil
			}
			return rm.ShowResult(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored report as JSON")
	cmd.Flags().StringVar(&exportDir, "export", "", "Write the report as JSON into this directory instead")
	return cmd
}

func newDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewResultsManager(a).DeleteResult(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}

func newCleanupCmd(a *App) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove exported report files older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := NewResultsManager(a).CleanupResults(olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d report files\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of files to remove")
	return cmd
}

func newScheduleCmd(a *App) *cobra.Command {
	flags := &analyzeFlags{}
	var spec string
	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Re-analyze a file on a cron schedule",
		Long: `Re-run the analysis of FILE on a standard five-field cron schedule and
record every run. The file is re-read each time.
Example: finsage schedule ledger.csv --cron "0 8 * * 1" --user alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			an := NewAnalyzer(a)
			sel := flags.selections(args[0])
			out := cmd.OutOrStdout()
			return RunSchedule(ctx, spec, func(ctx context.Context) {
				outcome, err := an.RunAnalysis(ctx, sel)
				if err != nil {
					a.logger.Error().Err(err).Str("file", sel.File).Msg("scheduled analysis failed")
					return
				}
				fmt.Fprintf(out, "%s  run %s  health %.1f\n",
					time.Now().Format(time.RFC3339), outcome.RunID, outcome.Result.Report.HealthScore)
			})
		},
	}
	flags.register(cmd, a)
	cmd.Flags().StringVar(&spec, "cron", "", "Cron schedule, e.g. \"0 8 * * *\"")
	_ = cmd.MarkFlagRequired("cron")
	return cmd
}

// RunSchedule runs job on the cron spec until ctx is done. Runs never
// overlap; a tick that arrives while a job is running is skipped.
func RunSchedule(ctx context.Context, spec string, job func(context.Context)) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "FinSage %s\n", Version)
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(a *App) *cobra.Command {
	cm := NewConfigManager(a.cfgMgr)
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			cm.ShowConfig(cmd.OutOrStdout())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			warnings, err := cm.ValidateConfiguration()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "⚠️  %s\n", w)
			}
			fmt.Fprintln(out, completedStyle.Render("✅ Configuration is valid"))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cm.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cm.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range ListAvailableKeys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	})

	return configCmd
}
