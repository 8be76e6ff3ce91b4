package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/handlers"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/tui"
)

var (
	runWorkPath  string
	runScenarios string
	runWorkers   int
	runReport    string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run browser test scenarios",
	Long: `Load scenarios from a file or directory and execute them against the
browser agent. Scenarios fan out over a worker pool; every tool call
gets retries with backoff, a per-attempt timeout, and circuit breaking.
The exit code is nonzero when any scenario fails.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runWorkPath, "work-path", ".", "Path to the project under test")
	runCmd.Flags().StringVar(&runScenarios, "scenarios", "", "Scenario file or directory (default \"scenarios\")")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent scenario workers (default 4)")
	runCmd.Flags().StringVar(&runReport, "report", "", "Write a JSON run report to this path")
}

func runRun(cmd *cobra.Command, args []string) error {
	cliOverrides := map[string]interface{}{
		"work_path": runWorkPath,
		"debug":     debugFlag,
	}
	if runScenarios != "" {
		cliOverrides["scenarios"] = runScenarios
	}
	if runWorkers > 0 {
		cliOverrides["workers"] = runWorkers
	}
	if runReport != "" {
		cliOverrides["report_path"] = runReport
	}

	cfg, err := config.LoadRunConfig(runWorkPath, cliOverrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	execCfg, err := config.LoadExecutorConfig(runWorkPath, map[string]interface{}{
		"work_path": runWorkPath,
		"debug":     debugFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := InitLogger(runWorkPath, debugFlag, verboseFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	showProgress := !verboseFlag
	logger.Info("Starting scenario run",
		logging.String("work_path", runWorkPath),
		logging.String("scenarios", cfg.GetScenarios()),
		logging.Int("workers", cfg.GetWorkers()),
	)

	handler := handlers.NewRunHandler(*cfg, execCfg, logger)
	handler.SetVersion(Version)

	var progress *tui.Progress
	if showProgress {
		progress = tui.NewProgress("Webpilot Run")
		handler.SetProgressReporter(progress)
		progress.Start()
	} else {
		handler.SetProgressReporter(&tui.NopProgressReporter{})
	}

	run, err := handler.Handle(cmd.Context())
	if showProgress {
		progress.Stop()
		if run != nil {
			progress.PrintSummary()
		}
	}
	if err != nil {
		return HandleCommandError(err, nil, false)
	}

	if !showProgress {
		logger.Info("Run complete",
			logging.Int("passed", run.Passed),
			logging.Int("failed", run.Failed),
			logging.Int("skipped", run.Skipped),
		)
	}

	if !run.AllPassed() {
		return errors.NewRunError(
			fmt.Sprintf("%d of %d scenarios failed", run.Failed, len(run.Results)), nil)
	}
	return nil
}
