package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/handlers"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/tui"
)

type checkOptions struct {
	workPath     string
	scenarios    string
	outputFormat string
	exitCode     bool
}

// newCheckCmd creates the check command
func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and scenarios without running them",
		Long: `Load the executor and routing configuration, validate every scenario
file against the tool registry, and report problems without dispatching
a single tool call. Use it as a preflight before run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.workPath, "work-path", ".", "Path to the project under test")
	cmd.Flags().StringVar(&opts.scenarios, "scenarios", "", "Scenario file or directory (default \"scenarios\")")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Exit nonzero on problems (1=warnings, 2=errors)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	cliOverrides := map[string]interface{}{
		"work_path":     opts.workPath,
		"debug":         debugFlag,
		"output_format": opts.outputFormat,
	}
	if opts.scenarios != "" {
		cliOverrides["scenarios"] = opts.scenarios
	}

	cfg, err := config.LoadCheckConfig(opts.workPath, cliOverrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := InitLogger(opts.workPath, debugFlag, verboseFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	format := cfg.GetOutputFormat()
	showProgress := format != "json" && !verboseFlag

	logger.Info("Starting preflight check",
		logging.String("work_path", opts.workPath),
		logging.String("scenarios", cfg.GetScenarios()),
	)

	var progress *tui.SimpleProgress
	if showProgress {
		progress = tui.NewSimpleProgress("Webpilot Check")
		progress.Start()
		progress.Info(fmt.Sprintf("Work path: %s", opts.workPath))
		progress.Step("Validating configuration and scenarios...")
	}

	handler := handlers.NewCheckHandler(*cfg, logger)

	report, err := handler.Handle(cmd.Context())
	if err != nil {
		return HandleCommandError(err, progress, showProgress)
	}

	if showProgress {
		progress.Done()
	}

	switch format {
	case "json":
		out, err := handler.FormatJSONReport(report)
		if err != nil {
			return fmt.Errorf("failed to format report: %w", err)
		}
		fmt.Println(out)
	default:
		fmt.Print(handler.FormatTextReport(report))
	}

	if opts.exitCode && report.Severity != handlers.CheckSeverityOK {
		if report.Severity == handlers.CheckSeverityError {
			os.Exit(2)
		}
		os.Exit(1)
	}

	return nil
}
