package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/handlers"
	"github.com/user/webpilot/internal/logging"
)

var (
	routeWorkPath        string
	routeTask            string
	routeComplexity      string
	routePriority        string
	routeStreaming       bool
	routeFunctionCalling bool
	routeMaxLatencyMs    int
	routeOutput          string
)

// routeCmd represents the route command
var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Show which provider a request would be routed to",
	Long: `Score every configured provider for a hypothetical AI request and print
the routing decision: primary provider, fallback, and the per-provider
scores behind the choice. No request is sent.`,
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().StringVar(&routeWorkPath, "work-path", ".", "Path to the project under test")
	routeCmd.Flags().StringVar(&routeTask, "task", "", "Task type: action_generation, assertion, planning, or general")
	routeCmd.Flags().StringVar(&routeComplexity, "complexity", "", "Task complexity: low, medium, high, or expert")
	routeCmd.Flags().StringVar(&routePriority, "priority", "", "Request priority: low, normal, high, or critical")
	routeCmd.Flags().BoolVar(&routeStreaming, "streaming", false, "Require streaming support")
	routeCmd.Flags().BoolVar(&routeFunctionCalling, "function-calling", false, "Require function calling support")
	routeCmd.Flags().IntVar(&routeMaxLatencyMs, "max-latency-ms", 0, "Maximum acceptable latency in milliseconds")
	routeCmd.Flags().StringVarP(&routeOutput, "output", "o", "text", "Output format: text or json")
}

func runRoute(cmd *cobra.Command, args []string) error {
	cliOverrides := map[string]interface{}{
		"work_path": routeWorkPath,
		"debug":     debugFlag,
	}

	cfg, err := config.LoadRoutingConfig(routeWorkPath, cliOverrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := InitLogger(routeWorkPath, debugFlag, verboseFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Routing dry run",
		logging.String("task", routeTask),
		logging.String("strategy", cfg.GetStrategy()),
	)

	request := handlers.RouteRequest{
		TaskType:        routeTask,
		Complexity:      routeComplexity,
		Priority:        routePriority,
		Streaming:       routeStreaming,
		FunctionCalling: routeFunctionCalling,
		MaxLatencyMs:    routeMaxLatencyMs,
	}

	handler := handlers.NewRouteHandler(*cfg, request, logger)

	report, err := handler.Handle(cmd.Context())
	if err != nil {
		// The scoring table still explains why nothing was eligible.
		if report != nil && routeOutput != "json" {
			fmt.Print(handler.FormatTextReport(report))
		}
		return HandleCommandError(err, nil, false)
	}

	switch routeOutput {
	case "json":
		out, err := handler.FormatJSONReport(report)
		if err != nil {
			return fmt.Errorf("failed to format report: %w", err)
		}
		fmt.Println(out)
	default:
		fmt.Print(handler.FormatTextReport(report))
	}

	return nil
}
