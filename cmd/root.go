package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is reported by --version and stamped into run reports.
const Version = "1.0.0"

var (
	debugFlag   bool
	verboseFlag bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "webpilot",
	Short: "AI-assisted browser test runner with resilient execution",
	Long: `Run browser test scenarios through a resilient execution core.

Webpilot loads YAML scenarios, executes their tool calls against a
browser agent with retries, timeouts, and circuit breaking, and routes
AI planning requests across providers. Runs produce JSON reports with
per-step outcomes and provider health.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show detailed log output instead of progress UI")
}
