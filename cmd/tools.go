package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/user/webpilot/internal/browser"
	"github.com/user/webpilot/internal/tools"
	"github.com/user/webpilot/internal/tui"
)

var toolsOutput string

// toolsCmd lists the registered browser tools and their parameters
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the browser tools available to scenarios",
	Long: `Print the catalog of browser tools scenario steps can call, with the
parameters each tool accepts.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringVarP(&toolsOutput, "output", "o", "text", "Output format: text or json")
}

func runTools(cmd *cobra.Command, args []string) error {
	registry, err := tools.NewBrowserRegistry(browser.NewSimulatedAgent(browser.SimulatedConfig{}))
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	defs := registry.Definitions()

	if toolsOutput == "json" {
		out, err := json.MarshalIndent(defs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format catalog: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%d browser tools registered:\n\n", len(defs))
	for _, def := range defs {
		fmt.Println(tui.StyleHighlight.Render(def.Name))
		fmt.Printf("  %s\n", def.Description)
		for _, name := range sortedParamNames(def.Parameters) {
			spec := def.Parameters[name]
			line := fmt.Sprintf("%s (%s)", name, paramTraits(spec))
			fmt.Printf("  %s %s  %s\n", tui.IconBullet, tui.StyleInfo.Render(line), spec.Description)
		}
		fmt.Println()
	}
	return nil
}

func sortedParamNames(params map[string]tools.ParameterSpec) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func paramTraits(spec tools.ParameterSpec) string {
	traits := spec.Type
	if spec.Required {
		traits += ", required"
	}
	if spec.Default != nil {
		traits += fmt.Sprintf(", default %v", spec.Default)
	}
	return traits
}
