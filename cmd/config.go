package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/errors"
)

var (
	configWorkPath string
	configInit     bool
	configGlobal   bool
)

// configCmd prints the effective configuration, or scaffolds one
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration or scaffold a starter one",
	Long: `Print the merged configuration the commands would run with: built-in
defaults, the global ~/.webpilot.yaml, the project .webpilot/config.yaml,
and WEBPILOT_* environment variables, in ascending precedence.

With --init, write a starter configuration instead: two providers, a
task-based routing setup, and a simulated agent profile ready for run.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configWorkPath, "work-path", ".", "Path to the project under test")
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a starter configuration instead of printing")
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "With --init, write to ~/.webpilot.yaml instead of the project config")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configInit {
		return initConfig()
	}

	loader := config.NewLoader()

	cfg, err := loader.LoadMergedConfig(configWorkPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	fmt.Print(string(out))
	return nil
}

func initConfig() error {
	saver := config.NewSaver()
	starter := config.StarterConfig()

	if configGlobal {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path := filepath.Join(homeDir, ".webpilot.yaml")
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewError(fmt.Sprintf("configuration already exists at %s", path), errors.ExitIOError)
			}
		}
		if err := saver.SaveGlobalConfig(starter); err != nil {
			return err
		}
		fmt.Println("Wrote ~/.webpilot.yaml")
		return nil
	}

	path := filepath.Join(configWorkPath, ".webpilot", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return errors.NewError(fmt.Sprintf("configuration already exists at %s", path), errors.ExitIOError)
	}
	if err := saver.SaveProjectConfig(configWorkPath, starter); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
