package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/user/webpilot/internal/errors"
)

// Saver writes configuration back to disk
type Saver struct{}

// NewSaver creates a new configuration saver
func NewSaver() *Saver {
	return &Saver{}
}

// SaveGlobalConfig writes cfg to ~/.webpilot.yaml with user-only permissions
func (s *Saver) SaveGlobalConfig(cfg *GlobalConfig) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.WrapError(err, "cannot resolve home directory", errors.ExitIOError)
	}

	return s.write(filepath.Join(homeDir, ".webpilot.yaml"), cfg)
}

// SaveProjectConfig writes cfg to <workPath>/.webpilot/config.yaml
func (s *Saver) SaveProjectConfig(workPath string, cfg *GlobalConfig) error {
	if workPath == "" {
		workPath = "."
	}

	dir := filepath.Join(workPath, ".webpilot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapError(err, "cannot create config directory", errors.ExitIOError)
	}

	return s.write(filepath.Join(dir, "config.yaml"), cfg)
}

// StarterConfig returns the scaffold written by `webpilot config --init`:
// a two-provider routing setup against the simulated agent, tuned for
// local iteration.
func StarterConfig() *GlobalConfig {
	return &GlobalConfig{
		Run: RunConfig{
			Scenarios: "scenarios",
			Agent: AgentSimConfig{
				LatencyMs:   20,
				FailureRate: 0.05,
			},
		},
		Routing: RoutingConfig{
			Strategy:     StrategyTaskBased,
			DefaultRoute: "cloud",
			TaskRoutes: map[string]string{
				"action_generation": "local",
			},
			Providers: []ProviderConfig{
				{
					Name:                    "cloud",
					Model:                   "sonnet-4",
					SupportsStreaming:       true,
					SupportsFunctionCalling: true,
					MaxContextTokens:        200000,
					CostPer1KTokens:         0.003,
					Reliability:             0.99,
				},
				{
					Name:             "local",
					Model:            "llama-3-8b",
					MaxContextTokens: 16384,
					Local:            true,
					Reliability:      0.9,
				},
			},
		},
	}
}

func (s *Saver) write(path string, cfg *GlobalConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapError(err, "cannot marshal configuration", errors.ExitConfigError)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.NewConfigFileError(path, err)
	}

	return nil
}
