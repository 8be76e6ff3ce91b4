package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/user/webpilot/internal/errors"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvPrefix("WEBPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Loader{v: v}
}

// LoadForSection loads configuration for one section
// Precedence: CLI > .webpilot/config.yaml > ~/.webpilot.yaml > Environment > Defaults
func (l *Loader) LoadForSection(workPath string, cliOverrides map[string]interface{}) (*viper.Viper, error) {
	// 1. Load from ~/.webpilot.yaml (global user config)
	if err := l.loadGlobalConfig(); err != nil {
		return nil, err
	}

	// 2. Load from .webpilot/config.yaml (project-specific config)
	if err := l.loadProjectConfig(workPath); err != nil {
		return nil, err
	}

	// 3. Apply CLI overrides
	l.applyCLIOverrides(cliOverrides)

	return l.v, nil
}

// loadGlobalConfig loads configuration from ~/.webpilot.yaml
func (l *Loader) loadGlobalConfig() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil // Not a fatal error
	}

	globalConfig := filepath.Join(homeDir, ".webpilot.yaml")
	if _, err := os.Stat(globalConfig); err != nil {
		return nil // File doesn't exist, skip
	}

	l.v.SetConfigFile(globalConfig)
	if err := l.v.ReadInConfig(); err != nil {
		return errors.NewConfigFileError(globalConfig, err)
	}

	return nil
}

// loadProjectConfig loads configuration from .webpilot/config.yaml
func (l *Loader) loadProjectConfig(workPath string) error {
	if workPath == "" {
		workPath = "."
	}

	configPath := filepath.Join(workPath, ".webpilot", "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		return nil // File doesn't exist, skip
	}

	l.v.SetConfigFile(configPath)
	if err := l.v.MergeInConfig(); err != nil {
		return errors.NewConfigFileError(configPath, err)
	}

	return nil
}

// applyCLIOverrides applies CLI flag overrides
func (l *Loader) applyCLIOverrides(overrides map[string]interface{}) {
	for key, value := range overrides {
		if value != nil {
			l.v.Set(key, value)
		}
	}
}

// MergeConfigs merges configuration sources for one section with precedence
// Precedence order (highest to lowest): cli, project, global, env, defaults
func MergeConfigs(workPath string, section string, cliOverrides map[string]interface{}) (map[string]interface{}, error) {
	loader := NewLoader()

	v, err := loader.LoadForSection(workPath, cliOverrides)
	if err != nil {
		return nil, err
	}

	var sectionConfig map[string]interface{}
	if section != "" {
		sectionConfig = v.GetStringMap(section)
	} else {
		sectionConfig = v.AllSettings()
	}
	if sectionConfig == nil {
		sectionConfig = make(map[string]interface{})
	}

	for key, value := range cliOverrides {
		if value != nil {
			setNested(sectionConfig, key, value)
		}
	}

	return sectionConfig, nil
}

func decodeSection(configMap map[string]interface{}, out interface{}, section string) error {
	decoderConfig := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
		Squash:           true,
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return fmt.Errorf("failed to create config decoder: %w", err)
	}

	if err := decoder.Decode(configMap); err != nil {
		return fmt.Errorf("failed to decode %s config: %w", section, err)
	}

	return nil
}

// LoadExecutorConfig loads and validates executor configuration
func LoadExecutorConfig(workPath string, cliOverrides map[string]interface{}) (*ExecutorConfig, error) {
	configMap, err := MergeConfigs(workPath, "executor", cliOverrides)
	if err != nil {
		return nil, err
	}

	cfg := &ExecutorConfig{}
	if err := decodeSection(configMap, cfg, "executor"); err != nil {
		return nil, err
	}

	applyExecutorDefaults(cfg)
	applyExecutorEnvOverrides(cfg)

	if err := ValidateExecutorConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyExecutorDefaults(cfg *ExecutorConfig) {
	if cfg.WorkPath == "" {
		cfg.WorkPath = "."
	}
}

func applyExecutorEnvOverrides(cfg *ExecutorConfig) {
	if cfg.MaxRetries == nil {
		if v, ok := getEnvInt("WEBPILOT_EXECUTOR_MAX_RETRIES"); ok {
			cfg.MaxRetries = &v
		}
	}
	if cfg.InitialRetryDelayMs == nil {
		if v, ok := getEnvInt("WEBPILOT_EXECUTOR_INITIAL_RETRY_DELAY_MS"); ok {
			cfg.InitialRetryDelayMs = &v
		}
	}
	if cfg.MaxRetryDelayMs == 0 {
		if v, ok := getEnvInt("WEBPILOT_EXECUTOR_MAX_RETRY_DELAY_MS"); ok {
			cfg.MaxRetryDelayMs = v
		}
	}
	if cfg.UseExponentialBackoff == nil {
		if v, ok := getEnvBool("WEBPILOT_EXECUTOR_USE_EXPONENTIAL_BACKOFF"); ok {
			cfg.UseExponentialBackoff = &v
		}
	}
	if cfg.TimeoutPerToolMs == nil {
		if v, ok := getEnvInt("WEBPILOT_EXECUTOR_TIMEOUT_PER_TOOL_MS"); ok {
			cfg.TimeoutPerToolMs = &v
		}
	}
	if cfg.MaxHistorySize == nil {
		if v, ok := getEnvInt("WEBPILOT_EXECUTOR_MAX_HISTORY_SIZE"); ok {
			cfg.MaxHistorySize = &v
		}
	}
}

// ValidateExecutorConfig rejects option values outside their recognized ranges
func ValidateExecutorConfig(cfg *ExecutorConfig) error {
	if cfg.MaxRetries != nil && *cfg.MaxRetries < 0 {
		return errors.NewInvalidOptionError("executor.max_retries", *cfg.MaxRetries, "must be >= 0")
	}
	if cfg.InitialRetryDelayMs != nil && *cfg.InitialRetryDelayMs < 0 {
		return errors.NewInvalidOptionError("executor.initial_retry_delay_ms", *cfg.InitialRetryDelayMs, "must be >= 0")
	}
	if cfg.MaxRetryDelayMs < 0 {
		return errors.NewInvalidOptionError("executor.max_retry_delay_ms", cfg.MaxRetryDelayMs, "must be >= 0")
	}
	if cfg.TimeoutPerToolMs != nil && *cfg.TimeoutPerToolMs < 0 {
		return errors.NewInvalidOptionError("executor.timeout_per_tool_ms", *cfg.TimeoutPerToolMs, "must be >= 0")
	}
	if cfg.MaxHistorySize != nil && *cfg.MaxHistorySize <= 0 {
		return errors.NewInvalidOptionError("executor.max_history_size", *cfg.MaxHistorySize, "must be > 0")
	}
	return nil
}

// LoadRoutingConfig loads and validates routing configuration
func LoadRoutingConfig(workPath string, cliOverrides map[string]interface{}) (*RoutingConfig, error) {
	configMap, err := MergeConfigs(workPath, "routing", cliOverrides)
	if err != nil {
		return nil, err
	}

	cfg := &RoutingConfig{}
	if err := decodeSection(configMap, cfg, "routing"); err != nil {
		return nil, err
	}

	applyRoutingDefaults(cfg)
	applyRoutingEnvOverrides(cfg)

	if err := ValidateRoutingConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg.WorkPath == "" {
		cfg.WorkPath = "."
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyTaskBased
	}
}

func applyRoutingEnvOverrides(cfg *RoutingConfig) {
	if cfg.Strategy == StrategyTaskBased {
		if env := os.Getenv("WEBPILOT_ROUTING_STRATEGY"); env != "" {
			cfg.Strategy = env
		}
	}
	if cfg.FailureThreshold == 0 {
		if v, ok := getEnvInt("WEBPILOT_ROUTING_FAILURE_THRESHOLD"); ok {
			cfg.FailureThreshold = v
		}
	}
	if cfg.OpenDurationSeconds == 0 {
		if v, ok := getEnvInt("WEBPILOT_ROUTING_OPEN_DURATION_SECONDS"); ok {
			cfg.OpenDurationSeconds = v
		}
	}
	if cfg.RequestTimeoutSeconds == 0 {
		if v, ok := getEnvInt("WEBPILOT_ROUTING_REQUEST_TIMEOUT_SECONDS"); ok {
			cfg.RequestTimeoutSeconds = v
		}
	}
	if cfg.MaxRetries == nil {
		if v, ok := getEnvInt("WEBPILOT_ROUTING_MAX_RETRIES"); ok {
			cfg.MaxRetries = &v
		}
	}
	if cfg.EnableFallback == nil {
		if v, ok := getEnvBool("WEBPILOT_ROUTING_ENABLE_FALLBACK"); ok {
			cfg.EnableFallback = &v
		}
	}
}

// ValidateRoutingConfig rejects option values outside their recognized ranges
func ValidateRoutingConfig(cfg *RoutingConfig) error {
	strategy := cfg.GetStrategy()
	if strategy != StrategyTaskBased && strategy != StrategyCostOptimized {
		return errors.NewInvalidOptionError("routing.strategy", strategy,
			fmt.Sprintf("must be one of: %s, %s", StrategyTaskBased, StrategyCostOptimized))
	}
	if cfg.FailureThreshold < 0 {
		return errors.NewInvalidOptionError("routing.failure_threshold", cfg.FailureThreshold, "must be >= 1 when set")
	}
	if cfg.OpenDurationSeconds < 0 {
		return errors.NewInvalidOptionError("routing.open_duration_seconds", cfg.OpenDurationSeconds, "must be > 0 when set")
	}
	if cfg.RequestTimeoutSeconds < 0 {
		return errors.NewInvalidOptionError("routing.request_timeout_seconds", cfg.RequestTimeoutSeconds, "must be > 0 when set")
	}
	if cfg.MaxRetries != nil && *cfg.MaxRetries < 0 {
		return errors.NewInvalidOptionError("routing.max_retries", *cfg.MaxRetries, "must be >= 0")
	}
	for i, p := range cfg.Providers {
		if p.Name == "" {
			return errors.NewInvalidOptionError(fmt.Sprintf("routing.providers[%d].name", i), p.Name, "must not be empty")
		}
		if p.Reliability < 0 || p.Reliability > 1 {
			return errors.NewInvalidOptionError(fmt.Sprintf("routing.providers[%d].reliability", i), p.Reliability, "must be in [0, 1]")
		}
	}
	return nil
}

// LoadRunConfig loads configuration for the run command
func LoadRunConfig(workPath string, cliOverrides map[string]interface{}) (*RunConfig, error) {
	configMap, err := MergeConfigs(workPath, "run", cliOverrides)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{}
	if err := decodeSection(configMap, cfg, "run"); err != nil {
		return nil, err
	}

	if cfg.WorkPath == "" {
		cfg.WorkPath = "."
	}

	return cfg, nil
}

// LoadCheckConfig loads configuration for the check command
func LoadCheckConfig(workPath string, cliOverrides map[string]interface{}) (*CheckConfig, error) {
	configMap, err := MergeConfigs(workPath, "check", cliOverrides)
	if err != nil {
		return nil, err
	}

	cfg := &CheckConfig{}
	if err := decodeSection(configMap, cfg, "check"); err != nil {
		return nil, err
	}

	if cfg.WorkPath == "" {
		cfg.WorkPath = "."
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}

	return cfg, nil
}

// LoadMergedConfig loads the full config with proper precedence
// (project > global > env > defaults)
func (l *Loader) LoadMergedConfig(workPath string) (*GlobalConfig, error) {
	if err := l.loadGlobalConfig(); err != nil {
		return nil, err
	}

	if err := l.loadProjectConfig(workPath); err != nil {
		return nil, err
	}

	cfg := &GlobalConfig{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merged config: %w", err)
	}

	return cfg, nil
}

func setNested(m map[string]interface{}, dottedKey string, value interface{}) {
	parts := strings.Split(dottedKey, ".")
	if len(parts) == 1 {
		m[dottedKey] = value
		return
	}

	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]interface{}); ok {
			current = next
		} else {
			newMap := make(map[string]interface{})
			current[part] = newMap
			current = newMap
		}
	}
	current[parts[len(parts)-1]] = value
}

func getEnvInt(key string) (int, bool) {
	val := os.Getenv(key)
	if val == "" {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getEnvBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
