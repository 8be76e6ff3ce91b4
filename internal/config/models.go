package config

import (
	"time"
)

// Default values for the executor and routing option surface
const (
	DefaultMaxRetries            = 3
	DefaultInitialRetryDelayMs   = 100
	DefaultMaxRetryDelayMs       = 5000
	DefaultTimeoutPerToolMs      = 10000
	DefaultMaxHistorySize        = 100
	DefaultFailureThreshold      = 5
	DefaultOpenDurationSeconds   = 30
	DefaultRequestTimeoutSeconds = 30
	DefaultWorkers               = 4
)

// Routing strategy names accepted in configuration
const (
	StrategyTaskBased     = "task_based"
	StrategyCostOptimized = "cost_optimized"
)

// BaseConfig holds common configuration for all handlers
type BaseConfig struct {
	WorkPath string `mapstructure:"work_path" yaml:"work_path,omitempty"`
	Debug    bool   `mapstructure:"debug" yaml:"debug,omitempty"`
}

// ExecutorConfig holds tool executor configuration. Options where zero
// is a legal explicit value (no retries, no per-attempt timeout) are
// pointers so an unset option can fall back to its default.
type ExecutorConfig struct {
	BaseConfig            `yaml:",inline"`
	MaxRetries            *int  `mapstructure:"max_retries" yaml:"max_retries,omitempty"`                         // retries after the first attempt
	InitialRetryDelayMs   *int  `mapstructure:"initial_retry_delay_ms" yaml:"initial_retry_delay_ms,omitempty"`   // base backoff delay
	MaxRetryDelayMs       int   `mapstructure:"max_retry_delay_ms" yaml:"max_retry_delay_ms,omitempty"`           // backoff cap
	UseExponentialBackoff *bool `mapstructure:"use_exponential_backoff" yaml:"use_exponential_backoff,omitempty"` // false = linear
	TimeoutPerToolMs      *int  `mapstructure:"timeout_per_tool_ms" yaml:"timeout_per_tool_ms,omitempty"`         // 0 = no per-attempt timeout
	MaxHistorySize        *int  `mapstructure:"max_history_size" yaml:"max_history_size,omitempty"`
}

// GetMaxRetries returns the retry budget with a default
func (c *ExecutorConfig) GetMaxRetries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// GetInitialRetryDelay returns the base backoff delay as a time.Duration
func (c *ExecutorConfig) GetInitialRetryDelay() time.Duration {
	if c.InitialRetryDelayMs == nil {
		return DefaultInitialRetryDelayMs * time.Millisecond
	}
	return time.Duration(*c.InitialRetryDelayMs) * time.Millisecond
}

// GetMaxRetryDelay returns the backoff cap as a time.Duration
func (c *ExecutorConfig) GetMaxRetryDelay() time.Duration {
	if c.MaxRetryDelayMs == 0 {
		return DefaultMaxRetryDelayMs * time.Millisecond
	}
	return time.Duration(c.MaxRetryDelayMs) * time.Millisecond
}

// GetUseExponentialBackoff returns the backoff mode with a default of true
func (c *ExecutorConfig) GetUseExponentialBackoff() bool {
	if c.UseExponentialBackoff == nil {
		return true
	}
	return *c.UseExponentialBackoff
}

// GetTimeoutPerTool returns the per-attempt timeout, 0 meaning none
func (c *ExecutorConfig) GetTimeoutPerTool() time.Duration {
	if c.TimeoutPerToolMs == nil {
		return DefaultTimeoutPerToolMs * time.Millisecond
	}
	return time.Duration(*c.TimeoutPerToolMs) * time.Millisecond
}

// GetMaxHistorySize returns the execution history cap with a default
func (c *ExecutorConfig) GetMaxHistorySize() int {
	if c.MaxHistorySize == nil {
		return DefaultMaxHistorySize
	}
	return *c.MaxHistorySize
}

// RetryPolicy is the assembled retry budget the executor runs with
type RetryPolicy struct {
	MaxRetries            int
	InitialDelay          time.Duration
	MaxDelay              time.Duration
	UseExponentialBackoff bool
	TimeoutPerAttempt     time.Duration // 0 = no per-attempt timeout
}

// RetryPolicy assembles the retry policy from the option surface
func (c *ExecutorConfig) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:            c.GetMaxRetries(),
		InitialDelay:          c.GetInitialRetryDelay(),
		MaxDelay:              c.GetMaxRetryDelay(),
		UseExponentialBackoff: c.GetUseExponentialBackoff(),
		TimeoutPerAttempt:     c.GetTimeoutPerTool(),
	}
}

// ProviderConfig describes one completion provider the router can
// select. Failure rate and latency are simulation knobs for providers
// backed by the scripted client.
type ProviderConfig struct {
	Name                    string  `mapstructure:"name" yaml:"name"`
	Model                   string  `mapstructure:"model" yaml:"model"`
	SupportsStreaming       bool    `mapstructure:"supports_streaming" yaml:"supports_streaming,omitempty"`
	SupportsFunctionCalling bool    `mapstructure:"supports_function_calling" yaml:"supports_function_calling,omitempty"`
	MaxContextTokens        int     `mapstructure:"max_context_tokens" yaml:"max_context_tokens,omitempty"`
	CostPer1KTokens         float64 `mapstructure:"cost_per_1k_tokens" yaml:"cost_per_1k_tokens,omitempty"` // 0 = free
	Local                   bool    `mapstructure:"local" yaml:"local,omitempty"`
	Reliability             float64 `mapstructure:"reliability" yaml:"reliability,omitempty"` // 0 = unknown, treated as 1.0
	FailureRate             float64 `mapstructure:"failure_rate" yaml:"failure_rate,omitempty"`
	LatencyMs               int     `mapstructure:"latency_ms" yaml:"latency_ms,omitempty"`
}

// RoutingConfig holds provider router configuration
type RoutingConfig struct {
	BaseConfig            `yaml:",inline"`
	Strategy              string            `mapstructure:"strategy" yaml:"strategy,omitempty"` // task_based, cost_optimized
	FailureThreshold      int               `mapstructure:"failure_threshold" yaml:"failure_threshold,omitempty"`
	OpenDurationSeconds   int               `mapstructure:"open_duration_seconds" yaml:"open_duration_seconds,omitempty"`
	RequestTimeoutSeconds int               `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds,omitempty"`
	MaxRetries            *int              `mapstructure:"max_retries" yaml:"max_retries,omitempty"`
	EnableFallback        *bool             `mapstructure:"enable_fallback" yaml:"enable_fallback,omitempty"`
	DefaultRoute          string            `mapstructure:"default_route" yaml:"default_route,omitempty"` // "provider/model"
	TaskRoutes            map[string]string `mapstructure:"task_routes" yaml:"task_routes,omitempty"`     // task type -> "provider/model"
	Providers             []ProviderConfig  `mapstructure:"providers" yaml:"providers,omitempty"`
}

// GetStrategy returns the strategy name with a default
func (c *RoutingConfig) GetStrategy() string {
	if c.Strategy == "" {
		return StrategyTaskBased
	}
	return c.Strategy
}

// GetFailureThreshold returns the breaker threshold with a default
func (c *RoutingConfig) GetFailureThreshold() int {
	if c.FailureThreshold == 0 {
		return DefaultFailureThreshold
	}
	return c.FailureThreshold
}

// GetOpenDuration returns the breaker open window as a time.Duration
func (c *RoutingConfig) GetOpenDuration() time.Duration {
	if c.OpenDurationSeconds == 0 {
		return DefaultOpenDurationSeconds * time.Second
	}
	return time.Duration(c.OpenDurationSeconds) * time.Second
}

// GetRequestTimeout returns the per-request timeout as a time.Duration
func (c *RoutingConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds == 0 {
		return DefaultRequestTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// GetMaxRetries returns the per-provider retry budget with a default
func (c *RoutingConfig) GetMaxRetries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// GetEnableFallback returns whether fallback routing is on, default true
func (c *RoutingConfig) GetEnableFallback() bool {
	if c.EnableFallback == nil {
		return true
	}
	return *c.EnableFallback
}

// AgentSimConfig holds the simulated browser agent profile used by runs
type AgentSimConfig struct {
	Seed                  int64   `mapstructure:"seed" yaml:"seed,omitempty"`
	LatencyMs             int     `mapstructure:"latency_ms" yaml:"latency_ms,omitempty"`
	FailureRate           float64 `mapstructure:"failure_rate" yaml:"failure_rate,omitempty"`                       // chance a dispatch fails transiently
	FailuresBeforeSuccess int     `mapstructure:"failures_before_success" yaml:"failures_before_success,omitempty"` // first N dispatches per tool fail
}

// RunConfig holds configuration for the run command
type RunConfig struct {
	BaseConfig `yaml:",inline"`
	Scenarios  string         `mapstructure:"scenarios" yaml:"scenarios,omitempty"` // scenario file or directory
	Workers    int            `mapstructure:"workers" yaml:"workers,omitempty"`
	ReportPath string         `mapstructure:"report_path" yaml:"report_path,omitempty"`
	Agent      AgentSimConfig `mapstructure:"agent" yaml:"agent,omitempty"`
}

// GetWorkers returns the worker count with a default
func (c *RunConfig) GetWorkers() int {
	if c.Workers == 0 {
		return DefaultWorkers
	}
	return c.Workers
}

// GetScenarios returns the scenario path with a default
func (c *RunConfig) GetScenarios() string {
	if c.Scenarios == "" {
		return "scenarios"
	}
	return c.Scenarios
}

// CheckConfig holds configuration for the check command
type CheckConfig struct {
	BaseConfig   `yaml:",inline"`
	Scenarios    string `mapstructure:"scenarios" yaml:"scenarios,omitempty"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format,omitempty"` // text or json
}

// GetScenarios returns the scenario path with a default
func (c *CheckConfig) GetScenarios() string {
	if c.Scenarios == "" {
		return "scenarios"
	}
	return c.Scenarios
}

// GetOutputFormat returns the report format with a default
func (c *CheckConfig) GetOutputFormat() string {
	if c.OutputFormat == "" {
		return "text"
	}
	return c.OutputFormat
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	LogDir       string `mapstructure:"log_dir" yaml:"log_dir,omitempty"`
	FileLevel    string `mapstructure:"file_level" yaml:"file_level,omitempty"`       // debug, info, warn, error
	ConsoleLevel string `mapstructure:"console_level" yaml:"console_level,omitempty"` // debug, info, warn, error
}

// GlobalConfig holds top-level configuration from .webpilot/config.yaml
type GlobalConfig struct {
	Executor ExecutorConfig `mapstructure:"executor" yaml:"executor,omitempty"`
	Routing  RoutingConfig  `mapstructure:"routing" yaml:"routing,omitempty"`
	Run      RunConfig      `mapstructure:"run" yaml:"run,omitempty"`
	Check    CheckConfig    `mapstructure:"check" yaml:"check,omitempty"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging,omitempty"`
}
