package errors

import (
	"fmt"
)

// ConfigurationError is raised when configuration is invalid or missing
type ConfigurationError struct {
	*WebPilotError
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{
		WebPilotError: &WebPilotError{
			Message:  message,
			ExitCode: ExitConfigError,
		},
	}
}

// InvalidOptionError is raised when a configuration option has an
// unusable value
type InvalidOptionError struct {
	*WebPilotError
}

// NewInvalidOptionError creates a new invalid option error
func NewInvalidOptionError(option string, value interface{}, reason string) *InvalidOptionError {
	return &InvalidOptionError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Configuration option '%s' has an invalid value", option),
			Context: &ErrorContext{
				Operation: "Validating configuration",
				Component: "Config",
				Details: map[string]interface{}{
					"option": option,
					"value":  value,
					"reason": reason,
				},
				Suggestions: []string{
					fmt.Sprintf("Check the value of %s in .webpilot/config.yaml", option),
					"Run 'webpilot config' to print the effective configuration",
				},
				Recoverable: false,
			},
			ExitCode: ExitConfigError,
		},
	}
}

// ConfigFileError is raised when a configuration file cannot be read or parsed
type ConfigFileError struct {
	*WebPilotError
}

// NewConfigFileError creates a new config file error
func NewConfigFileError(filePath string, cause error) *ConfigFileError {
	return &ConfigFileError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Failed to load configuration file: %s", filePath),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Loading configuration",
				Component: "Config File",
				Details: map[string]interface{}{
					"file_path": filePath,
				},
				Suggestions: []string{
					"Check that the file exists and is readable",
					"Validate YAML syntax",
					"Check file permissions",
				},
				Recoverable: false,
			},
			ExitCode: ExitConfigError,
		},
	}
}
