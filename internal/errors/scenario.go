package errors

import (
	"fmt"
)

// ScenarioError is the base error for scenario loading and running
type ScenarioError struct {
	*WebPilotError
}

// NewScenarioError creates a new scenario error
func NewScenarioError(message string) *ScenarioError {
	return &ScenarioError{
		WebPilotError: &WebPilotError{
			Message:  message,
			ExitCode: ExitScenarioError,
		},
	}
}

// ScenarioParseError is raised when a scenario file cannot be read or parsed
type ScenarioParseError struct {
	*WebPilotError
}

// NewScenarioParseError creates a new scenario parse error
func NewScenarioParseError(path string, cause error) *ScenarioParseError {
	return &ScenarioParseError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Failed to load scenario file: %s", path),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Scenario Loading",
				Component: "Scenario Loader",
				Details: map[string]interface{}{
					"path": path,
				},
				Suggestions: []string{
					"Check that the file exists and is readable",
					"Validate YAML syntax",
				},
				Recoverable: false,
			},
			ExitCode: ExitScenarioError,
		},
	}
}

// ScenarioValidationError is raised when a scenario references unknown
// tools or malforms its steps
type ScenarioValidationError struct {
	*WebPilotError
	Scenario string
	Problems []string
}

// NewScenarioValidationError creates a new scenario validation error
func NewScenarioValidationError(scenario string, problems []string) *ScenarioValidationError {
	return &ScenarioValidationError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Scenario '%s' failed validation", scenario),
			Context: &ErrorContext{
				Operation: "Scenario Validation",
				Component: "Scenario Loader",
				Details: map[string]interface{}{
					"problems": problems,
				},
				Suggestions: []string{
					"Fix the listed steps",
					"Run 'webpilot tools' to check tool names and parameters",
				},
				Recoverable: false,
			},
			ExitCode: ExitScenarioError,
		},
		Scenario: scenario,
		Problems: problems,
	}
}

// RunError is raised when a scenario run fails as a whole
type RunError struct {
	*WebPilotError
}

// NewRunError creates a new run error
func NewRunError(reason string, cause error) *RunError {
	return &RunError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Run failed: %s", reason),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Scenario Run",
				Component: "RunHandler",
				Suggestions: []string{
					"Check the run report for per-step failures",
					"Try with --debug flag for more information",
				},
				Recoverable: false,
			},
			ExitCode: ExitGeneralError,
		},
	}
}
