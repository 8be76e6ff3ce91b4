package errors

import (
	"fmt"
	"strings"
)

// ValidationError is the base error for all validation-related errors.
// Validation failures are rejected before any dispatch happens and are
// never retried.
type ValidationError struct {
	*WebPilotError
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		WebPilotError: &WebPilotError{
			Message:  message,
			ExitCode: ExitValidationError,
		},
	}
}

// ToolNotFoundError is raised when a tool call names an unregistered tool
type ToolNotFoundError struct {
	*WebPilotError
	ToolName string
}

// NewToolNotFoundError creates a new tool not found error
func NewToolNotFoundError(toolName string, available []string) *ToolNotFoundError {
	return &ToolNotFoundError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Tool '%s' is not registered", toolName),
			Context: &ErrorContext{
				Operation: "Tool Call Validation",
				Component: "Tool Registry",
				Details: map[string]interface{}{
					"tool":            toolName,
					"available_tools": strings.Join(available, ", "),
				},
				Suggestions: []string{
					"Check the tool name for typos",
					"Run 'webpilot tools' to list registered tools",
				},
				Recoverable: false,
			},
			ExitCode: ExitValidationError,
		},
		ToolName: toolName,
	}
}

// MissingParametersError is raised when a tool call omits required parameters
type MissingParametersError struct {
	*WebPilotError
	ToolName string
	Missing  []string
}

// NewMissingParametersError creates a new missing parameters error
func NewMissingParametersError(toolName string, missing []string) *MissingParametersError {
	return &MissingParametersError{
		WebPilotError: &WebPilotError{
			Message: fmt.Sprintf("Tool '%s' call is missing required parameters: %s", toolName, strings.Join(missing, ", ")),
			Context: &ErrorContext{
				Operation: "Tool Call Validation",
				Component: "Tool Registry",
				Details: map[string]interface{}{
					"tool":               toolName,
					"missing_parameters": strings.Join(missing, ", "),
				},
				Suggestions: []string{
					"Supply every required parameter in the call",
					"Run 'webpilot tools' to inspect the parameter specs",
				},
				Recoverable: false,
			},
			ExitCode: ExitValidationError,
		},
		ToolName: toolName,
		Missing:  missing,
	}
}
