package tools

import (
	"context"
)

// Tool is the interface that all tools must implement. A tool performs
// exactly one dispatch per Execute call; retry and fallback policy live
// in the executor.
type Tool interface {
	// Name returns the tool name
	Name() string

	// Description returns a description of what the tool does
	Description() string

	// Parameters returns the parameter specs validation checks against
	Parameters() map[string]ParameterSpec

	// Execute runs the tool with the given parameters
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// Definition assembles the registry-facing view of a tool
func Definition(t Tool) ToolDefinition {
	return ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
