package tools

import (
	"sort"
)

// ToolCall is a single request to run a named tool. Calls are value
// objects: build one, hand it to the executor, do not mutate it after.
type ToolCall struct {
	ToolName      string                 `json:"tool_name"`
	Parameters    map[string]interface{} `json:"parameters,omitempty"`
	Reasoning     string                 `json:"reasoning,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
}

// ParameterSpec describes a single parameter a tool accepts
type ParameterSpec struct {
	Type        string      `json:"type"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// ToolDefinition is the registry's view of a tool: name, description
// and the parameter surface
type ToolDefinition struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Parameters  map[string]ParameterSpec `json:"parameters"`
}

// RequiredParameters returns the names of required parameters, sorted
func (d ToolDefinition) RequiredParameters() []string {
	var required []string
	for name, spec := range d.Parameters {
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// MissingParameters returns required parameter names absent from
// params, sorted
func (d ToolDefinition) MissingParameters(params map[string]interface{}) []string {
	var missing []string
	for name, spec := range d.Parameters {
		if !spec.Required {
			continue
		}
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Schema renders the definition as a JSON schema object in the shape
// function-calling APIs expect
func (d ToolDefinition) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Parameters))
	for name, spec := range d.Parameters {
		prop := map[string]interface{}{
			"type":        spec.Type,
			"description": spec.Description,
		}
		if spec.Default != nil {
			prop["default"] = spec.Default
		}
		properties[name] = prop
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   d.RequiredParameters(),
	}
}
