// Package scenario loads YAML browser-test scenarios and runs them
// through the tool executor. A scenario is an ordered list of tool
// steps; steps may carry fallback tools that are tried when the
// primary fails. All steps of one scenario share a correlation id so
// the execution history groups them.
package scenario

import (
	"fmt"

	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/tools"
)

// Scenario is one named browser flow
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Skip        bool   `yaml:"skip,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single tool invocation within a scenario
type Step struct {
	Name      string                 `yaml:"name,omitempty"`
	Tool      string                 `yaml:"tool"`
	Params    map[string]interface{} `yaml:"params,omitempty"`
	Reasoning string                 `yaml:"reasoning,omitempty"`
	Fallbacks []Fallback             `yaml:"fallbacks,omitempty"`
}

// Fallback is an alternative tool tried when the step's primary fails
type Fallback struct {
	Tool   string                 `yaml:"tool"`
	Params map[string]interface{} `yaml:"params,omitempty"`
}

// Label returns the step's display name: the explicit label when one is
// set, otherwise position and tool.
func (s Step) Label(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("step %d (%s)", index+1, s.Tool)
}

// call builds the executor call for the step's primary tool
func (s Step) call(correlationID string) tools.ToolCall {
	return tools.ToolCall{
		ToolName:      s.Tool,
		Parameters:    s.Params,
		Reasoning:     s.Reasoning,
		CorrelationID: correlationID,
	}
}

// fallbackCalls builds the executor calls for the step's fallbacks
func (s Step) fallbackCalls(correlationID string) []tools.ToolCall {
	if len(s.Fallbacks) == 0 {
		return nil
	}
	calls := make([]tools.ToolCall, len(s.Fallbacks))
	for i, fb := range s.Fallbacks {
		calls[i] = tools.ToolCall{
			ToolName:      fb.Tool,
			Parameters:    fb.Params,
			CorrelationID: correlationID,
		}
	}
	return calls
}

// Validate checks the scenario's structure: a name, at least one step,
// and a tool on every step and fallback. It does not consult the tool
// registry; ValidateCalls does that.
func (sc *Scenario) Validate() error {
	var problems []string

	if sc.Name == "" {
		problems = append(problems, "scenario has no name")
	}
	if len(sc.Steps) == 0 {
		problems = append(problems, "scenario has no steps")
	}
	for i, step := range sc.Steps {
		if step.Tool == "" {
			problems = append(problems, fmt.Sprintf("step %d has no tool", i+1))
		}
		for j, fb := range step.Fallbacks {
			if fb.Tool == "" {
				problems = append(problems, fmt.Sprintf("step %d fallback %d has no tool", i+1, j+1))
			}
		}
	}

	if len(problems) > 0 {
		return apperrors.NewScenarioValidationError(sc.Name, problems)
	}
	return nil
}

// ToolValidator reports whether a call would pass registry validation.
// The executor satisfies this.
type ToolValidator interface {
	ValidateToolCall(call tools.ToolCall) (bool, string)
}

// ValidateCalls checks every step and fallback against the tool
// registry without dispatching anything. It returns one problem string
// per rejected call, empty when the scenario is fully runnable.
func (sc *Scenario) ValidateCalls(v ToolValidator) []string {
	var problems []string

	for i, step := range sc.Steps {
		if ok, reason := v.ValidateToolCall(step.call("")); !ok {
			problems = append(problems, fmt.Sprintf("%s: %s", step.Label(i), reason))
		}
		for j, call := range step.fallbackCalls("") {
			if ok, reason := v.ValidateToolCall(call); !ok {
				problems = append(problems, fmt.Sprintf("%s fallback %d (%s): %s", step.Label(i), j+1, call.ToolName, reason))
			}
		}
	}

	return problems
}
