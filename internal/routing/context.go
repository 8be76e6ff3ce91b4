// Package routing selects which completion provider serves a request.
// Pluggable strategies score providers against a per-request context,
// and the Router combines the winning score with per-provider circuit
// breakers, a retry budget and fallback dispatch.
package routing

import (
	"fmt"

	apperrors "github.com/user/webpilot/internal/errors"
)

// TaskType categorizes what a completion request is for. Task routes in
// configuration are keyed by these names.
type TaskType string

const (
	TaskGeneral          TaskType = "general"
	TaskPlanning         TaskType = "planning"
	TaskActionGeneration TaskType = "action_generation"
	TaskAssertion        TaskType = "assertion"
	TaskExtraction       TaskType = "extraction"
	TaskVisualAnalysis   TaskType = "visual_analysis"
	TaskCodeGeneration   TaskType = "code_generation"
)

// Complexity ranks how demanding a request is on a model's context
// window and capability.
type Complexity int

const (
	ComplexityLow Complexity = iota
	ComplexityMedium
	ComplexityHigh
	ComplexityExpert
)

func (c Complexity) String() string {
	switch c {
	case ComplexityLow:
		return "low"
	case ComplexityMedium:
		return "medium"
	case ComplexityHigh:
		return "high"
	case ComplexityExpert:
		return "expert"
	}
	return fmt.Sprintf("complexity(%d)", int(c))
}

// ParseComplexity maps a configuration string onto a Complexity. The
// empty string selects Medium.
func ParseComplexity(s string) (Complexity, error) {
	switch s {
	case "":
		return ComplexityMedium, nil
	case "low":
		return ComplexityLow, nil
	case "medium":
		return ComplexityMedium, nil
	case "high":
		return ComplexityHigh, nil
	case "expert":
		return ComplexityExpert, nil
	}
	return ComplexityMedium, apperrors.NewValidationError(fmt.Sprintf("unknown complexity '%s' (expected low, medium, high or expert)", s))
}

// Priority ranks how important a request is. Higher priorities steer
// toward more reliable providers.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority maps a configuration string onto a Priority. The empty
// string selects Normal.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	case "normal":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	return PriorityNormal, apperrors.NewValidationError(fmt.Sprintf("unknown priority '%s' (expected low, normal, high or critical)", s))
}

// Context describes one completion request to the routing strategies.
// Construct it per request and do not mutate it afterwards.
type Context struct {
	TaskType                TaskType
	Complexity              Complexity
	Priority                Priority
	RequiresStreaming       bool
	RequiresFunctionCalling bool
	MaxLatencyMs            int    // 0 means unconstrained
	PreferredModel          string // empty means no preference
}
