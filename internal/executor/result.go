package executor

import (
	"time"
)

// Metadata keys recorded on results
const (
	MetaRetryReasons       = "retry_reasons"
	MetaRetryDelays        = "retry_delays"
	MetaFallbackUsed       = "fallback_used"
	MetaFallbackIndex      = "fallback_index"
	MetaPrimaryTool        = "primary_tool"
	MetaPrimaryError       = "primary_error"
	MetaFallbackAttempted  = "fallback_attempted"
	MetaFallbackCount      = "fallback_count"
	MetaAllFallbacksFailed = "all_fallbacks_failed"
	MetaValidationError    = "validation_error"
	MetaCorrelationID      = "correlation_id"
)

// Values recorded under MetaValidationError
const (
	ValidationToolNotFound      = "tool_not_found"
	ValidationMissingParameters = "missing_required_parameters"
)

// Result is the outcome of one tool execution. It is created once per
// Execute call and must not be mutated after it is returned.
type Result struct {
	Success      bool                   `json:"success"`
	ToolName     string                 `json:"tool_name"`
	Value        interface{}            `json:"value,omitempty"`
	Err          error                  `json:"-"`
	AttemptCount int                    `json:"attempt_count"`
	Duration     time.Duration          `json:"duration"`
	WasRetried   bool                   `json:"was_retried"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// RetryReasons returns the classified failure reason of each retry, in order
func (r *Result) RetryReasons() []string {
	reasons, _ := r.Metadata[MetaRetryReasons].([]string)
	return reasons
}

// RetryDelays returns the backoff delays actually applied, in order
func (r *Result) RetryDelays() []time.Duration {
	delays, _ := r.Metadata[MetaRetryDelays].([]time.Duration)
	return delays
}

// CorrelationID returns the correlation id the result was recorded under
func (r *Result) CorrelationID() string {
	id, _ := r.Metadata[MetaCorrelationID].(string)
	return id
}

// FallbackUsed reports whether a fallback tool produced the result
func (r *Result) FallbackUsed() bool {
	used, _ := r.Metadata[MetaFallbackUsed].(bool)
	return used
}

// ValidationFailure returns the validation failure reason when the call
// was rejected before dispatch
func (r *Result) ValidationFailure() (string, bool) {
	reason, ok := r.Metadata[MetaValidationError].(string)
	return reason, ok
}

// ErrorMessage returns the error text, or the empty string on success
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
