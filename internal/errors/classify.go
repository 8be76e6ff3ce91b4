package errors

import (
	"context"
	stderrors "errors"
)

// Class partitions dispatch failures into the two outcomes the retry
// loop distinguishes: worth retrying, or final.
type Class int

const (
	ClassTransient Class = iota
	ClassTerminal
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Reason strings produced by the classifier itself. Domain errors carry
// their own reasons (element_not_found, rate_limited, browser_crashed, ...).
const (
	ReasonTimeout         = "timeout"
	ReasonUnknown         = "unknown_error"
	ReasonInvalidArgument = "invalid_argument"
)

// TransientError marks a failure that may succeed on retry: timeouts,
// elements not rendered yet, network blips, rate limits.
type TransientError struct {
	*WebPilotError
	Reason string
}

// NewTransientError creates a transient error with a classification reason
func NewTransientError(reason, message string) *TransientError {
	return &TransientError{
		WebPilotError: &WebPilotError{
			Message:  message,
			ExitCode: ExitExecutionError,
		},
		Reason: reason,
	}
}

// WrapTransientError wraps an underlying error as transient
func WrapTransientError(reason, message string, cause error) *TransientError {
	return &TransientError{
		WebPilotError: &WebPilotError{
			Message:  message,
			Cause:    cause,
			ExitCode: ExitExecutionError,
		},
		Reason: reason,
	}
}

// TerminalError marks a failure that retrying cannot fix: invalid
// selectors, crashed browsers, permission errors.
type TerminalError struct {
	*WebPilotError
	Reason string
}

// NewTerminalError creates a terminal error with a classification reason
func NewTerminalError(reason, message string) *TerminalError {
	return &TerminalError{
		WebPilotError: &WebPilotError{
			Message:  message,
			ExitCode: ExitExecutionError,
		},
		Reason: reason,
	}
}

// WrapTerminalError wraps an underlying error as terminal
func WrapTerminalError(reason, message string, cause error) *TerminalError {
	return &TerminalError{
		WebPilotError: &WebPilotError{
			Message:  message,
			Cause:    cause,
			ExitCode: ExitExecutionError,
		},
		Reason: reason,
	}
}

// Classification is the classifier's verdict for one failure
type Classification struct {
	Class  Class
	Reason string
}

// Classify maps a dispatch error to its outcome class. Explicitly typed
// errors win; a bare deadline means the per-attempt timeout fired and is
// transient. Unknown errors default to transient so that flaky
// collaborators get the benefit of the retry budget.
//
// Cancellation is not a classification concern: callers must check
// ctx.Err() before classifying and propagate it unchanged.
func Classify(err error) Classification {
	var terminal *TerminalError
	if stderrors.As(err, &terminal) {
		reason := terminal.Reason
		if reason == "" {
			reason = "terminal_error"
		}
		return Classification{Class: ClassTerminal, Reason: reason}
	}

	var transient *TransientError
	if stderrors.As(err, &transient) {
		reason := transient.Reason
		if reason == "" {
			reason = "transient_error"
		}
		return Classification{Class: ClassTransient, Reason: reason}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return Classification{Class: ClassTransient, Reason: ReasonTimeout}
	}

	return Classification{Class: ClassTransient, Reason: ReasonUnknown}
}

// IsTransient reports whether err classifies as transient
func IsTransient(err error) bool {
	return Classify(err).Class == ClassTransient
}

// IsTerminal reports whether err classifies as terminal
func IsTerminal(err error) bool {
	return Classify(err).Class == ClassTerminal
}
