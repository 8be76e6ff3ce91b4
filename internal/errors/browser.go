package errors

import (
	"fmt"
)

// Classification reasons reported by browser agents
const (
	ReasonElementNotFound  = "element_not_found"
	ReasonNavigationFailed = "navigation_failed"
	ReasonPageUnstable     = "page_unstable"
	ReasonInvalidSelector  = "invalid_selector"
	ReasonBrowserCrashed   = "browser_crashed"
	ReasonPermissionDenied = "permission_denied"
)

// NewElementNotFoundError reports an element that has not rendered yet.
// Transient: the page may still be loading.
func NewElementNotFoundError(selector string) *TransientError {
	err := NewTransientError(ReasonElementNotFound, fmt.Sprintf("Element not found: %s", selector))
	err.Context = &ErrorContext{
		Operation: "Element Lookup",
		Component: "Browser Agent",
		Details: map[string]interface{}{
			"selector": selector,
		},
		Suggestions: []string{
			"Wait for the page to finish loading",
			"Check the selector against the current page state",
		},
		Recoverable: true,
	}
	return err
}

// NewNavigationError reports a failed page load. Transient: network
// blips and slow origins recover on retry.
func NewNavigationError(url string, cause error) *TransientError {
	err := WrapTransientError(ReasonNavigationFailed, fmt.Sprintf("Navigation to %s failed", url), cause)
	err.Context = &ErrorContext{
		Operation: "Navigation",
		Component: "Browser Agent",
		Details: map[string]interface{}{
			"url": url,
		},
		Suggestions: []string{
			"Check the URL is reachable",
			"Check network connectivity",
		},
		Recoverable: true,
	}
	return err
}

// NewInvalidSelectorError reports a selector the engine cannot parse.
// Terminal: the same selector fails identically every time.
func NewInvalidSelectorError(selector, reason string) *TerminalError {
	err := NewTerminalError(ReasonInvalidSelector, fmt.Sprintf("Invalid selector: %s", selector))
	err.Context = &ErrorContext{
		Operation: "Selector Parsing",
		Component: "Browser Agent",
		Details: map[string]interface{}{
			"selector": selector,
			"reason":   reason,
		},
		Suggestions: []string{
			"Fix the selector syntax",
		},
		Recoverable: false,
	}
	return err
}

// NewBrowserCrashedError reports a dead browser session. Terminal for
// the current call: the session cannot serve further dispatches.
func NewBrowserCrashedError(cause error) *TerminalError {
	err := WrapTerminalError(ReasonBrowserCrashed, "Browser session crashed", cause)
	err.Context = &ErrorContext{
		Operation: "Browser Dispatch",
		Component: "Browser Agent",
		Suggestions: []string{
			"Restart the browser session",
			"Check browser logs for the crash cause",
		},
		Recoverable: false,
	}
	return err
}

// NewPermissionDeniedError reports an action the page refuses. Terminal.
func NewPermissionDeniedError(action string) *TerminalError {
	err := NewTerminalError(ReasonPermissionDenied, fmt.Sprintf("Permission denied for action: %s", action))
	err.Context = &ErrorContext{
		Operation: "Browser Dispatch",
		Component: "Browser Agent",
		Details: map[string]interface{}{
			"action": action,
		},
		Recoverable: false,
	}
	return err
}
