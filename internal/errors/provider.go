package errors

import (
	"fmt"
)

// Classification reasons reported for completion providers
const (
	ReasonProviderConnection = "provider_connection"
	ReasonRateLimited        = "rate_limited"
	ReasonInvalidResponse    = "invalid_response"
	ReasonProviderAuth       = "provider_auth"
	ReasonCircuitOpen        = "circuit_open"
)

// NewProviderConnectionError reports a failed connection to a provider.
// Transient: the service may come back.
func NewProviderConnectionError(provider string, cause error) *TransientError {
	err := WrapTransientError(ReasonProviderConnection, fmt.Sprintf("Failed to reach provider: %s", provider), cause)
	err.Context = &ErrorContext{
		Operation: "Completion Request",
		Component: "Provider Router",
		Details: map[string]interface{}{
			"provider": provider,
		},
		Suggestions: []string{
			"Check network connectivity",
			"Verify the provider endpoint is accessible",
			"Try again later (service may be unavailable)",
		},
		Recoverable: true,
	}
	err.ExitCode = ExitProviderError
	return err
}

// NewProviderRateLimitError reports a rate-limited request. Transient:
// backoff gives the window time to reset.
func NewProviderRateLimitError(provider string) *TransientError {
	err := NewTransientError(ReasonRateLimited, fmt.Sprintf("Provider %s rate limited the request", provider))
	err.Context = &ErrorContext{
		Operation: "Completion Request",
		Component: "Provider Router",
		Details: map[string]interface{}{
			"provider": provider,
		},
		Suggestions: []string{
			"Reduce request concurrency",
			"Raise the retry delay bounds",
		},
		Recoverable: true,
	}
	err.ExitCode = ExitProviderError
	return err
}

// NewProviderResponseError reports a malformed completion. Transient:
// generation is sampled, a retry may produce a usable response.
func NewProviderResponseError(provider, reason string) *TransientError {
	err := NewTransientError(ReasonInvalidResponse, fmt.Sprintf("Invalid response from provider: %s", provider))
	err.Context = &ErrorContext{
		Operation: "Completion Parsing",
		Component: "Provider Router",
		Details: map[string]interface{}{
			"provider": provider,
			"reason":   reason,
		},
		Suggestions: []string{
			"Check if the model name is correct",
			"Try a different model",
		},
		Recoverable: true,
	}
	err.ExitCode = ExitProviderError
	return err
}

// NewProviderAuthError reports rejected credentials. Terminal: retrying
// with the same credentials cannot succeed.
func NewProviderAuthError(provider string) *TerminalError {
	err := NewTerminalError(ReasonProviderAuth, fmt.Sprintf("Provider %s rejected the credentials", provider))
	err.Context = &ErrorContext{
		Operation: "Completion Request",
		Component: "Provider Router",
		Details: map[string]interface{}{
			"provider": provider,
		},
		Suggestions: []string{
			"Verify the API key is valid",
			"Check the provider account status",
		},
		Recoverable: false,
	}
	err.ExitCode = ExitProviderError
	return err
}

// NewCircuitOpenError reports a request rejected without dispatch
// because the provider's breaker is open.
func NewCircuitOpenError(provider string) *TransientError {
	err := NewTransientError(ReasonCircuitOpen, fmt.Sprintf("Circuit open for provider: %s", provider))
	err.Context = &ErrorContext{
		Operation: "Completion Request",
		Component: "Circuit Breaker",
		Details: map[string]interface{}{
			"provider": provider,
		},
		Suggestions: []string{
			"Wait for the open window to elapse",
			"Route to a fallback provider",
		},
		Recoverable: true,
	}
	err.ExitCode = ExitProviderError
	return err
}
