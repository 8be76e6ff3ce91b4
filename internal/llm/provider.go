// Package llm holds the completion model, the provider contract the
// router dispatches against, and the scripted provider used by
// simulations and tests. Concrete backend clients live outside this
// repo behind the Provider interface.
package llm

import (
	"context"
)

// ProviderCapabilities are the static descriptors routing strategies
// score against
type ProviderCapabilities struct {
	SupportsStreaming       bool
	SupportsFunctionCalling bool
	MaxContextTokens        int
	CostPer1KTokens         float64 // 0 means free
	Local                   bool
	Reliability             float64 // [0,1]; 0 means unknown, treated as 1.0
}

// EffectiveReliability returns the reliability with the unknown value
// mapped to full trust
func (c ProviderCapabilities) EffectiveReliability() float64 {
	if c.Reliability <= 0 {
		return 1.0
	}
	if c.Reliability > 1 {
		return 1.0
	}
	return c.Reliability
}

// Free reports whether the provider costs nothing per token
func (c ProviderCapabilities) Free() bool {
	return c.CostPer1KTokens == 0
}

// Provider is the contract for a completion backend
type Provider interface {
	// Complete generates a completion for the request
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Capabilities returns the provider's static descriptors
	Capabilities() ProviderCapabilities

	// Name returns the provider name used for routing and breaker keys
	Name() string

	// ModelName returns the model the provider serves
	ModelName() string
}
