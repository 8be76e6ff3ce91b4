package llm

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
)

// ScriptedProvider is a deterministic in-memory Provider. Outcomes can
// be scripted per dispatch; otherwise a seeded failure rate decides.
// It backs the route and run commands and the router tests.
type ScriptedProvider struct {
	name  string
	model string
	caps  ProviderCapabilities

	mu          sync.Mutex
	rng         *rand.Rand
	outcomes    []error
	content     string
	contentSet  bool
	latency     time.Duration
	failureRate float64
	dispatches  int
}

// NewScriptedProvider creates a scripted provider with the given
// identity and capabilities
func NewScriptedProvider(name, model string, caps ProviderCapabilities) *ScriptedProvider {
	return &ScriptedProvider{
		name:  name,
		model: model,
		caps:  caps,
		rng:   rand.New(rand.NewSource(1)),
	}
}

// NewScriptedProviderFromConfig builds a scripted provider from one
// provider config entry
func NewScriptedProviderFromConfig(cfg config.ProviderConfig, seed int64) *ScriptedProvider {
	if seed == 0 {
		seed = 1
	}
	return &ScriptedProvider{
		name:  cfg.Name,
		model: cfg.Model,
		caps: ProviderCapabilities{
			SupportsStreaming:       cfg.SupportsStreaming,
			SupportsFunctionCalling: cfg.SupportsFunctionCalling,
			MaxContextTokens:        cfg.MaxContextTokens,
			CostPer1KTokens:         cfg.CostPer1KTokens,
			Local:                   cfg.Local,
			Reliability:             cfg.Reliability,
		},
		rng:         rand.New(rand.NewSource(seed)),
		latency:     time.Duration(cfg.LatencyMs) * time.Millisecond,
		failureRate: cfg.FailureRate,
	}
}

// NewProviderSet builds the provider set from configuration. Provider
// names key circuit breakers and routes, so duplicates are rejected.
func NewProviderSet(cfgs []config.ProviderConfig, seed int64) ([]Provider, error) {
	seen := make(map[string]bool, len(cfgs))
	providers := make([]Provider, 0, len(cfgs))

	for _, cfg := range cfgs {
		if cfg.Name == "" {
			return nil, apperrors.NewInvalidOptionError("routing.providers", cfg, "provider name must not be empty")
		}
		if seen[cfg.Name] {
			return nil, apperrors.NewInvalidOptionError("routing.providers", cfg.Name, "duplicate provider name")
		}
		seen[cfg.Name] = true
		providers = append(providers, NewScriptedProviderFromConfig(cfg, seed))
	}

	return providers, nil
}

// Name returns the provider name
func (p *ScriptedProvider) Name() string {
	return p.name
}

// ModelName returns the model the provider serves
func (p *ScriptedProvider) ModelName() string {
	return p.model
}

// Capabilities returns the provider's static descriptors
func (p *ScriptedProvider) Capabilities() ProviderCapabilities {
	return p.caps
}

// Script queues outcomes consumed in order by subsequent dispatches.
// A nil outcome is a forced success.
func (p *ScriptedProvider) Script(outcomes ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcomes...)
}

// FailTimes queues err n times, so the n+1th dispatch is the first
// that can succeed
func (p *ScriptedProvider) FailTimes(n int, err error) {
	for i := 0; i < n; i++ {
		p.Script(err)
	}
}

// SetResponse overrides the canned completion content. An explicitly
// empty response stands in for a malformed completion.
func (p *ScriptedProvider) SetResponse(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = content
	p.contentSet = true
}

// SetLatency sets the artificial dispatch latency
func (p *ScriptedProvider) SetLatency(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency = d
}

// Dispatches returns how many requests reached the provider
func (p *ScriptedProvider) Dispatches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatches
}

// Complete generates a scripted completion
func (p *ScriptedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	p.mu.Lock()
	latency := p.latency
	p.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.dispatches++

	if len(p.outcomes) > 0 {
		outcome := p.outcomes[0]
		p.outcomes = p.outcomes[1:]
		if outcome != nil {
			return nil, outcome
		}
	} else if p.failureRate > 0 && p.rng.Float64() < p.failureRate {
		return nil, apperrors.NewProviderConnectionError(p.name, errSimulatedOutage)
	}

	content := p.content
	if content == "" && !p.contentSet {
		content = fmt.Sprintf("scripted completion from %s", p.model)
	}

	return &CompletionResponse{
		Content:  content,
		Provider: p.name,
		Model:    p.model,
		Usage: TokenUsage{
			InputTokens:  req.PromptTokens(),
			OutputTokens: EstimateTokens(content),
			TotalTokens:  req.PromptTokens() + EstimateTokens(content),
		},
	}, nil
}

var errSimulatedOutage = fmt.Errorf("simulated provider outage")
