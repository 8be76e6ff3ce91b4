package routing

import (
	"strings"

	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/llm"
)

// Strategy scores providers against a routing context. Implementations
// must be pure functions of the context and the provider descriptors so
// decisions are reproducible; anything stateful (breaker state,
// dispatch outcomes) lives in the Router.
type Strategy interface {
	// Name identifies the strategy in RouteInfo and logs
	Name() string

	// Score rates the provider for the context in [0,1]. A score of 0
	// means a hard capability mismatch and the provider must not serve
	// the request.
	Score(rc Context, p llm.Provider) float64

	// CanHandle reports whether the routing configuration is
	// structurally valid for this strategy. Checked once at startup.
	CanHandle(cfg *config.RoutingConfig) bool
}

// NewStrategy builds the strategy named in the configuration
func NewStrategy(cfg *config.RoutingConfig) (Strategy, error) {
	switch cfg.GetStrategy() {
	case config.StrategyTaskBased:
		return NewTaskBasedStrategy(cfg), nil
	case config.StrategyCostOptimized:
		return NewCostOptimizedStrategy(), nil
	}
	return nil, apperrors.NewInvalidOptionError("routing.strategy", cfg.Strategy,
		"must be task_based or cost_optimized")
}

// Approximate context-window demand per complexity tier, in tokens
const (
	tokensLow    = 4_000
	tokensMedium = 16_000
	tokensHigh   = 64_000
	tokensExpert = 128_000
)

// capabilityMismatch reports a hard incompatibility between the request
// and the provider. Mismatches score 0 regardless of strategy.
func capabilityMismatch(rc Context, caps llm.ProviderCapabilities) bool {
	if rc.RequiresStreaming && !caps.SupportsStreaming {
		return true
	}
	if rc.RequiresFunctionCalling && !caps.SupportsFunctionCalling {
		return true
	}
	return false
}

// contextCoverage rates how comfortably the provider's context window
// covers the complexity tier, in (0,1]. A window at or above the
// tier's demand scores 1; smaller windows degrade proportionally.
func contextCoverage(c Complexity, maxContextTokens int) float64 {
	need := tokensMedium
	switch c {
	case ComplexityLow:
		need = tokensLow
	case ComplexityMedium:
		need = tokensMedium
	case ComplexityHigh:
		need = tokensHigh
	case ComplexityExpert:
		need = tokensExpert
	}
	if maxContextTokens <= 0 {
		// Unknown window: assume it covers the common tiers but not
		// the demanding ones.
		if c >= ComplexityHigh {
			return 0.5
		}
		return 1.0
	}
	if maxContextTokens >= need {
		return 1.0
	}
	return float64(maxContextTokens) / float64(need)
}

// routeTarget is one parsed "provider/model" route value. The model
// part is optional.
type routeTarget struct {
	provider string
	model    string
}

func parseRoute(route string) routeTarget {
	provider, model, found := strings.Cut(route, "/")
	if !found {
		return routeTarget{provider: strings.TrimSpace(route)}
	}
	return routeTarget{
		provider: strings.TrimSpace(provider),
		model:    strings.TrimSpace(model),
	}
}

// matches reports whether the provider serves this route target
func (t routeTarget) matches(p llm.Provider) bool {
	if t.provider == "" || t.provider != p.Name() {
		return false
	}
	return t.model == "" || t.model == p.ModelName()
}

// resolves reports whether the route target names a configured provider
func (t routeTarget) resolves(providers []config.ProviderConfig) bool {
	for _, p := range providers {
		if p.Name != t.provider {
			continue
		}
		if t.model == "" || t.model == p.Model {
			return true
		}
	}
	return false
}
