package routing

import (
	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/llm"
)

// CostOptimizedStrategy sends routine work to free or local providers
// and reserves paid providers for demanding requests: high or expert
// complexity, or critical priority.
type CostOptimizedStrategy struct{}

func NewCostOptimizedStrategy() *CostOptimizedStrategy {
	return &CostOptimizedStrategy{}
}

func (s *CostOptimizedStrategy) Name() string {
	return config.StrategyCostOptimized
}

func (s *CostOptimizedStrategy) Score(rc Context, p llm.Provider) float64 {
	caps := p.Capabilities()
	if capabilityMismatch(rc, caps) {
		return 0
	}
	coverage := contextCoverage(rc.Complexity, caps.MaxContextTokens)

	if rc.Complexity >= ComplexityHigh || rc.Priority >= PriorityCritical {
		// Capability first: window coverage and reliability win, price
		// only breaks ties.
		return 0.45*coverage + 0.35*caps.EffectiveReliability() + 0.2*cheapness(caps.CostPer1KTokens)
	}

	if caps.Free() {
		score := 0.8 + 0.1*coverage
		if caps.Local {
			score += 0.1
		}
		return score
	}
	// Paid providers stay well below any free one for routine work
	return 0.2*cheapness(caps.CostPer1KTokens) + 0.1*coverage
}

// cheapness maps cost per 1K tokens onto (0,1]: free is 1, typical
// paid rates land midway, expensive models tend toward 0.
func cheapness(costPer1K float64) float64 {
	if costPer1K <= 0 {
		return 1.0
	}
	return 1.0 / (1.0 + costPer1K*100)
}

// CanHandle only needs providers to pick from; routes are not used
func (s *CostOptimizedStrategy) CanHandle(cfg *config.RoutingConfig) bool {
	return len(cfg.Providers) > 0
}
