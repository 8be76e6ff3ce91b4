package routing

import (
	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/llm"
)

// Task-based sub-score weights. They sum to 1 so the combined score
// stays in [0,1].
const (
	weightTask       = 0.5
	weightComplexity = 0.3
	weightPriority   = 0.2
)

// TaskBasedStrategy prefers the provider configured for the request's
// task type, weighted by how well the provider covers the complexity
// tier and, for important requests, how reliable it is.
type TaskBasedStrategy struct {
	defaultRoute routeTarget
	taskRoutes   map[TaskType]routeTarget
}

// NewTaskBasedStrategy builds the strategy from the configured routes
func NewTaskBasedStrategy(cfg *config.RoutingConfig) *TaskBasedStrategy {
	s := &TaskBasedStrategy{
		defaultRoute: parseRoute(cfg.DefaultRoute),
		taskRoutes:   make(map[TaskType]routeTarget, len(cfg.TaskRoutes)),
	}
	for task, route := range cfg.TaskRoutes {
		s.taskRoutes[TaskType(task)] = parseRoute(route)
	}
	return s
}

func (s *TaskBasedStrategy) Name() string {
	return config.StrategyTaskBased
}

func (s *TaskBasedStrategy) Score(rc Context, p llm.Provider) float64 {
	caps := p.Capabilities()
	if capabilityMismatch(rc, caps) {
		return 0
	}
	return weightTask*s.taskAffinity(rc, p) +
		weightComplexity*contextCoverage(rc.Complexity, caps.MaxContextTokens) +
		weightPriority*priorityAffinity(rc.Priority, caps)
}

// taskAffinity rates how strongly the request's task points at this
// provider: an explicit model preference wins, then the configured
// task route, then the default route. Providers the routes never
// mention sit on a neutral floor so they stay eligible as fallbacks.
func (s *TaskBasedStrategy) taskAffinity(rc Context, p llm.Provider) float64 {
	if rc.PreferredModel != "" && rc.PreferredModel == p.ModelName() {
		return 1.0
	}
	if route, ok := s.taskRoutes[rc.TaskType]; ok && route.matches(p) {
		return 0.9
	}
	if s.defaultRoute.matches(p) {
		return 0.7
	}
	return 0.5
}

// priorityAffinity rates the provider's reliability against the
// request's importance. Low-priority requests accept anything; the
// more important the request, the harder unreliable providers drop.
func priorityAffinity(pr Priority, caps llm.ProviderCapabilities) float64 {
	r := caps.EffectiveReliability()
	switch pr {
	case PriorityCritical:
		return r * r
	case PriorityHigh:
		return r
	case PriorityNormal:
		return 0.5 + r/2
	}
	return 1.0
}

// CanHandle requires a resolvable default route and resolvable task
// routes, so a typo in a provider name fails at startup instead of at
// the first request for that task.
func (s *TaskBasedStrategy) CanHandle(cfg *config.RoutingConfig) bool {
	if len(cfg.Providers) == 0 {
		return false
	}
	if cfg.DefaultRoute == "" || !parseRoute(cfg.DefaultRoute).resolves(cfg.Providers) {
		return false
	}
	for _, route := range cfg.TaskRoutes {
		if !parseRoute(route).resolves(cfg.Providers) {
			return false
		}
	}
	return true
}
