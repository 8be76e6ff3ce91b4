package routing

// RouteInfo records one routing decision: which provider should serve
// the request, which one backs it up, and why. Produced fresh per
// decision and never mutated afterwards.
type RouteInfo struct {
	PrimaryProvider          string   `json:"primary_provider"`
	PrimaryModel             string   `json:"primary_model"`
	FallbackProvider         string   `json:"fallback_provider,omitempty"`
	FallbackModel            string   `json:"fallback_model,omitempty"`
	Strategy                 string   `json:"strategy"`
	TaskType                 TaskType `json:"task_type"`
	Confidence               float64  `json:"confidence"`
	Reason                   string   `json:"reason"`
	EstimatedCostPer1KTokens float64  `json:"estimated_cost_per_1k_tokens"`
	MaxLatencyMs             int      `json:"max_latency_ms,omitempty"`
}

// HasFallback reports whether the decision carries a backup provider
func (r *RouteInfo) HasFallback() bool {
	return r.FallbackProvider != ""
}
