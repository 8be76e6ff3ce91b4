package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/routing"
	"github.com/user/webpilot/internal/tui"
)

// RouteRequest is one routing question posed from the CLI
type RouteRequest struct {
	TaskType        string
	Complexity      string
	Priority        string
	Streaming       bool
	FunctionCalling bool
	MaxLatencyMs    int
}

// ProviderScore is one provider's standing for a request. A score of 0
// marks a hard capability mismatch.
type ProviderScore struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	Score           float64 `json:"score"`
	Eligible        bool    `json:"eligible"`
	Local           bool    `json:"local"`
	CostPer1KTokens float64 `json:"cost_per_1k_tokens"`
}

// RouteReport is a routing decision together with the full scoring
// table it was picked from
type RouteReport struct {
	TaskType        string             `json:"task_type"`
	Complexity      string             `json:"complexity"`
	Priority        string             `json:"priority"`
	Streaming       bool               `json:"requires_streaming,omitempty"`
	FunctionCalling bool               `json:"requires_function_calling,omitempty"`
	MaxLatencyMs    int                `json:"max_latency_ms,omitempty"`
	Decision        *routing.RouteInfo `json:"decision,omitempty"`
	Scores          []ProviderScore    `json:"scores"`
}

// RouteHandler answers "which provider would serve this request"
// without dispatching anything
type RouteHandler struct {
	*BaseHandler
	config  config.RoutingConfig
	request RouteRequest
}

// NewRouteHandler creates a route handler
func NewRouteHandler(cfg config.RoutingConfig, request RouteRequest, logger *logging.Logger) *RouteHandler {
	return &RouteHandler{
		BaseHandler: NewBaseHandler(cfg.BaseConfig, logger),
		config:      cfg,
		request:     request,
	}
}

// Handle scores every provider and picks a route. When no provider is
// eligible the scoring table still comes back alongside the error, so
// callers can show why each candidate was ruled out.
func (h *RouteHandler) Handle(ctx context.Context) (*RouteReport, error) {
	complexity, err := routing.ParseComplexity(h.request.Complexity)
	if err != nil {
		return nil, err
	}
	priority, err := routing.ParsePriority(h.request.Priority)
	if err != nil {
		return nil, err
	}

	taskType := routing.TaskType(h.request.TaskType)
	if taskType == "" {
		taskType = routing.TaskGeneral
	}

	rc := routing.Context{
		TaskType:                taskType,
		Complexity:              complexity,
		Priority:                priority,
		RequiresStreaming:       h.request.Streaming,
		RequiresFunctionCalling: h.request.FunctionCalling,
		MaxLatencyMs:            h.request.MaxLatencyMs,
	}

	router, err := routing.NewFromConfig(&h.config, 0, h.Logger)
	if err != nil {
		return nil, err
	}

	rep := &RouteReport{
		TaskType:        string(taskType),
		Complexity:      complexity.String(),
		Priority:        priority.String(),
		Streaming:       h.request.Streaming,
		FunctionCalling: h.request.FunctionCalling,
		MaxLatencyMs:    h.request.MaxLatencyMs,
	}

	strategy := router.Strategy()
	for _, p := range router.Providers() {
		caps := p.Capabilities()
		score := strategy.Score(rc, p)
		rep.Scores = append(rep.Scores, ProviderScore{
			Provider:        p.Name(),
			Model:           p.ModelName(),
			Score:           score,
			Eligible:        score > 0,
			Local:           caps.Local,
			CostPer1KTokens: caps.CostPer1KTokens,
		})
	}
	sort.Slice(rep.Scores, func(i, j int) bool {
		if rep.Scores[i].Score != rep.Scores[j].Score {
			return rep.Scores[i].Score > rep.Scores[j].Score
		}
		return rep.Scores[i].Provider < rep.Scores[j].Provider
	})

	info, err := router.Route(rc)
	if err != nil {
		return rep, err
	}
	rep.Decision = info

	h.Logger.Info("Routing decision",
		logging.String("task_type", string(taskType)),
		logging.String("provider", info.PrimaryProvider),
		logging.String("model", info.PrimaryModel),
		logging.Float64("confidence", info.Confidence))

	return rep, nil
}

// FormatTextReport renders the decision and scoring table for the
// terminal
func (h *RouteHandler) FormatTextReport(rep *RouteReport) string {
	var b strings.Builder

	b.WriteString("Routing Decision\n")
	b.WriteString("================\n\n")

	fmt.Fprintf(&b, "Task: %s (complexity %s, priority %s)\n", rep.TaskType, rep.Complexity, rep.Priority)
	if reqs := requestTraits(rep); reqs != "" {
		fmt.Fprintf(&b, "Requirements: %s\n", reqs)
	}
	b.WriteString("\n")

	if d := rep.Decision; d != nil {
		fmt.Fprintf(&b, "%s Primary:  %s (%s)\n", tui.IconArrow, d.PrimaryProvider, d.PrimaryModel)
		if d.HasFallback() {
			fmt.Fprintf(&b, "  Fallback: %s (%s)\n", d.FallbackProvider, d.FallbackModel)
		}
		fmt.Fprintf(&b, "  Strategy: %s, confidence %.2f\n", d.Strategy, d.Confidence)
		fmt.Fprintf(&b, "  Cost: %s\n", formatCost(d.EstimatedCostPer1KTokens))
		fmt.Fprintf(&b, "  Reason: %s\n\n", d.Reason)
	}

	if len(rep.Scores) > 0 {
		b.WriteString("Provider scores:\n")
		for _, s := range rep.Scores {
			scoreStr := "   -"
			if s.Eligible {
				scoreStr = fmt.Sprintf("%.2f", s.Score)
			}
			traits := formatCost(s.CostPer1KTokens)
			if s.Local {
				traits = "local, " + traits
			}
			fmt.Fprintf(&b, "  %s  %s (%s) %s\n", scoreStr, s.Provider, s.Model, traits)
		}
	}

	return b.String()
}

// FormatJSONReport renders the report as indented JSON
func (h *RouteHandler) FormatJSONReport(rep *RouteReport) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func requestTraits(rep *RouteReport) string {
	var traits []string
	if rep.Streaming {
		traits = append(traits, "streaming")
	}
	if rep.FunctionCalling {
		traits = append(traits, "function calling")
	}
	if rep.MaxLatencyMs > 0 {
		traits = append(traits, fmt.Sprintf("max latency %dms", rep.MaxLatencyMs))
	}
	return strings.Join(traits, ", ")
}

func formatCost(costPer1K float64) string {
	if costPer1K == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.4f/1k tokens", costPer1K)
}
