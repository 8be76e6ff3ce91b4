package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/webpilot/internal/browser"
	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/executor"
	"github.com/user/webpilot/internal/llm"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/routing"
	"github.com/user/webpilot/internal/scenario"
	"github.com/user/webpilot/internal/tools"
	"github.com/user/webpilot/internal/tui"
)

// CheckSeverity grades a preflight outcome
type CheckSeverity string

const (
	CheckSeverityOK      CheckSeverity = "ok"
	CheckSeverityWarning CheckSeverity = "warning"
	CheckSeverityError   CheckSeverity = "error"
)

// Problems longer than this are cut in the text report
const maxProblemsListed = 8

// ProviderStatus describes one configured provider as check sees it
type ProviderStatus struct {
	Name            string  `json:"name"`
	Model           string  `json:"model"`
	Streaming       bool    `json:"streaming"`
	FunctionCalling bool    `json:"function_calling"`
	Local           bool    `json:"local"`
	Free            bool    `json:"free"`
	CostPer1KTokens float64 `json:"cost_per_1k_tokens"`
}

// ScenarioStatus is the validation outcome for one scenario file
type ScenarioStatus struct {
	File     string   `json:"file"`
	Name     string   `json:"name,omitempty"`
	Steps    int      `json:"steps,omitempty"`
	Skip     bool     `json:"skip,omitempty"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// CheckReport is the result of a preflight check: configuration,
// routing, tool registry and scenario validation, with nothing
// dispatched.
type CheckReport struct {
	Timestamp        time.Time        `json:"timestamp"`
	WorkPath         string           `json:"work_path"`
	ScenariosPath    string           `json:"scenarios_path"`
	Severity         CheckSeverity    `json:"severity"`
	Healthy          bool             `json:"healthy"` // severity below error; a run would start
	ConfigProblems   []string         `json:"config_problems,omitempty"`
	Warnings         []string         `json:"warnings,omitempty"`
	Strategy         string           `json:"strategy,omitempty"`
	Providers        []ProviderStatus `json:"providers,omitempty"`
	Tools            []string         `json:"tools"`
	Scenarios        []ScenarioStatus `json:"scenarios,omitempty"`
	ScenarioProblems int              `json:"scenario_problems"`
	Summary          string           `json:"summary"`
	Recommendation   string           `json:"recommendation,omitempty"`
}

// CheckHandler validates the working directory without running
// anything: config files decode, the routing strategy can serve its
// configuration, and every scenario step resolves against the tool
// registry.
type CheckHandler struct {
	*BaseHandler
	config config.CheckConfig
}

// NewCheckHandler creates a check handler
func NewCheckHandler(cfg config.CheckConfig, logger *logging.Logger) *CheckHandler {
	return &CheckHandler{
		BaseHandler: NewBaseHandler(cfg.BaseConfig, logger),
		config:      cfg,
	}
}

// Handle runs every check and folds the findings into one report.
// Broken configuration becomes report content rather than an error;
// the error return is reserved for the handler's own plumbing.
func (h *CheckHandler) Handle(ctx context.Context) (*CheckReport, error) {
	workPath := h.Config.WorkPath
	if workPath == "" {
		workPath = "."
	}
	scenariosPath := h.resolvePath(h.config.GetScenarios())

	h.Logger.Info("Starting preflight check",
		logging.String("work_path", workPath),
		logging.String("scenarios", scenariosPath))

	rep := &CheckReport{
		Timestamp:     time.Now(),
		WorkPath:      workPath,
		ScenariosPath: scenariosPath,
	}

	execCfg := h.checkExecutorConfig(rep)
	h.checkRouting(rep)

	registry, err := tools.NewBrowserRegistry(browser.NewSimulatedAgent(browser.SimulatedConfig{}))
	if err != nil {
		return nil, err
	}
	rep.Tools = registry.Names()

	exec := executor.NewFromConfig(registry, execCfg, h.Logger)
	if err := h.checkScenarios(ctx, rep, scenariosPath, exec); err != nil {
		return nil, err
	}

	rep.Severity = h.calculateSeverity(rep)
	rep.Healthy = rep.Severity != CheckSeverityError
	rep.Summary = h.generateSummary(rep)
	rep.Recommendation = h.generateRecommendation(rep)

	h.Logger.Info("Preflight check complete",
		logging.String("severity", string(rep.Severity)),
		logging.Int("config_problems", len(rep.ConfigProblems)),
		logging.Int("scenario_problems", rep.ScenarioProblems))

	return rep, nil
}

// checkExecutorConfig decodes the executor options. On failure the
// problem lands in the report and validation continues with defaults.
func (h *CheckHandler) checkExecutorConfig(rep *CheckReport) *config.ExecutorConfig {
	execCfg, err := config.LoadExecutorConfig(h.Config.WorkPath, nil)
	if err != nil {
		rep.ConfigProblems = append(rep.ConfigProblems, fmt.Sprintf("executor: %v", err))
		return &config.ExecutorConfig{}
	}
	return execCfg
}

// checkRouting decodes the routing options and verifies the configured
// strategy can actually serve them
func (h *CheckHandler) checkRouting(rep *CheckReport) {
	routingCfg, err := config.LoadRoutingConfig(h.Config.WorkPath, nil)
	if err != nil {
		rep.ConfigProblems = append(rep.ConfigProblems, fmt.Sprintf("routing: %v", err))
		return
	}

	rep.Strategy = routingCfg.GetStrategy()

	if len(routingCfg.Providers) == 0 {
		rep.Warnings = append(rep.Warnings, "no providers configured; routing decisions are unavailable")
		return
	}

	if _, err := llm.NewProviderSet(routingCfg.Providers, 1); err != nil {
		rep.ConfigProblems = append(rep.ConfigProblems, fmt.Sprintf("providers: %v", err))
	}

	strategy, err := routing.NewStrategy(routingCfg)
	switch {
	case err != nil:
		rep.ConfigProblems = append(rep.ConfigProblems, fmt.Sprintf("routing: %v", err))
	case !strategy.CanHandle(routingCfg):
		rep.ConfigProblems = append(rep.ConfigProblems,
			fmt.Sprintf("routing: strategy %s cannot serve this configuration (check default_route and task_routes)", strategy.Name()))
	}

	for _, p := range routingCfg.Providers {
		rep.Providers = append(rep.Providers, ProviderStatus{
			Name:            p.Name,
			Model:           p.Model,
			Streaming:       p.SupportsStreaming,
			FunctionCalling: p.SupportsFunctionCalling,
			Local:           p.Local,
			Free:            p.CostPer1KTokens == 0,
			CostPer1KTokens: p.CostPer1KTokens,
		})
	}
}

// checkScenarios validates every scenario file individually so one
// broken file does not hide the state of the rest
func (h *CheckHandler) checkScenarios(ctx context.Context, rep *CheckReport, scenariosPath string, exec *executor.Executor) error {
	files, err := scenario.ListFiles(scenariosPath)
	if err != nil {
		rep.ConfigProblems = append(rep.ConfigProblems, fmt.Sprintf("scenarios: %v", err))
		return nil
	}
	if len(files) == 0 {
		rep.ConfigProblems = append(rep.ConfigProblems,
			fmt.Sprintf("scenarios: no scenario files found in %s", scenariosPath))
		return nil
	}

	seen := make(map[string]string)
	runnable := 0

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		base := filepath.Base(path)
		status := ScenarioStatus{File: base}

		sc, err := scenario.LoadFile(path)
		if err != nil {
			var vErr *apperrors.ScenarioValidationError
			if errors.As(err, &vErr) {
				status.Name = vErr.Scenario
				status.Problems = vErr.Problems
			} else {
				status.Problems = []string{err.Error()}
			}
		} else {
			status.Name = sc.Name
			status.Steps = len(sc.Steps)
			status.Skip = sc.Skip

			if previous, dup := seen[sc.Name]; dup {
				status.Problems = append(status.Problems,
					fmt.Sprintf("duplicate scenario name '%s' (already defined in %s)", sc.Name, previous))
			} else {
				seen[sc.Name] = base
			}

			status.Problems = append(status.Problems, sc.ValidateCalls(exec)...)
			if !sc.Skip && len(status.Problems) == 0 {
				runnable++
			}
		}

		status.Valid = len(status.Problems) == 0
		rep.ScenarioProblems += len(status.Problems)
		rep.Scenarios = append(rep.Scenarios, status)
	}

	if runnable == 0 && rep.ScenarioProblems == 0 {
		rep.Warnings = append(rep.Warnings, "every scenario is marked skip; a run would do nothing")
	}

	return nil
}

func (h *CheckHandler) calculateSeverity(rep *CheckReport) CheckSeverity {
	if len(rep.ConfigProblems) > 0 || rep.ScenarioProblems > 0 {
		return CheckSeverityError
	}
	if len(rep.Warnings) > 0 {
		return CheckSeverityWarning
	}
	return CheckSeverityOK
}

func (h *CheckHandler) generateSummary(rep *CheckReport) string {
	invalid := 0
	for _, sc := range rep.Scenarios {
		if !sc.Valid {
			invalid++
		}
	}

	switch {
	case len(rep.ConfigProblems) > 0 && invalid > 0:
		return fmt.Sprintf("%d configuration problems and %d of %d scenarios invalid",
			len(rep.ConfigProblems), invalid, len(rep.Scenarios))
	case len(rep.ConfigProblems) > 0:
		return fmt.Sprintf("%d configuration problems", len(rep.ConfigProblems))
	case invalid > 0:
		return fmt.Sprintf("%d of %d scenarios invalid", invalid, len(rep.Scenarios))
	case len(rep.Warnings) > 0:
		return fmt.Sprintf("%d scenarios validated with %d warnings", len(rep.Scenarios), len(rep.Warnings))
	default:
		return fmt.Sprintf("%d scenarios, %d tools and %d providers ready",
			len(rep.Scenarios), len(rep.Tools), len(rep.Providers))
	}
}

func (h *CheckHandler) generateRecommendation(rep *CheckReport) string {
	switch rep.Severity {
	case CheckSeverityError:
		return "Fix the problems above before running; the run would fail or skip scenarios."
	case CheckSeverityWarning:
		return "Runs will work, but review the warnings to restore full coverage."
	default:
		return "All checks passed."
	}
}

// FormatTextReport renders the report for the terminal
func (h *CheckHandler) FormatTextReport(rep *CheckReport) string {
	var b strings.Builder

	b.WriteString("Preflight Check\n")
	b.WriteString("===============\n\n")

	fmt.Fprintf(&b, "%s Status: %s\n", severityIcon(rep.Severity), strings.ToUpper(string(rep.Severity)))
	fmt.Fprintf(&b, "  Work path: %s\n", rep.WorkPath)
	fmt.Fprintf(&b, "  Scenarios: %s\n\n", rep.ScenariosPath)

	if len(rep.ConfigProblems) > 0 {
		b.WriteString("Problems:\n")
		for _, p := range rep.ConfigProblems {
			fmt.Fprintf(&b, "  %s %s\n", tui.IconError, p)
		}
		b.WriteString("\n")
	}

	if rep.Strategy != "" {
		fmt.Fprintf(&b, "Routing: strategy %s\n", rep.Strategy)
		for _, p := range rep.Providers {
			fmt.Fprintf(&b, "  %s %s (%s)%s\n", tui.IconBullet, p.Name, p.Model, providerTraits(p))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Tools: %s\n\n", strings.Join(rep.Tools, ", "))

	if len(rep.Scenarios) > 0 {
		b.WriteString("Scenarios:\n")
		for _, sc := range rep.Scenarios {
			label := sc.Name
			if label == "" {
				label = sc.File
			}
			switch {
			case !sc.Valid:
				fmt.Fprintf(&b, "  %s %s (%s)\n", tui.IconError, label, sc.File)
				for _, p := range limitSlice(sc.Problems, maxProblemsListed) {
					fmt.Fprintf(&b, "      %s\n", p)
				}
			case sc.Skip:
				fmt.Fprintf(&b, "  %s %s (%d steps, skipped)\n", tui.IconPending, label, sc.Steps)
			default:
				fmt.Fprintf(&b, "  %s %s (%d steps)\n", tui.IconSuccess, label, sc.Steps)
			}
		}
		b.WriteString("\n")
	}

	if len(rep.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&b, "  %s %s\n", tui.IconWarning, w)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Summary: %s\n", rep.Summary)
	if rep.Recommendation != "" {
		fmt.Fprintf(&b, "Recommendation: %s\n", rep.Recommendation)
	}

	return b.String()
}

// FormatJSONReport renders the report as indented JSON
func (h *CheckHandler) FormatJSONReport(rep *CheckReport) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func severityIcon(severity CheckSeverity) string {
	switch severity {
	case CheckSeverityOK:
		return tui.IconSuccess
	case CheckSeverityWarning:
		return tui.IconWarning
	default:
		return tui.IconError
	}
}

func providerTraits(p ProviderStatus) string {
	var traits []string
	if p.Streaming {
		traits = append(traits, "streaming")
	}
	if p.FunctionCalling {
		traits = append(traits, "function calling")
	}
	if p.Local {
		traits = append(traits, "local")
	}
	if p.Free {
		traits = append(traits, "free")
	} else {
		traits = append(traits, fmt.Sprintf("$%.4f/1k tokens", p.CostPer1KTokens))
	}
	return " " + strings.Join(traits, ", ")
}

// limitSlice caps a list for display, noting how many entries were cut
func limitSlice(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	limited := make([]string, max+1)
	copy(limited, items[:max])
	limited[max] = fmt.Sprintf("... and %d more", len(items)-max)
	return limited
}
