package handlers

import (
	"context"
	"time"

	"github.com/user/webpilot/internal/browser"
	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/executor"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/report"
	"github.com/user/webpilot/internal/scenario"
	"github.com/user/webpilot/internal/tools"
)

// RunHandler loads a scenario suite, runs it against the simulated
// browser agent through the retrying executor, and optionally writes a
// JSON report.
type RunHandler struct {
	*BaseHandler
	config      config.RunConfig
	executorCfg *config.ExecutorConfig
	progress    scenario.ProgressReporter
	version     string
}

// NewRunHandler creates a run handler
func NewRunHandler(cfg config.RunConfig, executorCfg *config.ExecutorConfig, logger *logging.Logger) *RunHandler {
	return &RunHandler{
		BaseHandler: NewBaseHandler(cfg.BaseConfig, logger),
		config:      cfg,
		executorCfg: executorCfg,
	}
}

// SetProgressReporter wires live terminal progress into the run
func (h *RunHandler) SetProgressReporter(p scenario.ProgressReporter) {
	h.progress = p
}

// SetVersion records the application version stamped into reports
func (h *RunHandler) SetVersion(version string) {
	h.version = version
}

// Handle runs the suite and returns its result. When a report path is
// configured and the export fails, the completed result comes back
// alongside the error so callers can still summarize the run.
func (h *RunHandler) Handle(ctx context.Context) (*scenario.RunResult, error) {
	scenariosPath := h.resolvePath(h.config.GetScenarios())

	h.Logger.Info("Starting scenario run",
		logging.String("scenarios", scenariosPath),
		logging.Int("workers", h.config.GetWorkers()))

	scenarios, err := scenario.Load(scenariosPath)
	if err != nil {
		return nil, err
	}

	agent := browser.NewSimulatedAgent(browser.SimulatedConfig{
		Seed:                  h.config.Agent.Seed,
		Latency:               time.Duration(h.config.Agent.LatencyMs) * time.Millisecond,
		FailureRate:           h.config.Agent.FailureRate,
		FailuresBeforeSuccess: h.config.Agent.FailuresBeforeSuccess,
	})

	registry, err := tools.NewBrowserRegistry(agent)
	if err != nil {
		return nil, err
	}

	exec := executor.NewFromConfig(registry, h.executorCfg, h.Logger)

	runner := scenario.NewRunner(exec, h.config.GetWorkers(), h.Logger)
	if h.progress != nil {
		runner.SetProgressReporter(h.progress)
	}

	run, err := runner.RunAll(ctx, scenarios)
	if err != nil {
		return nil, err
	}

	h.Logger.Info("Run finished",
		logging.Int("passed", run.Passed),
		logging.Int("failed", run.Failed),
		logging.Int("skipped", run.Skipped),
		logging.Duration("duration", run.Duration))

	if h.config.ReportPath != "" {
		if err := h.exportReport(run, exec, scenariosPath); err != nil {
			return run, err
		}
	}

	return run, nil
}

func (h *RunHandler) exportReport(run *scenario.RunResult, exec *executor.Executor, scenariosPath string) error {
	stats := exec.HistoryStats()
	exporter := report.NewJSONExporter(report.Options{
		Version:       h.version,
		ScenariosPath: scenariosPath,
		Workers:       h.config.GetWorkers(),
		History:       &stats,
	})

	reportPath := h.resolvePath(h.config.ReportPath)
	if err := exporter.Export(run, reportPath); err != nil {
		return err
	}

	h.Logger.Info("Report written", logging.String("path", reportPath))
	return nil
}
