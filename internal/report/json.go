package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/user/webpilot/internal/circuit"
	"github.com/user/webpilot/internal/executor"
	"github.com/user/webpilot/internal/scenario"
)

const generatorName = "webpilot"
const generatorURL = "https://github.com/user/webpilot"

// Options carries run context recorded alongside the results
type Options struct {
	Version       string // CLI version, "dev" when empty
	ScenariosPath string
	Workers       int
	Providers     []circuit.Snapshot
	History       *executor.HistoryStats
}

// JSONExporter builds and writes run reports
type JSONExporter struct {
	opts Options
	now  func() time.Time
}

// NewJSONExporter creates an exporter with the given run context
func NewJSONExporter(opts Options) *JSONExporter {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &JSONExporter{opts: opts, now: time.Now}
}

// Build assembles the report document from a finished run
func (e *JSONExporter) Build(run *scenario.RunResult) *RunReport {
	scenarios := make([]ScenarioReport, 0, len(run.Results))
	for _, sr := range run.Results {
		scenarios = append(scenarios, buildScenarioReport(sr))
	}

	return &RunReport{
		Metadata: Metadata{
			GeneratedAt: e.now().UTC(),
			Generator: Generator{
				Name:    generatorName,
				Version: e.opts.Version,
				URL:     generatorURL,
			},
			ScenariosPath: e.opts.ScenariosPath,
			Workers:       e.opts.Workers,
		},
		Summary: Summary{
			Total:      len(run.Results),
			Passed:     run.Passed,
			Failed:     run.Failed,
			Skipped:    run.Skipped,
			Success:    run.AllPassed(),
			DurationMs: run.Duration.Milliseconds(),
		},
		Scenarios: scenarios,
		Providers: e.opts.Providers,
		History:   e.opts.History,
	}
}

// Export builds the report and writes it to outputPath as indented JSON
func (e *JSONExporter) Export(run *scenario.RunResult, outputPath string) error {
	data, err := json.MarshalIndent(e.Build(run), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func buildScenarioReport(sr *scenario.ScenarioResult) ScenarioReport {
	out := ScenarioReport{
		Name:          sr.Scenario,
		Status:        scenarioStatus(sr),
		CorrelationID: sr.CorrelationID,
		FailedStep:    sr.FailedStep,
		StepsTotal:    sr.StepsTotal,
		StepsExecuted: sr.StepsExecuted,
		DurationMs:    sr.Duration.Milliseconds(),
	}
	if sr.Err != nil {
		out.Error = sr.Err.Error()
	}

	for _, step := range sr.Steps {
		out.Steps = append(out.Steps, buildStepReport(step))
	}
	return out
}

func scenarioStatus(sr *scenario.ScenarioResult) string {
	switch {
	case sr.Skipped:
		return StatusSkipped
	case sr.Success:
		return StatusPassed
	default:
		return StatusFailed
	}
}

func buildStepReport(result *executor.Result) StepReport {
	step := StepReport{
		Tool:         result.ToolName,
		Success:      result.Success,
		AttemptCount: result.AttemptCount,
		DurationMs:   result.Duration.Milliseconds(),
		WasRetried:   result.WasRetried,
		Error:        result.ErrorMessage(),
		RetryReasons: result.RetryReasons(),
		FallbackUsed: result.FallbackUsed(),
	}

	if reason, ok := result.ValidationFailure(); ok {
		step.ValidationError = reason
	}

	for _, delay := range result.RetryDelays() {
		step.RetryDelaysMs = append(step.RetryDelaysMs, delay.Milliseconds())
	}

	if index, ok := result.Metadata[executor.MetaFallbackIndex].(int); ok {
		step.FallbackIndex = &index
	}

	return step
}
