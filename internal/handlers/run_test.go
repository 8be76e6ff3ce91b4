package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/report"
)

const checkoutScenario = `name: checkout
description: Cart to confirmation
steps:
  - tool: navigate
    params:
      url: https://shop.test/cart
  - tool: click
    params:
      selector: "#buy"
  - tool: get_page_state
`

const signupScenario = `name: signup
steps:
  - tool: navigate
    params:
      url: https://shop.test/signup
  - tool: wait_for_element
    params:
      selector: body
`

func scenarioWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	scenariosDir := filepath.Join(dir, "scenarios")
	if err := os.MkdirAll(scenariosDir, 0o755); err != nil {
		t.Fatalf("mkdir scenarios: %v", err)
	}
	return dir, scenariosDir
}

func writeScenarioFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario %s: %v", name, err)
	}
}

// recordingReporter captures progress callbacks for assertions
type recordingReporter struct {
	mu        sync.Mutex
	added     []string
	started   []string
	completed []string
	failed    []string
	skipped   []string
}

func (r *recordingReporter) AddTask(id, name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, id)
}

func (r *recordingReporter) StartTask(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, id)
}

func (r *recordingReporter) CompleteTask(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, id)
}

func (r *recordingReporter) FailTask(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, id)
}

func (r *recordingReporter) SkipTask(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, id)
}

func TestRunHandlerAllPass(t *testing.T) {
	dir, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "checkout.yaml", checkoutScenario)
	writeScenarioFile(t, scenariosDir, "signup.yaml", signupScenario)

	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: dir},
		Workers:    2,
		Agent:      config.AgentSimConfig{Seed: 7},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{}, logging.NewNopLogger())

	run, err := h.Handle(context.Background())
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if run.Passed != 2 || run.Failed != 0 {
		t.Errorf("expected 2 passed and 0 failed, got %d passed, %d failed", run.Passed, run.Failed)
	}
	if !run.AllPassed() {
		t.Error("AllPassed() = false for a clean run")
	}
}

func TestRunHandlerCountsFailures(t *testing.T) {
	dir, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "flaky.yaml", `name: flaky
steps:
  - tool: navigate
    params:
      url: https://shop.test/
`)

	zero := 0
	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: dir},
		Agent:      config.AgentSimConfig{Seed: 3, FailuresBeforeSuccess: 1},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{MaxRetries: &zero}, logging.NewNopLogger())

	run, err := h.Handle(context.Background())
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if run.Failed != 1 {
		t.Errorf("expected 1 failed scenario, got %d", run.Failed)
	}
	if run.AllPassed() {
		t.Error("AllPassed() = true with a failed scenario")
	}
}

func TestRunHandlerRetriesThroughTransientFailures(t *testing.T) {
	dir, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "flaky.yaml", `name: flaky
steps:
  - tool: navigate
    params:
      url: https://shop.test/
  - tool: click
    params:
      selector: "#ok"
`)

	delay := 1
	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: dir},
		Agent:      config.AgentSimConfig{Seed: 5, FailuresBeforeSuccess: 1},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{InitialRetryDelayMs: &delay}, logging.NewNopLogger())

	run, err := h.Handle(context.Background())
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if run.Passed != 1 {
		t.Errorf("expected the retry budget to absorb first-dispatch failures, got %d passed, %d failed",
			run.Passed, run.Failed)
	}
}

func TestRunHandlerWritesReport(t *testing.T) {
	dir, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "checkout.yaml", checkoutScenario)

	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: dir},
		ReportPath: "report.json",
		Agent:      config.AgentSimConfig{Seed: 7},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{}, logging.NewNopLogger())
	h.SetVersion("1.2.3")

	if _, err := h.Handle(context.Background()); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}

	var rep report.RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if rep.Metadata.Generator.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3 in report, got %q", rep.Metadata.Generator.Version)
	}
	if rep.Summary.Total != 1 || rep.Summary.Passed != 1 {
		t.Errorf("expected 1/1 passed in report, got %d/%d", rep.Summary.Passed, rep.Summary.Total)
	}
	if rep.History == nil {
		t.Error("expected execution history stats in report")
	}
}

func TestRunHandlerReportExportFailure(t *testing.T) {
	dir, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "checkout.yaml", checkoutScenario)

	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: dir},
		ReportPath: filepath.Join("missing-dir", "report.json"),
		Agent:      config.AgentSimConfig{Seed: 7},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{}, logging.NewNopLogger())

	run, err := h.Handle(context.Background())
	if err == nil {
		t.Fatal("expected an export error for an unwritable report path")
	}
	if run == nil {
		t.Fatal("expected the completed run alongside the export error")
	}
	if run.Passed != 1 {
		t.Errorf("expected the run itself to pass, got %d passed", run.Passed)
	}
}

func TestRunHandlerMissingScenariosPath(t *testing.T) {
	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: t.TempDir()},
		Scenarios:  "nope",
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{}, logging.NewNopLogger())

	run, err := h.Handle(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing scenario path")
	}
	if run != nil {
		t.Errorf("expected nil result on load failure, got %+v", run)
	}
}

func TestRunHandlerAbsoluteScenariosPath(t *testing.T) {
	_, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "signup.yaml", signupScenario)

	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: t.TempDir()},
		Scenarios:  scenariosDir,
		Agent:      config.AgentSimConfig{Seed: 7},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{}, logging.NewNopLogger())

	run, err := h.Handle(context.Background())
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if run.Passed != 1 {
		t.Errorf("expected 1 passed, got %d", run.Passed)
	}
}

func TestRunHandlerReportsProgress(t *testing.T) {
	dir, scenariosDir := scenarioWorkspace(t)
	writeScenarioFile(t, scenariosDir, "checkout.yaml", checkoutScenario)
	writeScenarioFile(t, scenariosDir, "signup.yaml", signupScenario)
	writeScenarioFile(t, scenariosDir, "skipme.yaml", `name: skipme
skip: true
steps:
  - tool: get_page_state
`)

	cfg := config.RunConfig{
		BaseConfig: config.BaseConfig{WorkPath: dir},
		Agent:      config.AgentSimConfig{Seed: 7},
	}
	h := NewRunHandler(cfg, &config.ExecutorConfig{}, logging.NewNopLogger())

	rec := &recordingReporter{}
	h.SetProgressReporter(rec)

	if _, err := h.Handle(context.Background()); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(rec.added) != 3 {
		t.Errorf("expected 3 tasks added, got %d", len(rec.added))
	}
	if len(rec.added) > 0 && rec.added[0] != "checkout" {
		t.Errorf("expected lexical task order starting with checkout, got %q", rec.added[0])
	}
	if len(rec.completed) != 2 {
		t.Errorf("expected 2 tasks completed, got %d", len(rec.completed))
	}
	if len(rec.skipped) != 1 || rec.skipped[0] != "skipme" {
		t.Errorf("expected skipme to be skipped, got %v", rec.skipped)
	}
	if len(rec.failed) != 0 {
		t.Errorf("expected no failed tasks, got %v", rec.failed)
	}
}

func TestResolvePath(t *testing.T) {
	h := NewBaseHandler(config.BaseConfig{WorkPath: "/work"}, logging.NewNopLogger())

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"relative", "scenarios", filepath.Join("/work", "scenarios")},
		{"absolute", "/abs/path", "/abs/path"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.resolvePath(tc.in); got != tc.want {
				t.Errorf("resolvePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
