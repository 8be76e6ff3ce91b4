package scenario

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/webpilot/internal/backoff"
	"github.com/user/webpilot/internal/browser"
	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/executor"
	"github.com/user/webpilot/internal/tools"
)

// progressRecorder captures lifecycle events per scenario id
type progressRecorder struct {
	mu     sync.Mutex
	added  []string
	events map[string][]string
}

func newProgressRecorder() *progressRecorder {
	return &progressRecorder{events: make(map[string][]string)}
}

func (p *progressRecorder) AddTask(id, name, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.added = append(p.added, id)
}

func (p *progressRecorder) record(id, event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[id] = append(p.events[id], event)
}

func (p *progressRecorder) StartTask(id string)           { p.record(id, "start") }
func (p *progressRecorder) CompleteTask(id string)        { p.record(id, "complete") }
func (p *progressRecorder) FailTask(id string, err error) { p.record(id, "fail") }
func (p *progressRecorder) SkipTask(id string)            { p.record(id, "skip") }

func (p *progressRecorder) eventsFor(id string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events[id]...)
}

func newTestRunner(t *testing.T, simCfg browser.SimulatedConfig, maxRetries, workers int) (*Runner, *browser.SimulatedAgent, *executor.Executor) {
	t.Helper()

	if simCfg.Seed == 0 {
		simCfg.Seed = 1
	}
	agent := browser.NewSimulatedAgent(simCfg)

	registry, err := tools.NewBrowserRegistry(agent)
	if err != nil {
		t.Fatalf("NewBrowserRegistry failed: %v", err)
	}

	exec := executor.New(registry, executor.Options{
		Policy: config.RetryPolicy{
			MaxRetries:            maxRetries,
			InitialDelay:          time.Millisecond,
			MaxDelay:              4 * time.Millisecond,
			UseExponentialBackoff: true,
		},
		MaxHistorySize: 100,
		Jitter:         backoff.FixedJitter(1.0),
	})

	return NewRunner(exec, workers, nil), agent, exec
}

func passingScenario() *Scenario {
	return &Scenario{
		Name: "smoke",
		Steps: []Step{
			{Tool: "navigate", Params: map[string]interface{}{"url": "https://example.com"}},
			{Name: "open menu", Tool: "click", Params: map[string]interface{}{"selector": "#menu"}},
			{Tool: "read_text", Params: map[string]interface{}{"selector": "body"}},
		},
	}
}

func TestRunPassingScenario(t *testing.T) {
	runner, agent, exec := newTestRunner(t, browser.SimulatedConfig{}, 2, 1)

	result, err := runner.Run(context.Background(), passingScenario())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Success {
		t.Fatalf("Expected success, failed at %q: %v", result.FailedStep, result.Err)
	}
	if result.Skipped {
		t.Error("Expected Skipped false")
	}
	if result.StepsTotal != 3 || result.StepsExecuted != 3 {
		t.Errorf("Steps %d/%d, want 3/3", result.StepsExecuted, result.StepsTotal)
	}
	if result.FailedStep != "" {
		t.Errorf("FailedStep = %q, want empty", result.FailedStep)
	}
	if result.CorrelationID == "" {
		t.Fatal("Expected a correlation id")
	}
	if len(result.Steps) != 3 {
		t.Fatalf("Expected 3 step results, got %d", len(result.Steps))
	}
	for i, step := range result.Steps {
		if !step.Success {
			t.Errorf("step %d failed: %v", i, step.Err)
		}
		if step.CorrelationID() != result.CorrelationID {
			t.Errorf("step %d correlation id %q, want %q", i, step.CorrelationID(), result.CorrelationID)
		}
	}

	// All steps land in the history under the scenario's correlation id
	recorded, err := exec.History(result.CorrelationID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(recorded) != 3 {
		t.Errorf("Expected 3 history entries, got %d", len(recorded))
	}

	if n := agent.Dispatches(browser.ActionNavigate); n != 1 {
		t.Errorf("navigate dispatches = %d, want 1", n)
	}
}

func TestRunRetriesTransientSteps(t *testing.T) {
	runner, agent, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 1)

	agent.FailTimes(browser.ActionClick, 2, apperrors.NewElementNotFoundError("#menu"))

	result, err := runner.Run(context.Background(), passingScenario())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Success {
		t.Fatalf("Expected success after retries, failed at %q: %v", result.FailedStep, result.Err)
	}

	click := result.Steps[1]
	if click.AttemptCount != 3 {
		t.Errorf("click AttemptCount = %d, want 3", click.AttemptCount)
	}
	if !click.WasRetried {
		t.Error("Expected WasRetried on the click step")
	}
	if reasons := click.RetryReasons(); len(reasons) != 2 {
		t.Errorf("RetryReasons = %v, want 2 entries", reasons)
	}
	if n := agent.Dispatches(browser.ActionClick); n != 3 {
		t.Errorf("click dispatches = %d, want 3", n)
	}
}

func TestRunFailingStepShortCircuits(t *testing.T) {
	runner, agent, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 1)

	agent.Script(browser.ActionClick, apperrors.NewTerminalError("element_detached", "element detached from DOM"))

	result, err := runner.Run(context.Background(), passingScenario())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Success {
		t.Fatal("Expected failure")
	}
	if result.FailedStep != "open menu" {
		t.Errorf("FailedStep = %q, want open menu", result.FailedStep)
	}
	if result.StepsExecuted != 2 {
		t.Errorf("StepsExecuted = %d, want 2", result.StepsExecuted)
	}
	if len(result.Steps) != 2 {
		t.Errorf("Expected 2 step results, got %d", len(result.Steps))
	}
	if result.Err == nil {
		t.Error("Expected the failing step's error")
	}

	// Terminal failure stops the step at one attempt and the scenario
	// before the read
	if n := agent.Dispatches(browser.ActionClick); n != 1 {
		t.Errorf("click dispatches = %d, want 1", n)
	}
	if n := agent.Dispatches(browser.ActionReadText); n != 0 {
		t.Errorf("read_text dispatches = %d, want 0", n)
	}
}

func TestRunStepFallbackServes(t *testing.T) {
	runner, agent, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 1)

	// The primary click consumes the terminal outcome; the fallback
	// click finds an empty script and succeeds.
	agent.Script(browser.ActionClick, apperrors.NewTerminalError("element_detached", "element detached from DOM"))

	sc := &Scenario{
		Name: "fallback-click",
		Steps: []Step{
			{Tool: "navigate", Params: map[string]interface{}{"url": "https://example.com"}},
			{
				Name:   "add item",
				Tool:   "click",
				Params: map[string]interface{}{"selector": "#primary"},
				Fallbacks: []Fallback{
					{Tool: "click", Params: map[string]interface{}{"selector": "#alternate"}},
				},
			},
		},
	}

	result, err := runner.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Success {
		t.Fatalf("Expected the fallback to serve, failed: %v", result.Err)
	}

	step := result.Steps[1]
	if !step.FallbackUsed() {
		t.Error("Expected fallback_used on the step result")
	}
	if index, _ := step.Metadata[executor.MetaFallbackIndex].(int); index != 0 {
		t.Errorf("fallback_index = %v, want 0", step.Metadata[executor.MetaFallbackIndex])
	}
	if n := agent.Dispatches(browser.ActionClick); n != 2 {
		t.Errorf("click dispatches = %d, want 2", n)
	}
}

func TestRunSkippedScenario(t *testing.T) {
	runner, agent, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 1)

	sc := passingScenario()
	sc.Skip = true

	result, err := runner.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Skipped {
		t.Error("Expected Skipped true")
	}
	if result.Success {
		t.Error("Expected Success false on a skipped scenario")
	}
	if len(result.Steps) != 0 {
		t.Errorf("Expected no step results, got %d", len(result.Steps))
	}
	if n := agent.Dispatches(browser.ActionNavigate); n != 0 {
		t.Errorf("navigate dispatches = %d, want 0", n)
	}
}

func TestRunCancellation(t *testing.T) {
	runner, _, _ := newTestRunner(t, browser.SimulatedConfig{Latency: 200 * time.Millisecond}, 2, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := runner.Run(ctx, passingScenario())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected DeadlineExceeded, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected no partial result, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	runner, _, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 2)

	failing := &Scenario{
		Name: "broken",
		Steps: []Step{
			{Name: "impossible", Tool: "hover", Params: map[string]interface{}{"selector": "#menu"}},
		},
	}
	skipped := passingScenario()
	skipped.Name = "disabled"
	skipped.Skip = true

	progress := newProgressRecorder()
	runner.SetProgressReporter(progress)

	run, err := runner.RunAll(context.Background(), []*Scenario{passingScenario(), failing, skipped})
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	if run.Passed != 1 || run.Failed != 1 || run.Skipped != 1 {
		t.Errorf("Counts passed/failed/skipped = %d/%d/%d, want 1/1/1", run.Passed, run.Failed, run.Skipped)
	}
	if run.AllPassed() {
		t.Error("Expected AllPassed false")
	}

	// Results come back in input order regardless of completion order
	wantOrder := []string{"smoke", "broken", "disabled"}
	if len(run.Results) != len(wantOrder) {
		t.Fatalf("Expected %d results, got %d", len(wantOrder), len(run.Results))
	}
	for i, name := range wantOrder {
		if run.Results[i].Scenario != name {
			t.Errorf("Results[%d].Scenario = %q, want %q", i, run.Results[i].Scenario, name)
		}
	}

	if got := progress.added; len(got) != 3 || got[0] != "smoke" || got[1] != "broken" || got[2] != "disabled" {
		t.Errorf("AddTask order = %v", got)
	}
	if got := progress.eventsFor("smoke"); len(got) != 2 || got[0] != "start" || got[1] != "complete" {
		t.Errorf("smoke events = %v", got)
	}
	if got := progress.eventsFor("broken"); len(got) != 2 || got[0] != "start" || got[1] != "fail" {
		t.Errorf("broken events = %v", got)
	}
	if got := progress.eventsFor("disabled"); len(got) != 1 || got[0] != "skip" {
		t.Errorf("disabled events = %v", got)
	}
}

func TestRunAllAllPassed(t *testing.T) {
	runner, _, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 4)

	second := passingScenario()
	second.Name = "smoke-again"

	run, err := runner.RunAll(context.Background(), []*Scenario{passingScenario(), second})
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if !run.AllPassed() {
		t.Error("Expected AllPassed true")
	}
	if run.Passed != 2 {
		t.Errorf("Passed = %d, want 2", run.Passed)
	}
}

func TestRunAllEmpty(t *testing.T) {
	runner, _, _ := newTestRunner(t, browser.SimulatedConfig{}, 2, 2)

	_, err := runner.RunAll(context.Background(), nil)
	if err == nil {
		t.Fatal("Expected an error for an empty scenario list")
	}
}

func TestRunAllCancellation(t *testing.T) {
	runner, _, _ := newTestRunner(t, browser.SimulatedConfig{Latency: 200 * time.Millisecond}, 2, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	second := passingScenario()
	second.Name = "smoke-again"

	run, err := runner.RunAll(ctx, []*Scenario{passingScenario(), second})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected DeadlineExceeded, got %v", err)
	}
	if run != nil {
		t.Errorf("Expected no partial run result, got %+v", run)
	}
}
