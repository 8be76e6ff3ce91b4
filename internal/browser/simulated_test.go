package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/user/webpilot/internal/errors"
)

func TestSimulatedAgentNavigate(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
	ctx := context.Background()

	if err := agent.Navigate(ctx, "https://example.com/login"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	state, err := agent.GetPageState(ctx)
	if err != nil {
		t.Fatalf("GetPageState failed: %v", err)
	}
	if state.URL != "https://example.com/login" {
		t.Errorf("Expected URL to be set, got %s", state.URL)
	}
	if state.Title != "example.com" {
		t.Errorf("Expected title example.com, got %s", state.Title)
	}
}

func TestSimulatedAgentFailTimes(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
	ctx := context.Background()

	failure := apperrors.NewNavigationError("https://example.com", errors.New("connection reset"))
	agent.FailTimes(ActionNavigate, 2, failure)

	for i := 0; i < 2; i++ {
		if err := agent.Navigate(ctx, "https://example.com"); err == nil {
			t.Fatalf("Expected dispatch %d to fail", i+1)
		}
	}
	if err := agent.Navigate(ctx, "https://example.com"); err != nil {
		t.Fatalf("Expected third dispatch to succeed, got %v", err)
	}
	if got := agent.Dispatches(ActionNavigate); got != 3 {
		t.Errorf("Expected 3 dispatches, got %d", got)
	}
}

func TestSimulatedAgentScriptedOutcomes(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1, FailureRate: 1.0})
	ctx := context.Background()

	// A scripted nil wins over the failure profile
	agent.Script(ActionClick, nil, apperrors.NewElementNotFoundError("#submit"))

	if err := agent.Click(ctx, "#submit"); err != nil {
		t.Fatalf("Expected scripted success, got %v", err)
	}
	if err := agent.Click(ctx, "#submit"); err == nil {
		t.Fatal("Expected scripted failure")
	}
}

func TestSimulatedAgentTypeAndRead(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
	ctx := context.Background()

	if err := agent.Type(ctx, "#username", "admin"); err != nil {
		t.Fatalf("Type failed: %v", err)
	}

	text, err := agent.ReadText(ctx, "#username")
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if text != "admin" {
		t.Errorf("Expected admin, got %s", text)
	}

	_, err = agent.ReadText(ctx, "#missing")
	if err == nil {
		t.Fatal("Expected error for missing element")
	}
	if !apperrors.IsTransient(err) {
		t.Errorf("Expected missing element to classify transient, got %v", err)
	}
}

func TestSimulatedAgentWaitForElement(t *testing.T) {
	t.Run("ElementAppears", func(t *testing.T) {
		agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
		ctx := context.Background()

		go func() {
			time.Sleep(30 * time.Millisecond)
			agent.SetElement("#late", "loaded")
		}()

		if err := agent.WaitForElement(ctx, "#late", 500*time.Millisecond); err != nil {
			t.Errorf("Expected wait to succeed, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
		ctx := context.Background()

		err := agent.WaitForElement(ctx, "#never", 50*time.Millisecond)
		if err == nil {
			t.Fatal("Expected timeout error")
		}
		if !apperrors.IsTransient(err) {
			t.Errorf("Expected transient error, got %v", err)
		}
	})
}

func TestSimulatedAgentCancellation(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1, Latency: 200 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := agent.Navigate(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if got := agent.Dispatches(ActionNavigate); got != 0 {
		t.Errorf("Expected no dispatch after cancellation, got %d", got)
	}
}

func TestSimulatedAgentFailuresBeforeSuccess(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1, FailuresBeforeSuccess: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := agent.Click(ctx, "#btn")
		if err == nil {
			t.Fatalf("Expected dispatch %d to fail", i+1)
		}
		if !apperrors.IsTransient(err) {
			t.Errorf("Expected transient error, got %v", err)
		}
	}
	if err := agent.Click(ctx, "#btn"); err != nil {
		t.Fatalf("Expected third dispatch to succeed, got %v", err)
	}
}

func TestSimulatedAgentDeterministicSeed(t *testing.T) {
	run := func() []bool {
		agent := NewSimulatedAgent(SimulatedConfig{Seed: 42, FailureRate: 0.5})
		ctx := context.Background()
		outcomes := make([]bool, 0, 20)
		for i := 0; i < 20; i++ {
			outcomes = append(outcomes, agent.Click(ctx, "#btn") == nil)
		}
		return outcomes
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Outcome %d diverged between identically seeded runs", i)
		}
	}
}

func TestSimulatedAgentRefusesUnsafeSchemes(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
	ctx := context.Background()

	for _, rawURL := range []string{"file:///etc/passwd", "chrome://settings", "javascript:alert(1)"} {
		err := agent.Navigate(ctx, rawURL)
		if err == nil {
			t.Fatalf("Expected %s to be refused", rawURL)
		}
		if !apperrors.IsTerminal(err) {
			t.Errorf("Expected terminal refusal for %s, got %v", rawURL, err)
		}
	}

	// The refusal never reaches the page
	if got := agent.Dispatches(ActionNavigate); got != 0 {
		t.Errorf("Expected 0 dispatches, got %d", got)
	}

	if err := agent.Navigate(ctx, "https://example.com"); err != nil {
		t.Fatalf("Expected https navigation to work, got %v", err)
	}
}

func TestSimulatedAgentCrash(t *testing.T) {
	agent := NewSimulatedAgent(SimulatedConfig{Seed: 1})
	ctx := context.Background()

	if err := agent.Navigate(ctx, "https://example.com"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	agent.Crash()

	err := agent.Click(ctx, "#submit")
	if err == nil {
		t.Fatal("Expected dispatch on a crashed agent to fail")
	}
	if !apperrors.IsTerminal(err) {
		t.Errorf("Expected terminal crash error, got %v", err)
	}

	// Scripted successes cannot revive a crashed agent
	agent.Script(ActionClick, nil)
	if err := agent.Click(ctx, "#submit"); err == nil {
		t.Error("Expected crashed agent to stay failed")
	}
}
