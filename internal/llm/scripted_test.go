package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
)

func TestScriptedProviderComplete(t *testing.T) {
	provider := NewScriptedProvider("local-ollama", "llama3.1:8b", ProviderCapabilities{
		MaxContextTokens: 8192,
		Local:            true,
	})

	req := CompletionRequest{
		SystemPrompt: "You drive a browser.",
		Messages:     []Message{{Role: "user", Content: "Click the login button"}},
	}

	resp, err := provider.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Provider != "local-ollama" {
		t.Errorf("Expected provider local-ollama, got %s", resp.Provider)
	}
	if resp.Model != "llama3.1:8b" {
		t.Errorf("Expected model llama3.1:8b, got %s", resp.Model)
	}
	if resp.Content == "" {
		t.Error("Expected canned content")
	}
	if resp.Usage.InputTokens != req.PromptTokens() {
		t.Errorf("Expected input tokens %d, got %d", req.PromptTokens(), resp.Usage.InputTokens)
	}
	if resp.Usage.TotalTokens != resp.Usage.InputTokens+resp.Usage.OutputTokens {
		t.Error("Expected total = input + output")
	}
}

func TestScriptedProviderOutcomes(t *testing.T) {
	provider := NewScriptedProvider("cloud", "gpt-4o", ProviderCapabilities{})
	provider.FailTimes(2, apperrors.NewProviderConnectionError("cloud", errors.New("connection refused")))

	ctx := context.Background()
	req := CompletionRequest{Messages: []Message{{Role: "user", Content: "hi"}}}

	for i := 0; i < 2; i++ {
		if _, err := provider.Complete(ctx, req); err == nil {
			t.Fatalf("Expected dispatch %d to fail", i+1)
		}
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		t.Fatalf("Expected third dispatch to succeed, got %v", err)
	}
	if resp == nil || resp.Provider != "cloud" {
		t.Error("Expected response from cloud")
	}
	if provider.Dispatches() != 3 {
		t.Errorf("Expected 3 dispatches, got %d", provider.Dispatches())
	}
}

func TestScriptedProviderSetResponse(t *testing.T) {
	provider := NewScriptedProvider("cloud", "gpt-4o", ProviderCapabilities{})
	provider.SetResponse(`{"action":"click","selector":"#login"}`)

	resp, err := provider.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != `{"action":"click","selector":"#login"}` {
		t.Errorf("Expected overridden content, got %s", resp.Content)
	}

	// An explicitly empty override is served as-is, not replaced by
	// the canned default
	provider.SetResponse("")
	resp, err = provider.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("Expected empty content, got %s", resp.Content)
	}
}

func TestScriptedProviderCancellation(t *testing.T) {
	provider := NewScriptedProvider("slow", "m", ProviderCapabilities{})
	provider.SetLatency(200 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Complete(ctx, CompletionRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if provider.Dispatches() != 0 {
		t.Errorf("Expected no dispatch after cancellation, got %d", provider.Dispatches())
	}
}

func TestNewProviderSet(t *testing.T) {
	t.Run("BuildsAllProviders", func(t *testing.T) {
		providers, err := NewProviderSet([]config.ProviderConfig{
			{
				Name:              "local-ollama",
				Model:             "llama3.1:8b",
				MaxContextTokens:  8192,
				Local:             true,
				Reliability:       0.9,
			},
			{
				Name:                    "cloud-openai",
				Model:                   "gpt-4o",
				SupportsStreaming:       true,
				SupportsFunctionCalling: true,
				MaxContextTokens:        128000,
				CostPer1KTokens:         0.005,
				Reliability:             0.99,
			},
		}, 7)
		if err != nil {
			t.Fatalf("NewProviderSet failed: %v", err)
		}

		if len(providers) != 2 {
			t.Fatalf("Expected 2 providers, got %d", len(providers))
		}
		caps := providers[1].Capabilities()
		if !caps.SupportsStreaming || !caps.SupportsFunctionCalling {
			t.Error("Expected streaming and function calling capabilities carried")
		}
		if caps.CostPer1KTokens != 0.005 {
			t.Errorf("Expected cost 0.005, got %f", caps.CostPer1KTokens)
		}
		if !providers[0].Capabilities().Local {
			t.Error("Expected local capability carried")
		}
	})

	t.Run("RejectsDuplicateNames", func(t *testing.T) {
		_, err := NewProviderSet([]config.ProviderConfig{
			{Name: "a", Model: "m1"},
			{Name: "a", Model: "m2"},
		}, 1)
		if err == nil {
			t.Fatal("Expected duplicate name to be rejected")
		}
	})

	t.Run("RejectsEmptyName", func(t *testing.T) {
		_, err := NewProviderSet([]config.ProviderConfig{{Model: "m"}}, 1)
		if err == nil {
			t.Fatal("Expected empty name to be rejected")
		}
	})
}

func TestCapabilitiesHelpers(t *testing.T) {
	if got := (ProviderCapabilities{}).EffectiveReliability(); got != 1.0 {
		t.Errorf("Expected unknown reliability to mean 1.0, got %f", got)
	}
	if got := (ProviderCapabilities{Reliability: 0.9}).EffectiveReliability(); got != 0.9 {
		t.Errorf("Expected 0.9, got %f", got)
	}
	if got := (ProviderCapabilities{Reliability: 1.5}).EffectiveReliability(); got != 1.0 {
		t.Errorf("Expected clamp to 1.0, got %f", got)
	}

	if !(ProviderCapabilities{}).Free() {
		t.Error("Expected zero cost to mean free")
	}
	if (ProviderCapabilities{CostPer1KTokens: 0.01}).Free() {
		t.Error("Expected non-zero cost to mean not free")
	}
}
