package testing

import (
	"testing"
)

// CheckoutScenarioYAML returns a scenario that passes deterministically
// against a zero-failure simulated agent: every selector it touches is
// created by an earlier step or by the navigation itself.
func CheckoutScenarioYAML() string {
	return `name: checkout
description: Add an item to the cart and apply a promo code
steps:
  - name: open store
    tool: navigate
    params:
      url: https://store.example.com
  - tool: wait_for_element
    params:
      selector: body
      timeout_ms: 2000
  - name: add to cart
    tool: click
    params:
      selector: "#add-to-cart"
    fallbacks:
      - tool: click
        params:
          selector: button.add-to-cart
  - tool: type_text
    params:
      selector: "#promo"
      text: WELCOME10
  - name: confirm page loaded
    tool: read_text
    params:
      selector: body
`
}

// BrokenFlowScenarioYAML returns a scenario whose second step references
// a tool the registry does not know, so a run fails on validation
// without any fault injection.
func BrokenFlowScenarioYAML() string {
	return `name: broken-flow
description: References a tool outside the catalog
steps:
  - tool: navigate
    params:
      url: https://store.example.com
  - name: impossible
    tool: hover
    params:
      selector: "#menu"
`
}

// SkippedScenarioYAML returns a scenario marked skip
func SkippedScenarioYAML() string {
	return `name: flaky-legacy
description: Disabled until the promo flow stabilizes
skip: true
steps:
  - tool: navigate
    params:
      url: https://legacy.example.com
`
}

// DefaultScenarioFiles returns the standard fixture set keyed by
// filename: one passing, one failing, one skipped scenario.
func DefaultScenarioFiles() map[string]string {
	return map[string]string{
		"checkout.yaml":     CheckoutScenarioYAML(),
		"broken_flow.yaml":  BrokenFlowScenarioYAML(),
		"flaky_legacy.yaml": SkippedScenarioYAML(),
	}
}

// CreateScenarioDir writes the given scenario files into a fresh temp
// directory and returns it.
func CreateScenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// SampleConfigYAML returns a complete .webpilot/config.yaml covering
// the executor, routing and run surfaces with two providers.
func SampleConfigYAML() string {
	return `executor:
  max_retries: 2
  initial_retry_delay_ms: 1
  max_retry_delay_ms: 4
  timeout_per_tool_ms: 500
routing:
  strategy: task_based
  default_route: cloud/sonnet
  task_routes:
    planning: cloud/sonnet
    extraction: local/llama
  providers:
    - name: cloud
      model: sonnet
      supports_streaming: true
      supports_function_calling: true
      max_context_tokens: 200000
      cost_per_1k_tokens: 0.003
      reliability: 0.99
    - name: local
      model: llama
      max_context_tokens: 16000
      local: true
      reliability: 0.9
run:
  workers: 2
  agent:
    seed: 7
`
}
