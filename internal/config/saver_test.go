package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaver_SaveGlobalConfig_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })
	os.Setenv("HOME", tmpDir)

	retries := 5
	saver := NewSaver()
	cfg := &GlobalConfig{
		Executor: ExecutorConfig{
			MaxRetries: &retries,
		},
		Routing: RoutingConfig{
			Strategy: StrategyCostOptimized,
		},
	}

	if err := saver.SaveGlobalConfig(cfg); err != nil {
		t.Fatalf("SaveGlobalConfig failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, ".webpilot.yaml")
	info, err := os.Stat(expectedPath)
	if os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", expectedPath)
	}

	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected file permissions 0600, got %o", perm)
	}
}

func TestSaver_SaveProjectConfig_RoundTrip(t *testing.T) {
	os.Clearenv()
	tmpDir := t.TempDir()

	retries := 0
	linear := false
	saver := NewSaver()
	cfg := &GlobalConfig{
		Executor: ExecutorConfig{
			MaxRetries:            &retries,
			MaxRetryDelayMs:       1500,
			UseExponentialBackoff: &linear,
		},
		Routing: RoutingConfig{
			Strategy:     StrategyTaskBased,
			DefaultRoute: "local/llama-3-8b",
			Providers: []ProviderConfig{
				{Name: "local", Model: "llama-3-8b", Local: true, MaxContextTokens: 8192},
			},
		},
	}

	if err := saver.SaveProjectConfig(tmpDir, cfg); err != nil {
		t.Fatalf("SaveProjectConfig failed: %v", err)
	}

	// The saved file must load back through the regular loader.
	execCfg, err := LoadExecutorConfig(tmpDir, map[string]interface{}{})
	if err != nil {
		t.Fatalf("reload executor config: %v", err)
	}
	if got := execCfg.GetMaxRetries(); got != 0 {
		t.Errorf("Expected max retries 0 after round trip, got %d", got)
	}
	if execCfg.GetUseExponentialBackoff() {
		t.Error("Expected linear backoff after round trip")
	}
	if got := execCfg.GetMaxRetryDelay().Milliseconds(); got != 1500 {
		t.Errorf("Expected max delay 1500ms after round trip, got %dms", got)
	}

	routeCfg, err := LoadRoutingConfig(tmpDir, map[string]interface{}{})
	if err != nil {
		t.Fatalf("reload routing config: %v", err)
	}
	if routeCfg.DefaultRoute != "local/llama-3-8b" {
		t.Errorf("Expected default route preserved, got %q", routeCfg.DefaultRoute)
	}
	if len(routeCfg.Providers) != 1 || routeCfg.Providers[0].Name != "local" {
		t.Errorf("Expected provider preserved, got %+v", routeCfg.Providers)
	}
}

func TestStarterConfig_LoadsAndValidates(t *testing.T) {
	os.Clearenv()
	tmpDir := t.TempDir()

	saver := NewSaver()
	if err := saver.SaveProjectConfig(tmpDir, StarterConfig()); err != nil {
		t.Fatalf("SaveProjectConfig failed: %v", err)
	}

	// The scaffold must pass the loader's validation untouched.
	routeCfg, err := LoadRoutingConfig(tmpDir, map[string]interface{}{})
	if err != nil {
		t.Fatalf("reload routing config: %v", err)
	}
	if routeCfg.GetStrategy() != StrategyTaskBased {
		t.Errorf("Expected task_based strategy, got %q", routeCfg.GetStrategy())
	}
	if len(routeCfg.Providers) != 2 {
		t.Fatalf("Expected 2 providers, got %d", len(routeCfg.Providers))
	}
	if routeCfg.DefaultRoute != "cloud" {
		t.Errorf("Expected default route cloud, got %q", routeCfg.DefaultRoute)
	}
	if routeCfg.TaskRoutes["action_generation"] != "local" {
		t.Errorf("Expected action_generation routed to local, got %q", routeCfg.TaskRoutes["action_generation"])
	}

	runCfg, err := LoadRunConfig(tmpDir, map[string]interface{}{})
	if err != nil {
		t.Fatalf("reload run config: %v", err)
	}
	if runCfg.GetScenarios() != "scenarios" {
		t.Errorf("Expected scenarios path, got %q", runCfg.GetScenarios())
	}
	if runCfg.Agent.LatencyMs != 20 {
		t.Errorf("Expected agent latency 20ms, got %d", runCfg.Agent.LatencyMs)
	}
}
