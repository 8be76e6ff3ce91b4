package routing

import (
	"testing"

	"github.com/user/webpilot/internal/config"
	"github.com/user/webpilot/internal/llm"
)

func testProviderPair() (cloud, local *llm.ScriptedProvider) {
	cloud = llm.NewScriptedProvider("cloud", "sonnet", llm.ProviderCapabilities{
		SupportsStreaming:       true,
		SupportsFunctionCalling: true,
		MaxContextTokens:        200_000,
		CostPer1KTokens:         0.003,
		Reliability:             0.99,
	})
	local = llm.NewScriptedProvider("local", "llama", llm.ProviderCapabilities{
		MaxContextTokens: 16_000,
		Local:            true,
		Reliability:      0.9,
	})
	return cloud, local
}

func testRoutingConfig() *config.RoutingConfig {
	return &config.RoutingConfig{
		Strategy:     config.StrategyTaskBased,
		DefaultRoute: "cloud/sonnet",
		TaskRoutes: map[string]string{
			"planning":   "cloud/sonnet",
			"extraction": "local/llama",
		},
		Providers: []config.ProviderConfig{
			{Name: "cloud", Model: "sonnet"},
			{Name: "local", Model: "llama"},
		},
	}
}

func TestTaskBasedScoring(t *testing.T) {
	cloud, local := testProviderPair()
	s := NewTaskBasedStrategy(testRoutingConfig())

	t.Run("TaskRouteWins", func(t *testing.T) {
		rc := Context{TaskType: TaskExtraction, Complexity: ComplexityLow}
		if sc, sl := s.Score(rc, cloud), s.Score(rc, local); sl <= sc {
			t.Errorf("Expected routed local to outscore cloud for extraction, got local=%.3f cloud=%.3f", sl, sc)
		}
	})

	t.Run("DefaultRouteBeatsUnrouted", func(t *testing.T) {
		rc := Context{TaskType: TaskAssertion, Complexity: ComplexityLow}
		if sc, sl := s.Score(rc, cloud), s.Score(rc, local); sc <= sl {
			t.Errorf("Expected default-routed cloud to outscore local, got cloud=%.3f local=%.3f", sc, sl)
		}
	})

	t.Run("PreferredModelWins", func(t *testing.T) {
		rc := Context{TaskType: TaskExtraction, Complexity: ComplexityLow, PreferredModel: "sonnet"}
		if sc, sl := s.Score(rc, cloud), s.Score(rc, local); sc <= sl {
			t.Errorf("Expected preferred sonnet to outscore routed local, got cloud=%.3f local=%.3f", sc, sl)
		}
	})

	t.Run("ExpertComplexityNeedsWindow", func(t *testing.T) {
		easy := Context{TaskType: TaskExtraction, Complexity: ComplexityLow}
		hard := Context{TaskType: TaskExtraction, Complexity: ComplexityExpert}
		if s.Score(hard, local) >= s.Score(easy, local) {
			t.Error("Expected the 16k window to score lower as complexity rises")
		}
		if s.Score(hard, cloud) != s.Score(easy, cloud) {
			t.Error("Expected the 200k window to cover every tier equally")
		}
	})

	t.Run("CriticalPriorityPunishesUnreliable", func(t *testing.T) {
		shaky := llm.NewScriptedProvider("shaky", "llama", llm.ProviderCapabilities{
			MaxContextTokens: 16_000,
			Reliability:      0.5,
		})
		low := Context{TaskType: TaskGeneral, Complexity: ComplexityLow, Priority: PriorityLow}
		critical := Context{TaskType: TaskGeneral, Complexity: ComplexityLow, Priority: PriorityCritical}
		if s.Score(critical, shaky) >= s.Score(low, shaky) {
			t.Error("Expected a critical request to score the unreliable provider lower")
		}
	})
}

func TestCostOptimizedScoring(t *testing.T) {
	cloud, local := testProviderPair()
	s := NewCostOptimizedStrategy()

	t.Run("RoutineWorkGoesLocal", func(t *testing.T) {
		rc := Context{TaskType: TaskGeneral, Complexity: ComplexityMedium}
		if sc, sl := s.Score(rc, cloud), s.Score(rc, local); sl <= sc {
			t.Errorf("Expected free local provider to win routine work, got local=%.3f cloud=%.3f", sl, sc)
		}
	})

	t.Run("HighComplexityGoesPremium", func(t *testing.T) {
		rc := Context{TaskType: TaskGeneral, Complexity: ComplexityHigh}
		if sc, sl := s.Score(rc, cloud), s.Score(rc, local); sc <= sl {
			t.Errorf("Expected premium provider to win high complexity, got cloud=%.3f local=%.3f", sc, sl)
		}
	})

	t.Run("CriticalPriorityGoesPremium", func(t *testing.T) {
		rc := Context{TaskType: TaskGeneral, Complexity: ComplexityLow, Priority: PriorityCritical}
		if sc, sl := s.Score(rc, cloud), s.Score(rc, local); sc <= sl {
			t.Errorf("Expected premium provider to win critical priority, got cloud=%.3f local=%.3f", sc, sl)
		}
	})
}

func TestStreamingHardFilter(t *testing.T) {
	cloud, local := testProviderPair()
	strategies := []Strategy{
		NewTaskBasedStrategy(testRoutingConfig()),
		NewCostOptimizedStrategy(),
	}

	for _, s := range strategies {
		// Extraction is routed at local, which cannot stream: the
		// mismatch must zero it out rather than merely lower it.
		rc := Context{TaskType: TaskExtraction, Complexity: ComplexityLow, RequiresStreaming: true}
		if got := s.Score(rc, local); got != 0 {
			t.Errorf("%s: expected score 0 for missing streaming, got %.3f", s.Name(), got)
		}
		if got := s.Score(rc, cloud); got <= 0 {
			t.Errorf("%s: expected streaming provider to stay eligible, got %.3f", s.Name(), got)
		}

		rc = Context{TaskType: TaskExtraction, RequiresFunctionCalling: true}
		if got := s.Score(rc, local); got != 0 {
			t.Errorf("%s: expected score 0 for missing function calling, got %.3f", s.Name(), got)
		}
	}
}

func TestScoresStayNormalized(t *testing.T) {
	cloud, local := testProviderPair()
	strategies := []Strategy{
		NewTaskBasedStrategy(testRoutingConfig()),
		NewCostOptimizedStrategy(),
	}
	tasks := []TaskType{TaskGeneral, TaskPlanning, TaskActionGeneration, TaskAssertion, TaskExtraction, TaskVisualAnalysis, TaskCodeGeneration}
	complexities := []Complexity{ComplexityLow, ComplexityMedium, ComplexityHigh, ComplexityExpert}
	priorities := []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical}

	for _, s := range strategies {
		for _, task := range tasks {
			for _, c := range complexities {
				for _, pr := range priorities {
					rc := Context{TaskType: task, Complexity: c, Priority: pr}
					for _, p := range []llm.Provider{cloud, local} {
						if got := s.Score(rc, p); got < 0 || got > 1 {
							t.Fatalf("%s: score %.3f out of [0,1] for %s/%s/%s on %s",
								s.Name(), got, task, c, pr, p.Name())
						}
					}
				}
			}
		}
	}
}

func TestTaskBasedCanHandle(t *testing.T) {
	s := NewTaskBasedStrategy(testRoutingConfig())

	t.Run("ValidConfig", func(t *testing.T) {
		if !s.CanHandle(testRoutingConfig()) {
			t.Error("Expected valid config to be handled")
		}
	})

	t.Run("MissingDefaultRoute", func(t *testing.T) {
		cfg := testRoutingConfig()
		cfg.DefaultRoute = ""
		if s.CanHandle(cfg) {
			t.Error("Expected rejection without a default route")
		}
	})

	t.Run("DefaultRouteUnknownProvider", func(t *testing.T) {
		cfg := testRoutingConfig()
		cfg.DefaultRoute = "nonexistent/model"
		if s.CanHandle(cfg) {
			t.Error("Expected rejection for an unresolvable default route")
		}
	})

	t.Run("TaskRouteWrongModel", func(t *testing.T) {
		cfg := testRoutingConfig()
		cfg.TaskRoutes["planning"] = "cloud/gemma"
		if s.CanHandle(cfg) {
			t.Error("Expected rejection when a task route names a model the provider does not serve")
		}
	})

	t.Run("NoProviders", func(t *testing.T) {
		cfg := testRoutingConfig()
		cfg.Providers = nil
		if s.CanHandle(cfg) {
			t.Error("Expected rejection without providers")
		}
	})
}

func TestCostOptimizedCanHandle(t *testing.T) {
	s := NewCostOptimizedStrategy()

	cfg := testRoutingConfig()
	cfg.DefaultRoute = "" // routes are irrelevant to this strategy
	if !s.CanHandle(cfg) {
		t.Error("Expected cost strategy to accept a config without routes")
	}

	cfg.Providers = nil
	if s.CanHandle(cfg) {
		t.Error("Expected rejection without providers")
	}
}

func TestNewStrategy(t *testing.T) {
	cfg := testRoutingConfig()

	s, err := NewStrategy(cfg)
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	if s.Name() != config.StrategyTaskBased {
		t.Errorf("Expected task_based, got %s", s.Name())
	}

	cfg.Strategy = config.StrategyCostOptimized
	s, err = NewStrategy(cfg)
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	if s.Name() != config.StrategyCostOptimized {
		t.Errorf("Expected cost_optimized, got %s", s.Name())
	}

	cfg.Strategy = "cheapest_first"
	if _, err := NewStrategy(cfg); err == nil {
		t.Error("Expected error for an unknown strategy name")
	}
}

func TestParseComplexity(t *testing.T) {
	cases := []struct {
		in      string
		want    Complexity
		wantErr bool
	}{
		{"", ComplexityMedium, false},
		{"low", ComplexityLow, false},
		{"medium", ComplexityMedium, false},
		{"high", ComplexityHigh, false},
		{"expert", ComplexityExpert, false},
		{"extreme", ComplexityMedium, true},
	}
	for _, tc := range cases {
		got, err := ParseComplexity(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseComplexity(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseComplexity(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"", PriorityNormal, false},
		{"low", PriorityLow, false},
		{"normal", PriorityNormal, false},
		{"high", PriorityHigh, false},
		{"critical", PriorityCritical, false},
		{"urgent", PriorityNormal, true},
	}
	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
