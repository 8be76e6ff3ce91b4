// Package report renders the outcome of a scenario run as a structured
// JSON document: summary counts, per-scenario and per-step results with
// their retry and fallback bookkeeping, provider breaker snapshots and
// history store statistics.
package report

import (
	"time"

	"github.com/user/webpilot/internal/circuit"
	"github.com/user/webpilot/internal/executor"
)

// Scenario status values
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// RunReport is the complete report document
type RunReport struct {
	Metadata  Metadata               `json:"metadata"`
	Summary   Summary                `json:"summary"`
	Scenarios []ScenarioReport       `json:"scenarios"`
	Providers []circuit.Snapshot     `json:"providers,omitempty"`
	History   *executor.HistoryStats `json:"history,omitempty"`
}

// Metadata describes how and when the report was produced
type Metadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Generator     Generator `json:"generator"`
	ScenariosPath string    `json:"scenarios_path,omitempty"`
	Workers       int       `json:"workers,omitempty"`
}

// Generator identifies the producing tool
type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Summary aggregates the run outcome
type Summary struct {
	Total      int   `json:"total"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	Skipped    int   `json:"skipped"`
	Success    bool  `json:"success"`
	DurationMs int64 `json:"duration_ms"`
}

// ScenarioReport is the outcome of one scenario
type ScenarioReport struct {
	Name          string       `json:"name"`
	Status        string       `json:"status"`
	CorrelationID string       `json:"correlation_id,omitempty"`
	FailedStep    string       `json:"failed_step,omitempty"`
	Error         string       `json:"error,omitempty"`
	StepsTotal    int          `json:"steps_total"`
	StepsExecuted int          `json:"steps_executed"`
	DurationMs    int64        `json:"duration_ms"`
	Steps         []StepReport `json:"steps,omitempty"`
}

// StepReport is the outcome of one step, with the executor's retry and
// fallback bookkeeping lifted out of the result metadata
type StepReport struct {
	Tool            string   `json:"tool"`
	Success         bool     `json:"success"`
	AttemptCount    int      `json:"attempt_count"`
	DurationMs      int64    `json:"duration_ms"`
	WasRetried      bool     `json:"was_retried,omitempty"`
	Error           string   `json:"error,omitempty"`
	ValidationError string   `json:"validation_error,omitempty"`
	RetryReasons    []string `json:"retry_reasons,omitempty"`
	RetryDelaysMs   []int64  `json:"retry_delays_ms,omitempty"`
	FallbackUsed    bool     `json:"fallback_used,omitempty"`
	FallbackIndex   *int     `json:"fallback_index,omitempty"`
}
