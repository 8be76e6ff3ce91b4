package scenario

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/executor"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/worker_pool"
)

// ProgressReporter receives scenario lifecycle events during a run
type ProgressReporter interface {
	AddTask(id, name, description string)
	StartTask(id string)
	CompleteTask(id string)
	FailTask(id string, err error)
	SkipTask(id string)
}

// ScenarioResult is the outcome of running one scenario
type ScenarioResult struct {
	Scenario      string
	CorrelationID string
	Success       bool
	Skipped       bool
	StepsTotal    int
	StepsExecuted int
	FailedStep    string // label of the first failing step, "" otherwise
	Err           error  // error of the first failing step, nil otherwise
	Duration      time.Duration
	Steps         []*executor.Result
}

// RunResult aggregates the scenario outcomes of one run
type RunResult struct {
	Results  []*ScenarioResult
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// AllPassed reports whether no scenario failed. Skipped scenarios do
// not count against the run.
func (r *RunResult) AllPassed() bool {
	return r.Failed == 0
}

// Runner executes scenarios through the tool executor, fanning
// independent scenarios out over a bounded worker pool.
type Runner struct {
	executor *executor.Executor
	logger   *logging.Logger
	pool     *worker_pool.WorkerPool
	progress ProgressReporter
}

// NewRunner creates a runner over the given executor. workers bounds
// how many scenarios run concurrently; zero or negative means one per
// CPU.
func NewRunner(exec *executor.Executor, workers int, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		executor: exec,
		logger:   logger.Named("runner"),
		pool:     worker_pool.NewWorkerPool(workers),
	}
}

// SetProgressReporter attaches a progress reporter. Reporters must be
// safe for concurrent use; scenarios complete on pool goroutines.
func (r *Runner) SetProgressReporter(p ProgressReporter) {
	r.progress = p
}

// Run executes one scenario's steps in order against the executor.
// The first failing step ends the scenario; later steps never dispatch.
// Cancellation aborts the scenario with the context's error and no
// result, matching the executor's contract.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*ScenarioResult, error) {
	if sc.Skip {
		r.logger.Info("scenario skipped", logging.String("scenario", sc.Name))
		return &ScenarioResult{Scenario: sc.Name, Skipped: true}, nil
	}

	correlationID := uuid.NewString()
	start := time.Now()

	result := &ScenarioResult{
		Scenario:      sc.Name,
		CorrelationID: correlationID,
		StepsTotal:    len(sc.Steps),
		Steps:         make([]*executor.Result, 0, len(sc.Steps)),
	}

	r.logger.Info("scenario started",
		logging.String("scenario", sc.Name),
		logging.String("correlation_id", correlationID),
		logging.Int("steps", len(sc.Steps)))

	for i, step := range sc.Steps {
		stepResult, err := r.executor.ExecuteWithFallback(ctx, step.call(correlationID), step.fallbackCalls(correlationID))
		if err != nil {
			return nil, err
		}

		result.Steps = append(result.Steps, stepResult)
		result.StepsExecuted = i + 1

		if !stepResult.Success {
			result.FailedStep = step.Label(i)
			result.Err = stepResult.Err
			result.Duration = time.Since(start)
			r.logger.Warn("scenario failed",
				logging.String("scenario", sc.Name),
				logging.String("step", result.FailedStep),
				logging.Int("steps_executed", result.StepsExecuted),
				logging.Error(result.Err))
			return result, nil
		}
	}

	result.Success = true
	result.Duration = time.Since(start)
	r.logger.Info("scenario passed",
		logging.String("scenario", sc.Name),
		logging.Int("steps", result.StepsExecuted),
		logging.Duration("duration", result.Duration))
	return result, nil
}

// RunAll executes scenarios concurrently and returns their results in
// input order. Cancellation tears the whole run down and returns the
// context's error with no partial result.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) (*RunResult, error) {
	if len(scenarios) == 0 {
		return nil, apperrors.NewScenarioError("no scenarios to run")
	}

	if r.progress != nil {
		for _, sc := range scenarios {
			r.progress.AddTask(sc.Name, sc.Name, sc.Description)
		}
	}

	r.logger.Info("run started",
		logging.Int("scenarios", len(scenarios)),
		logging.Int("max_workers", r.pool.MaxWorkers()))

	start := time.Now()

	tasks := make([]worker_pool.Task, len(scenarios))
	for i, sc := range scenarios {
		tasks[i] = r.scenarioTask(sc)
	}

	poolResults := r.pool.Run(ctx, tasks)

	run := &RunResult{Results: make([]*ScenarioResult, 0, len(poolResults))}
	for _, res := range poolResults {
		// Tasks only error when the run itself is being torn down
		if res.Error != nil {
			return nil, res.Error
		}

		sr := res.Value.(*ScenarioResult)
		run.Results = append(run.Results, sr)
		switch {
		case sr.Skipped:
			run.Skipped++
		case sr.Success:
			run.Passed++
		default:
			run.Failed++
		}
	}
	run.Duration = time.Since(start)

	r.logger.Info("run finished",
		logging.Int("passed", run.Passed),
		logging.Int("failed", run.Failed),
		logging.Int("skipped", run.Skipped),
		logging.Duration("duration", run.Duration))

	return run, nil
}

// scenarioTask wraps one scenario as a pool task with progress calls
func (r *Runner) scenarioTask(sc *Scenario) worker_pool.Task {
	return func(ctx context.Context) (interface{}, error) {
		if r.progress != nil && !sc.Skip {
			r.progress.StartTask(sc.Name)
		}

		result, err := r.Run(ctx, sc)
		if err != nil {
			if r.progress != nil {
				r.progress.FailTask(sc.Name, err)
			}
			return nil, err
		}

		if r.progress != nil {
			switch {
			case result.Skipped:
				r.progress.SkipTask(sc.Name)
			case result.Success:
				r.progress.CompleteTask(sc.Name)
			default:
				r.progress.FailTask(sc.Name, result.Err)
			}
		}

		return result, nil
	}
}
