// Package executor implements resilient tool execution: validation
// against the registry, a classified retry loop with backoff, fallback
// chains, and a bounded execution history.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/user/webpilot/internal/backoff"
	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/logging"
	"github.com/user/webpilot/internal/tools"
)

// Options configures an Executor
type Options struct {
	Policy         config.RetryPolicy
	MaxHistorySize int
	Jitter         backoff.JitterFunc // nil means a time-seeded source
	Logger         *logging.Logger    // nil means no logging
}

// Executor runs tool calls with retry, fallback and history bookkeeping
type Executor struct {
	registry *tools.Registry
	policy   config.RetryPolicy
	backoff  *backoff.Backoff
	history  *History
	logger   *logging.Logger
}

// New creates an executor over the given tool registry
func New(registry *tools.Registry, opts Options) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	policy := backoff.Policy{
		InitialDelay: opts.Policy.InitialDelay,
		MaxDelay:     opts.Policy.MaxDelay,
		Exponential:  opts.Policy.UseExponentialBackoff,
	}
	var b *backoff.Backoff
	if opts.Jitter != nil {
		b = backoff.NewWithJitter(policy, opts.Jitter)
	} else {
		b = backoff.New(policy)
	}

	return &Executor{
		registry: registry,
		policy:   opts.Policy,
		backoff:  b,
		history:  NewHistory(opts.MaxHistorySize),
		logger:   logger.Named("executor"),
	}
}

// NewFromConfig creates an executor from the executor option surface
func NewFromConfig(registry *tools.Registry, cfg *config.ExecutorConfig, logger *logging.Logger) *Executor {
	return New(registry, Options{
		Policy:         cfg.RetryPolicy(),
		MaxHistorySize: cfg.GetMaxHistorySize(),
		Logger:         logger,
	})
}

// Registry returns the tool registry the executor dispatches against
func (e *Executor) Registry() *tools.Registry {
	return e.registry
}

// ValidateToolCall checks a call against the registry without any side
// effects. The reason string mirrors the validation_error metadata
// values.
func (e *Executor) ValidateToolCall(call tools.ToolCall) (bool, string) {
	def, ok := e.registry.Definition(call.ToolName)
	if !ok {
		return false, ValidationToolNotFound
	}
	if missing := def.MissingParameters(call.Parameters); len(missing) > 0 {
		return false, ValidationMissingParameters
	}
	return true, ""
}

// Execute runs one tool call. Validation failures return a failed
// result without dispatching. Transient dispatch failures are retried
// within the policy budget; terminal failures stop immediately.
// Cancellation at an attempt boundary, during a dispatch, or during a
// backoff wait aborts the whole call with the context's error and no
// result.
func (e *Executor) Execute(ctx context.Context, call tools.ToolCall) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	correlationID := call.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	if ok, reason := e.ValidateToolCall(call); !ok {
		result := e.validationResult(call, correlationID, reason)
		e.history.Record(correlationID, result)
		e.logger.Warn("tool call rejected",
			logging.String("tool", call.ToolName),
			logging.String("reason", reason),
			logging.String("correlation_id", correlationID))
		return result, nil
	}

	tool, _ := e.registry.Get(call.ToolName)

	start := time.Now()
	var (
		retryReasons []string
		retryDelays  []time.Duration
	)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, err := e.dispatch(ctx, tool, call.Parameters)
		if err == nil {
			result := e.newResult(call.ToolName, correlationID, attempt, start)
			result.Success = true
			result.Value = value
			attachRetries(result, retryReasons, retryDelays)
			e.history.Record(correlationID, result)
			e.logger.Debug("tool succeeded",
				logging.String("tool", call.ToolName),
				logging.Int("attempt", attempt),
				logging.Duration("duration", result.Duration))
			return result, nil
		}

		// Cancellation of the whole call wins over classification
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		classification := apperrors.Classify(err)

		if classification.Class == apperrors.ClassTerminal {
			result := e.newResult(call.ToolName, correlationID, attempt, start)
			result.Err = err
			attachRetries(result, retryReasons, retryDelays)
			e.history.Record(correlationID, result)
			e.logger.Warn("tool failed terminally",
				logging.String("tool", call.ToolName),
				logging.String("reason", classification.Reason),
				logging.Int("attempt", attempt))
			return result, nil
		}

		if attempt > e.policy.MaxRetries {
			result := e.newResult(call.ToolName, correlationID, attempt, start)
			result.Err = err
			attachRetries(result, retryReasons, retryDelays)
			e.history.Record(correlationID, result)
			e.logger.Warn("tool retry budget exhausted",
				logging.String("tool", call.ToolName),
				logging.Int("attempts", attempt),
				logging.Strings("retry_reasons", retryReasons))
			return result, nil
		}

		delay := e.backoff.Delay(attempt)
		retryReasons = append(retryReasons, classification.Reason)
		retryDelays = append(retryDelays, delay)

		e.logger.Debug("retrying tool",
			logging.String("tool", call.ToolName),
			logging.Int("attempt", attempt),
			logging.String("reason", classification.Reason),
			logging.Duration("delay", delay))

		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// ExecuteSequence runs calls strictly in order. The first failing
// result ends the sequence; it is included in the returned slice and
// later calls are never dispatched.
func (e *Executor) ExecuteSequence(ctx context.Context, calls []tools.ToolCall) ([]*Result, error) {
	results := make([]*Result, 0, len(calls))
	for _, call := range calls {
		result, err := e.Execute(ctx, call)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		if !result.Success {
			break
		}
	}
	return results, nil
}

// ExecuteWithFallback runs primary, and on failure tries each fallback
// in order, each with its own full retry budget. The first success is
// annotated with which fallback served; total failure returns the last
// failing result annotated with the fallback bookkeeping.
func (e *Executor) ExecuteWithFallback(ctx context.Context, primary tools.ToolCall, fallbacks []tools.ToolCall) (*Result, error) {
	primaryResult, err := e.Execute(ctx, primary)
	if err != nil {
		return nil, err
	}
	if primaryResult.Success {
		return primaryResult, nil
	}
	if len(fallbacks) == 0 {
		return primaryResult, nil
	}

	primaryErr := primaryResult.Err
	lastResult := primaryResult

	for i, fallback := range fallbacks {
		result, err := e.Execute(ctx, fallback)
		if err != nil {
			return nil, err
		}
		if result.Success {
			result.Metadata[MetaFallbackUsed] = true
			result.Metadata[MetaFallbackIndex] = i
			result.Metadata[MetaPrimaryTool] = primary.ToolName
			if primaryErr != nil {
				result.Metadata[MetaPrimaryError] = primaryErr.Error()
			}
			e.logger.Info("fallback tool served the call",
				logging.String("primary", primary.ToolName),
				logging.String("fallback", fallback.ToolName),
				logging.Int("fallback_index", i))
			return result, nil
		}
		lastResult = result
	}

	lastResult.Metadata[MetaFallbackAttempted] = true
	lastResult.Metadata[MetaFallbackCount] = len(fallbacks)
	lastResult.Metadata[MetaAllFallbacksFailed] = true
	e.logger.Warn("all fallbacks failed",
		logging.String("primary", primary.ToolName),
		logging.Int("fallback_count", len(fallbacks)))
	return lastResult, nil
}

// History returns the retained results for a correlation id in
// execution order
func (e *Executor) History(correlationID string) ([]*Result, error) {
	return e.history.ForCorrelation(correlationID)
}

// HistoryStats returns the history store statistics
func (e *Executor) HistoryStats() HistoryStats {
	return e.history.Stats()
}

// dispatch runs one attempt under the per-attempt timeout
func (e *Executor) dispatch(ctx context.Context, tool tools.Tool, params map[string]interface{}) (interface{}, error) {
	if e.policy.TimeoutPerAttempt <= 0 {
		return tool.Execute(ctx, params)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.policy.TimeoutPerAttempt)
	defer cancel()
	return tool.Execute(attemptCtx, params)
}

// newResult builds the shared result scaffolding for one execution
func (e *Executor) newResult(toolName, correlationID string, attempt int, start time.Time) *Result {
	return &Result{
		ToolName:     toolName,
		AttemptCount: attempt,
		Duration:     time.Since(start),
		WasRetried:   attempt > 1,
		Metadata: map[string]interface{}{
			MetaCorrelationID: correlationID,
		},
	}
}

// validationResult builds the failed result for a rejected call. The
// call never reached the collaborator, so the attempt count is zero.
func (e *Executor) validationResult(call tools.ToolCall, correlationID, reason string) *Result {
	var err error
	switch reason {
	case ValidationToolNotFound:
		err = apperrors.NewToolNotFoundError(call.ToolName, e.registry.Names())
	case ValidationMissingParameters:
		def, _ := e.registry.Definition(call.ToolName)
		err = apperrors.NewMissingParametersError(call.ToolName, def.MissingParameters(call.Parameters))
	default:
		err = apperrors.NewValidationError(reason)
	}

	return &Result{
		ToolName: call.ToolName,
		Err:      err,
		Metadata: map[string]interface{}{
			MetaValidationError: reason,
			MetaCorrelationID:   correlationID,
		},
	}
}

// attachRetries records the retry diagnostics when any retries happened
func attachRetries(result *Result, reasons []string, delays []time.Duration) {
	if len(reasons) == 0 {
		return
	}
	result.Metadata[MetaRetryReasons] = reasons
	result.Metadata[MetaRetryDelays] = delays
}

// sleepContext waits for d unless the context is cancelled first
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
