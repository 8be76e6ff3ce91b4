package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/user/webpilot/internal/backoff"
	"github.com/user/webpilot/internal/circuit"
	"github.com/user/webpilot/internal/config"
	apperrors "github.com/user/webpilot/internal/errors"
	"github.com/user/webpilot/internal/llm"
	"github.com/user/webpilot/internal/logging"
)

// ErrNoProviderAvailable reports that no provider can serve the
// routing context: every candidate either mismatched a required
// capability or sits behind an open circuit. Callers decide whether
// that is fatal.
var ErrNoProviderAvailable = apperrors.NewError("no provider available for request", apperrors.ExitExecutionError)

// Options configures a Router beyond what the routing config carries
type Options struct {
	// Strategy overrides the configured strategy when non-nil
	Strategy Strategy

	// Breakers overrides the breaker registry, letting tests inject a
	// fake clock. Nil builds one from the config thresholds.
	Breakers *circuit.Registry

	// Delays overrides the retry delay policy. The zero value uses the
	// executor defaults.
	Delays backoff.Policy

	// Jitter pins the retry jitter for tests
	Jitter backoff.JitterFunc

	Logger *logging.Logger
}

// Router completes LLM requests against the best available provider.
// The strategy picks candidates, per-provider circuit breakers remove
// unhealthy ones, and each dispatch gets a retry budget with jittered
// backoff before the fallback provider is tried.
type Router struct {
	cfg       *config.RoutingConfig
	strategy  Strategy
	providers []llm.Provider
	byName    map[string]llm.Provider
	breakers  *circuit.Registry
	backoff   *backoff.Backoff
	logger    *logging.Logger
}

// New creates a router over the given providers. The provider list
// must match the names the configuration routes point at; building it
// with llm.NewProviderSet(cfg.Providers, seed) keeps the two aligned.
func New(cfg *config.RoutingConfig, providers []llm.Provider, opts Options) (*Router, error) {
	if cfg == nil {
		cfg = &config.RoutingConfig{}
	}
	if len(providers) == 0 {
		return nil, apperrors.NewConfigurationError("router needs at least one provider")
	}

	strategy := opts.Strategy
	if strategy == nil {
		var err error
		strategy, err = NewStrategy(cfg)
		if err != nil {
			return nil, err
		}
	}
	if !strategy.CanHandle(cfg) {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf(
			"routing configuration is not valid for the %s strategy", strategy.Name()))
	}

	byName := make(map[string]llm.Provider, len(providers))
	for _, p := range providers {
		if _, dup := byName[p.Name()]; dup {
			return nil, apperrors.NewInvalidOptionError("routing.providers", p.Name(),
				"provider names must be unique")
		}
		byName[p.Name()] = p
	}

	breakers := opts.Breakers
	if breakers == nil {
		breakers = circuit.NewRegistry(circuit.Options{
			FailureThreshold: cfg.GetFailureThreshold(),
			OpenDuration:     cfg.GetOpenDuration(),
		})
	}

	delays := opts.Delays
	if delays.InitialDelay == 0 {
		delays = backoff.Policy{
			InitialDelay: config.DefaultInitialRetryDelayMs * time.Millisecond,
			MaxDelay:     config.DefaultMaxRetryDelayMs * time.Millisecond,
			Exponential:  true,
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Router{
		cfg:       cfg,
		strategy:  strategy,
		providers: providers,
		byName:    byName,
		breakers:  breakers,
		backoff:   backoff.NewWithJitter(delays, opts.Jitter),
		logger:    logger.Named("router"),
	}, nil
}

// NewFromConfig builds a router over scripted providers described in
// the configuration. Real deployments construct providers separately
// and call New.
func NewFromConfig(cfg *config.RoutingConfig, seed int64, logger *logging.Logger) (*Router, error) {
	providers, err := llm.NewProviderSet(cfg.Providers, seed)
	if err != nil {
		return nil, err
	}
	return New(cfg, providers, Options{Logger: logger})
}

// Strategy returns the active scoring strategy
func (r *Router) Strategy() Strategy {
	return r.strategy
}

// Providers returns the providers in configured order
func (r *Router) Providers() []llm.Provider {
	return r.providers
}

// BreakerSnapshots returns the current breaker states sorted by name
func (r *Router) BreakerSnapshots() []circuit.Snapshot {
	return r.breakers.Snapshots()
}

// SelectProvider scores every candidate against the context and
// returns the best one, or nil when every candidate scores zero.
// Breaker state is not consulted here; dispatch paths filter first.
func (r *Router) SelectProvider(rc Context, candidates []llm.Provider) llm.Provider {
	winner, _ := r.best(rc.normalized(), candidates, nil)
	return winner
}

// Route decides which provider should serve the context without
// dispatching anything. Providers behind an open circuit are excluded
// before scoring.
func (r *Router) Route(rc Context) (*RouteInfo, error) {
	rc = rc.normalized()
	candidates := r.availableProviders()
	primary, confidence := r.best(rc, candidates, nil)
	if primary == nil {
		return nil, ErrNoProviderAvailable
	}

	info := &RouteInfo{
		PrimaryProvider:          primary.Name(),
		PrimaryModel:             primary.ModelName(),
		Strategy:                 r.strategy.Name(),
		TaskType:                 rc.TaskType,
		Confidence:               confidence,
		EstimatedCostPer1KTokens: primary.Capabilities().CostPer1KTokens,
		MaxLatencyMs:             rc.MaxLatencyMs,
	}
	info.Reason = fmt.Sprintf("%s scored %s %.2f for %s/%s",
		r.strategy.Name(), primary.Name(), confidence, rc.TaskType, rc.Complexity)
	if r.cfg.GetEnableFallback() {
		if fb, _ := r.best(rc, candidates, primary); fb != nil {
			info.FallbackProvider = fb.Name()
			info.FallbackModel = fb.ModelName()
		}
	}
	return info, nil
}

// Complete routes the request and dispatches it. The primary provider
// gets the full retry budget; if it still fails and the decision
// carries a fallback, the fallback gets the same budget. The returned
// RouteInfo is the decision that was acted on; the response itself
// names whichever provider actually served.
func (r *Router) Complete(ctx context.Context, req llm.CompletionRequest, rc Context) (*llm.CompletionResponse, *RouteInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	info, err := r.Route(rc)
	if err != nil {
		return nil, nil, err
	}
	rc = rc.normalized()

	primary := r.byName[info.PrimaryProvider]
	resp, primaryErr := r.completeWith(ctx, primary, req, rc)
	if primaryErr == nil {
		return resp, info, nil
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	if !info.HasFallback() {
		r.logger.Warn("primary provider failed with no fallback",
			logging.String("provider", info.PrimaryProvider),
			logging.Error(primaryErr))
		return nil, info, primaryErr
	}

	r.logger.Info("falling back to secondary provider",
		logging.String("primary", info.PrimaryProvider),
		logging.String("fallback", info.FallbackProvider),
		logging.Err("primary_error", primaryErr))

	fallback := r.byName[info.FallbackProvider]
	resp, fallbackErr := r.completeWith(ctx, fallback, req, rc)
	if fallbackErr == nil {
		return resp, info, nil
	}
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}
	r.logger.Warn("fallback provider failed",
		logging.String("fallback", info.FallbackProvider),
		logging.Error(fallbackErr))
	return nil, info, fallbackErr
}

// completeWith runs the retry loop for one provider. Every attempt
// asks the provider's breaker first and reports its outcome back, so
// a streak of failures here opens the circuit for everyone.
func (r *Router) completeWith(ctx context.Context, p llm.Provider, req llm.CompletionRequest, rc Context) (*llm.CompletionResponse, error) {
	breaker := r.breakers.For(p.Name())
	maxRetries := r.cfg.GetMaxRetries()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := breaker.Allow(); err != nil {
			// The circuit opened mid-budget; further attempts are pointless
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}

		resp, err := r.dispatch(ctx, p, req, rc)
		if err == nil {
			breaker.RecordSuccess()
			return resp, nil
		}

		if ctx.Err() != nil {
			// The outcome never arrived; free a claimed trial slot
			breaker.Abandon()
			return nil, ctx.Err()
		}

		breaker.RecordFailure()
		lastErr = err

		classification := apperrors.Classify(err)
		if classification.Class == apperrors.ClassTerminal {
			r.logger.Warn("provider failed terminally",
				logging.String("provider", p.Name()),
				logging.String("reason", classification.Reason),
				logging.Int("attempt", attempt))
			return nil, err
		}
		if attempt > maxRetries {
			r.logger.Warn("provider retry budget exhausted",
				logging.String("provider", p.Name()),
				logging.Int("attempts", attempt))
			return nil, err
		}

		delay := r.backoff.Delay(attempt)
		r.logger.Debug("retrying provider",
			logging.String("provider", p.Name()),
			logging.Int("attempt", attempt),
			logging.String("reason", classification.Reason),
			logging.Duration("delay", delay))
		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// dispatch runs one attempt under the request timeout, tightened by the
// context's latency bound when one is set. Completions without content
// are rejected here so the retry loop treats them like any transient
// provider fault.
func (r *Router) dispatch(ctx context.Context, p llm.Provider, req llm.CompletionRequest, rc Context) (*llm.CompletionResponse, error) {
	timeout := r.cfg.GetRequestTimeout()
	if rc.MaxLatencyMs > 0 {
		if bound := time.Duration(rc.MaxLatencyMs) * time.Millisecond; bound < timeout {
			timeout = bound
		}
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.Complete(tctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Content == "" {
		return nil, apperrors.NewProviderResponseError(p.Name(), "empty completion")
	}
	return resp, nil
}

// availableProviders returns the providers whose breaker would admit a
// dispatch right now, in configured order
func (r *Router) availableProviders() []llm.Provider {
	out := make([]llm.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if r.breakers.For(p.Name()).Available() {
			out = append(out, p)
		}
	}
	return out
}

// best returns the highest-scoring candidate not equal to skip, with
// its score. Zero scores are hard mismatches and never win; ties keep
// the earlier candidate.
func (r *Router) best(rc Context, candidates []llm.Provider, skip llm.Provider) (llm.Provider, float64) {
	var winner llm.Provider
	var top float64
	for _, p := range candidates {
		if p == skip {
			continue
		}
		score := r.strategy.Score(rc, p)
		if score <= 0 {
			continue
		}
		if winner == nil || score > top {
			winner = p
			top = score
		}
	}
	return winner, top
}

// normalized fills the defaults a zero-valued context implies
func (rc Context) normalized() Context {
	if rc.TaskType == "" {
		rc.TaskType = TaskGeneral
	}
	return rc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
