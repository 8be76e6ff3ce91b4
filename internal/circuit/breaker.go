// Package circuit implements a per-target circuit breaker and a
// concurrent registry keyed by provider name.
package circuit

import (
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/user/webpilot/internal/errors"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed   State = iota // normal operation
	StateOpen                  // failing, reject without dispatch
	StateHalfOpen              // probing with a single trial
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a breaker at one instant
type Snapshot struct {
	Name                string    `json:"name"`
	State               State     `json:"-"`
	StateName           string    `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	OpenedAt            time.Time `json:"opened_at,omitempty"`
}

// breakerState is the immutable state value. Transitions build a new
// value and swap the pointer, so readers never lock and never observe
// a partial update.
type breakerState struct {
	state         State
	failures      int
	openedAt      time.Time
	trialInFlight bool
}

// Options configures a breaker
type Options struct {
	FailureThreshold int              // consecutive failures before opening
	OpenDuration     time.Duration    // how long Open rejects before probing
	Clock            func() time.Time // nil means time.Now
}

// Breaker gates dispatches to one target. Closed passes everything
// through; FailureThreshold consecutive failures open it; after
// OpenDuration a single half-open trial decides whether it closes
// again or re-opens.
type Breaker struct {
	name      string
	threshold int
	openFor   time.Duration
	now       func() time.Time

	mu    sync.Mutex // serializes transitions; reads go through the pointer
	state atomic.Pointer[breakerState]
}

// New creates a closed breaker for the named target
func New(name string, opts Options) *Breaker {
	threshold := opts.FailureThreshold
	if threshold < 1 {
		threshold = 1
	}
	openFor := opts.OpenDuration
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	b := &Breaker{
		name:      name,
		threshold: threshold,
		openFor:   openFor,
		now:       now,
	}
	b.state.Store(&breakerState{state: StateClosed})
	return b
}

// Name returns the target the breaker gates
func (b *Breaker) Name() string {
	return b.name
}

// Allow reports whether a dispatch may proceed. While Open it rejects
// without dispatching until OpenDuration has elapsed, then admits
// exactly one caller as the half-open trial. The caller must report
// the dispatch outcome via RecordSuccess, RecordFailure or Abandon.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.state.Load()
	switch current.state {
	case StateClosed:
		return nil

	case StateOpen:
		if b.now().Sub(current.openedAt) >= b.openFor {
			b.state.Store(&breakerState{
				state:         StateHalfOpen,
				failures:      current.failures,
				openedAt:      current.openedAt,
				trialInFlight: true,
			})
			return nil
		}
		return apperrors.NewCircuitOpenError(b.name)

	case StateHalfOpen:
		// The single trial slot frees up only when its outcome lands
		if current.trialInFlight {
			return apperrors.NewCircuitOpenError(b.name)
		}
		b.state.Store(&breakerState{
			state:         StateHalfOpen,
			failures:      current.failures,
			openedAt:      current.openedAt,
			trialInFlight: true,
		})
		return nil
	}

	return apperrors.NewCircuitOpenError(b.name)
}

// RecordSuccess reports a successful dispatch outcome
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.state.Load()
	switch current.state {
	case StateHalfOpen:
		b.state.Store(&breakerState{state: StateClosed})
	default:
		// A success while Open can only come from a dispatch that was
		// already in flight when the breaker opened; the counter resets
		// but Open is left only through the half-open probe.
		b.state.Store(&breakerState{
			state:    current.state,
			openedAt: current.openedAt,
		})
	}
}

// RecordFailure reports a failed dispatch outcome
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.state.Load()
	switch current.state {
	case StateClosed:
		failures := current.failures + 1
		if failures >= b.threshold {
			b.state.Store(&breakerState{
				state:    StateOpen,
				failures: failures,
				openedAt: b.now(),
			})
			return
		}
		b.state.Store(&breakerState{
			state:    StateClosed,
			failures: failures,
		})

	case StateHalfOpen:
		// Failed trial re-opens and restarts the window
		b.state.Store(&breakerState{
			state:    StateOpen,
			failures: current.failures + 1,
			openedAt: b.now(),
		})

	case StateOpen:
		b.state.Store(&breakerState{
			state:    StateOpen,
			failures: current.failures + 1,
			openedAt: current.openedAt,
		})
	}
}

// Abandon releases the half-open trial slot without an outcome, for
// dispatches that ended in cancellation rather than success or failure
func (b *Breaker) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.state.Load()
	if current.state != StateHalfOpen || !current.trialInFlight {
		return
	}
	b.state.Store(&breakerState{
		state:    StateHalfOpen,
		failures: current.failures,
		openedAt: current.openedAt,
	})
}

// State returns the current state without locking
func (b *Breaker) State() State {
	return b.state.Load().state
}

// Available reports whether Allow would currently admit a dispatch.
// It never claims the half-open trial slot, so a positive answer can
// race with another caller taking the slot first.
func (b *Breaker) Available() bool {
	current := b.state.Load()
	switch current.state {
	case StateClosed:
		return true
	case StateOpen:
		return b.now().Sub(current.openedAt) >= b.openFor
	case StateHalfOpen:
		return !current.trialInFlight
	}
	return false
}

// ConsecutiveFailures returns the current failure streak
func (b *Breaker) ConsecutiveFailures() int {
	return b.state.Load().failures
}

// Snapshot returns an immutable view of the breaker
func (b *Breaker) Snapshot() Snapshot {
	current := b.state.Load()
	return Snapshot{
		Name:                b.name,
		State:               current.state,
		StateName:           current.state.String(),
		ConsecutiveFailures: current.failures,
		OpenedAt:            current.openedAt,
	}
}

// Reset forces the breaker back to closed
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Store(&breakerState{state: StateClosed})
}
