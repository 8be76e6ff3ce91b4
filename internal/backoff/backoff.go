// Package backoff computes retry delays for the executor and the
// provider router. Delay growth is pure arithmetic; sleeping and
// cancellation stay with the caller.
package backoff

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Jitter bounds applied to every computed delay
const (
	JitterMin = 0.75
	JitterMax = 1.25
)

// Policy describes how delays grow between retries
type Policy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Exponential  bool
}

// JitterFunc returns the multiplier applied to a computed delay
type JitterFunc func() float64

// NewUniformJitter returns a seeded jitter source drawing uniformly
// from [JitterMin, JitterMax]. Safe for concurrent use.
func NewUniformJitter(seed int64) JitterFunc {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return JitterMin + rng.Float64()*(JitterMax-JitterMin)
	}
}

// FixedJitter returns a jitter source that always yields factor.
// Used in tests to make delays exact.
func FixedJitter(factor float64) JitterFunc {
	return func() float64 {
		return factor
	}
}

// Backoff computes jittered delays under a policy
type Backoff struct {
	policy Policy
	jitter JitterFunc
}

// New creates a backoff with a time-seeded jitter source
func New(policy Policy) *Backoff {
	return NewWithJitter(policy, NewUniformJitter(time.Now().UnixNano()))
}

// NewWithJitter creates a backoff with an injected jitter source
func NewWithJitter(policy Policy, jitter JitterFunc) *Backoff {
	if jitter == nil {
		jitter = NewUniformJitter(time.Now().UnixNano())
	}
	return &Backoff{policy: policy, jitter: jitter}
}

// Delay returns the wait before retry number retry (1-indexed).
// Exponential: min(MaxDelay, InitialDelay * 2^(retry-1)), then jitter.
// Linear: InitialDelay, then jitter.
func (b *Backoff) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}

	base := float64(b.policy.InitialDelay)
	if b.policy.Exponential {
		base *= math.Pow(2, float64(retry-1))
		if cap := float64(b.policy.MaxDelay); b.policy.MaxDelay > 0 && base > cap {
			base = cap
		}
	}

	scaled := base * b.jitter()
	if scaled > float64(math.MaxInt64) {
		scaled = float64(math.MaxInt64)
	}
	return time.Duration(scaled)
}

// Policy returns the policy the backoff was built with
func (b *Backoff) Policy() Policy {
	return b.policy
}
