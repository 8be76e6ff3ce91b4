package circuit

import (
	"sort"
	"sync"
)

// Registry holds one breaker per target name. The map lock is held only
// for lookup and insert; state transitions lock the individual breaker,
// so unrelated targets never serialize on each other.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	opts     Options
}

// NewRegistry creates a registry that builds breakers with opts
func NewRegistry(opts Options) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		opts:     opts,
	}
}

// For returns the breaker for a target, creating it closed on first use
func (r *Registry) For(name string) *Breaker {
	r.mu.RLock()
	breaker, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return breaker
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if breaker, ok := r.breakers[name]; ok {
		return breaker
	}
	breaker = New(name, r.opts)
	r.breakers[name] = breaker
	return breaker
}

// Names returns the registered target names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshots returns a point-in-time view of every breaker, sorted by
// target name
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(r.breakers))
	for _, breaker := range r.breakers {
		snapshots = append(snapshots, breaker.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Name < snapshots[j].Name })
	return snapshots
}

// Reset forces every breaker back to closed
func (r *Registry) Reset() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, breaker := range r.breakers {
		breaker.Reset()
	}
}
