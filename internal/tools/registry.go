package tools

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/user/webpilot/internal/errors"
)

// Registry holds the executable tool catalog. Lookups happen on every
// execution so reads take a shared lock; registration normally runs
// once at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the catalog. A name resolves to exactly one
// tool, so registering a duplicate name is an error.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return apperrors.NewError("cannot register a tool with an empty name", apperrors.ExitValidationError)
	}
	if _, exists := r.tools[name]; exists {
		return apperrors.NewError(fmt.Sprintf("tool '%s' is already registered", name), apperrors.ExitValidationError)
	}

	r.tools[name] = tool
	return nil
}

// Get returns the tool registered under name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// ToolExists reports whether name is registered
func (r *Registry) ToolExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the definition of the tool registered under name
func (r *Registry) Definition(name string) (ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return Definition(tool), true
}

// Definitions returns the full catalog, sorted by name
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, Definition(tool))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}
