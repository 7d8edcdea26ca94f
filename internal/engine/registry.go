package engine

import (
	"context"
	"slices"
	"sync"

	"github.com/workiq/weave/pkg/api"
)

type (
	// Handler is the executable capability behind a registered endpoint
	Handler func(ctx context.Context, input any) (any, error)

	// Validator checks a value against an endpoint's declared schema and
	// returns structured detail on failure
	Validator interface {
		Validate(value any) error
	}

	// Entry associates an endpoint name with its handler and optional
	// input/output validators
	Entry struct {
		Handler Handler
		Input   Validator
		Output  Validator
		Name    api.Name
	}

	// Registry maps endpoint names to handler entries. It is an injected
	// instance rather than process state, so independent configurations
	// can coexist. The registry is built in two passes at startup and is
	// read-only while serving; Reset exists for test isolation only
	Registry struct {
		entries map[api.Name]*Entry
		mu      sync.RWMutex
	}
)

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		entries: map[api.Name]*Entry{},
	}
}

// Register upserts an entry keyed by endpoint name. Registering the same
// name twice replaces the earlier entry
func (r *Registry) Register(entry *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Name] = entry
}

// Lookup resolves an endpoint name to its entry
func (r *Registry) Lookup(name api.Name) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// Reset clears all entries. It must complete before any request is routed
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = map[api.Name]*Entry{}
}

// Names returns the registered endpoint names in sorted order
func (r *Registry) Names() []api.Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]api.Name, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
