// Package registry provides a process-wide singleton table keyed by type.
//
// Services that must exist at most once per process (the main loop, the
// config store, the install journal) are constructed through a Registry
// instead of hidden package globals. The table is explicit and resettable,
// which keeps the one-instance guarantee testable.
package registry

import (
	"reflect"
	"sync"
)

// Registry maps a type identity to its one live instance.
type Registry struct {
	mu      sync.Mutex
	entries map[reflect.Type]*entry
}

type entry struct {
	mu  sync.Mutex
	val any
	err error
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[reflect.Type]*entry)}
}

// GetOrCreate returns the existing instance for key, or invokes factory,
// stores the result, and returns it. Concurrent first-time requests for the
// same key resolve to a single winner; the losers block until construction
// finishes and receive the winner's instance. If factory fails, nothing is
// stored and a later call may retry.
func (r *Registry) GetOrCreate(key reflect.Type, factory func() (any, error)) (any, error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		r.mu.Unlock()
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.err != nil {
			return nil, e.err
		}
		return e.val, nil
	}

	e = &entry{}
	e.mu.Lock()
	r.entries[key] = e
	r.mu.Unlock()

	val, err := factory()
	if err != nil {
		// Failed construction leaves no entry behind. Callers that raced
		// with this one still observe the failure through the stale entry.
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		e.err = err
		e.mu.Unlock()
		return nil, err
	}

	e.val = val
	e.mu.Unlock()
	return val, nil
}

// Reset clears all entries. Test-only escape hatch; a process in normal
// operation never discards its singletons.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[reflect.Type]*entry)
}

// Get is the type-safe form of GetOrCreate: the key is derived from T.
func Get[T any](r *Registry, factory func() (*T, error)) (*T, error) {
	key := reflect.TypeOf((*T)(nil))
	v, err := r.GetOrCreate(key, func() (any, error) {
		return factory()
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// Global registry instance and initialization guard.
var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, creating it on first call.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// ResetDefault clears the process-wide registry. Only for tests.
func ResetDefault() {
	Default().Reset()
}
