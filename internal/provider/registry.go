package provider

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Constructor builds a ready-to-use client from a validated configuration
// record. The record is guaranteed to have passed Validate before a
// constructor ever sees it.
type Constructor[T any] func(Config) (T, error)

// Entry binds a provider id to its configuration shape, environment override
// declarations and construction routine.
type Entry[T any] struct {
	// NewConfig returns a fresh configuration record pre-filled with the
	// provider's documented defaults; the raw block is decoded over it.
	NewConfig func() Config

	// Overrides declares which environment variables replace which fields.
	Overrides []EnvOverride

	// Construct builds the client.
	Construct Constructor[T]

	// Dependency names the module backing this provider, used in
	// UnavailableError messages.
	Dependency string

	// Probe, when set, is run once at registration time. A non-nil result
	// marks the provider unavailable: resolution still works, construction
	// fails with UnavailableError.
	Probe func() error
}

type registration[T any] struct {
	entry       Entry[T]
	unavailable error
}

// Registry maps provider ids to entries. It is the single extension point:
// adding a provider is a Register call, never an edit to the resolver or
// factory.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]*registration[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]*registration[T])}
}

// Register adds an entry under name. It fails with AlreadyRegisteredError if
// the name is taken; overwriting must go through Replace.
func (r *Registry[T]) Register(name string, e Entry[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return &AlreadyRegisteredError{Provider: name}
	}
	r.entries[name] = probe(name, e)
	return nil
}

// MustRegister is Register for process-start wiring, where a duplicate id is
// a programming error.
func (r *Registry[T]) MustRegister(name string, e Entry[T]) {
	if err := r.Register(name, e); err != nil {
		panic(err)
	}
}

// Replace registers an entry under name, overwriting any existing
// registration.
func (r *Registry[T]) Replace(name string, e Entry[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[name] = probe(name, e)
}

func probe[T any](name string, e Entry[T]) *registration[T] {
	reg := &registration[T]{entry: e}
	if e.Probe != nil {
		if err := e.Probe(); err != nil {
			reg.unavailable = err
			log.Debug().Str("provider", name).Err(err).Msg("Provider dependency probe failed")
		}
	}
	return reg
}

// Lookup returns the entry for name, or UnknownProviderError.
func (r *Registry[T]) Lookup(name string) (Entry[T], error) {
	reg, err := r.lookup(name)
	if err != nil {
		return Entry[T]{}, err
	}
	return reg.entry, nil
}

func (r *Registry[T]) lookup(name string) (*registration[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[name]
	if !ok {
		return nil, &UnknownProviderError{Provider: name}
	}
	return reg, nil
}

// Providers returns the registered provider ids in sorted order.
func (r *Registry[T]) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
