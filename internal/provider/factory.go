package provider

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Factory resolves logical-kind requests into live clients and caches them by
// provider.kind. At most one client is constructed per cache key between
// cache clears: the mutex spans the whole check-resolve-construct-insert
// sequence, so concurrent requests for the same uncached key serialize and
// the second one finds the first one's client.
//
// Construction failures are never cached; a failed call leaves the cache and
// the loaded configuration exactly as they were, and the next call retries
// fully.
type Factory[T any] struct {
	mu       sync.Mutex
	resolver *Resolver[T]
	clients  map[string]T
}

func NewFactory[T any](resolver *Resolver[T]) *Factory[T] {
	return &Factory[T]{
		resolver: resolver,
		clients:  make(map[string]T),
	}
}

// Client returns the client for kind, constructing and caching it on first
// use. explicitProvider may be empty, in which case the namespace's default
// selection fills in the missing segments.
func (f *Factory[T]) Client(kind, explicitProvider string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	res, reg, err := f.resolver.resolve(kind, explicitProvider)
	if err != nil {
		return zero, err
	}

	key := res.Selection().String()
	if client, ok := f.clients[key]; ok {
		return client, nil
	}

	if reg.unavailable != nil {
		return zero, &UnavailableError{
			Provider:   res.Provider,
			Dependency: reg.entry.Dependency,
			Err:        reg.unavailable,
		}
	}

	client, err := reg.entry.Construct(res.Config)
	if err != nil {
		return zero, fmt.Errorf("failed to construct %s client: %w", key, err)
	}

	f.clients[key] = client
	log.Debug().Str("selection", key).Msg("Constructed and cached client")
	return client, nil
}

// Resolve exposes settings resolution without constructing or caching
// anything.
func (f *Factory[T]) Resolve(kind, explicitProvider string) (Resolved, error) {
	return f.resolver.Resolve(kind, explicitProvider)
}

// Available lists every provider.kind pair present in configuration. Pure
// introspection: nothing is validated, constructed or cached.
func (f *Factory[T]) Available() ([]Selection, error) {
	return f.resolver.Available()
}

// Default returns the namespace's default selection.
func (f *Factory[T]) Default() (Selection, error) {
	return f.resolver.Default()
}

// SupportedProviders returns the ids of all registered providers, sorted.
func (f *Factory[T]) SupportedProviders() []string {
	return f.resolver.Registry().Providers()
}

// ClearCache drops every cached client unconditionally. The next Client call
// for any key constructs afresh.
func (f *Factory[T]) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clients = make(map[string]T)
	log.Debug().Msg("Cleared client cache")
}

// ReloadSettings discards the cached raw configuration so the next resolution
// re-reads the file. It does not drop live clients: the settings cache and
// the client cache are independent, and a caller wanting both fresh must also
// call ClearCache.
func (f *Factory[T]) ReloadSettings() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resolver.Reload()
}
