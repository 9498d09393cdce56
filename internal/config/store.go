// Package config loads the raw hierarchical configuration document that the
// llm and datasources namespaces are resolved from.
package config

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// LoadError indicates that the configuration source is missing or cannot be
// parsed. It is fatal to the calling request and never retried here.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to load configuration from %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load configuration: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store reads the configuration file lazily and hands out the raw per-namespace
// maps. Each Store owns its own viper instance so that Reload and concurrent
// test stores never share state.
type Store struct {
	mu     sync.Mutex
	path   string
	v      *viper.Viper
	loaded bool
}

// NewStore returns a store reading from path. If path is empty, the default
// search locations are used.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() error {
	v := viper.New()
	if s.path != "" {
		v.SetConfigFile(s.path)
	} else {
		v.SetConfigName("provisor")
		v.AddConfigPath(".")
		v.AddConfigPath("configs/")
		v.AddConfigPath("/etc/provisor/")
	}

	if err := v.ReadInConfig(); err != nil {
		return &LoadError{Path: s.path, Err: err}
	}

	log.Debug().Str("path", v.ConfigFileUsed()).Msg("Read raw configuration")
	s.v = v
	s.loaded = true
	return nil
}

// Namespace returns the raw key-value tree under the given top-level key,
// loading the file on first use. A namespace that is not present in the file
// yields an empty map; a missing or unparseable file yields a LoadError.
func (s *Store) Namespace(name string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	return s.v.GetStringMap(name), nil
}

// Path returns the path of the file backing the store, or the empty string if
// the store has not loaded yet.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ""
	}
	return s.v.ConfigFileUsed()
}

// Reload discards the cached raw configuration. The file is re-read on the
// next Namespace call. Reload does not touch any client cache built on top of
// this store; callers wanting a fully fresh state must also clear their
// factory's cache.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v = nil
	s.loaded = false
	log.Debug().Str("path", s.path).Msg("Discarded cached configuration")
}
