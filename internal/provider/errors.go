package provider

import (
	"fmt"
	"strings"
)

// SelectionError indicates a malformed "provider.kind" selection string, or a
// default selection referencing a provider or kind that is not configured.
type SelectionError struct {
	Selection string
	Reason    string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q: %s", e.Selection, e.Reason)
}

// NotFoundError indicates that the requested provider.kind combination has no
// parameter block in the loaded configuration.
type NotFoundError struct {
	Namespace string
	Selection Selection
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s configuration found for %s", e.Namespace, e.Selection)
}

// FieldError describes a single offending configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// ValidationError enumerates every offending field of a configuration block,
// not just the first. Provider and Kind carry the resolution context when the
// block was resolved through a Resolver.
type ValidationError struct {
	Provider string
	Kind     string
	Fields   []FieldError
}

// Add appends one failing field.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil returns nil when no field failed, so Validate implementations can
// build up an error unconditionally and return it in one place.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	if e.Provider == "" {
		return fmt.Sprintf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return fmt.Sprintf(
		"invalid configuration for %s.%s: %s", e.Provider, e.Kind, strings.Join(msgs, "; "),
	)
}

// AlreadyRegisteredError is returned by Register when the provider id is
// taken. Use Replace to overwrite an existing registration explicitly.
type AlreadyRegisteredError struct {
	Provider string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("provider %q is already registered", e.Provider)
}

// UnknownProviderError is returned by registry lookups for an id that was
// never registered.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Provider)
}

// UnsupportedProviderError indicates that the configuration references a
// provider that has no constructor wired into the registry. This is distinct
// from UnknownProviderError: the configuration parsed fine, but nothing can
// build clients for it.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("provider %q is present in configuration but not supported", e.Provider)
}

// UnavailableError indicates that the provider is registered but its backing
// dependency failed its capability probe, so clients cannot be constructed.
type UnavailableError struct {
	Provider   string
	Dependency string
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf(
		"provider %q is unavailable: %v (requires %s)", e.Provider, e.Err, e.Dependency,
	)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
