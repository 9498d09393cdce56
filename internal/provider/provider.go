// Package provider implements the configuration-resolution and
// client-lifecycle engine shared by the llm and datasources domains. A domain
// supplies a registry of provider entries (configuration shape, environment
// overrides, constructor) and a configuration namespace; the resolver and
// factory in this package do the rest: selection parsing, environment
// override application, validation, polymorphic construction and caching.
package provider

import "strings"

// Config is a validated, provider-specific configuration record. Validate
// reports every offending field via *ValidationError, not just the first.
type Config interface {
	Validate() error
}

// EnvOverride binds one environment variable to one flat configuration field.
// A variable present in the process environment fully replaces the file value
// for that field and only that field. Nested fields are not supported.
type EnvOverride struct {
	Var   string
	Field string
}

// Selection identifies a provider and logical kind pair, written
// "provider.kind" in configuration.
type Selection struct {
	Provider string
	Kind     string
}

func (s Selection) String() string {
	return s.Provider + "." + s.Kind
}

// ParseSelection parses a "provider.kind" string.
func ParseSelection(raw string) (Selection, error) {
	prov, kind, ok := strings.Cut(raw, ".")
	if !ok || prov == "" || kind == "" {
		return Selection{}, &SelectionError{
			Selection: raw,
			Reason:    `must have the form "provider.kind"`,
		}
	}
	return Selection{Provider: prov, Kind: kind}, nil
}
