package provider

import (
	"errors"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/oakenode/provisor/internal/config"
)

// Resolved is the outcome of settings resolution: a provider.kind pair and
// its validated configuration record, ready for construction.
type Resolved struct {
	Provider string
	Kind     string
	Config   Config
}

// Selection returns the provider.kind pair the configuration was resolved
// for.
func (r Resolved) Selection() Selection {
	return Selection{Provider: r.Provider, Kind: r.Kind}
}

// Resolver turns a (kind, optional explicit provider) request into a
// validated configuration record. It reads raw blocks from the store's
// namespace, fills in the namespace's default selection, applies the
// provider's declared environment overrides and decodes into the provider's
// typed record.
type Resolver[T any] struct {
	store     *config.Store
	namespace string
	kinds     map[string]bool
	registry  *Registry[T]
}

// NewResolver builds a resolver over one configuration namespace. kinds is
// the domain's closed logical-kind enumeration.
func NewResolver[T any](
	store *config.Store,
	namespace string,
	kinds []string,
	registry *Registry[T],
) *Resolver[T] {
	known := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		known[k] = true
	}
	return &Resolver[T]{
		store:     store,
		namespace: namespace,
		kinds:     known,
		registry:  registry,
	}
}

// Registry returns the registry this resolver dispatches against.
func (r *Resolver[T]) Registry() *Registry[T] {
	return r.registry
}

// Resolve resolves kind (and optionally an explicit provider) into a
// validated configuration. Empty arguments fall back to the namespace's
// default selection segment-wise.
func (r *Resolver[T]) Resolve(kind, explicitProvider string) (Resolved, error) {
	res, _, err := r.resolve(kind, explicitProvider)
	return res, err
}

func (r *Resolver[T]) resolve(kind, explicitProvider string) (Resolved, *registration[T], error) {
	ns, err := r.store.Namespace(r.namespace)
	if err != nil {
		return Resolved{}, nil, err
	}

	prov := explicitProvider
	if prov == "" || kind == "" {
		def, err := r.defaultSelection(ns)
		if err != nil {
			return Resolved{}, nil, err
		}
		if prov == "" {
			prov = def.Provider
		}
		if kind == "" {
			kind = def.Kind
		}
	}

	sel := Selection{Provider: prov, Kind: kind}
	if !r.kinds[kind] {
		return Resolved{}, nil, &SelectionError{
			Selection: sel.String(),
			Reason:    "unknown logical kind " + kind,
		}
	}

	block, ok := rawBlock(ns, prov, kind)
	if !ok {
		return Resolved{}, nil, &NotFoundError{Namespace: r.namespace, Selection: sel}
	}

	reg, err := r.registry.lookup(prov)
	if err != nil {
		// The configuration names this provider, so the failure is a
		// missing constructor, not a bad request.
		return Resolved{}, nil, &UnsupportedProviderError{Provider: prov}
	}

	cfg := reg.entry.NewConfig()
	raw := applyOverrides(block, reg.entry.Overrides)
	if err := decodeBlock(raw, cfg, sel); err != nil {
		return Resolved{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Provider = prov
			verr.Kind = kind
		}
		return Resolved{}, nil, err
	}

	log.Debug().
		Str("namespace", r.namespace).
		Str("selection", sel.String()).
		Msg("Resolved configuration")
	return Resolved{Provider: prov, Kind: kind, Config: cfg}, reg, nil
}

// Default returns the namespace's parsed default selection.
func (r *Resolver[T]) Default() (Selection, error) {
	ns, err := r.store.Namespace(r.namespace)
	if err != nil {
		return Selection{}, err
	}
	return r.defaultSelection(ns)
}

func (r *Resolver[T]) defaultSelection(ns map[string]any) (Selection, error) {
	raw, ok := ns["default"].(string)
	if !ok || raw == "" {
		return Selection{}, &SelectionError{
			Selection: "",
			Reason:    "namespace " + r.namespace + " declares no default selection",
		}
	}

	sel, err := ParseSelection(raw)
	if err != nil {
		return Selection{}, err
	}
	if !r.kinds[sel.Kind] {
		return Selection{}, &SelectionError{
			Selection: raw,
			Reason:    "unknown logical kind " + sel.Kind,
		}
	}
	if _, ok := rawBlock(ns, sel.Provider, sel.Kind); !ok {
		return Selection{}, &SelectionError{
			Selection: raw,
			Reason:    "references a provider and kind that are not configured",
		}
	}
	return sel, nil
}

// Available lists every provider.kind pair present in the namespace, sorted.
// It reads raw configuration only; nothing is validated or constructed.
func (r *Resolver[T]) Available() ([]Selection, error) {
	ns, err := r.store.Namespace(r.namespace)
	if err != nil {
		return nil, err
	}

	var sels []Selection
	for prov, v := range ns {
		if prov == "default" {
			continue
		}
		kinds, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for kind, block := range kinds {
			if _, ok := block.(map[string]any); !ok || !r.kinds[kind] {
				continue
			}
			sels = append(sels, Selection{Provider: prov, Kind: kind})
		}
	}

	sort.Slice(sels, func(i, j int) bool { return sels[i].String() < sels[j].String() })
	return sels, nil
}

// Reload discards the store's cached raw configuration. Live clients held by
// a Factory are not touched; reload and cache-clear are deliberately
// independent.
func (r *Resolver[T]) Reload() {
	r.store.Reload()
}

func rawBlock(ns map[string]any, prov, kind string) (map[string]any, bool) {
	kinds, ok := ns[prov].(map[string]any)
	if !ok {
		return nil, false
	}
	block, ok := kinds[kind].(map[string]any)
	return block, ok
}

// applyOverrides copies the raw block and replaces each declared field whose
// environment variable is present. The environment always wins over the file
// value, field by field.
func applyOverrides(block map[string]any, overrides []EnvOverride) map[string]any {
	raw := make(map[string]any, len(block))
	for k, v := range block {
		raw[k] = v
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.Var); ok {
			raw[o.Field] = v
			log.Debug().Str("var", o.Var).Str("field", o.Field).Msg("Applied environment override")
		}
	}
	return raw
}

// decodeBlock decodes the raw block onto cfg. Input is weakly typed so that
// string scalars, such as environment override values, coerce to the numeric
// fields they target.
func decodeBlock(raw map[string]any, cfg Config, sel Selection) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(raw); err != nil {
		verr := &ValidationError{Provider: sel.Provider, Kind: sel.Kind}
		var merr *mapstructure.Error
		if errors.As(err, &merr) {
			for _, msg := range merr.Errors {
				verr.Add("", msg)
			}
		} else {
			verr.Add("", err.Error())
		}
		return verr
	}
	return nil
}
