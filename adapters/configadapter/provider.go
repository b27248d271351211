package configadapter

import (
	"context"
	"strings"

	"github.com/goliatone/go-config/config"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/provider"
)

// ProviderName is the default metadata name of config-backed providers.
const ProviderName = "Config Provider"

type configOptions struct {
	delimiter string
	name      string
	lookup    []provider.LookupOption
}

// Option configures configadapter parsing.
type Option func(*configOptions)

// WithDelimiter sets the key delimiter used when flattening nested maps.
func WithDelimiter(delimiter string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.delimiter = delimiter
	}
}

// WithName overrides the provider metadata name.
func WithName(name string) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.name = strings.TrimSpace(name)
	}
}

// WithLookupOptions forwards options to the underlying lookup provider.
func WithLookupOptions(opts ...provider.LookupOption) Option {
	return func(cfg *configOptions) {
		if cfg == nil {
			return
		}
		cfg.lookup = append(cfg.lookup, opts...)
	}
}

func newOptions(opts []Option) configOptions {
	cfg := configOptions{delimiter: ".", name: ProviderName}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.delimiter == "" {
		cfg.delimiter = "."
	}
	if cfg.name == "" {
		cfg.name = ProviderName
	}
	return cfg
}

// Values is a flattened, read-only view of config flag values.
type Values struct {
	values map[string]any
}

// NewValues flattens a nested config map. Leaves may be scalars or
// config.OptionalBool; unset optional values are treated as absent.
func NewValues(data map[string]any, opts ...Option) *Values {
	cfg := newOptions(opts)
	values := map[string]any{}
	flattenValues("", data, cfg.delimiter, values)
	return &Values{values: values}
}

// Lookup implements provider.Lookup. The evaluation context is ignored.
func (v *Values) Lookup(_ context.Context, flag string, _ feature.EvaluationContext) (provider.Match, error) {
	if v == nil || len(v.values) == 0 {
		return provider.Match{}, nil
	}
	value, ok := v.values[feature.NormalizeKey(flag)]
	if !ok {
		return provider.Match{}, nil
	}
	return provider.Match{Value: value, Found: true, Reason: feature.ReasonStatic}, nil
}

// Len returns the number of flattened flags.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.values)
}

// NewProvider builds a static provider from a nested config map.
func NewProvider(data map[string]any, opts ...Option) *provider.LookupProvider {
	cfg := newOptions(opts)
	lookupOpts := append([]provider.LookupOption{
		provider.WithLookupMetadata("source", "config"),
	}, cfg.lookup...)
	return provider.NewLookup(cfg.name, NewValues(data, opts...), lookupOpts...)
}

// NewProviderFromBools builds a provider from a flat map of booleans.
func NewProviderFromBools(data map[string]bool, opts ...Option) *provider.LookupProvider {
	raw := make(map[string]any, len(data))
	for key, value := range data {
		raw[key] = value
	}
	return NewProvider(raw, opts...)
}

type optionalBool interface {
	IsSet() bool
	Value() bool
}

func flattenValues(prefix string, data map[string]any, delim string, out map[string]any) {
	for key, value := range data {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		path := trimmedKey
		if prefix != "" {
			path = prefix + delim + trimmedKey
		}

		switch typed := value.(type) {
		case map[string]any:
			flattenValues(path, typed, delim, out)
		case map[string]bool:
			flattenValues(path, boolMapToAny(typed), delim, out)
		default:
			if leaf, ok := leafValue(value); ok {
				out[path] = leaf
			}
		}
	}
}

func leafValue(value any) (any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case config.OptionalBool:
		return typed.Value(), typed.IsSet()
	case *config.OptionalBool:
		if typed == nil || !typed.IsSet() {
			return nil, false
		}
		return typed.Value(), true
	case optionalBool:
		return typed.Value(), typed.IsSet()
	case *bool:
		if typed == nil {
			return nil, false
		}
		return *typed, true
	case *string:
		if typed == nil {
			return nil, false
		}
		return *typed, true
	default:
		return value, true
	}
}

func boolMapToAny(data map[string]bool) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out
}
