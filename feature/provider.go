package feature

import (
	"context"
	"sort"
)

// ProviderMetadata describes a provider.
type ProviderMetadata struct {
	Name   string
	values map[string]string
}

// NewProviderMetadata builds metadata with optional extension values.
func NewProviderMetadata(name string, values map[string]string) ProviderMetadata {
	meta := ProviderMetadata{Name: name}
	for key, value := range values {
		meta = meta.With(key, value)
	}
	return meta
}

// Value returns an extension value.
func (m ProviderMetadata) Value(key string) (string, bool) {
	if m.values == nil {
		return "", false
	}
	value, ok := m.values[key]
	return value, ok
}

// With returns a copy of m with key set.
func (m ProviderMetadata) With(key, value string) ProviderMetadata {
	values := make(map[string]string, len(m.values)+1)
	for k, v := range m.values {
		values[k] = v
	}
	values[key] = value
	return ProviderMetadata{Name: m.Name, values: values}
}

// Values returns a copy of the extension values.
func (m ProviderMetadata) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for key, value := range m.values {
		out[key] = value
	}
	return out
}

// Keys returns the sorted extension keys.
func (m ProviderMetadata) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality.
func (m ProviderMetadata) Equal(other ProviderMetadata) bool {
	if m.Name != other.Name || len(m.values) != len(other.values) {
		return false
	}
	for key, value := range m.values {
		if otherValue, ok := other.values[key]; !ok || otherValue != value {
			return false
		}
	}
	return true
}

// Provider resolves flags to typed values. Implementations must report
// failures through Resolution.Error and never panic.
type Provider interface {
	Metadata() ProviderMetadata
	ResolveBool(ctx context.Context, flag string, defaultValue bool, evalCtx EvaluationContext) Resolution[bool]
	ResolveString(ctx context.Context, flag string, defaultValue string, evalCtx EvaluationContext) Resolution[string]
	ResolveInt(ctx context.Context, flag string, defaultValue int64, evalCtx EvaluationContext) Resolution[int64]
	ResolveFloat(ctx context.Context, flag string, defaultValue float64, evalCtx EvaluationContext) Resolution[float64]
}

// HookProvider is implemented by providers that declare their own hooks.
type HookProvider interface {
	Provider
	Hooks() []Hook
}

// Runner is implemented by providers with a background lifecycle. Run
// returns once ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// ProviderHooks returns the hooks declared by p, if any.
func ProviderHooks(p Provider) []Hook {
	if hp, ok := p.(HookProvider); ok {
		return hp.Hooks()
	}
	return nil
}
