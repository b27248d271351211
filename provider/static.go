package provider

import (
	"context"

	"github.com/goliatone/go-openfeature/feature"
)

// StaticProviderName is the default metadata name of a StaticProvider.
const StaticProviderName = "Static Provider"

// StaticProvider returns fixed resolutions per value type, regardless of
// flag or context. Types without a configured resolution report
// FLAG_NOT_FOUND.
type StaticProvider struct {
	metadata feature.ProviderMetadata
	hooks    []feature.Hook
	boolRes  *feature.Resolution[bool]
	strRes   *feature.Resolution[string]
	intRes   *feature.Resolution[int64]
	floatRes *feature.Resolution[float64]
}

// StaticOption customizes a StaticProvider.
type StaticOption func(*StaticProvider)

func WithBool(res feature.Resolution[bool]) StaticOption {
	return func(p *StaticProvider) { p.boolRes = &res }
}

func WithString(res feature.Resolution[string]) StaticOption {
	return func(p *StaticProvider) { p.strRes = &res }
}

func WithInt(res feature.Resolution[int64]) StaticOption {
	return func(p *StaticProvider) { p.intRes = &res }
}

func WithFloat(res feature.Resolution[float64]) StaticOption {
	return func(p *StaticProvider) { p.floatRes = &res }
}

// WithMetadata overrides the provider metadata.
func WithMetadata(meta feature.ProviderMetadata) StaticOption {
	return func(p *StaticProvider) { p.metadata = meta }
}

// WithProviderHooks declares provider-level hooks.
func WithProviderHooks(hooks ...feature.Hook) StaticOption {
	return func(p *StaticProvider) {
		for _, hook := range hooks {
			if hook != nil {
				p.hooks = append(p.hooks, hook)
			}
		}
	}
}

// NewStatic constructs a StaticProvider.
func NewStatic(opts ...StaticOption) *StaticProvider {
	p := &StaticProvider{metadata: feature.NewProviderMetadata(StaticProviderName, nil)}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Metadata implements feature.Provider.
func (p *StaticProvider) Metadata() feature.ProviderMetadata { return p.metadata }

// Hooks implements feature.HookProvider.
func (p *StaticProvider) Hooks() []feature.Hook {
	return append([]feature.Hook(nil), p.hooks...)
}

func (p *StaticProvider) ResolveBool(_ context.Context, flag string, defaultValue bool, _ feature.EvaluationContext) feature.Resolution[bool] {
	return staticResolution(p.boolRes, flag, defaultValue)
}

func (p *StaticProvider) ResolveString(_ context.Context, flag string, defaultValue string, _ feature.EvaluationContext) feature.Resolution[string] {
	return staticResolution(p.strRes, flag, defaultValue)
}

func (p *StaticProvider) ResolveInt(_ context.Context, flag string, defaultValue int64, _ feature.EvaluationContext) feature.Resolution[int64] {
	return staticResolution(p.intRes, flag, defaultValue)
}

func (p *StaticProvider) ResolveFloat(_ context.Context, flag string, defaultValue float64, _ feature.EvaluationContext) feature.Resolution[float64] {
	return staticResolution(p.floatRes, flag, defaultValue)
}

func staticResolution[V any](res *feature.Resolution[V], flag string, defaultValue V) feature.Resolution[V] {
	if res == nil {
		return feature.ErrorResolution(defaultValue, feature.ErrorFlagNotFound, "no static value for flag "+flag)
	}
	return *res
}

var _ feature.HookProvider = (*StaticProvider)(nil)
