package provider

import (
	"context"
	"fmt"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/logger"
)

// Match is the raw result of a Lookup.
type Match struct {
	Value    any
	Found    bool
	Reason   feature.Reason
	Variant  string
	Metadata map[string]any
}

// Lookup finds the raw stored value of a flag for an evaluation context.
type Lookup interface {
	Lookup(ctx context.Context, flag string, evalCtx feature.EvaluationContext) (Match, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, flag string, evalCtx feature.EvaluationContext) (Match, error)

// Lookup implements Lookup.
func (fn LookupFunc) Lookup(ctx context.Context, flag string, evalCtx feature.EvaluationContext) (Match, error) {
	if fn == nil {
		return Match{}, nil
	}
	return fn(ctx, flag, evalCtx)
}

// LookupProvider turns a Lookup into a typed provider. Missing flags report
// FLAG_NOT_FOUND, values of the wrong type TYPE_MISMATCH and lookup errors
// GENERAL.
type LookupProvider struct {
	metadata feature.ProviderMetadata
	lookup   Lookup
	hooks    []feature.Hook
	logger   logger.Logger
}

// LookupOption customizes a LookupProvider.
type LookupOption func(*LookupProvider)

// WithLookupHooks declares provider-level hooks.
func WithLookupHooks(hooks ...feature.Hook) LookupOption {
	return func(p *LookupProvider) {
		for _, hook := range hooks {
			if hook != nil {
				p.hooks = append(p.hooks, hook)
			}
		}
	}
}

// WithLookupLogger sets the logger used for lookup failures.
func WithLookupLogger(lgr logger.Logger) LookupOption {
	return func(p *LookupProvider) {
		if lgr != nil {
			p.logger = lgr
		}
	}
}

// WithLookupMetadata adds an extension value to the provider metadata.
func WithLookupMetadata(key, value string) LookupOption {
	return func(p *LookupProvider) {
		p.metadata = p.metadata.With(key, value)
	}
}

// NewLookup constructs a LookupProvider named name.
func NewLookup(name string, lookup Lookup, opts ...LookupOption) *LookupProvider {
	p := &LookupProvider{
		metadata: feature.NewProviderMetadata(name, nil),
		lookup:   lookup,
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Metadata implements feature.Provider.
func (p *LookupProvider) Metadata() feature.ProviderMetadata { return p.metadata }

// Hooks implements feature.HookProvider.
func (p *LookupProvider) Hooks() []feature.Hook {
	return append([]feature.Hook(nil), p.hooks...)
}

func (p *LookupProvider) ResolveBool(ctx context.Context, flag string, defaultValue bool, evalCtx feature.EvaluationContext) feature.Resolution[bool] {
	return resolveLookup(ctx, p, flag, defaultValue, evalCtx)
}

func (p *LookupProvider) ResolveString(ctx context.Context, flag string, defaultValue string, evalCtx feature.EvaluationContext) feature.Resolution[string] {
	return resolveLookup(ctx, p, flag, defaultValue, evalCtx)
}

func (p *LookupProvider) ResolveInt(ctx context.Context, flag string, defaultValue int64, evalCtx feature.EvaluationContext) feature.Resolution[int64] {
	return resolveLookup(ctx, p, flag, defaultValue, evalCtx)
}

func (p *LookupProvider) ResolveFloat(ctx context.Context, flag string, defaultValue float64, evalCtx feature.EvaluationContext) feature.Resolution[float64] {
	return resolveLookup(ctx, p, flag, defaultValue, evalCtx)
}

func resolveLookup[V any](ctx context.Context, p *LookupProvider, flag string, defaultValue V, evalCtx feature.EvaluationContext) feature.Resolution[V] {
	if p == nil || p.lookup == nil {
		return feature.ErrorResolution(defaultValue, feature.ErrorProviderNotReady, "lookup is not configured")
	}
	match, err := p.lookup.Lookup(ctx, flag, evalCtx)
	if err != nil {
		p.logger.WithContext(ctx).Warn("flag lookup failed",
			"provider", p.metadata.Name,
			"flag", flag,
			"error", err,
		)
		return feature.ErrorResolution(defaultValue, feature.ErrorGeneral, err.Error())
	}
	if !match.Found {
		return feature.ErrorResolution(defaultValue, feature.ErrorFlagNotFound, fmt.Sprintf("flag %q not found", flag))
	}
	value, ok := ValueAs[V](match.Value)
	if !ok {
		return feature.ErrorResolution(defaultValue, feature.ErrorTypeMismatch,
			fmt.Sprintf("flag %q holds %T, want %s", flag, match.Value, feature.TypeOf(defaultValue)))
	}
	reason := match.Reason
	if reason == "" {
		reason = feature.ReasonStatic
	}
	return feature.Resolution[V]{
		Value:        value,
		Reason:       reason,
		Variant:      match.Variant,
		FlagMetadata: match.Metadata,
	}
}

var _ feature.HookProvider = (*LookupProvider)(nil)
