package provider

import (
	"context"

	"github.com/goliatone/go-openfeature/cache"
	"github.com/goliatone/go-openfeature/feature"
)

// Cached serves repeated resolutions from a cache. Only successful
// resolutions are stored; hits are reported with reason CACHED.
type Cached struct {
	inner feature.Provider
	cache cache.Cache
}

// NewCached wraps inner. A nil cache disables caching.
func NewCached(inner feature.Provider, c cache.Cache) *Cached {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &Cached{inner: inner, cache: c}
}

// Metadata implements feature.Provider.
func (p *Cached) Metadata() feature.ProviderMetadata {
	return p.inner.Metadata().With("cache", "enabled")
}

// Hooks implements feature.HookProvider by forwarding the wrapped provider's
// hooks.
func (p *Cached) Hooks() []feature.Hook {
	return feature.ProviderHooks(p.inner)
}

// Run forwards to the wrapped provider when it has a lifecycle.
func (p *Cached) Run(ctx context.Context) error {
	if runner, ok := p.inner.(feature.Runner); ok {
		return runner.Run(ctx)
	}
	<-ctx.Done()
	return nil
}

// Purge drops every cached resolution.
func (p *Cached) Purge(ctx context.Context) {
	p.cache.Clear(ctx)
}

func (p *Cached) ResolveBool(ctx context.Context, flag string, defaultValue bool, evalCtx feature.EvaluationContext) feature.Resolution[bool] {
	return cachedResolve(ctx, p, flag, defaultValue, evalCtx, p.inner.ResolveBool)
}

func (p *Cached) ResolveString(ctx context.Context, flag string, defaultValue string, evalCtx feature.EvaluationContext) feature.Resolution[string] {
	return cachedResolve(ctx, p, flag, defaultValue, evalCtx, p.inner.ResolveString)
}

func (p *Cached) ResolveInt(ctx context.Context, flag string, defaultValue int64, evalCtx feature.EvaluationContext) feature.Resolution[int64] {
	return cachedResolve(ctx, p, flag, defaultValue, evalCtx, p.inner.ResolveInt)
}

func (p *Cached) ResolveFloat(ctx context.Context, flag string, defaultValue float64, evalCtx feature.EvaluationContext) feature.Resolution[float64] {
	return cachedResolve(ctx, p, flag, defaultValue, evalCtx, p.inner.ResolveFloat)
}

func cachedResolve[V any](
	ctx context.Context,
	p *Cached,
	flag string,
	defaultValue V,
	evalCtx feature.EvaluationContext,
	resolve func(context.Context, string, V, feature.EvaluationContext) feature.Resolution[V],
) feature.Resolution[V] {
	key := cache.Key(feature.TypeOf(defaultValue), flag, evalCtx)
	if entry, ok := p.cache.Get(ctx, key); ok {
		if value, ok := entry.Value.(V); ok {
			return feature.Resolution[V]{
				Value:        value,
				Reason:       feature.ReasonCached,
				Variant:      entry.Variant,
				FlagMetadata: entry.FlagMetadata,
			}
		}
	}

	res := resolve(ctx, flag, defaultValue, evalCtx)
	if res.Error == nil {
		p.cache.Set(ctx, key, cache.Entry{
			Value:        res.Value,
			Variant:      res.Variant,
			Reason:       res.Reason,
			FlagMetadata: res.FlagMetadata,
		})
	}
	return res
}

var (
	_ feature.HookProvider = (*Cached)(nil)
	_ feature.Runner       = (*Cached)(nil)
)
