package client

import (
	"context"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/scope"
)

const (
	phaseBefore       = "before"
	phaseAfterSuccess = "after_success"
	phaseError        = "error"
	phaseFinally      = "finally"
)

type resolveFunc[V any] func(feature.Provider, context.Context, string, V, feature.EvaluationContext) feature.Resolution[V]

// evaluate drives one evaluation: before hooks, resolution, after-success or
// error hooks, then the finally phase. It never panics and always returns an
// evaluation whose value is the default when an error is reported.
func evaluate[V any](ctx context.Context, c *Client, flag string, defaultValue V, resolve resolveFunc[V], opts []feature.EvaluationOption) feature.Evaluation[V] {
	if ctx == nil {
		ctx = context.Background()
	}
	req := feature.NewEvaluationRequest(opts...)

	provider := c.providerFn()
	globalCtx := c.globalContextFn()
	globalHooks := c.globalHooksFn()
	clientCtx, clientHooks := c.snapshot()

	var merged feature.EvaluationContext
	if globalCtx != nil {
		merged.Overlay(*globalCtx)
	}
	if ambient, ok := scope.EvaluationContext(ctx); ok {
		merged.Overlay(ambient)
	}
	if clientCtx != nil {
		merged.Overlay(*clientCtx)
	}
	merged.Overlay(req.Context)

	providerHooks, metadata, providerErr := inspectProvider(flag, provider)

	hookCtx := &feature.HookContext{
		Flag:              flag,
		DefaultValue:      defaultValue,
		EvaluationContext: merged,
		ProviderMetadata:  metadata,
	}
	p := &pipeline{
		client:  c,
		hookCtx: hookCtx,
		hints:   req.Hints,
		after:   layered(providerHooks, req.Hooks, clientHooks, globalHooks),
	}

	if err := p.runBefore(ctx, layered(globalHooks, clientHooks, req.Hooks, providerHooks)); err != nil {
		evaluation := feature.FailedEvaluation(flag, defaultValue, feature.ToResolutionError(err))
		p.runError(ctx, err)
		p.runFinally(ctx, evaluation.Any())
		return evaluation
	}

	var evaluation feature.Evaluation[V]
	var res feature.Resolution[V]
	err := providerErr
	if err == nil {
		res, err = resolveSafely(p, provider, func() feature.Resolution[V] {
			return resolve(provider, ctx, flag, defaultValue, hookCtx.EvaluationContext.Clone())
		})
	}
	switch {
	case err != nil:
		evaluation = feature.FailedEvaluation(flag, defaultValue, feature.ToResolutionError(err))
		p.runError(ctx, err)
	case res.Error != nil:
		evaluation = feature.FailedEvaluation(flag, defaultValue, *res.Error)
		evaluation.FlagMetadata = res.FlagMetadata
		evaluation.Variant = res.Variant
		p.runError(ctx, *res.Error)
	default:
		evaluation = feature.NewEvaluation(flag, res)
		if err := p.runAfterSuccess(ctx, evaluation.Any()); err != nil {
			evaluation = feature.FailedEvaluation(flag, defaultValue, feature.ToResolutionError(err))
			p.runError(ctx, err)
		}
	}

	p.runFinally(ctx, evaluation.Any())
	return evaluation
}

// pipeline holds the per-evaluation state shared by the hook phases.
type pipeline struct {
	client  *Client
	hookCtx *feature.HookContext
	hints   feature.HookHints
	after   []feature.Hook
}

func (p *pipeline) runBefore(ctx context.Context, hooks []feature.Hook) error {
	for _, hook := range hooks {
		err := p.guard(phaseBefore, func() error {
			return hook.BeforeEvaluation(ctx, p.hookCtx, p.hints)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) runAfterSuccess(ctx context.Context, evaluation feature.Evaluation[any]) error {
	for _, hook := range p.after {
		err := p.guard(phaseAfterSuccess, func() error {
			return hook.AfterSuccessfulEvaluation(ctx, p.view(), evaluation, p.hints)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) runError(ctx context.Context, cause error) {
	for _, hook := range p.after {
		err := p.guard(phaseError, func() error {
			hook.OnError(ctx, p.view(), cause, p.hints)
			return nil
		})
		p.logHookFailure(ctx, phaseError, err)
	}
}

func (p *pipeline) runFinally(ctx context.Context, evaluation feature.Evaluation[any]) {
	for _, hook := range p.after {
		err := p.guard(phaseFinally, func() error {
			hook.AfterEvaluation(ctx, p.view(), evaluation, p.hints)
			return nil
		})
		p.logHookFailure(ctx, phaseFinally, err)
	}
}

// view hands a hook its own copy of the evaluation context. Only before hooks
// may change what later stages see.
func (p *pipeline) view() feature.HookContext {
	view := *p.hookCtx
	view.EvaluationContext = p.hookCtx.EvaluationContext.Clone()
	return view
}

// inspectProvider reads the provider hooks and metadata. A provider that
// panics here, typed nil pointers included, is reported as a provider panic.
func inspectProvider(flag string, provider feature.Provider) (hooks []feature.Hook, metadata *feature.ProviderMetadata, err error) {
	if provider == nil {
		return nil, nil, nil
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			hooks, metadata = nil, nil
			err = ferrors.Recovered(ferrors.ErrProviderPanic, recovered, map[string]any{
				ferrors.MetaFlag: flag,
			})
		}
	}()
	meta := provider.Metadata()
	return feature.ProviderHooks(provider), &meta, nil
}

func resolveSafely[V any](p *pipeline, provider feature.Provider, fn func() feature.Resolution[V]) (res feature.Resolution[V], err error) {
	if provider == nil {
		return res, feature.NewResolutionError(feature.ErrorProviderNotReady, "provider is not configured")
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			meta := map[string]any{ferrors.MetaFlag: p.hookCtx.Flag}
			if p.hookCtx.ProviderMetadata != nil {
				meta[ferrors.MetaProvider] = p.hookCtx.ProviderMetadata.Name
			}
			res = feature.Resolution[V]{}
			err = ferrors.Recovered(ferrors.ErrProviderPanic, recovered, meta)
		}
	}()
	return fn(), nil
}

func (p *pipeline) guard(phase string, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = ferrors.Recovered(ferrors.ErrHookPanic, recovered, map[string]any{
				ferrors.MetaFlag:      p.hookCtx.Flag,
				ferrors.MetaHookPhase: phase,
			})
		}
	}()
	return fn()
}

func (p *pipeline) logHookFailure(ctx context.Context, phase string, err error) {
	if err == nil {
		return
	}
	p.client.logger.WithContext(ctx).Error("feature hook failed",
		"flag", p.hookCtx.Flag,
		"phase", phase,
		"error", err,
	)
}

func layered(layers ...[]feature.Hook) []feature.Hook {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	out := make([]feature.Hook, 0, size)
	for _, layer := range layers {
		for _, hook := range layer {
			if hook != nil {
				out = append(out, hook)
			}
		}
	}
	return out
}
