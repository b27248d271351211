package feature

import "context"

// HookHints carries invocation-specific data for hooks.
type HookHints map[string]FieldValue

// HookContext is created once per evaluation and threaded through every hook.
// EvaluationContext may only be changed during the before phase.
type HookContext struct {
	Flag              string
	DefaultValue      any
	EvaluationContext EvaluationContext
	ProviderMetadata  *ProviderMetadata
}

// Hook observes and influences a single evaluation.
//
// Before hooks run global, client, invocation then provider hooks. The other
// three phases run in the reverse layer order: provider, invocation, client,
// global. An error from BeforeEvaluation or AfterSuccessfulEvaluation stops
// its phase and turns the evaluation into a failure.
type Hook interface {
	BeforeEvaluation(ctx context.Context, hookCtx *HookContext, hints HookHints) error
	AfterSuccessfulEvaluation(ctx context.Context, hookCtx HookContext, evaluation Evaluation[any], hints HookHints) error
	OnError(ctx context.Context, hookCtx HookContext, err error, hints HookHints)
	AfterEvaluation(ctx context.Context, hookCtx HookContext, evaluation Evaluation[any], hints HookHints)
}

// BaseHook implements every Hook method as a no-op. Embed it to implement
// only the phases you need.
type BaseHook struct{}

// BeforeEvaluation implements Hook.
func (BaseHook) BeforeEvaluation(context.Context, *HookContext, HookHints) error { return nil }

// AfterSuccessfulEvaluation implements Hook.
func (BaseHook) AfterSuccessfulEvaluation(context.Context, HookContext, Evaluation[any], HookHints) error {
	return nil
}

// OnError implements Hook.
func (BaseHook) OnError(context.Context, HookContext, error, HookHints) {}

// AfterEvaluation implements Hook.
func (BaseHook) AfterEvaluation(context.Context, HookContext, Evaluation[any], HookHints) {}

// HookFuncs adapts plain functions to a Hook. Nil functions are skipped.
type HookFuncs struct {
	Before       func(ctx context.Context, hookCtx *HookContext, hints HookHints) error
	AfterSuccess func(ctx context.Context, hookCtx HookContext, evaluation Evaluation[any], hints HookHints) error
	Error        func(ctx context.Context, hookCtx HookContext, err error, hints HookHints)
	After        func(ctx context.Context, hookCtx HookContext, evaluation Evaluation[any], hints HookHints)
}

// BeforeEvaluation implements Hook.
func (h HookFuncs) BeforeEvaluation(ctx context.Context, hookCtx *HookContext, hints HookHints) error {
	if h.Before == nil {
		return nil
	}
	return h.Before(ctx, hookCtx, hints)
}

// AfterSuccessfulEvaluation implements Hook.
func (h HookFuncs) AfterSuccessfulEvaluation(ctx context.Context, hookCtx HookContext, evaluation Evaluation[any], hints HookHints) error {
	if h.AfterSuccess == nil {
		return nil
	}
	return h.AfterSuccess(ctx, hookCtx, evaluation, hints)
}

// OnError implements Hook.
func (h HookFuncs) OnError(ctx context.Context, hookCtx HookContext, err error, hints HookHints) {
	if h.Error == nil {
		return
	}
	h.Error(ctx, hookCtx, err, hints)
}

// AfterEvaluation implements Hook.
func (h HookFuncs) AfterEvaluation(ctx context.Context, hookCtx HookContext, evaluation Evaluation[any], hints HookHints) {
	if h.After == nil {
		return
	}
	h.After(ctx, hookCtx, evaluation, hints)
}

var (
	_ Hook = BaseHook{}
	_ Hook = HookFuncs{}
)
