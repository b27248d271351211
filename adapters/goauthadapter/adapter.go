package goauthadapter

import (
	"context"

	"github.com/goliatone/go-auth"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/scope"
)

// FieldRole is the evaluation context field holding the actor role.
const FieldRole = "role"

// ActorExtractor extracts an auth.ActorContext from context.
type ActorExtractor func(context.Context) (*auth.ActorContext, bool)

// Option customizes the actor hook.
type Option func(*Hook)

// Hook copies the authenticated go-auth actor into the evaluation context
// before the provider runs. Existing fields win unless WithOverwrite is set.
type Hook struct {
	feature.BaseHook
	extractor ActorExtractor
	overwrite bool
}

// NewHook builds a hook using go-auth's actor context extractor.
func NewHook(opts ...Option) *Hook {
	hook := &Hook{
		extractor: auth.ActorFromContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hook)
		}
	}
	if hook.extractor == nil {
		hook.extractor = auth.ActorFromContext
	}
	return hook
}

// WithActorExtractor overrides the actor context extractor.
func WithActorExtractor(extractor ActorExtractor) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.extractor = extractor
	}
}

// WithOverwrite makes actor values replace fields already present.
func WithOverwrite(enabled bool) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.overwrite = enabled
	}
}

// BeforeEvaluation implements feature.Hook.
func (h *Hook) BeforeEvaluation(ctx context.Context, hookCtx *feature.HookContext, _ feature.HookHints) error {
	if h == nil || h.extractor == nil || hookCtx == nil {
		return nil
	}
	actor, ok := h.extractor(ctx)
	if !ok || actor == nil {
		return nil
	}
	actorCtx := EvaluationContextFromActor(actor)
	if h.overwrite {
		hookCtx.EvaluationContext.Overlay(actorCtx)
		return nil
	}
	hookCtx.EvaluationContext = actorCtx.Merge(hookCtx.EvaluationContext)
	return nil
}

// EvaluationContextFromActor maps an actor onto an evaluation context. The
// actor id, or subject when missing, becomes the targeting key.
func EvaluationContextFromActor(actor *auth.ActorContext) feature.EvaluationContext {
	if actor == nil {
		return feature.EvaluationContext{}
	}
	userID := actor.ActorID
	if userID == "" {
		userID = actor.Subject
	}
	ec := feature.NewEvaluationContext(userID, nil)
	setString(&ec, scope.MetadataTenantID, actor.TenantID)
	setString(&ec, scope.MetadataOrgID, actor.OrganizationID)
	setString(&ec, scope.MetadataUserID, userID)
	setString(&ec, FieldRole, actor.Role)
	return ec
}

// ScopeFromActor builds a scope.Set from an auth.ActorContext.
func ScopeFromActor(actor *auth.ActorContext) scope.Set {
	return scope.FromEvaluationContext(EvaluationContextFromActor(actor))
}

// WithActorScope stores the actor of ctx as the ambient evaluation context.
func WithActorScope(ctx context.Context) context.Context {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok || actor == nil {
		return ctx
	}
	return scope.MergeEvaluationContext(ctx, EvaluationContextFromActor(actor))
}

func setString(ec *feature.EvaluationContext, key, value string) {
	if value == "" {
		return
	}
	ec.SetField(key, feature.StringField(value))
}

var _ feature.Hook = (*Hook)(nil)
