package activity

import (
	"context"

	"github.com/goliatone/go-openfeature/feature"
)

// Action describes a registry mutation.
type Action string

const (
	ActionProviderSet    Action = "provider_set"
	ActionContextSet     Action = "context_set"
	ActionContextCleared Action = "context_cleared"
	ActionHooksAdded     Action = "hooks_added"
	ActionHooksRemoved   Action = "hooks_removed"
)

// UpdateEvent captures a registry mutation.
type UpdateEvent struct {
	Action           Action
	Provider         feature.ProviderMetadata
	PreviousProvider feature.ProviderMetadata
	Context          *feature.EvaluationContext
	HookCount        int
}

// Hook receives update events.
type Hook interface {
	OnUpdate(ctx context.Context, event UpdateEvent)
}

// HookFunc wraps a function as a Hook.
type HookFunc func(context.Context, UpdateEvent)

// OnUpdate implements Hook.
func (fn HookFunc) OnUpdate(ctx context.Context, event UpdateEvent) {
	if fn == nil {
		return
	}
	fn(ctx, event)
}

// NoopHook ignores updates.
type NoopHook struct{}

// OnUpdate implements Hook.
func (NoopHook) OnUpdate(context.Context, UpdateEvent) {}
