// Package registry holds the process-wide provider, evaluation context and
// hooks, and builds clients bound to them.
package registry

import (
	"context"
	"sync"

	"github.com/goliatone/go-openfeature/activity"
	"github.com/goliatone/go-openfeature/client"
	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/provider"
)

// System stores the shared provider, global context and global hooks. Each
// slot has its own lock; clients read them live on every evaluation.
type System struct {
	providerMu   sync.RWMutex
	provider     feature.Provider
	bootstrapped bool

	contextMu sync.RWMutex
	evalCtx   *feature.EvaluationContext

	hooksMu sync.RWMutex
	hooks   []feature.Hook

	updateHooks []activity.Hook
}

// Option customizes a System.
type Option func(*System)

// WithProvider sets the initial provider.
func WithProvider(p feature.Provider) Option {
	return func(s *System) {
		if s == nil || p == nil {
			return
		}
		s.provider = p
	}
}

// WithActivityHook registers an update hook notified on every mutation.
func WithActivityHook(hook activity.Hook) Option {
	return func(s *System) {
		if s == nil || hook == nil {
			return
		}
		s.updateHooks = append(s.updateHooks, hook)
	}
}

// New constructs a System. The provider defaults to a no-op provider.
func New(options ...Option) *System {
	s := &System{}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.provider == nil {
		s.provider = provider.NewNoop()
	}
	return s
}

// Provider returns the current provider.
func (s *System) Provider() feature.Provider {
	s.providerMu.RLock()
	defer s.providerMu.RUnlock()
	return s.provider
}

// SetProvider replaces the current provider. Nil restores the no-op provider.
func (s *System) SetProvider(p feature.Provider) {
	if p == nil {
		p = provider.NewNoop()
	}
	s.providerMu.Lock()
	previous := s.provider
	s.provider = p
	s.providerMu.Unlock()

	s.emit(activity.UpdateEvent{
		Action:           activity.ActionProviderSet,
		Provider:         p.Metadata(),
		PreviousProvider: metadataOf(previous),
	})
}

// Bootstrap installs the provider once. Later calls return
// ferrors.ErrAlreadyBootstrapped and leave the provider untouched.
func (s *System) Bootstrap(p feature.Provider) error {
	if p == nil {
		return ferrors.WrapSentinel(ferrors.ErrProviderRequired, "", nil)
	}
	s.providerMu.Lock()
	if s.bootstrapped {
		current := s.provider
		s.providerMu.Unlock()
		return ferrors.WrapSentinel(ferrors.ErrAlreadyBootstrapped, "", map[string]any{
			ferrors.MetaProvider: metadataOf(current).Name,
		})
	}
	previous := s.provider
	s.provider = p
	s.bootstrapped = true
	s.providerMu.Unlock()

	s.emit(activity.UpdateEvent{
		Action:           activity.ActionProviderSet,
		Provider:         p.Metadata(),
		PreviousProvider: metadataOf(previous),
	})
	return nil
}

// EvaluationContext returns a copy of the global context, or nil.
func (s *System) EvaluationContext() *feature.EvaluationContext {
	s.contextMu.RLock()
	defer s.contextMu.RUnlock()
	if s.evalCtx == nil {
		return nil
	}
	cloned := s.evalCtx.Clone()
	return &cloned
}

// SetEvaluationContext replaces the global context. Nil clears it.
func (s *System) SetEvaluationContext(ec *feature.EvaluationContext) {
	var stored *feature.EvaluationContext
	if ec != nil {
		cloned := ec.Clone()
		stored = &cloned
	}
	s.contextMu.Lock()
	s.evalCtx = stored
	s.contextMu.Unlock()

	event := activity.UpdateEvent{Action: activity.ActionContextCleared}
	if stored != nil {
		snapshot := stored.Clone()
		event = activity.UpdateEvent{Action: activity.ActionContextSet, Context: &snapshot}
	}
	s.emit(event)
}

// Hooks returns a copy of the global hooks.
func (s *System) Hooks() []feature.Hook {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()
	return append([]feature.Hook(nil), s.hooks...)
}

// AddHooks appends global hooks.
func (s *System) AddHooks(hooks ...feature.Hook) {
	s.hooksMu.Lock()
	for _, hook := range hooks {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
	count := len(s.hooks)
	s.hooksMu.Unlock()

	s.emit(activity.UpdateEvent{Action: activity.ActionHooksAdded, HookCount: count})
}

// RemoveAllHooks drops every global hook.
func (s *System) RemoveAllHooks() {
	s.hooksMu.Lock()
	s.hooks = nil
	s.hooksMu.Unlock()

	s.emit(activity.UpdateEvent{Action: activity.ActionHooksRemoved})
}

// Reset restores the initial state: no-op provider, no context, no hooks,
// and clears the bootstrap marker. Intended for test isolation.
func (s *System) Reset() {
	s.providerMu.Lock()
	s.provider = provider.NewNoop()
	s.bootstrapped = false
	s.providerMu.Unlock()

	s.contextMu.Lock()
	s.evalCtx = nil
	s.contextMu.Unlock()

	s.hooksMu.Lock()
	s.hooks = nil
	s.hooksMu.Unlock()
}

// NewClient builds a client whose provider, global context and global
// hooks are read from s on every evaluation.
func (s *System) NewClient(opts ...client.Option) *client.Client {
	bound := []client.Option{
		client.WithProviderFunc(s.Provider),
		client.WithGlobalContextFunc(s.EvaluationContext),
		client.WithGlobalHooksFunc(s.Hooks),
	}
	return client.New(append(bound, opts...)...)
}

func (s *System) emit(event activity.UpdateEvent) {
	if len(s.updateHooks) == 0 {
		return
	}
	ctx := context.Background()
	for _, hook := range s.updateHooks {
		if hook == nil {
			continue
		}
		hook.OnUpdate(ctx, event)
	}
}

func metadataOf(p feature.Provider) feature.ProviderMetadata {
	if p == nil {
		return feature.ProviderMetadata{}
	}
	return p.Metadata()
}
