package client

import (
	"context"
	"sync"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/logger"
)

// Client evaluates flags against a provider, merging layered context and
// running the hook pipeline around every resolution.
type Client struct {
	providerFn      func() feature.Provider
	globalContextFn func() *feature.EvaluationContext
	globalHooksFn   func() []feature.Hook
	logger          logger.Logger

	mu      sync.RWMutex
	evalCtx *feature.EvaluationContext
	hooks   []feature.Hook
}

// Option customizes a Client.
type Option func(*Client)

// WithProvider binds a fixed provider.
func WithProvider(p feature.Provider) Option {
	return func(c *Client) {
		if c == nil || p == nil {
			return
		}
		c.providerFn = func() feature.Provider { return p }
	}
}

// WithProviderFunc binds a provider accessor that is read on every
// evaluation.
func WithProviderFunc(fn func() feature.Provider) Option {
	return func(c *Client) {
		if c == nil || fn == nil {
			return
		}
		c.providerFn = fn
	}
}

// WithGlobalContextFunc binds the accessor for the outermost context layer.
func WithGlobalContextFunc(fn func() *feature.EvaluationContext) Option {
	return func(c *Client) {
		if c == nil || fn == nil {
			return
		}
		c.globalContextFn = fn
	}
}

// WithGlobalHooksFunc binds the accessor for the outermost hook layer.
func WithGlobalHooksFunc(fn func() []feature.Hook) Option {
	return func(c *Client) {
		if c == nil || fn == nil {
			return
		}
		c.globalHooksFn = fn
	}
}

// WithEvaluationContext sets the client-instance context layer.
func WithEvaluationContext(ec feature.EvaluationContext) Option {
	return func(c *Client) {
		if c == nil {
			return
		}
		cloned := ec.Clone()
		c.evalCtx = &cloned
	}
}

// WithHooks appends client-instance hooks.
func WithHooks(hooks ...feature.Hook) Option {
	return func(c *Client) {
		if c == nil {
			return
		}
		c.hooks = appendHooks(c.hooks, hooks)
	}
}

// WithLogger sets the logger used for hook failures that cannot change the
// outcome.
func WithLogger(lgr logger.Logger) Option {
	return func(c *Client) {
		if c == nil || lgr == nil {
			return
		}
		c.logger = lgr
	}
}

// New constructs a Client with the provided options.
func New(options ...Option) *Client {
	c := &Client{}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.providerFn == nil {
		c.providerFn = func() feature.Provider { return nil }
	}
	if c.globalContextFn == nil {
		c.globalContextFn = func() *feature.EvaluationContext { return nil }
	}
	if c.globalHooksFn == nil {
		c.globalHooksFn = func() []feature.Hook { return nil }
	}
	if c.logger == nil {
		c.logger = logger.Default()
	}
	return c
}

// SetEvaluationContext replaces the client-instance context. Nil clears it.
func (c *Client) SetEvaluationContext(ec *feature.EvaluationContext) {
	var stored *feature.EvaluationContext
	if ec != nil {
		cloned := ec.Clone()
		stored = &cloned
	}
	c.mu.Lock()
	c.evalCtx = stored
	c.mu.Unlock()
}

// EvaluationContext returns a copy of the client-instance context.
func (c *Client) EvaluationContext() *feature.EvaluationContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.evalCtx == nil {
		return nil
	}
	cloned := c.evalCtx.Clone()
	return &cloned
}

// AddHooks appends client-instance hooks.
func (c *Client) AddHooks(hooks ...feature.Hook) {
	c.mu.Lock()
	c.hooks = appendHooks(c.hooks, hooks)
	c.mu.Unlock()
}

// Hooks returns a copy of the client-instance hooks.
func (c *Client) Hooks() []feature.Hook {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]feature.Hook(nil), c.hooks...)
}

// Provider returns the provider the next evaluation would use.
func (c *Client) Provider() feature.Provider {
	return c.providerFn()
}

// BoolValue returns the resolved value or defaultValue on any failure.
func (c *Client) BoolValue(ctx context.Context, flag string, defaultValue bool, opts ...feature.EvaluationOption) bool {
	return c.BoolEvaluation(ctx, flag, defaultValue, opts...).Value
}

// BoolEvaluation returns the full evaluation of a boolean flag.
func (c *Client) BoolEvaluation(ctx context.Context, flag string, defaultValue bool, opts ...feature.EvaluationOption) feature.Evaluation[bool] {
	return evaluate(ctx, c, flag, defaultValue, feature.Provider.ResolveBool, opts)
}

// StringValue returns the resolved value or defaultValue on any failure.
func (c *Client) StringValue(ctx context.Context, flag string, defaultValue string, opts ...feature.EvaluationOption) string {
	return c.StringEvaluation(ctx, flag, defaultValue, opts...).Value
}

// StringEvaluation returns the full evaluation of a string flag.
func (c *Client) StringEvaluation(ctx context.Context, flag string, defaultValue string, opts ...feature.EvaluationOption) feature.Evaluation[string] {
	return evaluate(ctx, c, flag, defaultValue, feature.Provider.ResolveString, opts)
}

// IntValue returns the resolved value or defaultValue on any failure.
func (c *Client) IntValue(ctx context.Context, flag string, defaultValue int64, opts ...feature.EvaluationOption) int64 {
	return c.IntEvaluation(ctx, flag, defaultValue, opts...).Value
}

// IntEvaluation returns the full evaluation of an integer flag.
func (c *Client) IntEvaluation(ctx context.Context, flag string, defaultValue int64, opts ...feature.EvaluationOption) feature.Evaluation[int64] {
	return evaluate(ctx, c, flag, defaultValue, feature.Provider.ResolveInt, opts)
}

// FloatValue returns the resolved value or defaultValue on any failure.
func (c *Client) FloatValue(ctx context.Context, flag string, defaultValue float64, opts ...feature.EvaluationOption) float64 {
	return c.FloatEvaluation(ctx, flag, defaultValue, opts...).Value
}

// FloatEvaluation returns the full evaluation of a float flag.
func (c *Client) FloatEvaluation(ctx context.Context, flag string, defaultValue float64, opts ...feature.EvaluationOption) feature.Evaluation[float64] {
	return evaluate(ctx, c, flag, defaultValue, feature.Provider.ResolveFloat, opts)
}

func (c *Client) snapshot() (*feature.EvaluationContext, []feature.Hook) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evalCtx, append([]feature.Hook(nil), c.hooks...)
}

func appendHooks(dst []feature.Hook, hooks []feature.Hook) []feature.Hook {
	for _, hook := range hooks {
		if hook != nil {
			dst = append(dst, hook)
		}
	}
	return dst
}

var _ feature.Evaluator = (*Client)(nil)
