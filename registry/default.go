package registry

import (
	"github.com/goliatone/go-openfeature/client"
	"github.com/goliatone/go-openfeature/feature"
)

var defaultSystem = New()

// Default returns the process-wide System.
func Default() *System { return defaultSystem }

// Provider returns the default System's provider.
func Provider() feature.Provider { return defaultSystem.Provider() }

// SetProvider replaces the default System's provider.
func SetProvider(p feature.Provider) { defaultSystem.SetProvider(p) }

// Bootstrap installs the default System's provider once.
func Bootstrap(p feature.Provider) error { return defaultSystem.Bootstrap(p) }

// EvaluationContext returns the default System's global context.
func EvaluationContext() *feature.EvaluationContext { return defaultSystem.EvaluationContext() }

// SetEvaluationContext replaces the default System's global context.
func SetEvaluationContext(ec *feature.EvaluationContext) { defaultSystem.SetEvaluationContext(ec) }

// Hooks returns the default System's global hooks.
func Hooks() []feature.Hook { return defaultSystem.Hooks() }

// AddHooks appends global hooks to the default System.
func AddHooks(hooks ...feature.Hook) { defaultSystem.AddHooks(hooks...) }

// RemoveAllHooks drops the default System's global hooks.
func RemoveAllHooks() { defaultSystem.RemoveAllHooks() }

// NewClient builds a client bound to the default System.
func NewClient(opts ...client.Option) *client.Client { return defaultSystem.NewClient(opts...) }
