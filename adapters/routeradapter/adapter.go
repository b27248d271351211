package routeradapter

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/scope"
)

// Context extracts the standard context from a router context.
func Context(ctx router.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx.Context()
}

// EvaluationContext returns the ambient evaluation context carried by the
// request behind a router context.
func EvaluationContext(ctx router.Context) feature.EvaluationContext {
	ec, _ := scope.EvaluationContext(Context(ctx))
	return ec
}

// ScopeSet derives a scope.Set from a router context.
func ScopeSet(ctx router.Context) scope.Set {
	return scope.FromContext(Context(ctx))
}

// WithRouterContext returns an evaluation option overlaying the router
// request's ambient context as invocation context.
func WithRouterContext(ctx router.Context) feature.EvaluationOption {
	return feature.WithContext(EvaluationContext(ctx))
}
