package provider

import (
	"context"

	"github.com/goliatone/go-openfeature/feature"
)

// ReasonNoop marks values returned by NoopProvider.
const ReasonNoop feature.Reason = "No-op"

// NoopProvider returns every default unchanged.
type NoopProvider struct{}

// NewNoop returns a NoopProvider.
func NewNoop() NoopProvider { return NoopProvider{} }

// Metadata implements feature.Provider.
func (NoopProvider) Metadata() feature.ProviderMetadata {
	return feature.NewProviderMetadata("No-op Provider", nil)
}

func (NoopProvider) ResolveBool(_ context.Context, _ string, defaultValue bool, _ feature.EvaluationContext) feature.Resolution[bool] {
	return feature.Resolution[bool]{Value: defaultValue, Reason: ReasonNoop}
}

func (NoopProvider) ResolveString(_ context.Context, _ string, defaultValue string, _ feature.EvaluationContext) feature.Resolution[string] {
	return feature.Resolution[string]{Value: defaultValue, Reason: ReasonNoop}
}

func (NoopProvider) ResolveInt(_ context.Context, _ string, defaultValue int64, _ feature.EvaluationContext) feature.Resolution[int64] {
	return feature.Resolution[int64]{Value: defaultValue, Reason: ReasonNoop}
}

func (NoopProvider) ResolveFloat(_ context.Context, _ string, defaultValue float64, _ feature.EvaluationContext) feature.Resolution[float64] {
	return feature.Resolution[float64]{Value: defaultValue, Reason: ReasonNoop}
}

// Run implements feature.Runner. It returns when ctx is cancelled.
func (NoopProvider) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

var (
	_ feature.Provider = NoopProvider{}
	_ feature.Runner   = NoopProvider{}
)
