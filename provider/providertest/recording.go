// Package providertest offers provider doubles for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/goliatone/go-openfeature/feature"
)

// Request records one resolution call.
type Request struct {
	Type              feature.FlagType
	Flag              string
	DefaultValue      any
	EvaluationContext feature.EvaluationContext
}

// RecordingProvider records every resolution and returns the default value.
type RecordingProvider struct {
	Name string

	mu       sync.Mutex
	requests []Request
	hooks    []feature.Hook
}

// NewRecording constructs a RecordingProvider declaring hooks.
func NewRecording(name string, hooks ...feature.Hook) *RecordingProvider {
	return &RecordingProvider{Name: name, hooks: hooks}
}

// Metadata implements feature.Provider.
func (p *RecordingProvider) Metadata() feature.ProviderMetadata {
	return feature.NewProviderMetadata(p.Name, nil)
}

// Hooks implements feature.HookProvider.
func (p *RecordingProvider) Hooks() []feature.Hook {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]feature.Hook(nil), p.hooks...)
}

// Requests returns a copy of the recorded requests.
func (p *RecordingProvider) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Request(nil), p.requests...)
}

// Last returns the most recent request.
func (p *RecordingProvider) Last() (Request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return Request{}, false
	}
	return p.requests[len(p.requests)-1], true
}

func (p *RecordingProvider) ResolveBool(_ context.Context, flag string, defaultValue bool, evalCtx feature.EvaluationContext) feature.Resolution[bool] {
	p.record(flag, defaultValue, evalCtx)
	return feature.Resolution[bool]{Value: defaultValue, Reason: feature.ReasonDefault}
}

func (p *RecordingProvider) ResolveString(_ context.Context, flag string, defaultValue string, evalCtx feature.EvaluationContext) feature.Resolution[string] {
	p.record(flag, defaultValue, evalCtx)
	return feature.Resolution[string]{Value: defaultValue, Reason: feature.ReasonDefault}
}

func (p *RecordingProvider) ResolveInt(_ context.Context, flag string, defaultValue int64, evalCtx feature.EvaluationContext) feature.Resolution[int64] {
	p.record(flag, defaultValue, evalCtx)
	return feature.Resolution[int64]{Value: defaultValue, Reason: feature.ReasonDefault}
}

func (p *RecordingProvider) ResolveFloat(_ context.Context, flag string, defaultValue float64, evalCtx feature.EvaluationContext) feature.Resolution[float64] {
	p.record(flag, defaultValue, evalCtx)
	return feature.Resolution[float64]{Value: defaultValue, Reason: feature.ReasonDefault}
}

func (p *RecordingProvider) record(flag string, defaultValue any, evalCtx feature.EvaluationContext) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, Request{
		Type:              feature.TypeOf(defaultValue),
		Flag:              flag,
		DefaultValue:      defaultValue,
		EvaluationContext: evalCtx.Clone(),
	})
}

var _ feature.HookProvider = (*RecordingProvider)(nil)
