package oteladapter

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-openfeature/feature"
)

const (
	// EventName is the span event added for successful evaluations.
	EventName = "feature_flag"

	AttrFlagKey      = attribute.Key("feature_flag.key")
	AttrProviderName = attribute.Key("feature_flag.provider_name")
	AttrVariant      = attribute.Key("feature_flag.variant")
	AttrErrorType    = attribute.Key("error.type")
)

// Option customizes the tracing hook.
type Option func(*Hook)

// WithSpanStatusOnError marks the active span as failed when an evaluation errors.
func WithSpanStatusOnError(enabled bool) Option {
	return func(h *Hook) {
		if h == nil {
			return
		}
		h.setStatusOnError = enabled
	}
}

// Hook records flag evaluations on the span active in the evaluation context.
// Evaluations without a recording span are ignored.
type Hook struct {
	feature.BaseHook
	setStatusOnError bool
}

// New builds a tracing hook.
func New(opts ...Option) *Hook {
	h := &Hook{}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// AfterSuccessfulEvaluation implements feature.Hook.
func (h *Hook) AfterSuccessfulEvaluation(ctx context.Context, hookCtx feature.HookContext, eval feature.Evaluation[any], _ feature.HookHints) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	attrs := baseAttributes(hookCtx)
	if eval.Variant != "" {
		attrs = append(attrs, AttrVariant.String(eval.Variant))
	}
	span.AddEvent(EventName, trace.WithAttributes(attrs...))
	return nil
}

// OnError implements feature.Hook.
func (h *Hook) OnError(ctx context.Context, hookCtx feature.HookContext, err error, _ feature.HookHints) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	attrs := append(baseAttributes(hookCtx), AttrErrorType.String(errorType(err)))
	span.RecordError(err, trace.WithAttributes(attrs...))

	if h != nil && h.setStatusOnError {
		span.SetStatus(codes.Error, fmt.Sprintf("Error evaluating flag %q of type %q.", hookCtx.Flag, fmt.Sprintf("%T", hookCtx.DefaultValue)))
	}
}

func baseAttributes(hookCtx feature.HookContext) []attribute.KeyValue {
	attrs := []attribute.KeyValue{AttrFlagKey.String(hookCtx.Flag)}
	if hookCtx.ProviderMetadata != nil {
		attrs = append(attrs, AttrProviderName.String(hookCtx.ProviderMetadata.Name))
	}
	return attrs
}

func errorType(err error) string {
	if resErr, ok := feature.AsResolutionError(err); ok {
		return strings.ToLower(string(resErr.Code))
	}
	return "general"
}

var _ feature.Hook = (*Hook)(nil)
