package feature

import "context"

// EvaluationOption mutates an evaluation request.
type EvaluationOption func(*EvaluationRequest)

// EvaluationRequest captures the invocation layer of an evaluation.
type EvaluationRequest struct {
	Context EvaluationContext
	Hooks   []Hook
	Hints   HookHints
}

// NewEvaluationRequest applies opts to an empty request.
func NewEvaluationRequest(opts ...EvaluationOption) EvaluationRequest {
	req := EvaluationRequest{}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

// WithContext overlays an invocation evaluation context. Repeated use merges.
func WithContext(ec EvaluationContext) EvaluationOption {
	return func(req *EvaluationRequest) {
		if req == nil {
			return
		}
		req.Context.Overlay(ec)
	}
}

// WithHooks appends invocation hooks.
func WithHooks(hooks ...Hook) EvaluationOption {
	return func(req *EvaluationRequest) {
		if req == nil {
			return
		}
		for _, hook := range hooks {
			if hook != nil {
				req.Hooks = append(req.Hooks, hook)
			}
		}
	}
}

// WithHints sets hook hints for the evaluation.
func WithHints(hints HookHints) EvaluationOption {
	return func(req *EvaluationRequest) {
		if req == nil {
			return
		}
		if req.Hints == nil {
			req.Hints = make(HookHints, len(hints))
		}
		for key, value := range hints {
			req.Hints[key] = value
		}
	}
}

// BoolEvaluator evaluates boolean flags.
type BoolEvaluator interface {
	BoolValue(ctx context.Context, flag string, defaultValue bool, opts ...EvaluationOption) bool
	BoolEvaluation(ctx context.Context, flag string, defaultValue bool, opts ...EvaluationOption) Evaluation[bool]
}

// Evaluator evaluates flags of every supported type.
type Evaluator interface {
	BoolEvaluator
	StringValue(ctx context.Context, flag string, defaultValue string, opts ...EvaluationOption) string
	StringEvaluation(ctx context.Context, flag string, defaultValue string, opts ...EvaluationOption) Evaluation[string]
	IntValue(ctx context.Context, flag string, defaultValue int64, opts ...EvaluationOption) int64
	IntEvaluation(ctx context.Context, flag string, defaultValue int64, opts ...EvaluationOption) Evaluation[int64]
	FloatValue(ctx context.Context, flag string, defaultValue float64, opts ...EvaluationOption) float64
	FloatEvaluation(ctx context.Context, flag string, defaultValue float64, opts ...EvaluationOption) Evaluation[float64]
}
