package templates

import (
	"context"
	"testing"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-openfeature/feature"
)

type captureEvaluator struct {
	values  map[string]bool
	failing map[string]feature.ErrorCode
	calls   int
	lastKey string
	lastCtx context.Context
	lastEC  feature.EvaluationContext
}

func (e *captureEvaluator) BoolValue(ctx context.Context, flag string, def bool, opts ...feature.EvaluationOption) bool {
	return e.BoolEvaluation(ctx, flag, def, opts...).Value
}

func (e *captureEvaluator) BoolEvaluation(ctx context.Context, flag string, def bool, opts ...feature.EvaluationOption) feature.Evaluation[bool] {
	e.calls++
	e.lastKey = flag
	e.lastCtx = ctx
	e.lastEC = feature.NewEvaluationRequest(opts...).Context
	if code, ok := e.failing[flag]; ok {
		return feature.FailedEvaluation(flag, def, feature.NewResolutionError(code, "boom"))
	}
	return feature.Evaluation[bool]{Flag: flag, Value: e.values[flag], Reason: feature.ReasonStatic}
}

func featureFn(t *testing.T, helpers map[string]any) func(*pongo2.ExecutionContext, any) bool {
	t.Helper()
	fn, ok := helpers["feature"].(func(*pongo2.ExecutionContext, any) bool)
	if !ok {
		t.Fatalf("feature helper not found")
	}
	return fn
}

func TestTemplateHelpersEvaluationContext(t *testing.T) {
	stub := &captureEvaluator{values: map[string]bool{"users.signup": true}}
	fn := featureFn(t, TemplateHelpers(stub))

	type ctxKey struct{}
	reqCtx := context.WithValue(context.Background(), ctxKey{}, "request")
	execCtx := &pongo2.ExecutionContext{
		Public: pongo2.Context{
			TemplateContextKey: reqCtx,
			TemplateEvaluationContextKey: map[string]any{
				"targeting_key": "user-1",
				"tenant_id":     "tenant-1",
				"beta":          true,
			},
		},
	}

	if !fn(execCtx, "users.signup") {
		t.Fatalf("expected feature helper to return true")
	}
	if stub.lastCtx.Value(ctxKey{}) != "request" {
		t.Fatalf("expected template context.Context to be forwarded")
	}
	if stub.lastEC.TargetingKey != "user-1" {
		t.Fatalf("TargetingKey = %q, want user-1", stub.lastEC.TargetingKey)
	}
	if tenant, _ := stub.lastEC.Field("tenant_id"); tenant.String() != "tenant-1" {
		t.Fatalf("tenant_id = %v", tenant)
	}
	if beta, _ := stub.lastEC.Field("beta"); beta.Kind() != feature.FieldKindBool {
		t.Fatalf("beta kind = %v, want bool", beta.Kind())
	}
}

func TestTemplateHelpersSnapshotPrecedence(t *testing.T) {
	stub := &captureEvaluator{}
	fn := featureFn(t, TemplateHelpers(stub))
	execCtx := &pongo2.ExecutionContext{
		Public: pongo2.Context{
			TemplateSnapshotKey: map[string]any{
				"users": map[string]any{"signup": true},
			},
		},
	}

	if !fn(execCtx, "users.signup") {
		t.Fatalf("expected snapshot value to be used")
	}
	if stub.calls != 0 {
		t.Fatalf("expected evaluator not to be called when snapshot contains key")
	}
}

func TestTemplateHelpersErrorFallback(t *testing.T) {
	stub := &captureEvaluator{failing: map[string]feature.ErrorCode{"users.signup": feature.ErrorGeneral}}
	helpers := TemplateHelpers(stub)
	fn, ok := helpers["feature_if"].(func(*pongo2.ExecutionContext, any, any, ...any) any)
	if !ok {
		t.Fatalf("feature_if helper not found")
	}

	if value := fn(&pongo2.ExecutionContext{}, "users.signup", "on", "off"); value != "off" {
		t.Fatalf("expected fallback value, got %v", value)
	}
}

func TestTemplateHelpersStructuredErrors(t *testing.T) {
	stub := &captureEvaluator{failing: map[string]feature.ErrorCode{"users.signup": feature.ErrorFlagNotFound}}
	helpers := TemplateHelpers(stub, WithStructuredErrors(true))
	fn := helpers["feature_class"].(func(*pongo2.ExecutionContext, any, any, ...any) any)

	value := fn(nil, "users.signup", "is-on")
	tplErr, ok := value.(TemplateError)
	if !ok {
		t.Fatalf("expected TemplateError, got %T", value)
	}
	if tplErr.Helper != "feature_class" || tplErr.Type != string(feature.ErrorFlagNotFound) {
		t.Fatalf("unexpected template error: %+v", tplErr)
	}

	value = fn(nil, "  ", "is-on")
	if tplErr, ok := value.(TemplateError); !ok || tplErr.TextCode == "" {
		t.Fatalf("expected structured error for blank key, got %+v", value)
	}
}

func TestTemplateHelpersCombinators(t *testing.T) {
	stub := &captureEvaluator{
		values:  map[string]bool{"a": true, "b": false},
		failing: map[string]feature.ErrorCode{"c": feature.ErrorGeneral},
	}
	helpers := TemplateHelpers(stub)
	anyFn := helpers["feature_any"].(func(*pongo2.ExecutionContext, ...any) bool)
	allFn := helpers["feature_all"].(func(*pongo2.ExecutionContext, ...any) bool)
	noneFn := helpers["feature_none"].(func(*pongo2.ExecutionContext, ...any) bool)

	if !anyFn(nil, "b", "a") {
		t.Fatalf("feature_any should be true when one flag is on")
	}
	if allFn(nil, []string{"a", "b"}) {
		t.Fatalf("feature_all should be false when one flag is off")
	}
	if allFn(nil, "a", "c") {
		t.Fatalf("feature_all should treat failed evaluations as off")
	}
	if !noneFn(nil, "b", "c") {
		t.Fatalf("feature_none should be true when no flag is on")
	}
	if anyFn(nil) || allFn(nil) || noneFn(nil) {
		t.Fatalf("combinators with no keys should be false")
	}
}

func TestTemplateHelpersEvaluationDetails(t *testing.T) {
	stub := &captureEvaluator{values: map[string]bool{"a": true}}
	fn := TemplateHelpers(stub)["feature_evaluation"].(func(*pongo2.ExecutionContext, any) any)

	eval, ok := fn(nil, "a").(feature.Evaluation[bool])
	if !ok || !eval.Value || eval.Flag != "a" || eval.Reason != feature.ReasonStatic {
		t.Fatalf("unexpected evaluation: %+v", eval)
	}
}

func TestTemplateHelpersNilEvaluator(t *testing.T) {
	fn := featureFn(t, TemplateHelpers(nil))
	if fn(nil, "a") {
		t.Fatalf("expected false without an evaluator")
	}
}
