package scope

import (
	"context"
	"testing"

	"github.com/goliatone/go-openfeature/feature"
)

func TestScopeHelpersNoopAndClear(t *testing.T) {
	ctx := context.Background()
	ctx = WithTenantID(ctx, "  acme ")
	ctx = WithOrgID(ctx, " engineering ")
	ctx = WithUserID(ctx, " user-123 ")

	if got := TenantID(ctx); got != "acme" {
		t.Fatalf("TenantID() = %q, want %q", got, "acme")
	}
	if got := OrgID(ctx); got != "engineering" {
		t.Fatalf("OrgID() = %q, want %q", got, "engineering")
	}
	if got := UserID(ctx); got != "user-123" {
		t.Fatalf("UserID() = %q, want %q", got, "user-123")
	}

	ctx = WithTenantID(ctx, " ")
	ctx = WithOrgID(ctx, "")
	ctx = WithUserID(ctx, "\n\t")

	if got := TenantID(ctx); got != "acme" {
		t.Fatalf("TenantID() after no-op = %q, want %q", got, "acme")
	}
	if got := OrgID(ctx); got != "engineering" {
		t.Fatalf("OrgID() after no-op = %q, want %q", got, "engineering")
	}
	if got := UserID(ctx); got != "user-123" {
		t.Fatalf("UserID() after no-op = %q, want %q", got, "user-123")
	}

	ctx = ClearTenantID(ctx)
	ctx = ClearOrgID(ctx)
	ctx = ClearUserID(ctx)

	if got := TenantID(ctx); got != "" {
		t.Fatalf("TenantID() after clear = %q, want empty", got)
	}
	if got := OrgID(ctx); got != "" {
		t.Fatalf("OrgID() after clear = %q, want empty", got)
	}
	if got := UserID(ctx); got != "" {
		t.Fatalf("UserID() after clear = %q, want empty", got)
	}
}

func TestMergeEvaluationContextOverlaysParent(t *testing.T) {
	parent := WithEvaluationContext(context.Background(), feature.NewEvaluationContext("user-1", map[string]feature.FieldValue{
		"plan":   feature.StringField("free"),
		"region": feature.StringField("eu"),
	}))
	child := MergeEvaluationContext(parent, feature.NewEvaluationContext("", map[string]feature.FieldValue{
		"plan": feature.StringField("pro"),
	}))

	got, ok := EvaluationContext(child)
	if !ok {
		t.Fatalf("expected ambient context on child")
	}
	if got.TargetingKey != "user-1" {
		t.Fatalf("TargetingKey = %q, want user-1", got.TargetingKey)
	}
	if plan, _ := got.Field("plan"); plan.String() != "pro" {
		t.Fatalf("plan = %q, want pro", plan.String())
	}
	if region, _ := got.Field("region"); region.String() != "eu" {
		t.Fatalf("region = %q, want eu", region.String())
	}

	parentCtx, _ := EvaluationContext(parent)
	if plan, _ := parentCtx.Field("plan"); plan.String() != "free" {
		t.Fatalf("parent plan mutated to %q", plan.String())
	}
}

func TestEvaluationContextReturnsCopy(t *testing.T) {
	ctx := WithTargetingKey(context.Background(), "user-1")
	ec, _ := EvaluationContext(ctx)
	ec.SetField("leak", feature.BoolField(true))

	again, _ := EvaluationContext(ctx)
	if _, ok := again.Field("leak"); ok {
		t.Fatalf("ambient context was mutated through a returned copy")
	}
}

func TestClearDropsAmbientContext(t *testing.T) {
	ctx := WithTargetingKey(context.Background(), "user-1")
	ctx = Clear(ctx)
	if _, ok := EvaluationContext(ctx); ok {
		t.Fatalf("expected no ambient context after Clear")
	}
	if got := TargetingKey(ctx); got != "" {
		t.Fatalf("TargetingKey() after Clear = %q, want empty", got)
	}
}

func TestFromEvaluationContextFallsBackToTargetingKey(t *testing.T) {
	ec := feature.NewEvaluationContext("user-9", map[string]feature.FieldValue{
		MetadataTenantID: feature.StringField("acme"),
	})
	got := FromEvaluationContext(ec)
	want := Set{TenantID: "acme", UserID: "user-9"}
	if got != want {
		t.Fatalf("FromEvaluationContext() = %+v, want %+v", got, want)
	}
}

func TestFromContextNil(t *testing.T) {
	var ctx context.Context
	got := FromContext(ctx)
	if !got.IsZero() {
		t.Fatalf("FromContext(nil) = %+v, want empty Set", got)
	}
}
