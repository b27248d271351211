package routeradapter

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/scope"
)

// routerContext aliases router.Context so the embedded field name does not
// collide with the Context method below.
type routerContext = router.Context

type requestContext struct {
	routerContext
	ctx context.Context
}

func (r requestContext) Context() context.Context { return r.ctx }

func TestRouterContextCarriesAmbientScope(t *testing.T) {
	ctx := scope.WithTargetingKey(context.Background(), "user-1")
	ctx = scope.WithTenantID(ctx, "tenant-1")
	ctx = scope.WithOrgID(ctx, "org-1")
	rc := requestContext{ctx: ctx}

	if Context(rc) != ctx {
		t.Fatalf("expected request context to be returned")
	}
	set := ScopeSet(rc)
	if set.TenantID != "tenant-1" || set.OrgID != "org-1" || set.UserID != "user-1" {
		t.Fatalf("ScopeSet() = %+v", set)
	}

	req := feature.NewEvaluationRequest(WithRouterContext(rc))
	if req.Context.TargetingKey != "user-1" {
		t.Fatalf("TargetingKey = %q, want user-1", req.Context.TargetingKey)
	}
	if tenant, _ := req.Context.Field(scope.MetadataTenantID); tenant.String() != "tenant-1" {
		t.Fatalf("tenant = %v, want tenant-1", tenant)
	}
}

func TestNilRouterContext(t *testing.T) {
	if Context(nil) == nil {
		t.Fatalf("expected background context")
	}
	if ec := EvaluationContext(nil); !ec.IsZero() {
		t.Fatalf("EvaluationContext(nil) = %+v, want empty", ec)
	}
	if set := ScopeSet(nil); !set.IsZero() {
		t.Fatalf("ScopeSet(nil) = %+v, want empty", set)
	}
}
