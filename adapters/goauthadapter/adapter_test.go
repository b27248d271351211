package goauthadapter

import (
	"context"
	"testing"

	"github.com/goliatone/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/scope"
)

func staticActor(actor *auth.ActorContext) ActorExtractor {
	return func(context.Context) (*auth.ActorContext, bool) {
		return actor, actor != nil
	}
}

func TestHookFillsMissingFields(t *testing.T) {
	hook := NewHook(WithActorExtractor(staticActor(&auth.ActorContext{
		ActorID:        "user-1",
		TenantID:       "tenant-1",
		OrganizationID: "org-1",
		Role:           "admin",
	})))
	hookCtx := &feature.HookContext{
		Flag: "checkout.v2",
		EvaluationContext: feature.NewEvaluationContext("", map[string]feature.FieldValue{
			FieldRole: feature.StringField("viewer"),
		}),
	}

	require.NoError(t, hook.BeforeEvaluation(context.Background(), hookCtx, nil))

	ec := hookCtx.EvaluationContext
	assert.Equal(t, "user-1", ec.TargetingKey)
	role, _ := ec.Field(FieldRole)
	assert.Equal(t, "viewer", role.String())
	set := scope.FromEvaluationContext(ec)
	assert.Equal(t, scope.Set{TenantID: "tenant-1", OrgID: "org-1", UserID: "user-1"}, set)
}

func TestHookKeepsExistingTargetingKey(t *testing.T) {
	hook := NewHook(WithActorExtractor(staticActor(&auth.ActorContext{Subject: "subject-1"})))
	hookCtx := &feature.HookContext{EvaluationContext: feature.NewEvaluationContext("explicit", nil)}

	require.NoError(t, hook.BeforeEvaluation(context.Background(), hookCtx, nil))
	assert.Equal(t, "explicit", hookCtx.EvaluationContext.TargetingKey)

	overwrite := NewHook(WithOverwrite(true), WithActorExtractor(staticActor(&auth.ActorContext{Subject: "subject-1"})))
	require.NoError(t, overwrite.BeforeEvaluation(context.Background(), hookCtx, nil))
	assert.Equal(t, "subject-1", hookCtx.EvaluationContext.TargetingKey)
}

func TestHookWithoutActor(t *testing.T) {
	hook := NewHook(WithActorExtractor(staticActor(nil)))
	hookCtx := &feature.HookContext{}

	require.NoError(t, hook.BeforeEvaluation(context.Background(), hookCtx, nil))
	assert.True(t, hookCtx.EvaluationContext.IsZero())
	assert.True(t, ScopeFromActor(nil).IsZero())
}
