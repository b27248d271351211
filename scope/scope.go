// Package scope carries the request-scoped evaluation context on a
// context.Context. Evaluations read it automatically between the global
// layer and the client layer.
package scope

import (
	"context"
	"strings"

	"github.com/goliatone/go-openfeature/feature"
)

type contextKey string

const evaluationContextKey contextKey = "openfeature.evaluation_context"

// Field names used for scope identifiers inside an evaluation context.
const (
	MetadataTenantID = "tenant_id"
	MetadataOrgID    = "org_id"
	MetadataUserID   = "user_id"
)

// Set captures the tenant/org/user identifiers of an evaluation.
type Set struct {
	TenantID string
	OrgID    string
	UserID   string
}

// IsZero reports whether no identifier is set.
func (s Set) IsZero() bool {
	return s.TenantID == "" && s.OrgID == "" && s.UserID == ""
}

// WithEvaluationContext replaces the ambient evaluation context.
func WithEvaluationContext(ctx context.Context, ec feature.EvaluationContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, evaluationContextKey, ec.Clone())
}

// MergeEvaluationContext overlays ec onto the ambient evaluation context.
func MergeEvaluationContext(ctx context.Context, ec feature.EvaluationContext) context.Context {
	current, _ := EvaluationContext(ctx)
	return WithEvaluationContext(ctx, current.Merge(ec))
}

// EvaluationContext returns a copy of the ambient evaluation context.
func EvaluationContext(ctx context.Context) (feature.EvaluationContext, bool) {
	if ctx == nil {
		return feature.EvaluationContext{}, false
	}
	ec, ok := ctx.Value(evaluationContextKey).(feature.EvaluationContext)
	if !ok {
		return feature.EvaluationContext{}, false
	}
	return ec.Clone(), true
}

// Clear drops the ambient evaluation context for ctx and its children.
func Clear(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, evaluationContextKey, nil)
}

// WithTargetingKey sets the ambient targeting key. Blank keys are a no-op.
func WithTargetingKey(ctx context.Context, key string) context.Context {
	key = strings.TrimSpace(key)
	if key == "" {
		return ensure(ctx)
	}
	return MergeEvaluationContext(ctx, feature.EvaluationContext{TargetingKey: key})
}

// TargetingKey returns the ambient targeting key.
func TargetingKey(ctx context.Context) string {
	ec, _ := EvaluationContext(ctx)
	return ec.TargetingKey
}

// WithTenantID stores a tenant identifier. Blank ids are a no-op.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return withField(ctx, MetadataTenantID, tenantID)
}

// WithOrgID stores an org identifier. Blank ids are a no-op.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	return withField(ctx, MetadataOrgID, orgID)
}

// WithUserID stores a user identifier. Blank ids are a no-op.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withField(ctx, MetadataUserID, userID)
}

// ClearTenantID removes the tenant identifier.
func ClearTenantID(ctx context.Context) context.Context {
	return withoutField(ctx, MetadataTenantID)
}

// ClearOrgID removes the org identifier.
func ClearOrgID(ctx context.Context) context.Context {
	return withoutField(ctx, MetadataOrgID)
}

// ClearUserID removes the user identifier.
func ClearUserID(ctx context.Context) context.Context {
	return withoutField(ctx, MetadataUserID)
}

func TenantID(ctx context.Context) string {
	ec, _ := EvaluationContext(ctx)
	return stringField(ec, MetadataTenantID)
}

func OrgID(ctx context.Context) string {
	ec, _ := EvaluationContext(ctx)
	return stringField(ec, MetadataOrgID)
}

func UserID(ctx context.Context) string {
	ec, _ := EvaluationContext(ctx)
	return stringField(ec, MetadataUserID)
}

// FromContext builds a Set from the ambient evaluation context.
func FromContext(ctx context.Context) Set {
	ec, _ := EvaluationContext(ctx)
	return FromEvaluationContext(ec)
}

// FromEvaluationContext builds a Set from evaluation context fields. The
// user falls back to the targeting key.
func FromEvaluationContext(ec feature.EvaluationContext) Set {
	set := Set{
		TenantID: stringField(ec, MetadataTenantID),
		OrgID:    stringField(ec, MetadataOrgID),
		UserID:   stringField(ec, MetadataUserID),
	}
	if set.UserID == "" {
		set.UserID = strings.TrimSpace(ec.TargetingKey)
	}
	return set
}

func withField(ctx context.Context, key, value string) context.Context {
	value = strings.TrimSpace(value)
	if value == "" {
		return ensure(ctx)
	}
	return MergeEvaluationContext(ctx, feature.NewEvaluationContext("", map[string]feature.FieldValue{
		key: feature.StringField(value),
	}))
}

func withoutField(ctx context.Context, key string) context.Context {
	ec, ok := EvaluationContext(ctx)
	if !ok {
		return ensure(ctx)
	}
	ec.DeleteField(key)
	return WithEvaluationContext(ctx, ec)
}

func stringField(ec feature.EvaluationContext, key string) string {
	value, ok := ec.Field(key)
	if !ok {
		return ""
	}
	s, ok := value.AsString()
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func ensure(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
