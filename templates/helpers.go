package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/logger"
	"github.com/goliatone/go-openfeature/scope"
)

const (
	TemplateContextKey           = "feature_ctx"
	TemplateEvaluationContextKey = "feature_context"
	TemplateSnapshotKey          = "feature_snapshot"

	targetingKeyField = "targeting_key"
)

// HelperConfig configures template helpers.
type HelperConfig struct {
	ContextKey             string
	EvaluationContextKey   string
	SnapshotKey            string
	EnableStructuredErrors bool
	EnableErrorLogging     bool
	Logger                 logger.Logger
}

// HelperOption configures template helpers.
type HelperOption func(*HelperConfig)

// DefaultHelperConfig returns the default helper configuration.
func DefaultHelperConfig() HelperConfig {
	return HelperConfig{
		ContextKey:           TemplateContextKey,
		EvaluationContextKey: TemplateEvaluationContextKey,
		SnapshotKey:          TemplateSnapshotKey,
	}
}

// WithContextKey overrides the template key holding a context.Context.
func WithContextKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.ContextKey = strings.TrimSpace(key)
	}
}

// WithEvaluationContextKey overrides the template key holding targeting attributes.
func WithEvaluationContextKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.EvaluationContextKey = strings.TrimSpace(key)
	}
}

// WithSnapshotKey overrides the template snapshot key name.
func WithSnapshotKey(key string) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.SnapshotKey = strings.TrimSpace(key)
	}
}

// WithStructuredErrors makes feature_if and feature_class return a
// TemplateError instead of the fallback when evaluation fails.
func WithStructuredErrors(enabled bool) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.EnableStructuredErrors = enabled
	}
}

// WithErrorLogging toggles error logging for helper failures.
func WithErrorLogging(enabled bool) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.EnableErrorLogging = enabled
	}
}

// WithLogger injects a logger for helper error logging.
func WithLogger(lgr logger.Logger) HelperOption {
	return func(cfg *HelperConfig) {
		if cfg == nil {
			return
		}
		cfg.Logger = lgr
	}
}

// TemplateHelpers returns a helper set suitable for registering as pongo2
// globals. Flags are evaluated as booleans with a false default.
func TemplateHelpers(evaluator feature.BoolEvaluator, opts ...HelperOption) map[string]any {
	cfg := DefaultHelperConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.EnableErrorLogging && cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	helpers := &helperSet{evaluator: evaluator, cfg: cfg}

	return map[string]any{
		"feature":            helpers.feature,
		"feature_any":        helpers.featureAny,
		"feature_all":        helpers.featureAll,
		"feature_none":       helpers.featureNone,
		"feature_if":         helpers.featureIf,
		"feature_class":      helpers.featureClass,
		"feature_evaluation": helpers.featureEvaluation,
	}
}

type helperSet struct {
	evaluator feature.BoolEvaluator
	cfg       HelperConfig
}

func (h *helperSet) feature(execCtx *pongo2.ExecutionContext, flag any) bool {
	key, ok := parseKey(flag)
	if !ok {
		return false
	}
	eval := h.evaluate(execCtx, key)
	return !eval.Failed() && eval.Value
}

func (h *helperSet) featureAny(execCtx *pongo2.ExecutionContext, flags ...any) bool {
	for _, key := range parseKeys(flags...) {
		if eval := h.evaluate(execCtx, key); !eval.Failed() && eval.Value {
			return true
		}
	}
	return false
}

func (h *helperSet) featureAll(execCtx *pongo2.ExecutionContext, flags ...any) bool {
	keys := parseKeys(flags...)
	if len(keys) == 0 {
		return false
	}
	for _, key := range keys {
		if eval := h.evaluate(execCtx, key); eval.Failed() || !eval.Value {
			return false
		}
	}
	return true
}

func (h *helperSet) featureNone(execCtx *pongo2.ExecutionContext, flags ...any) bool {
	keys := parseKeys(flags...)
	if len(keys) == 0 {
		return false
	}
	for _, key := range keys {
		if eval := h.evaluate(execCtx, key); !eval.Failed() && eval.Value {
			return false
		}
	}
	return true
}

func (h *helperSet) featureIf(execCtx *pongo2.ExecutionContext, flag any, whenTrue any, whenFalse ...any) any {
	return h.choose("feature_if", execCtx, flag, whenTrue, whenFalse)
}

func (h *helperSet) featureClass(execCtx *pongo2.ExecutionContext, flag any, on any, off ...any) any {
	return h.choose("feature_class", execCtx, flag, on, off)
}

func (h *helperSet) choose(helper string, execCtx *pongo2.ExecutionContext, flag any, on any, off []any) any {
	var fallback any = ""
	if len(off) > 0 {
		fallback = off[0]
	}
	key, ok := parseKey(flag)
	if !ok {
		return h.errorOrFallback(helper, ferrors.WrapSentinel(ferrors.ErrValueInvalid, "flag key is required", map[string]any{
			ferrors.MetaFlag: flag,
		}), fallback)
	}
	eval := h.evaluate(execCtx, key)
	if eval.Failed() {
		return h.errorOrFallback(helper, *eval.Error, fallback)
	}
	if eval.Value {
		return on
	}
	return fallback
}

// featureEvaluation exposes the full evaluation details to templates.
func (h *helperSet) featureEvaluation(execCtx *pongo2.ExecutionContext, flag any) any {
	key, ok := parseKey(flag)
	if !ok {
		return h.errorOrFallback("feature_evaluation", ferrors.WrapSentinel(ferrors.ErrValueInvalid, "flag key is required", map[string]any{
			ferrors.MetaFlag: flag,
		}), nil)
	}
	return h.evaluate(execCtx, key)
}

func (h *helperSet) evaluate(execCtx *pongo2.ExecutionContext, key string) feature.Evaluation[bool] {
	data := templateData(execCtx)
	if value, ok := snapshotValue(lookup(data, h.cfg.SnapshotKey, TemplateSnapshotKey), key); ok {
		return feature.Evaluation[bool]{Flag: key, Value: value, Reason: feature.ReasonStatic}
	}
	if h.evaluator == nil {
		return feature.FailedEvaluation(key, false,
			feature.NewResolutionError(feature.ErrorProviderNotReady, ferrors.ErrEvaluatorRequired.Error()))
	}
	ctx := contextFromValue(lookup(data, h.cfg.ContextKey, TemplateContextKey))
	var opts []feature.EvaluationOption
	if ec, ok := evaluationContextFromValue(lookup(data, h.cfg.EvaluationContextKey, TemplateEvaluationContextKey)); ok {
		opts = append(opts, feature.WithContext(ec))
	}
	return h.evaluator.BoolEvaluation(ctx, key, false, opts...)
}

func (h *helperSet) errorOrFallback(helper string, err error, fallback any) any {
	if h.cfg.EnableErrorLogging {
		h.logHelperError(helper, err)
	}
	if h.cfg.EnableStructuredErrors {
		return templateError(helper, err)
	}
	return fallback
}

func (h *helperSet) logHelperError(helper string, err error) {
	if h == nil || h.cfg.Logger == nil {
		return
	}
	args := []any{
		"helper", helper,
		"error", err,
	}
	if rich, ok := ferrors.As(err); ok {
		args = append(args,
			"category", rich.Category,
			"text_code", rich.TextCode,
			"metadata", rich.Metadata,
		)
	}
	h.cfg.Logger.Error("openfeature.helper_error", args...)
}

// TemplateError provides structured helper error output.
type TemplateError struct {
	Helper   string         `json:"helper"`
	Type     string         `json:"type,omitempty"`
	Message  string         `json:"message,omitempty"`
	Category string         `json:"category,omitempty"`
	TextCode string         `json:"text_code,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func templateError(helper string, err error) TemplateError {
	out := TemplateError{Helper: helper}
	if err == nil {
		return out
	}
	if resErr, ok := feature.AsResolutionError(err); ok {
		out.Type = string(resErr.Code)
		out.Message = resErr.Message
		return out
	}
	if rich, ok := ferrors.As(err); ok {
		out.Message = rich.Message
		out.Category = rich.Category.String()
		out.TextCode = rich.TextCode
		if len(rich.Metadata) > 0 {
			out.Metadata = rich.Metadata
		}
		out.Type = out.TextCode
		if out.Type == "" {
			out.Type = out.Category
		}
		return out
	}
	out.Message = err.Error()
	out.Type = "error"
	return out
}

func lookup(data map[string]any, key, fallback string) any {
	if data == nil {
		return nil
	}
	if key == "" {
		key = fallback
	}
	return data[key]
}

func snapshotValue(snapshot any, key string) (bool, bool) {
	switch typed := snapshot.(type) {
	case map[string]bool:
		value, ok := typed[key]
		return value, ok
	case map[string]feature.Evaluation[bool]:
		eval, ok := typed[key]
		if !ok || eval.Failed() {
			return false, false
		}
		return eval.Value, true
	case map[string]any:
		if value, ok := typed[key]; ok {
			return boolFromValue(value)
		}
		if value, ok := lookupNestedValue(typed, key); ok {
			return boolFromValue(value)
		}
	}
	return false, false
}

func boolFromValue(value any) (bool, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case *bool:
		if typed == nil {
			return false, false
		}
		return *typed, true
	default:
		return false, false
	}
}

func lookupNestedValue(snapshot map[string]any, key string) (any, bool) {
	parts := splitPath(key)
	if len(parts) == 0 {
		return nil, false
	}
	var current any = snapshot
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok := m[part]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

func parseKey(value any) (string, bool) {
	switch typed := unwrapValue(value).(type) {
	case string:
		key := feature.NormalizeKey(typed)
		return key, key != ""
	case fmt.Stringer:
		key := feature.NormalizeKey(typed.String())
		return key, key != ""
	default:
		return "", false
	}
}

func parseKeys(values ...any) []string {
	keys := make([]string, 0, len(values))
	for _, value := range values {
		for _, item := range flattenKeys(value) {
			if key, ok := parseKey(item); ok {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

func flattenKeys(value any) []any {
	switch typed := unwrapValue(value).(type) {
	case []string:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, item)
		}
		return out
	case []any:
		return typed
	default:
		return []any{typed}
	}
}

func unwrapValue(value any) any {
	if pv, ok := value.(*pongo2.Value); ok && pv != nil {
		return pv.Interface()
	}
	return value
}

func contextFromValue(value any) context.Context {
	switch typed := value.(type) {
	case context.Context:
		return typed
	case interface{ Context() context.Context }:
		return typed.Context()
	default:
		return context.Background()
	}
}

// evaluationContextFromValue accepts an EvaluationContext, a scope.Set, or
// an attribute map whose "targeting_key" entry becomes the targeting key.
func evaluationContextFromValue(value any) (feature.EvaluationContext, bool) {
	switch typed := value.(type) {
	case feature.EvaluationContext:
		return typed, true
	case *feature.EvaluationContext:
		if typed == nil {
			return feature.EvaluationContext{}, false
		}
		return *typed, true
	case scope.Set:
		return scopeContext(typed)
	case map[string]string:
		raw := make(map[string]any, len(typed))
		for key, val := range typed {
			raw[key] = val
		}
		return contextFromMap(raw)
	case map[string]any:
		return contextFromMap(typed)
	default:
		return feature.EvaluationContext{}, false
	}
}

func scopeContext(set scope.Set) (feature.EvaluationContext, bool) {
	if set.IsZero() {
		return feature.EvaluationContext{}, false
	}
	ec := feature.NewEvaluationContext(set.UserID, nil)
	if set.TenantID != "" {
		ec.SetField(scope.MetadataTenantID, feature.StringField(set.TenantID))
	}
	if set.OrgID != "" {
		ec.SetField(scope.MetadataOrgID, feature.StringField(set.OrgID))
	}
	if set.UserID != "" {
		ec.SetField(scope.MetadataUserID, feature.StringField(set.UserID))
	}
	return ec, true
}

func contextFromMap(data map[string]any) (feature.EvaluationContext, bool) {
	if len(data) == 0 {
		return feature.EvaluationContext{}, false
	}
	ec := feature.EvaluationContext{}
	for key, value := range data {
		if key == targetingKeyField {
			if text, ok := value.(string); ok {
				ec.TargetingKey = strings.TrimSpace(text)
			}
			continue
		}
		ec.SetField(key, feature.NewFieldValue(value))
	}
	return ec, !ec.IsZero()
}

func templateData(execCtx *pongo2.ExecutionContext) map[string]any {
	if execCtx == nil || execCtx.Public == nil {
		return nil
	}
	return map[string]any(execCtx.Public)
}

func splitPath(path string) []string {
	parts := strings.Split(strings.TrimSpace(path), ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
