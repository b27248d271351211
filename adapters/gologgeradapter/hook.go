package gologgeradapter

import (
	"context"
	"strings"

	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-openfeature/activity"
	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/scope"
)

// Hook logs flag evaluations, evaluation errors and registry updates using go-logger.
type Hook struct {
	feature.BaseHook
	logger            glog.Logger
	evaluationLevel   string
	errorLevel        string
	updateLevel       string
	evaluationMessage string
	errorMessage      string
	updateMessage     string
}

// Option customizes the logger hook.
type Option func(*Hook)

// New builds a logging hook for evaluation and update events.
func New(logger glog.Logger, opts ...Option) *Hook {
	hook := &Hook{
		logger:            logger,
		evaluationLevel:   "debug",
		errorLevel:        "warn",
		updateLevel:       "info",
		evaluationMessage: "openfeature.evaluation",
		errorMessage:      "openfeature.evaluation_error",
		updateMessage:     "openfeature.update",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hook)
		}
	}
	return hook
}

// WithEvaluationLevel sets the log level for completed evaluations.
func WithEvaluationLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.evaluationLevel = normalizeLevel(level)
	}
}

// WithErrorLevel sets the log level for evaluation errors.
func WithErrorLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.errorLevel = normalizeLevel(level)
	}
}

// WithUpdateLevel sets the log level for registry updates.
func WithUpdateLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.updateLevel = normalizeLevel(level)
	}
}

// WithEvaluationMessage overrides the evaluation log message.
func WithEvaluationMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.evaluationMessage = message
	}
}

// WithErrorMessage overrides the evaluation error log message.
func WithErrorMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.errorMessage = message
	}
}

// WithUpdateMessage overrides the update log message.
func WithUpdateMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.updateMessage = message
	}
}

// OnError implements feature.Hook.
func (h *Hook) OnError(ctx context.Context, hookCtx feature.HookContext, err error, _ feature.HookHints) {
	if h == nil || h.logger == nil {
		return
	}
	fields := hookFields(hookCtx)
	resErr := feature.ToResolutionError(err)
	fields["feature_error_code"] = string(resErr.Code)
	if err != nil {
		fields["feature_error"] = err.Error()
	}
	h.log(ctx, h.errorLevel, h.errorMessage, fields)
}

// AfterEvaluation implements feature.Hook.
func (h *Hook) AfterEvaluation(ctx context.Context, hookCtx feature.HookContext, eval feature.Evaluation[any], _ feature.HookHints) {
	if h == nil || h.logger == nil {
		return
	}
	fields := hookFields(hookCtx)
	fields["feature_value"] = eval.Value
	fields["feature_reason"] = string(eval.Reason)
	if eval.Variant != "" {
		fields["feature_variant"] = eval.Variant
	}
	if eval.Error != nil {
		fields["feature_error_code"] = string(eval.Error.Code)
	}
	h.log(ctx, h.evaluationLevel, h.evaluationMessage, fields)
}

// OnUpdate implements activity.Hook.
func (h *Hook) OnUpdate(ctx context.Context, event activity.UpdateEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"feature_action":     string(event.Action),
		"feature_provider":   event.Provider.Name,
		"feature_hook_count": event.HookCount,
	}
	if event.PreviousProvider.Name != "" {
		fields["feature_previous_provider"] = event.PreviousProvider.Name
	}
	if event.Context != nil {
		fields["feature_targeting_key"] = event.Context.TargetingKey
	}
	h.log(ctx, h.updateLevel, h.updateMessage, fields)
}

func (h *Hook) log(ctx context.Context, level string, message string, fields map[string]any) {
	logger := h.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(glog.FieldsLogger); ok && len(fields) > 0 {
		logger = fieldsLogger.WithFields(fields)
	}
	switch level {
	case "trace":
		logger.Trace(message)
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error", "fatal":
		logger.Error(message)
	default:
		logger.Info(message)
	}
}

func hookFields(hookCtx feature.HookContext) map[string]any {
	fields := map[string]any{
		"feature_flag":          hookCtx.Flag,
		"feature_type":          string(feature.TypeOf(hookCtx.DefaultValue)),
		"feature_targeting_key": hookCtx.EvaluationContext.TargetingKey,
	}
	if hookCtx.ProviderMetadata != nil {
		fields["feature_provider"] = hookCtx.ProviderMetadata.Name
	}
	set := scope.FromEvaluationContext(hookCtx.EvaluationContext)
	if set.TenantID != "" {
		fields[scope.MetadataTenantID] = set.TenantID
	}
	if set.OrgID != "" {
		fields[scope.MetadataOrgID] = set.OrgID
	}
	return fields
}

func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

var _ feature.Hook = (*Hook)(nil)
var _ activity.Hook = (*Hook)(nil)
