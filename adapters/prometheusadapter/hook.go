package prometheusadapter

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-openfeature/feature"
)

const (
	DefaultEvaluationsName = "openfeature_evaluations_total"
	DefaultErrorsName      = "openfeature_evaluation_errors_total"
)

type config struct {
	namespace   string
	constLabels prometheus.Labels
}

// Option customizes the metrics hook.
type Option func(*config)

// WithNamespace prefixes metric names.
func WithNamespace(namespace string) Option {
	return func(cfg *config) {
		if cfg == nil {
			return
		}
		cfg.namespace = namespace
	}
}

// WithConstLabels attaches constant labels to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(cfg *config) {
		if cfg == nil {
			return
		}
		cfg.constLabels = labels
	}
}

// Hook counts evaluations by flag and reason, and failures by flag and
// error code.
type Hook struct {
	feature.BaseHook
	evaluations *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

// New creates the counters and registers them on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer, opts ...Option) (*Hook, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hook{
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.namespace,
				Name:        DefaultEvaluationsName,
				Help:        "Total flag evaluations by flag and reason",
				ConstLabels: cfg.constLabels,
			},
			[]string{"flag", "reason"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.namespace,
				Name:        DefaultErrorsName,
				Help:        "Total failed flag evaluations by flag and error code",
				ConstLabels: cfg.constLabels,
			},
			[]string{"flag", "code"},
		),
	}
	for _, collector := range []prometheus.Collector{h.evaluations, h.errors} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// OnError implements feature.Hook.
func (h *Hook) OnError(_ context.Context, hookCtx feature.HookContext, err error, _ feature.HookHints) {
	if h == nil {
		return
	}
	code := feature.ToResolutionError(err).Code
	h.errors.WithLabelValues(hookCtx.Flag, string(code)).Inc()
}

// AfterEvaluation implements feature.Hook.
func (h *Hook) AfterEvaluation(_ context.Context, hookCtx feature.HookContext, eval feature.Evaluation[any], _ feature.HookHints) {
	if h == nil {
		return
	}
	reason := string(eval.Reason)
	if reason == "" {
		reason = string(feature.ReasonUnknown)
	}
	h.evaluations.WithLabelValues(hookCtx.Flag, reason).Inc()
}

// Evaluations exposes the evaluation counter.
func (h *Hook) Evaluations() *prometheus.CounterVec { return h.evaluations }

// Errors exposes the error counter.
func (h *Hook) Errors() *prometheus.CounterVec { return h.errors }

var _ feature.Hook = (*Hook)(nil)
