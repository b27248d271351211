package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-openfeature/feature"
)

// ErrFlagDisabled is returned when a flag is off and no custom error is provided.
var ErrFlagDisabled = errors.New("flag disabled")

// DisabledError includes the disabled flag key and unwraps to ErrFlagDisabled.
type DisabledError struct {
	Flag string
}

func (e DisabledError) Error() string {
	if e.Flag == "" {
		return ErrFlagDisabled.Error()
	}
	return fmt.Sprintf("%s: %s", ErrFlagDisabled.Error(), e.Flag)
}

func (e DisabledError) Unwrap() error {
	return ErrFlagDisabled
}

// Option configures Require behavior.
type Option func(*config)

type config struct {
	disabledErr error
	errorMapper func(error) error
	fallbacks   []string
	evalOpts    []feature.EvaluationOption
}

// WithDisabledError sets the error returned when the flag is off.
func WithDisabledError(err error) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.disabledErr = err
	}
}

// WithErrorMapper transforms evaluation errors before returning them.
func WithErrorMapper(mapper func(error) error) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.errorMapper = mapper
	}
}

// WithFallbackFlags grants access when any of flags is on and the primary
// flag is off.
func WithFallbackFlags(flags ...string) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.fallbacks = append(c.fallbacks, flags...)
	}
}

// WithEvaluationOptions forwards options to every evaluation.
func WithEvaluationOptions(opts ...feature.EvaluationOption) Option {
	return func(c *config) {
		if c == nil {
			return
		}
		c.evalOpts = append(c.evalOpts, opts...)
	}
}

// Require evaluates a boolean flag with a false default and returns an error
// when access is denied. Evaluation errors are returned as
// feature.ResolutionError unless mapped. A nil evaluator allows access.
func Require(ctx context.Context, evaluator feature.BoolEvaluator, flag string, opts ...Option) error {
	if evaluator == nil {
		return nil
	}

	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	on, err := check(ctx, evaluator, flag, cfg)
	if err != nil {
		return mapErr(cfg, err)
	}
	if on {
		return nil
	}

	for _, fallback := range cfg.fallbacks {
		ok, err := check(ctx, evaluator, fallback, cfg)
		if err != nil {
			return mapErr(cfg, err)
		}
		if ok {
			return nil
		}
	}

	if cfg.disabledErr != nil {
		return cfg.disabledErr
	}

	return DisabledError{Flag: flag}
}

func check(ctx context.Context, evaluator feature.BoolEvaluator, flag string, cfg *config) (bool, error) {
	eval := evaluator.BoolEvaluation(ctx, flag, false, cfg.evalOpts...)
	if eval.Error != nil {
		return false, *eval.Error
	}
	return eval.Value, nil
}

func mapErr(cfg *config, err error) error {
	if err == nil {
		return nil
	}
	if cfg != nil && cfg.errorMapper != nil {
		return cfg.errorMapper(err)
	}
	return err
}
