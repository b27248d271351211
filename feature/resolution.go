package feature

import "errors"

// ErrorCode classifies resolution failures.
type ErrorCode string

const (
	ErrorProviderNotReady    ErrorCode = "PROVIDER_NOT_READY"
	ErrorProviderFatal       ErrorCode = "PROVIDER_FATAL"
	ErrorFlagNotFound        ErrorCode = "FLAG_NOT_FOUND"
	ErrorParse               ErrorCode = "PARSE_ERROR"
	ErrorTypeMismatch        ErrorCode = "TYPE_MISMATCH"
	ErrorTargetingKeyMissing ErrorCode = "TARGETING_KEY_MISSING"
	ErrorInvalidContext      ErrorCode = "INVALID_CONTEXT"
	ErrorGeneral             ErrorCode = "GENERAL"
)

// ResolutionError is the structured error reported by providers and hooks.
// An empty Message means no message was supplied.
type ResolutionError struct {
	Code    ErrorCode
	Message string
}

// NewResolutionError builds a ResolutionError.
func NewResolutionError(code ErrorCode, message string) ResolutionError {
	return ResolutionError{Code: code, Message: message}
}

func (e ResolutionError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// AsResolutionError finds a ResolutionError in err's chain.
func AsResolutionError(err error) (ResolutionError, bool) {
	if err == nil {
		return ResolutionError{}, false
	}
	var value ResolutionError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *ResolutionError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return ResolutionError{}, false
}

// ToResolutionError classifies err, falling back to GENERAL with the
// error text as message.
func ToResolutionError(err error) ResolutionError {
	if resErr, ok := AsResolutionError(err); ok {
		return resErr
	}
	if err == nil {
		return ResolutionError{Code: ErrorGeneral}
	}
	return ResolutionError{Code: ErrorGeneral, Message: err.Error()}
}

// Reason explains how a value was resolved. Empty means no reason.
type Reason string

const (
	ReasonDefault        Reason = "DEFAULT"
	ReasonTargetingMatch Reason = "TARGETING_MATCH"
	ReasonSplit          Reason = "SPLIT"
	ReasonDisabled       Reason = "DISABLED"
	ReasonStatic         Reason = "STATIC"
	ReasonCached         Reason = "CACHED"
	ReasonUnknown        Reason = "UNKNOWN"
	ReasonError          Reason = "ERROR"
)

// Resolution is the raw provider result.
type Resolution[V any] struct {
	Value        V
	Error        *ResolutionError
	Reason       Reason
	Variant      string
	FlagMetadata map[string]any
}

// ErrorResolution reports a failed resolution carrying the default value.
func ErrorResolution[V any](defaultValue V, code ErrorCode, message string) Resolution[V] {
	resErr := NewResolutionError(code, message)
	return Resolution[V]{Value: defaultValue, Error: &resErr, Reason: ReasonError}
}

// Evaluation is the pipeline result handed back to callers.
type Evaluation[V any] struct {
	Flag         string
	Value        V
	Error        *ResolutionError
	Reason       Reason
	Variant      string
	FlagMetadata map[string]any
}

// NewEvaluation builds an evaluation from a successful resolution.
func NewEvaluation[V any](flag string, res Resolution[V]) Evaluation[V] {
	return Evaluation[V]{
		Flag:         flag,
		Value:        res.Value,
		Error:        res.Error,
		Reason:       res.Reason,
		Variant:      res.Variant,
		FlagMetadata: res.FlagMetadata,
	}
}

// FailedEvaluation builds the evaluation returned on any failure.
func FailedEvaluation[V any](flag string, defaultValue V, err ResolutionError) Evaluation[V] {
	return Evaluation[V]{
		Flag:   flag,
		Value:  defaultValue,
		Error:  &err,
		Reason: ReasonError,
	}
}

// Failed reports whether the evaluation carries an error.
func (e Evaluation[V]) Failed() bool { return e.Error != nil }

// Any erases the value type for hooks.
func (e Evaluation[V]) Any() Evaluation[any] {
	return Evaluation[any]{
		Flag:         e.Flag,
		Value:        e.Value,
		Error:        e.Error,
		Reason:       e.Reason,
		Variant:      e.Variant,
		FlagMetadata: e.FlagMetadata,
	}
}
