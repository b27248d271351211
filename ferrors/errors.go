package ferrors

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	MetaFlag      = "flag"
	MetaFlagType  = "flag_type"
	MetaHookPhase = "hook_phase"
	MetaProvider  = "provider"
	MetaPanic     = "panic"
	MetaScope     = "scope"
	MetaStore     = "store"
	MetaAdapter   = "adapter"
	MetaDomain    = "domain"
	MetaTable     = "table"
	MetaOperation = "operation"
	MetaPath      = "path"
)

const (
	TextCodeProviderRequired         = "PROVIDER_REQUIRED"
	TextCodeAlreadyBootstrapped      = "ALREADY_BOOTSTRAPPED"
	TextCodeHookPanic                = "HOOK_PANIC"
	TextCodeProviderPanic            = "PROVIDER_PANIC"
	TextCodeEvaluatorRequired        = "EVALUATOR_REQUIRED"
	TextCodeStoreRequired            = "STORE_REQUIRED"
	TextCodeDatabaseRequired         = "DATABASE_REQUIRED"
	TextCodePathRequired             = "PATH_REQUIRED"
	TextCodePathInvalid              = "PATH_INVALID"
	TextCodeValueInvalid             = "VALUE_INVALID"
	TextCodePreferencesStoreRequired = "PREFERENCES_STORE_REQUIRED"
	TextCodeScopeInvalid             = "SCOPE_INVALID"
	TextCodeScopeMetadataMissing     = "SCOPE_METADATA_MISSING"
	TextCodeScopeMetadataInvalid     = "SCOPE_METADATA_INVALID"
	TextCodeAdapterFailed            = "ADAPTER_FAILED"
	TextCodeStoreReadFailed          = "STORE_READ_FAILED"
	TextCodeStoreWriteFailed         = "STORE_WRITE_FAILED"
	TextCodeLookupFailed             = "LOOKUP_FAILED"
)

var (
	ErrProviderRequired         = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeProviderRequired, "provider is not configured")
	ErrAlreadyBootstrapped      = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeAlreadyBootstrapped, "registry already bootstrapped")
	ErrHookPanic                = newSentinel(goerrors.CategoryInternal, goerrors.CodeInternal, TextCodeHookPanic, "hook panicked")
	ErrProviderPanic            = newSentinel(goerrors.CategoryInternal, goerrors.CodeInternal, TextCodeProviderPanic, "provider panicked")
	ErrEvaluatorRequired        = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeEvaluatorRequired, "flag evaluator is required")
	ErrStoreRequired            = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeStoreRequired, "store is required")
	ErrDatabaseRequired         = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeDatabaseRequired, "database is required")
	ErrPathRequired             = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodePathRequired, "path is required")
	ErrPathInvalid              = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodePathInvalid, "path segment is not a map")
	ErrValueInvalid             = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeValueInvalid, "stored flag value is invalid")
	ErrPreferencesStoreRequired = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodePreferencesStoreRequired, "preferences store is required")
)

func newSentinel(category goerrors.Category, code int, textCode, message string) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if code != 0 {
		err.WithCode(code)
	}
	return err
}

func IsSentinel(err error) bool {
	return err == ErrProviderRequired ||
		err == ErrAlreadyBootstrapped ||
		err == ErrHookPanic ||
		err == ErrProviderPanic ||
		err == ErrEvaluatorRequired ||
		err == ErrStoreRequired ||
		err == ErrDatabaseRequired ||
		err == ErrPathRequired ||
		err == ErrPathInvalid ||
		err == ErrValueInvalid ||
		err == ErrPreferencesStoreRequired
}

// WrapSentinel returns a copy of sentinel carrying meta that still matches
// errors.Is(err, sentinel).
func WrapSentinel(sentinel *goerrors.Error, message string, meta map[string]any) *goerrors.Error {
	if sentinel == nil {
		return nil
	}
	if message == "" {
		message = sentinel.Message
	}
	err := goerrors.New(message, sentinel.Category).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code).
		WithSeverity(sentinel.Severity)
	err.Source = sentinel
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

func Wrap(err error, category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	if err == nil {
		return nil
	}
	if IsSentinel(err) {
		if sentinel, ok := err.(*goerrors.Error); ok {
			return WrapSentinel(sentinel, "", meta)
		}
	}
	if rich, ok := err.(*goerrors.Error); ok {
		clone := rich.Clone()
		if clone.TextCode == "" && textCode != "" {
			clone.TextCode = textCode
		}
		if clone.Message == "" && message != "" {
			clone.Message = message
		}
		if meta != nil {
			clone.WithMetadata(meta)
		}
		return clone
	}
	if message == "" {
		message = err.Error()
	}
	wrapped := goerrors.New(message, category).WithTextCode(textCode)
	wrapped.Source = err
	if meta != nil {
		wrapped.WithMetadata(meta)
	}
	return wrapped
}

func New(category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

func NewBadInput(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryBadInput, textCode, message, meta)
}

func WrapBadInput(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryBadInput, textCode, message, meta)
}

func NewOperation(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryOperation, textCode, message, meta)
}

func WrapOperation(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryOperation, textCode, message, meta)
}

func WrapExternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryExternal, textCode, message, meta)
}

func WrapInternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryInternal, textCode, message, meta)
}

// Recovered converts a recovered panic value into a rich error based on
// sentinel, preserving an error value as Source.
func Recovered(sentinel *goerrors.Error, recovered any, meta map[string]any) *goerrors.Error {
	if meta == nil {
		meta = map[string]any{}
	}
	meta[MetaPanic] = recovered
	err := WrapSentinel(sentinel, "", meta)
	if cause, ok := recovered.(error); ok {
		err.Message = sentinel.Message + ": " + cause.Error()
	} else if text, ok := recovered.(string); ok {
		err.Message = sentinel.Message + ": " + text
	}
	return err
}

func As(err error) (*goerrors.Error, bool) {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich, true
	}
	return nil, false
}
