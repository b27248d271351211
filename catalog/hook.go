package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-openfeature/feature"
)

// Hook rejects evaluations of flags that are not described by a catalog,
// and evaluations whose default type disagrees with the definition.
type Hook struct {
	feature.BaseHook
	catalog Catalog
}

// NewHook builds a validation hook over cat.
func NewHook(cat Catalog) *Hook {
	return &Hook{catalog: cat}
}

// BeforeEvaluation implements feature.Hook.
func (h *Hook) BeforeEvaluation(_ context.Context, hookCtx *feature.HookContext, _ feature.HookHints) error {
	if h == nil || h.catalog == nil || hookCtx == nil {
		return nil
	}
	def, ok := h.catalog.Get(hookCtx.Flag)
	if !ok {
		return feature.NewResolutionError(feature.ErrorFlagNotFound,
			fmt.Sprintf("flag %q is not in the catalog", hookCtx.Flag))
	}
	if def.Type == feature.FlagTypeUnknown {
		return nil
	}
	if got := feature.TypeOf(hookCtx.DefaultValue); got != def.Type {
		return feature.NewResolutionError(feature.ErrorTypeMismatch,
			fmt.Sprintf("flag %q is declared %s, evaluated as %s", hookCtx.Flag, def.Type, got))
	}
	return nil
}

var _ feature.Hook = (*Hook)(nil)
