package optionsadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-admin/admin"
	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-options/pkg/state"

	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/scope"
)

// PreferencesOption customizes a PreferencesStoreAdapter.
type PreferencesOption func(*PreferencesStoreAdapter)

// PreferencesStoreAdapter keeps flag values in go-admin preferences, one
// preference per flag named "<prefix>.<flag key>". It satisfies state.Store
// so it can back a Store.
type PreferencesStoreAdapter struct {
	prefs  admin.PreferencesStore
	prefix string
	flags  []string
}

func NewPreferencesStoreAdapter(prefs admin.PreferencesStore, options ...PreferencesOption) *PreferencesStoreAdapter {
	adapter := &PreferencesStoreAdapter{prefs: prefs}
	for _, option := range options {
		if option != nil {
			option(adapter)
		}
	}
	return adapter
}

// WithFlagPrefix sets the preference key prefix. Defaults to the state domain.
func WithFlagPrefix(prefix string) PreferencesOption {
	return func(a *PreferencesStoreAdapter) {
		if a != nil {
			a.prefix = strings.Trim(strings.TrimSpace(prefix), ".")
		}
	}
}

// WithFlagKeys limits reads to the listed flags.
func WithFlagKeys(flags ...string) PreferencesOption {
	return func(a *PreferencesStoreAdapter) {
		if a == nil {
			return
		}
		a.flags = a.flags[:0]
		for _, flag := range flags {
			if flag = strings.TrimSpace(flag); flag != "" {
				a.flags = append(a.flags, flag)
			}
		}
	}
}

// preferenceTarget is the preferences level and owner a flag scope maps to.
type preferenceTarget struct {
	level admin.PreferenceLevel
	owner admin.PreferenceScope
}

// Load implements state.Store. It returns the flag tree stored for ref.
func (a *PreferencesStoreAdapter) Load(ctx context.Context, ref state.Ref) (map[string]any, state.Meta, bool, error) {
	if a == nil || a.prefs == nil {
		return nil, state.Meta{}, false, preferencesRequiredError(ref, "load")
	}
	target, err := targetFor(ref.Scope)
	if err != nil {
		return nil, state.Meta{}, false, err
	}
	tree, err := a.loadTree(ctx, target, a.keyPrefix(ref.Domain))
	if err != nil || len(tree) == 0 {
		return nil, state.Meta{}, false, err
	}
	return tree, state.Meta{}, true, nil
}

// Save implements state.Store. Flags missing from tree are deleted from the
// preferences of that scope.
func (a *PreferencesStoreAdapter) Save(ctx context.Context, ref state.Ref, tree map[string]any, _ state.Meta) (state.Meta, error) {
	if a == nil || a.prefs == nil {
		return state.Meta{}, preferencesRequiredError(ref, "save")
	}
	target, err := targetFor(ref.Scope)
	if err != nil {
		return state.Meta{}, err
	}
	prefix := a.keyPrefix(ref.Domain)

	current, err := a.loadTree(ctx, target, prefix)
	if err != nil {
		return state.Meta{}, err
	}
	wanted := flagEntries(tree, prefix)
	var stale []string
	for key := range flagEntries(current, prefix) {
		if _, keep := wanted[key]; !keep {
			stale = append(stale, key)
		}
	}

	if len(wanted) > 0 {
		_, err := a.prefs.Upsert(ctx, admin.PreferencesUpsertInput{
			Scope:  target.owner,
			Level:  target.level,
			Values: wanted,
		})
		if err != nil {
			return state.Meta{}, err
		}
	}
	if len(stale) > 0 {
		err := a.prefs.Delete(ctx, admin.PreferencesDeleteInput{
			Scope: target.owner,
			Level: target.level,
			Keys:  stale,
		})
		if err != nil {
			return state.Meta{}, err
		}
	}
	return state.Meta{}, nil
}

func (a *PreferencesStoreAdapter) loadTree(ctx context.Context, target preferenceTarget, prefix string) (map[string]any, error) {
	var keys []string
	for _, flag := range a.flags {
		keys = append(keys, prefix+flag)
	}
	resolved, err := a.prefs.Resolve(ctx, admin.PreferencesResolveInput{
		Scope:  target.owner,
		Levels: []admin.PreferenceLevel{target.level},
		Keys:   keys,
	})
	if err != nil {
		return nil, err
	}

	tree := map[string]any{}
	for key, value := range resolved.Effective {
		flag, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if err := putFlagValue(tree, flag, value); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// keyPrefix returns the preference key prefix with its trailing dot, or "".
func (a *PreferencesStoreAdapter) keyPrefix(domain string) string {
	prefix := a.prefix
	if prefix == "" {
		prefix = strings.Trim(strings.TrimSpace(domain), ".")
	}
	if prefix == "" {
		return ""
	}
	return prefix + "."
}

func targetFor(flagScope opts.Scope) (preferenceTarget, error) {
	switch flagScope.Name {
	case scopeSystem:
		return preferenceTarget{level: admin.PreferenceLevelSystem}, nil
	case scopeTenant:
		id, err := scopeOwnerID(flagScope, scope.MetadataTenantID)
		return preferenceTarget{level: admin.PreferenceLevelTenant, owner: admin.PreferenceScope{TenantID: id}}, err
	case scopeOrg:
		id, err := scopeOwnerID(flagScope, scope.MetadataOrgID)
		return preferenceTarget{level: admin.PreferenceLevelOrg, owner: admin.PreferenceScope{OrgID: id}}, err
	case scopeUser:
		id, err := scopeOwnerID(flagScope, scope.MetadataUserID)
		return preferenceTarget{level: admin.PreferenceLevelUser, owner: admin.PreferenceScope{UserID: id}}, err
	}
	return preferenceTarget{}, ferrors.NewBadInput(ferrors.TextCodeScopeInvalid,
		fmt.Sprintf("optionsadapter: flag scope %q has no preferences level", flagScope.Name),
		map[string]any{ferrors.MetaScope: flagScope.Name})
}

func scopeOwnerID(flagScope opts.Scope, key string) (string, error) {
	meta := map[string]any{ferrors.MetaScope: flagScope.Name, "metadata_key": key}
	raw, found := flagScope.Metadata[key]
	if !found {
		return "", ferrors.NewBadInput(ferrors.TextCodeScopeMetadataMissing,
			fmt.Sprintf("optionsadapter: %s flag scope has no %q", flagScope.Name, key), meta)
	}
	id, _ := raw.(string)
	if id = strings.TrimSpace(id); id == "" {
		return "", ferrors.NewBadInput(ferrors.TextCodeScopeMetadataInvalid,
			fmt.Sprintf("optionsadapter: %s flag scope has a blank %q", flagScope.Name, key), meta)
	}
	return id, nil
}

func preferencesRequiredError(ref state.Ref, operation string) error {
	return ferrors.WrapSentinel(ferrors.ErrPreferencesStoreRequired, "optionsadapter: preferences store is required", map[string]any{
		ferrors.MetaAdapter:   "preferences",
		ferrors.MetaDomain:    ref.Domain,
		ferrors.MetaOperation: operation,
	})
}

var _ state.Store[map[string]any] = (*PreferencesStoreAdapter)(nil)
