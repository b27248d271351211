package optionsadapter

import (
	"context"
	"fmt"
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-options/pkg/state"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/provider"
	"github.com/goliatone/go-openfeature/scope"
)

const (
	prioritySystem = 10
	priorityTenant = 20
	priorityOrg    = 30
	priorityUser   = 40
)

const (
	scopeSystem = "system"
	scopeTenant = "tenant"
	scopeOrg    = "org"
	scopeUser   = "user"
)

const (
	// DefaultDomain is the default options domain holding flag values.
	DefaultDomain = "feature_flags"
	// ProviderName is the default metadata name of options-backed providers.
	ProviderName = "Options Provider"
	// MetadataScope is the FlagMetadata key naming the scope that matched.
	MetadataScope = "scope"
)

// ScopeBuilder maps a scope.Set into go-options scopes ordered by precedence.
type ScopeBuilder func(set scope.Set) []opts.Scope

// Actor identifies who changed a stored value.
type Actor struct {
	ID   string
	Type string
	Name string
}

// MetaBuilder builds storage metadata from an actor.
type MetaBuilder func(actor Actor) state.Meta

// Option customizes the Store adapter.
type Option func(*Store)

// Store reads and writes scoped flag values in a go-options state.Store.
// Reads walk user, org, tenant then system scopes taken from the
// evaluation context.
type Store struct {
	stateStore state.Store[map[string]any]
	domain     string
	scopes     ScopeBuilder
	meta       MetaBuilder
	name       string
	lookupOpts []provider.LookupOption
}

// NewStore constructs an adapter backed by a go-options state.Store.
func NewStore(stateStore state.Store[map[string]any], opts ...Option) *Store {
	adapter := &Store{
		stateStore: stateStore,
		domain:     DefaultDomain,
		scopes:     defaultScopes,
		meta:       defaultMeta,
		name:       ProviderName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.domain == "" {
		adapter.domain = DefaultDomain
	}
	if adapter.scopes == nil {
		adapter.scopes = defaultScopes
	}
	if adapter.meta == nil {
		adapter.meta = defaultMeta
	}
	if adapter.name == "" {
		adapter.name = ProviderName
	}
	return adapter
}

// NewProvider builds a provider reading flag values from stateStore.
func NewProvider(stateStore state.Store[map[string]any], opts ...Option) *provider.LookupProvider {
	return NewStore(stateStore, opts...).Provider()
}

// WithDomain sets the options domain used for flag values.
func WithDomain(domain string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.domain = strings.TrimSpace(domain)
	}
}

// WithScopeBuilder overrides the default scope mapping.
func WithScopeBuilder(builder ScopeBuilder) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.scopes = builder
	}
}

// WithMetaBuilder overrides the metadata builder used on mutations.
func WithMetaBuilder(builder MetaBuilder) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.meta = builder
	}
}

// WithProviderName overrides the provider metadata name.
func WithProviderName(name string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.name = strings.TrimSpace(name)
	}
}

// WithLookupOptions forwards options to the provider built by Provider.
func WithLookupOptions(options ...provider.LookupOption) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.lookupOpts = append(adapter.lookupOpts, options...)
	}
}

// Provider wraps the store in a lookup provider.
func (s *Store) Provider() *provider.LookupProvider {
	lookupOpts := append([]provider.LookupOption{
		provider.WithLookupMetadata("source", "options"),
		provider.WithLookupMetadata("domain", s.domain),
	}, s.lookupOpts...)
	return provider.NewLookup(s.name, s, lookupOpts...)
}

// Lookup implements provider.Lookup. A nil stored value counts as unset and
// falls through to the next scope.
func (s *Store) Lookup(ctx context.Context, flag string, evalCtx feature.EvaluationContext) (provider.Match, error) {
	set := scope.FromEvaluationContext(evalCtx)
	if s == nil || s.stateStore == nil {
		domain := ""
		if s != nil {
			domain = s.domain
		}
		return provider.Match{}, storeRequiredError(flag, set, "lookup", domain)
	}
	key := feature.NormalizeKey(flag)
	if key == "" {
		return provider.Match{}, nil
	}

	for _, scopeDef := range s.scopes(set) {
		snapshot, _, ok, err := s.stateStore.Load(ctx, state.Ref{Domain: s.domain, Scope: scopeDef})
		if err != nil {
			meta := storeMeta(scopeDef, "load", s.domain)
			meta[ferrors.MetaFlag] = key
			return provider.Match{}, ferrors.WrapExternal(err, ferrors.TextCodeStoreReadFailed, "optionsadapter: load failed", meta)
		}
		if !ok || len(snapshot) == 0 {
			continue
		}
		value, found := findFlagValue(snapshot, key)
		if !found || value == nil {
			continue
		}
		reason := feature.ReasonTargetingMatch
		if scopeDef.Name == scopeSystem {
			reason = feature.ReasonStatic
		}
		return provider.Match{
			Value:    value,
			Found:    true,
			Reason:   reason,
			Metadata: map[string]any{MetadataScope: scopeDef.Name},
		}, nil
	}
	return provider.Match{}, nil
}

// Set stores value for flag at the most specific scope of set. An empty set
// writes the system scope.
func (s *Store) Set(ctx context.Context, flag string, set scope.Set, value any, actor Actor) error {
	if s == nil || s.stateStore == nil {
		domain := ""
		if s != nil {
			domain = s.domain
		}
		return storeRequiredError(flag, set, "set", domain)
	}
	key := feature.NormalizeKey(flag)
	if key == "" {
		return ferrors.WrapSentinel(ferrors.ErrPathRequired, "optionsadapter: flag key required", adapterMeta(flag, set, "set", s.domain))
	}
	if !storable(value) {
		meta := adapterMeta(flag, set, "set", s.domain)
		return ferrors.WrapSentinel(ferrors.ErrValueInvalid, fmt.Sprintf("optionsadapter: unsupported flag value %T", value), meta)
	}

	ref := state.Ref{Domain: s.domain, Scope: writeScope(set)}
	return s.mutate(ctx, ref, key, "set", actor, func(snapshot map[string]any) error {
		return putFlagValue(snapshot, key, value)
	})
}

// Unset removes the stored value for flag at the most specific scope of set.
func (s *Store) Unset(ctx context.Context, flag string, set scope.Set, actor Actor) error {
	if s == nil || s.stateStore == nil {
		domain := ""
		if s != nil {
			domain = s.domain
		}
		return storeRequiredError(flag, set, "unset", domain)
	}
	key := feature.NormalizeKey(flag)
	if key == "" {
		return ferrors.WrapSentinel(ferrors.ErrPathRequired, "optionsadapter: flag key required", adapterMeta(flag, set, "unset", s.domain))
	}

	ref := state.Ref{Domain: s.domain, Scope: writeScope(set)}
	return s.mutate(ctx, ref, key, "unset", actor, func(snapshot map[string]any) error {
		dropFlagValue(snapshot, key)
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, ref state.Ref, key, operation string, actor Actor, fn func(map[string]any) error) error {
	resolver := state.Resolver[map[string]any]{Store: s.stateStore}
	_, _, err := resolver.Mutate(ctx, ref, s.meta(actor), func(snapshot *map[string]any) error {
		if snapshot == nil {
			return ferrors.NewOperation(ferrors.TextCodeStoreWriteFailed, "optionsadapter: snapshot is nil", storeMeta(ref.Scope, operation, s.domain))
		}
		if *snapshot == nil {
			*snapshot = map[string]any{}
		}
		return fn(*snapshot)
	})
	if err != nil {
		meta := storeMeta(ref.Scope, operation, s.domain)
		meta[ferrors.MetaFlag] = key
		return ferrors.WrapExternal(err, ferrors.TextCodeStoreWriteFailed, "optionsadapter: "+operation+" failed", meta)
	}
	return nil
}

func storable(value any) bool {
	if _, ok := provider.ValueAs[bool](value); ok {
		return true
	}
	if _, ok := provider.ValueAs[string](value); ok {
		return true
	}
	_, ok := provider.ValueAs[float64](value)
	return ok
}

func defaultScopes(set scope.Set) []opts.Scope {
	var scopes []opts.Scope
	if set.UserID != "" {
		scopes = append(scopes, scoped(scopeUser, "User", priorityUser, scope.MetadataUserID, set.UserID))
	}
	if set.OrgID != "" {
		scopes = append(scopes, scoped(scopeOrg, "Org", priorityOrg, scope.MetadataOrgID, set.OrgID))
	}
	if set.TenantID != "" {
		scopes = append(scopes, scoped(scopeTenant, "Tenant", priorityTenant, scope.MetadataTenantID, set.TenantID))
	}
	return append(scopes, scoped(scopeSystem, "System", prioritySystem, "", ""))
}

func writeScope(set scope.Set) opts.Scope {
	switch {
	case set.UserID != "":
		return scoped(scopeUser, "User", priorityUser, scope.MetadataUserID, set.UserID)
	case set.OrgID != "":
		return scoped(scopeOrg, "Org", priorityOrg, scope.MetadataOrgID, set.OrgID)
	case set.TenantID != "":
		return scoped(scopeTenant, "Tenant", priorityTenant, scope.MetadataTenantID, set.TenantID)
	default:
		return scoped(scopeSystem, "System", prioritySystem, "", "")
	}
}

func scoped(name, label string, priority int, metadataKey, metadataValue string) opts.Scope {
	var metadata map[string]any
	if metadataKey != "" && metadataValue != "" {
		metadata = map[string]any{metadataKey: metadataValue}
	}
	return opts.NewScope(
		name,
		priority,
		opts.WithScopeLabel(label),
		opts.WithScopeMetadata(metadata),
	)
}

func defaultMeta(actor Actor) state.Meta {
	extra := map[string]string{}
	if actor.ID != "" {
		extra["actor_id"] = actor.ID
	}
	if actor.Type != "" {
		extra["actor_type"] = actor.Type
	}
	if actor.Name != "" {
		extra["actor_name"] = actor.Name
	}
	if len(extra) == 0 {
		return state.Meta{}
	}
	return state.Meta{Extra: extra}
}

var _ provider.Lookup = (*Store)(nil)

func storeRequiredError(flag string, set scope.Set, operation, domain string) error {
	return ferrors.WrapSentinel(ferrors.ErrStoreRequired, "optionsadapter: state store is required", adapterMeta(flag, set, operation, domain))
}

func adapterMeta(flag string, set scope.Set, operation, domain string) map[string]any {
	return map[string]any{
		ferrors.MetaAdapter:   "options",
		ferrors.MetaStore:     "state",
		ferrors.MetaDomain:    strings.TrimSpace(domain),
		ferrors.MetaScope:     set,
		ferrors.MetaOperation: operation,
		ferrors.MetaFlag:      strings.TrimSpace(flag),
	}
}

func storeMeta(scopeDef opts.Scope, operation, domain string) map[string]any {
	meta := map[string]any{
		ferrors.MetaAdapter:   "options",
		ferrors.MetaStore:     "state",
		ferrors.MetaOperation: operation,
		ferrors.MetaScope:     scopeDef,
	}
	if strings.TrimSpace(domain) != "" {
		meta[ferrors.MetaDomain] = strings.TrimSpace(domain)
	}
	return meta
}
