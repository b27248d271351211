package bunadapter

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/provider"
	"github.com/goliatone/go-openfeature/scope"
)

const (
	// DefaultTable is the default table name for stored flag values.
	DefaultTable = "feature_flags"
	// ProviderName is the default metadata name of bun-backed providers.
	ProviderName = "SQL Provider"
	// MetadataScope is the FlagMetadata key naming the scope that matched.
	MetadataScope = "scope"
	// MetadataUpdatedBy is the FlagMetadata key naming the last writer.
	MetadataUpdatedBy = "updated_by"
)

// Store reads and writes scoped flag values in a SQL table through bun.
type Store struct {
	db         bun.IDB
	table      string
	now        func() time.Time
	name       string
	lookupOpts []provider.LookupOption
}

// Option customizes the Bun store adapter.
type Option func(*Store)

// NewStore constructs a new Bun-backed flag value store.
func NewStore(db bun.IDB, opts ...Option) *Store {
	adapter := &Store{
		db:    db,
		table: DefaultTable,
		now:   time.Now,
		name:  ProviderName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	if adapter.table == "" {
		adapter.table = DefaultTable
	}
	if adapter.now == nil {
		adapter.now = time.Now
	}
	if adapter.name == "" {
		adapter.name = ProviderName
	}
	return adapter
}

// NewProvider builds a provider reading flag values from db.
func NewProvider(db bun.IDB, opts ...Option) *provider.LookupProvider {
	return NewStore(db, opts...).Provider()
}

// WithTable sets the table name used for flag values.
func WithTable(table string) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.table = strings.TrimSpace(table)
	}
}

// WithNowFunc overrides the timestamp function used for updates.
func WithNowFunc(now func() time.Time) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.now = now
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
func WithLookupOptions(opts ...provider.LookupOption) Option {
	return func(adapter *Store) {
		if adapter == nil {
			return
		}
		adapter.lookupOpts = append(adapter.lookupOpts, opts...)
	}
}

// FlagRecord maps to the feature_flags table. Value holds the JSON encoding
// of the flag value; NULL marks an explicitly unset row.
type FlagRecord struct {
	bun.BaseModel `bun:"table:feature_flags,alias:ff"`
	FlagKey       string    `bun:"flag_key,pk"`
	ScopeType     string    `bun:"scope_type,pk"`
	ScopeID       string    `bun:"scope_id,pk"`
	Value         *string   `bun:"value"`
	Variant       string    `bun:"variant,nullzero"`
	UpdatedBy     string    `bun:"updated_by,nullzero"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"`
}

// Provider wraps the store in a lookup provider.
func (s *Store) Provider() *provider.LookupProvider {
	opts := append([]provider.LookupOption{
		provider.WithLookupMetadata("source", "sql"),
		provider.WithLookupMetadata("table", s.table),
	}, s.lookupOpts...)
	return provider.NewLookup(s.name, s, opts...)
}

// Lookup implements provider.Lookup, walking user, org, tenant then system
// rows. NULL values fall through to the next scope.
func (s *Store) Lookup(ctx context.Context, flag string, evalCtx feature.EvaluationContext) (provider.Match, error) {
	if s == nil || s.db == nil {
		return provider.Match{}, dbRequiredError(flag, "lookup")
	}
	key := feature.NormalizeKey(flag)
	if key == "" {
		return provider.Match{}, nil
	}
	for _, sk := range readScopes(scope.FromEvaluationContext(evalCtx)) {
		record := FlagRecord{}
		query := s.db.NewSelect().Model(&record).
			Where("flag_key = ?", key).
			Where("scope_type = ?", string(sk.kind)).
			Where("scope_id = ?", sk.id).
			Limit(1)
		if s.table != DefaultTable {
			query = query.ModelTableExpr("? AS ff", bun.Ident(s.table))
		}
		if err := query.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return provider.Match{}, s.wrap(err, ferrors.TextCodeStoreReadFailed, "bunadapter: select failed", key, "lookup")
		}
		if record.Value == nil {
			continue
		}
		value, err := decodeValue(*record.Value)
		if err != nil {
			return provider.Match{}, s.wrap(err, ferrors.TextCodeValueInvalid, "bunadapter: stored value is not valid JSON", key, "decode")
		}
		return matchFromRecord(record, sk, value), nil
	}
	return provider.Match{}, nil
}

// Set stores value for flag at the most specific scope of set.
func (s *Store) Set(ctx context.Context, flag string, set scope.Set, value any, updatedBy string) error {
	return s.SetVariant(ctx, flag, set, value, "", updatedBy)
}

// SetVariant stores value and a variant name for flag.
func (s *Store) SetVariant(ctx context.Context, flag string, set scope.Set, value any, variant, updatedBy string) error {
	if s == nil || s.db == nil {
		return dbRequiredError(flag, "set")
	}
	key, err := requireKey(flag, "set")
	if err != nil {
		return err
	}
	if value == nil {
		return ferrors.WrapSentinel(ferrors.ErrValueInvalid, "bunadapter: value is required", map[string]any{
			ferrors.MetaFlag:      key,
			ferrors.MetaOperation: "set",
		})
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return s.wrap(err, ferrors.TextCodeValueInvalid, "bunadapter: value is not JSON encodable", key, "set")
	}
	raw := string(encoded)
	return s.upsert(ctx, key, writeScope(set), &raw, variant, updatedBy)
}

// Unset stores an explicit NULL for flag so lookups fall through to wider scopes.
func (s *Store) Unset(ctx context.Context, flag string, set scope.Set, updatedBy string) error {
	if s == nil || s.db == nil {
		return dbRequiredError(flag, "unset")
	}
	key, err := requireKey(flag, "unset")
	if err != nil {
		return err
	}
	return s.upsert(ctx, key, writeScope(set), nil, "", updatedBy)
}

// Delete removes a stored row.
func (s *Store) Delete(ctx context.Context, flag string, set scope.Set) error {
	if s == nil || s.db == nil {
		return dbRequiredError(flag, "delete")
	}
	key, err := requireKey(flag, "delete")
	if err != nil {
		return err
	}
	sk := writeScope(set)
	query := s.db.NewDelete().Model((*FlagRecord)(nil)).
		Where("flag_key = ?", key).
		Where("scope_type = ?", string(sk.kind)).
		Where("scope_id = ?", sk.id)
	if s.table != DefaultTable {
		query = query.ModelTableExpr("? AS ff", bun.Ident(s.table))
	}
	if _, err := query.Exec(ctx); err != nil {
		return s.wrap(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: delete failed", key, "delete")
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, key string, sk scopeKey, value *string, variant, updatedBy string) error {
	record := FlagRecord{
		FlagKey:   key,
		ScopeType: string(sk.kind),
		ScopeID:   sk.id,
		Value:     value,
		Variant:   strings.TrimSpace(variant),
		UpdatedBy: strings.TrimSpace(updatedBy),
		UpdatedAt: s.now(),
	}
	query := s.db.NewInsert().Model(&record).
		On("CONFLICT (flag_key, scope_type, scope_id) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("variant = EXCLUDED.variant").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at")
	if s.table != DefaultTable {
		query = query.ModelTableExpr("? AS ff", bun.Ident(s.table))
	}
	if _, err := query.Exec(ctx); err != nil {
		return s.wrap(err, ferrors.TextCodeStoreWriteFailed, "bunadapter: upsert failed", key, "upsert")
	}
	return nil
}

func (s *Store) wrap(err error, textCode, message, key, operation string) error {
	return ferrors.WrapExternal(err, textCode, message, map[string]any{
		ferrors.MetaAdapter:   "bun",
		ferrors.MetaTable:     s.table,
		ferrors.MetaFlag:      key,
		ferrors.MetaOperation: operation,
	})
}

func dbRequiredError(flag, operation string) error {
	return ferrors.WrapSentinel(ferrors.ErrDatabaseRequired, "bunadapter: db is required", map[string]any{
		ferrors.MetaAdapter:   "bun",
		ferrors.MetaFlag:      strings.TrimSpace(flag),
		ferrors.MetaOperation: operation,
	})
}

func requireKey(flag, operation string) (string, error) {
	key := feature.NormalizeKey(flag)
	if key == "" {
		return "", ferrors.WrapSentinel(ferrors.ErrPathRequired, "bunadapter: flag key required", map[string]any{
			ferrors.MetaAdapter:   "bun",
			ferrors.MetaOperation: operation,
		})
	}
	return key, nil
}

func decodeValue(raw string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func matchFromRecord(record FlagRecord, sk scopeKey, value any) provider.Match {
	reason := feature.ReasonTargetingMatch
	if sk.kind == scopeSystem {
		reason = feature.ReasonStatic
	}
	metadata := map[string]any{MetadataScope: string(sk.kind)}
	if record.UpdatedBy != "" {
		metadata[MetadataUpdatedBy] = record.UpdatedBy
	}
	return provider.Match{
		Value:    value,
		Found:    true,
		Reason:   reason,
		Variant:  record.Variant,
		Metadata: metadata,
	}
}

type scopeKey struct {
	kind scopeKind
	id   string
}

type scopeKind string

const (
	scopeSystem scopeKind = "system"
	scopeTenant scopeKind = "tenant"
	scopeOrg    scopeKind = "org"
	scopeUser   scopeKind = "user"
)

func readScopes(set scope.Set) []scopeKey {
	scopes := make([]scopeKey, 0, 4)
	if set.UserID != "" {
		scopes = append(scopes, scopeKey{kind: scopeUser, id: set.UserID})
	}
	if set.OrgID != "" {
		scopes = append(scopes, scopeKey{kind: scopeOrg, id: set.OrgID})
	}
	if set.TenantID != "" {
		scopes = append(scopes, scopeKey{kind: scopeTenant, id: set.TenantID})
	}
	return append(scopes, scopeKey{kind: scopeSystem})
}

func writeScope(set scope.Set) scopeKey {
	switch {
	case set.UserID != "":
		return scopeKey{kind: scopeUser, id: set.UserID}
	case set.OrgID != "":
		return scopeKey{kind: scopeOrg, id: set.OrgID}
	case set.TenantID != "":
		return scopeKey{kind: scopeTenant, id: set.TenantID}
	default:
		return scopeKey{kind: scopeSystem}
	}
}

var _ provider.Lookup = (*Store)(nil)
