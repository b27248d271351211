package optionsadapter

import (
	"context"
	"errors"
	"sync"
	"testing"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-options/pkg/state"

	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/ferrors"
	"github.com/goliatone/go-openfeature/scope"
)

type memoryStateStore struct {
	mu          sync.RWMutex
	snapshots   map[string]map[string]any
	lastSaveRef state.Ref
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{
		snapshots: map[string]map[string]any{},
	}
}

func (m *memoryStateStore) Load(_ context.Context, ref state.Ref) (map[string]any, state.Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, state.Meta{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[key]
	if !ok {
		return nil, state.Meta{}, false, nil
	}
	return cloneSnapshot(snapshot), state.Meta{}, true, nil
}

func (m *memoryStateStore) Save(_ context.Context, ref state.Ref, snapshot map[string]any, _ state.Meta) (state.Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return state.Meta{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSaveRef = ref
	m.snapshots[key] = cloneSnapshot(snapshot)
	return state.Meta{}, nil
}

func (m *memoryStateStore) seed(ref state.Ref, snapshot map[string]any) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[key] = cloneSnapshot(snapshot)
	return nil
}

func cloneSnapshot(snapshot map[string]any) map[string]any {
	if snapshot == nil {
		return nil
	}
	out := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		out[key] = value
	}
	return out
}

func TestStoreSetWritesUserScopeMetadata(t *testing.T) {
	ctx := context.Background()
	stateStore := newMemoryStateStore()
	store := NewStore(stateStore)

	if err := store.Set(ctx, "users.signup", scope.Set{UserID: "user-1"}, true, Actor{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref := stateStore.lastSaveRef
	if ref.Scope.Name != "user" {
		t.Fatalf("expected scope name user, got %q", ref.Scope.Name)
	}
	if ref.Scope.Metadata == nil || ref.Scope.Metadata[scope.MetadataUserID] != "user-1" {
		t.Fatalf("expected scope metadata user_id to be set")
	}
}

func TestStoreLookupRespectsScopePrecedence(t *testing.T) {
	ctx := context.Background()
	stateStore := newMemoryStateStore()
	p := NewProvider(stateStore)

	tenantScope := opts.NewScope("tenant", 20, opts.WithScopeMetadata(map[string]any{
		scope.MetadataTenantID: "tenant-1",
	}))
	userScope := opts.NewScope("user", 40, opts.WithScopeMetadata(map[string]any{
		scope.MetadataUserID: "user-1",
	}))

	if err := stateStore.seed(state.Ref{Domain: DefaultDomain, Scope: tenantScope}, map[string]any{
		"users.signup": true,
		"theme":        "tenant-blue",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := stateStore.seed(state.Ref{Domain: DefaultDomain, Scope: userScope}, map[string]any{
		"users.signup": false,
		"theme":        nil,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ec := feature.NewEvaluationContext("user-1", map[string]feature.FieldValue{
		scope.MetadataTenantID: feature.StringField("tenant-1"),
	})

	res := p.ResolveBool(ctx, "users.signup", true, ec)
	if res.Error != nil || res.Value != false {
		t.Fatalf("expected user value to win, got %+v", res)
	}
	if res.Reason != feature.ReasonTargetingMatch || res.FlagMetadata[MetadataScope] != "user" {
		t.Fatalf("unexpected reason or metadata: %+v", res)
	}

	theme := p.ResolveString(ctx, "theme", "default", ec)
	if theme.Value != "tenant-blue" || theme.FlagMetadata[MetadataScope] != "tenant" {
		t.Fatalf("nil user value should fall through to tenant, got %+v", theme)
	}

	missing := p.ResolveBool(ctx, "users.signup", true, feature.EvaluationContext{})
	if missing.Error == nil || missing.Error.Code != feature.ErrorFlagNotFound {
		t.Fatalf("expected flag not found without scope, got %+v", missing)
	}
}

func TestStoreSystemScopeAndUnset(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryStateStore(), WithDomain("flags"), WithProviderName("prefs"))
	p := store.Provider()

	if err := store.Set(ctx, "checkout.limit", scope.Set{}, 25, Actor{ID: "admin"}); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	res := p.ResolveInt(ctx, "checkout.limit", 1, feature.EvaluationContext{})
	if res.Value != 25 || res.Reason != feature.ReasonStatic {
		t.Fatalf("system value = %+v", res)
	}
	if p.Metadata().Name != "prefs" {
		t.Fatalf("Name = %q", p.Metadata().Name)
	}
	if domain, _ := p.Metadata().Value("domain"); domain != "flags" {
		t.Fatalf("domain metadata = %q", domain)
	}

	if err := store.Unset(ctx, "checkout.limit", scope.Set{}, Actor{}); err != nil {
		t.Fatalf("Unset() = %v", err)
	}
	res = p.ResolveInt(ctx, "checkout.limit", 1, feature.EvaluationContext{})
	if res.Error == nil || res.Error.Code != feature.ErrorFlagNotFound {
		t.Fatalf("expected not found after unset, got %+v", res)
	}
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemoryStateStore())

	if err := store.Set(ctx, "flag", scope.Set{}, []string{"x"}, Actor{}); !errors.Is(err, ferrors.ErrValueInvalid) {
		t.Fatalf("Set(slice) = %v, want ErrValueInvalid", err)
	}
	if err := store.Set(ctx, "  ", scope.Set{}, true, Actor{}); !errors.Is(err, ferrors.ErrPathRequired) {
		t.Fatalf("Set(blank) = %v, want ErrPathRequired", err)
	}
	if err := NewStore(nil).Set(ctx, "flag", scope.Set{}, true, Actor{}); !errors.Is(err, ferrors.ErrStoreRequired) {
		t.Fatalf("Set(nil store) = %v, want ErrStoreRequired", err)
	}
	if _, err := NewStore(nil).Lookup(ctx, "flag", feature.EvaluationContext{}); !errors.Is(err, ferrors.ErrStoreRequired) {
		t.Fatalf("Lookup(nil store) = %v, want ErrStoreRequired", err)
	}
}
