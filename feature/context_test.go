package feature

import (
	"testing"

	"pgregory.net/rapid"
)

func TestMergeOverlayKeyWinsWhenPresent(t *testing.T) {
	base := NewEvaluationContext("base-key", map[string]FieldValue{
		"plan":   StringField("free"),
		"region": StringField("eu"),
	})
	overlay := NewEvaluationContext("overlay-key", map[string]FieldValue{
		"plan": StringField("pro"),
		"beta": BoolField(true),
	})

	got := Merge(base, overlay)
	if got.TargetingKey != "overlay-key" {
		t.Fatalf("TargetingKey = %q, want overlay-key", got.TargetingKey)
	}
	if plan, _ := got.Field("plan"); !plan.Equal(StringField("pro")) {
		t.Fatalf("plan = %v, want pro", plan)
	}
	if region, _ := got.Field("region"); !region.Equal(StringField("eu")) {
		t.Fatalf("region = %v, want eu", region)
	}
	if beta, _ := got.Field("beta"); !beta.Equal(BoolField(true)) {
		t.Fatalf("beta = %v, want true", beta)
	}
}

func TestMergeAbsentKeyKeepsBase(t *testing.T) {
	base := NewEvaluationContext("base-key", nil)
	got := base.Merge(NewEvaluationContext("", map[string]FieldValue{"a": IntField(1)}))
	if got.TargetingKey != "base-key" {
		t.Fatalf("TargetingKey = %q, want base-key", got.TargetingKey)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := NewEvaluationContext("a", map[string]FieldValue{"x": IntField(1)})
	overlay := NewEvaluationContext("b", map[string]FieldValue{"x": IntField(2), "y": IntField(3)})

	_ = Merge(base, overlay)

	if base.TargetingKey != "a" || len(base.Fields) != 1 {
		t.Fatalf("base mutated: %+v", base)
	}
	if x, _ := base.Field("x"); !x.Equal(IntField(1)) {
		t.Fatalf("base field mutated: %v", x)
	}
	if len(overlay.Fields) != 2 {
		t.Fatalf("overlay mutated: %+v", overlay)
	}
}

func TestOverlayOnZeroValue(t *testing.T) {
	var acc EvaluationContext
	acc.Overlay(NewEvaluationContext("k", map[string]FieldValue{"a": StringField("1")}))
	acc.Overlay(EvaluationContext{})
	if acc.TargetingKey != "k" || len(acc.Fields) != 1 {
		t.Fatalf("unexpected accumulator: %+v", acc)
	}
}

func TestFourLayerPrecedence(t *testing.T) {
	global := NewEvaluationContext("", map[string]FieldValue{"x": StringField("global"), "shared": StringField("global")})
	ambient := NewEvaluationContext("", map[string]FieldValue{"shared": StringField("ambient")})
	client := NewEvaluationContext("", map[string]FieldValue{"y": StringField("client"), "shared": StringField("client")})
	invocation := NewEvaluationContext("", map[string]FieldValue{"z": StringField("invocation"), "shared": StringField("invocation")})

	var merged EvaluationContext
	for _, layer := range []EvaluationContext{global, ambient, client, invocation} {
		merged.Overlay(layer)
	}

	for key, want := range map[string]string{
		"x":      "global",
		"y":      "client",
		"z":      "invocation",
		"shared": "invocation",
	} {
		got, ok := merged.Field(key)
		if !ok || got.String() != want {
			t.Fatalf("field %s = %v, want %s", key, got, want)
		}
	}

	withoutInvocation := global.Merge(ambient).Merge(client)
	if shared, _ := withoutInvocation.Field("shared"); shared.String() != "client" {
		t.Fatalf("shared = %v, want client", shared)
	}
}

func contextGenerator() *rapid.Generator[EvaluationContext] {
	return rapid.Custom(func(rt *rapid.T) EvaluationContext {
		key := rapid.SampledFrom([]string{"", "alice", "bob"}).Draw(rt, "key")
		n := rapid.IntRange(0, 4).Draw(rt, "fields")
		fields := make(map[string]FieldValue, n)
		for i := 0; i < n; i++ {
			name := rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(rt, "name")
			fields[name] = IntField(int64(rapid.IntRange(0, 100).Draw(rt, "value")))
		}
		return NewEvaluationContext(key, fields)
	})
}

func TestMergePrecedenceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := contextGenerator().Draw(rt, "a")
		b := contextGenerator().Draw(rt, "b")

		merged := Merge(a, b)

		wantKey := a.TargetingKey
		if b.TargetingKey != "" {
			wantKey = b.TargetingKey
		}
		if merged.TargetingKey != wantKey {
			rt.Fatalf("TargetingKey = %q, want %q", merged.TargetingKey, wantKey)
		}
		for key, value := range b.Fields {
			got, ok := merged.Field(key)
			if !ok || !got.Equal(value) {
				rt.Fatalf("field %s = %v, want overlay value %v", key, got, value)
			}
		}
		for key, value := range a.Fields {
			if _, overridden := b.Fields[key]; overridden {
				continue
			}
			got, ok := merged.Field(key)
			if !ok || !got.Equal(value) {
				rt.Fatalf("field %s = %v, want base value %v", key, got, value)
			}
		}
		if len(merged.Fields) > len(a.Fields)+len(b.Fields) {
			rt.Fatalf("merged has unexpected fields: %v", merged.Keys())
		}
	})
}

func TestMergeIdentityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := contextGenerator().Draw(rt, "a")
		if !Merge(a, EvaluationContext{}).Equal(a) {
			rt.Fatalf("merging an empty overlay changed the context")
		}
		if !Merge(EvaluationContext{}, a).Equal(a) {
			rt.Fatalf("merging onto an empty base changed the context")
		}
	})
}
