package feature

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// FieldKind identifies the variant held by a FieldValue.
type FieldKind uint8

const (
	FieldKindInvalid FieldKind = iota
	FieldKindBool
	FieldKindString
	FieldKindInt
	FieldKindFloat
	FieldKindTime
	FieldKindObject
)

// String returns the kind name.
func (k FieldKind) String() string {
	switch k {
	case FieldKindBool:
		return "bool"
	case FieldKindString:
		return "string"
	case FieldKindInt:
		return "int"
	case FieldKindFloat:
		return "float"
	case FieldKindTime:
		return "time"
	case FieldKindObject:
		return "object"
	default:
		return "invalid"
	}
}

// FieldValue is a single targeting attribute value.
// The zero value is invalid and is treated as absent.
type FieldValue struct {
	kind  FieldKind
	value any
}

// BoolField wraps a bool attribute.
func BoolField(v bool) FieldValue { return FieldValue{kind: FieldKindBool, value: v} }

// StringField wraps a string attribute.
func StringField(v string) FieldValue { return FieldValue{kind: FieldKindString, value: v} }

// IntField wraps an integer attribute.
func IntField(v int64) FieldValue { return FieldValue{kind: FieldKindInt, value: v} }

// FloatField wraps a floating point attribute.
func FloatField(v float64) FieldValue { return FieldValue{kind: FieldKindFloat, value: v} }

// TimeField wraps a timestamp attribute.
func TimeField(v time.Time) FieldValue { return FieldValue{kind: FieldKindTime, value: v} }

// ObjectField wraps a structured attribute. The value should be
// serializable (maps, slices and scalars).
func ObjectField(v any) FieldValue {
	if v == nil {
		return FieldValue{}
	}
	return FieldValue{kind: FieldKindObject, value: v}
}

// NewFieldValue maps common Go values onto a FieldValue variant.
func NewFieldValue(v any) FieldValue {
	switch typed := v.(type) {
	case nil:
		return FieldValue{}
	case FieldValue:
		return typed
	case bool:
		return BoolField(typed)
	case string:
		return StringField(typed)
	case int:
		return IntField(int64(typed))
	case int8:
		return IntField(int64(typed))
	case int16:
		return IntField(int64(typed))
	case int32:
		return IntField(int64(typed))
	case int64:
		return IntField(typed)
	case uint8:
		return IntField(int64(typed))
	case uint16:
		return IntField(int64(typed))
	case uint32:
		return IntField(int64(typed))
	case float32:
		return FloatField(float64(typed))
	case float64:
		return FloatField(typed)
	case time.Time:
		return TimeField(typed)
	case *time.Time:
		if typed == nil {
			return FieldValue{}
		}
		return TimeField(*typed)
	default:
		return ObjectField(v)
	}
}

// Kind reports the variant.
func (v FieldValue) Kind() FieldKind { return v.kind }

// IsValid reports whether the value holds a variant.
func (v FieldValue) IsValid() bool { return v.kind != FieldKindInvalid }

func (v FieldValue) AsBool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok && v.kind == FieldKindBool
}

func (v FieldValue) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok && v.kind == FieldKindString
}

func (v FieldValue) AsInt() (int64, bool) {
	i, ok := v.value.(int64)
	return i, ok && v.kind == FieldKindInt
}

func (v FieldValue) AsFloat() (float64, bool) {
	f, ok := v.value.(float64)
	return f, ok && v.kind == FieldKindFloat
}

func (v FieldValue) AsTime() (time.Time, bool) {
	t, ok := v.value.(time.Time)
	return t, ok && v.kind == FieldKindTime
}

func (v FieldValue) AsObject() (any, bool) {
	if v.kind != FieldKindObject {
		return nil, false
	}
	return v.value, true
}

// Interface returns the underlying Go value.
func (v FieldValue) Interface() any { return v.value }

// String renders the value in a stable textual form.
func (v FieldValue) String() string {
	switch v.kind {
	case FieldKindBool:
		return strconv.FormatBool(v.value.(bool))
	case FieldKindString:
		return v.value.(string)
	case FieldKindInt:
		return strconv.FormatInt(v.value.(int64), 10)
	case FieldKindFloat:
		return strconv.FormatFloat(v.value.(float64), 'g', -1, 64)
	case FieldKindTime:
		return v.value.(time.Time).UTC().Format(time.RFC3339Nano)
	case FieldKindObject:
		return fmt.Sprintf("%v", v.value)
	default:
		return ""
	}
}

// Equal reports structural equality.
func (v FieldValue) Equal(other FieldValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case FieldKindInvalid:
		return true
	case FieldKindTime:
		return v.value.(time.Time).Equal(other.value.(time.Time))
	case FieldKindObject:
		return reflect.DeepEqual(v.value, other.value)
	default:
		return v.value == other.value
	}
}
