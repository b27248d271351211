package feature

import "sort"

// EvaluationContext carries targeting attributes for an evaluation.
// An empty TargetingKey means the key is absent.
type EvaluationContext struct {
	TargetingKey string
	Fields       map[string]FieldValue
}

// NewEvaluationContext builds a context, copying the provided fields.
func NewEvaluationContext(targetingKey string, fields map[string]FieldValue) EvaluationContext {
	ec := EvaluationContext{TargetingKey: targetingKey}
	for key, value := range fields {
		ec.SetField(key, value)
	}
	return ec
}

// Field returns the attribute stored under key.
func (c EvaluationContext) Field(key string) (FieldValue, bool) {
	if c.Fields == nil {
		return FieldValue{}, false
	}
	value, ok := c.Fields[key]
	return value, ok
}

// SetField stores an attribute. Invalid values are ignored.
func (c *EvaluationContext) SetField(key string, value FieldValue) {
	if c == nil || !value.IsValid() {
		return
	}
	if c.Fields == nil {
		c.Fields = make(map[string]FieldValue)
	}
	c.Fields[key] = value
}

// DeleteField removes an attribute.
func (c *EvaluationContext) DeleteField(key string) {
	if c == nil || c.Fields == nil {
		return
	}
	delete(c.Fields, key)
}

// Keys returns the sorted field names.
func (c EvaluationContext) Keys() []string {
	keys := make([]string, 0, len(c.Fields))
	for key := range c.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsZero reports whether the context carries nothing.
func (c EvaluationContext) IsZero() bool {
	return c.TargetingKey == "" && len(c.Fields) == 0
}

// Clone returns a copy that shares no field storage with c.
func (c EvaluationContext) Clone() EvaluationContext {
	out := EvaluationContext{TargetingKey: c.TargetingKey}
	if len(c.Fields) > 0 {
		out.Fields = make(map[string]FieldValue, len(c.Fields))
		for key, value := range c.Fields {
			out.Fields[key] = value
		}
	}
	return out
}

// Overlay merges overlay into c in place. A present overlay targeting key
// replaces c's key; overlay fields win on collision.
func (c *EvaluationContext) Overlay(overlay EvaluationContext) {
	if c == nil {
		return
	}
	if overlay.TargetingKey != "" {
		c.TargetingKey = overlay.TargetingKey
	}
	for key, value := range overlay.Fields {
		c.SetField(key, value)
	}
}

// Merge returns c overlaid with overlay without touching either input.
func (c EvaluationContext) Merge(overlay EvaluationContext) EvaluationContext {
	out := c.Clone()
	out.Overlay(overlay)
	return out
}

// Merge combines base and overlay, overlay winning.
func Merge(base, overlay EvaluationContext) EvaluationContext {
	return base.Merge(overlay)
}

// Equal reports structural equality.
func (c EvaluationContext) Equal(other EvaluationContext) bool {
	if c.TargetingKey != other.TargetingKey || len(c.Fields) != len(other.Fields) {
		return false
	}
	for key, value := range c.Fields {
		otherValue, ok := other.Fields[key]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}
