package provider

import (
	"encoding/json"
	"math"
)

// ValueAs converts a raw stored value into V. Numeric values convert
// between integer and float forms when no precision is lost.
func ValueAs[V any](raw any) (V, bool) {
	var zero V
	if typed, ok := raw.(V); ok {
		return typed, true
	}
	var out any
	var ok bool
	switch any(zero).(type) {
	case bool:
		out, ok = toBool(raw)
	case string:
		out, ok = toString(raw)
	case int64:
		out, ok = toInt(raw)
	case float64:
		out, ok = toFloat(raw)
	}
	if !ok {
		return zero, false
	}
	return out.(V), true
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	}
	return false, false
}

func toString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	if i, ok := toInt(raw); ok {
		return float64(i), true
	}
	return 0, false
}
