package feature

import "strings"

// FlagType names the value type of a flag.
type FlagType string

const (
	FlagTypeBool    FlagType = "bool"
	FlagTypeString  FlagType = "string"
	FlagTypeInt     FlagType = "int"
	FlagTypeFloat   FlagType = "float"
	FlagTypeUnknown FlagType = ""
)

// TypeOf maps a default value to its flag type.
func TypeOf(value any) FlagType {
	switch value.(type) {
	case bool:
		return FlagTypeBool
	case string:
		return FlagTypeString
	case int64:
		return FlagTypeInt
	case float64:
		return FlagTypeFloat
	default:
		return FlagTypeUnknown
	}
}

// NormalizeKey trims whitespace around a flag key.
func NormalizeKey(key string) string {
	return strings.TrimSpace(key)
}
