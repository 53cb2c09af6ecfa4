package schema

import (
	"encoding/json"
	"strings"
)

// --------------------------------------------------------------------------
// Value checks
// --------------------------------------------------------------------------

// IsNotNull reports whether v is present (not nil).
func IsNotNull(v any) bool {
	return v != nil
}

// IsText reports whether v is a string.
func IsText(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsInteger reports whether v is an integral number.
// Booleans are never integers, a json.Number counts if it is written in integer syntax.
func IsInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		return isIntegerLiteral(string(n))
	default:
		return false
	}
}

// IsReal reports whether v is a floating point number.
// Integers are not real numbers, a json.Number counts if it has a fraction or exponent.
func IsReal(v any) bool {
	switch n := v.(type) {
	case float32, float64:
		return true
	case json.Number:
		if _, err := n.Float64(); err != nil {
			return false
		}
		return !isIntegerLiteral(string(n))
	default:
		return false
	}
}

// IsBoolean reports whether v is a bool.
func IsBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

// isIntegerLiteral reports whether s is an optionally signed run of decimal digits
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
