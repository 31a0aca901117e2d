package utils

import (
	"fmt"
	"math"
	"strconv"
)

// AnyToDisplayString formats any non-nil value as a string.
func AnyToDisplayString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// AnyToFloat64 converts JSON-decoded numbers. ok is false for anything else.
func AnyToFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case interface{ Float64() (float64, error) }:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// FormatNumber renders a number the shortest way, "100" rather than "100.000000".
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Sprint(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
