package trace

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toInt coerces a raw trace value into an integer. Go integers, integral
// floats, json.Number and decimal strings are accepted; everything else
// (fractions, booleans, nil, composite values) is rejected.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int8:
		return int(t), true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return intFrom64(t)
	case uint8:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return intFrom64(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return intFrom64(int64(t))
	case float32:
		return intFromFloat(float64(t))
	case float64:
		return intFromFloat(t)
	case json.Number:
		return intFromString(string(t))
	case string:
		return intFromString(t)
	}
	return 0, false
}

func intFrom64(v int64) (int, bool) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, false
	}
	return int(v), true
}

func intFromFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func intFromString(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intFrom64(n)
	}
	// Model checkers occasionally print integral values as "3.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return intFromFloat(f)
	}
	return 0, false
}
