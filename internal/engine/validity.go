package engine

import "reflect"

// IsValidAnswer decides whether a value counts as answered. This is the
// single source of truth for "answered" across progress, gating, and point
// awarding; do not reimplement the rules elsewhere.
//
// Rules, in order: nil -> invalid; empty string -> invalid; empty slice ->
// invalid; map with zero keys -> invalid; everything else -> valid.
func IsValidAnswer(value interface{}) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	case map[string]float64:
		return len(v) > 0
	}
	// Decoded JSON only produces the shapes above, but answers set directly
	// in Go may carry other slice/map types.
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
