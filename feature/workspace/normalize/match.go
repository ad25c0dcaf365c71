package normalize

import "strings"

// Matches reports whether current satisfies everything desired specifies.
// This is a one-directional subset test: keys absent from desired are
// ignored, and extra fields in current are ignored.
//
// Arrays are compared by the shape of the desired elements. GTM entities mix
// three kinds of lists that need different semantics: primitive id/flag lists
// (set containment), identity-keyed collections such as parameter lists
// (match by "name" or "key", order irrelevant), and opaque structured blocks
// (ordered positional comparison). A single rule cannot handle all three.
func Matches(current, desired any) bool {
	switch d := desired.(type) {
	case nil:
		return current == nil
	case map[string]any:
		c, ok := current.(map[string]any)
		if !ok {
			return false
		}
		for k, dv := range d {
			cv, exists := c[k]
			if !exists {
				return false
			}
			if !Matches(cv, dv) {
				return false
			}
		}
		return true
	case []any:
		return matchesArray(current, d)
	default:
		return scalarEqual(current, desired)
	}
}

func matchesArray(current any, desired []any) bool {
	if len(desired) == 0 {
		return true
	}
	c, ok := current.([]any)
	if !ok {
		return false
	}

	if allPrimitives(desired) {
		// Set containment: order and current-side duplicates are
		// irrelevant.
		for _, dv := range desired {
			found := false
			for _, cv := range c {
				if Matches(cv, dv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	if keyField, ok := commonIdentityField(desired); ok {
		index := indexByField(c, keyField)
		for _, dv := range desired {
			dm := dv.(map[string]any)
			cm, ok := index[identityValue(dm, keyField)]
			if !ok {
				return false
			}
			if !Matches(cm, dv) {
				return false
			}
		}
		return true
	}

	// Heterogeneous or unkeyed objects: ordered positional comparison.
	if len(c) != len(desired) {
		return false
	}
	for i, dv := range desired {
		if !Matches(c[i], dv) {
			return false
		}
	}
	return true
}

func allPrimitives(items []any) bool {
	for _, item := range items {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

// commonIdentityField returns the identity field shared by every element:
// "name" when all elements carry one, else "key". Name identity is
// case-insensitive, matching entity identity everywhere else in the engine.
func commonIdentityField(items []any) (string, bool) {
	for _, candidate := range []string{"name", "key"} {
		shared := true
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return "", false
			}
			if _, ok := m[candidate].(string); !ok {
				shared = false
				break
			}
		}
		if shared {
			return candidate, true
		}
	}
	return "", false
}

func identityValue(m map[string]any, field string) string {
	s, _ := m[field].(string)
	if field == "name" {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return s
}

func indexByField(items []any, field string) map[string]map[string]any {
	index := make(map[string]map[string]any, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := m[field].(string); !ok {
			continue
		}
		index[identityValue(m, field)] = m
	}
	return index
}

// scalarEqual compares primitives with numeric tolerance across the int and
// float shapes produced by YAML and JSON decoding.
func scalarEqual(current, desired any) bool {
	if cf, ok := asFloat(current); ok {
		if df, ok := asFloat(desired); ok {
			return cf == df
		}
		return false
	}
	return current == desired
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
