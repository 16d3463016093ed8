// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

// DeepMerge returns a new document with right layered over left.
//
// Mapping values merge key by key, recursively. Any other value in right,
// including a list, replaces the left value wholesale. A key that is absent
// from right, or present with a nil value, keeps the left value. Neither
// argument is modified.
func DeepMerge(left, right Document) Document {
	return Document(mergeMaps(left, right))
}

func mergeMaps(left, right map[string]any) map[string]any {
	out := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		out[k] = cloneValue(v)
	}
	for k, rv := range right {
		if rv == nil {
			continue
		}
		lm, lok := asMap(out[k])
		rm, rok := asMap(rv)
		if lok && rok {
			out[k] = mergeMaps(lm, rm)
			continue
		}
		out[k] = cloneValue(rv)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return mergeMaps(t, nil)
	case Document:
		return mergeMaps(t, nil)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
