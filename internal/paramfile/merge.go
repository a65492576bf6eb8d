package paramfile

// DeepMerge returns details overlaid with override. Values from override win
// on key collisions; where both sides hold a mapping the two are merged
// recursively. Neither input is modified.
func DeepMerge(details, override map[string]any) map[string]any {
	out := make(map[string]any, len(details)+len(override))
	for k, v := range details {
		out[k] = cloneValue(v)
	}
	for k, v := range override {
		src, srcIsMap := asMap(v)
		dst, dstIsMap := asMap(out[k])
		if srcIsMap && dstIsMap {
			out[k] = DeepMerge(dst, src)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
