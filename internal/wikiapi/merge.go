package wikiapi

// mergeResult folds src into dst. Arrays concatenate, objects merge
// recursively, and any other value in src replaces the one in dst.
func mergeResult(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, incoming := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = cloneValue(incoming)
			continue
		}
		switch in := incoming.(type) {
		case []any:
			if cur, ok := existing.([]any); ok {
				merged := make([]any, 0, len(cur)+len(in))
				merged = append(merged, cur...)
				for _, item := range in {
					merged = append(merged, cloneValue(item))
				}
				dst[key] = merged
				continue
			}
		case map[string]any:
			if cur, ok := existing.(map[string]any); ok {
				dst[key] = mergeResult(cur, in)
				continue
			}
		}
		dst[key] = cloneValue(incoming)
	}
	return dst
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
