package normalize

// MergeDesired merges the fields desired specifies into a copy of current:
// objects merge recursively, arrays are full replacements, scalars overwrite.
// An explicit null in desired overwrites; a key absent from desired leaves
// the current value untouched. Neither input is mutated.
func MergeDesired(current, desired any) any {
	if _, isList := desired.([]any); isList {
		return desired
	}
	dm, dok := desired.(map[string]any)
	cm, cok := current.(map[string]any)
	if !dok || !cok {
		return desired
	}
	merged := make(map[string]any, len(cm)+len(dm))
	for k, v := range cm {
		merged[k] = v
	}
	for k, v := range dm {
		if v == nil {
			merged[k] = nil
			continue
		}
		merged[k] = MergeDesired(merged[k], v)
	}
	return merged
}
