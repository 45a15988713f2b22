package state

// MergeRaw deep-merges freshly fetched raw installation documents over
// previously cached ones, matched by the installation "unique" field.
// Map values merge recursively with the incoming side winning; every
// other value, lists included, is replaced wholesale. Incoming
// installations with no cached counterpart are kept as-is.
//
// Neither input is mutated. Raw documents are treated as immutable once
// cached, so the result may alias unchanged subtrees of either side.
func MergeRaw(cached, incoming []map[string]any) []map[string]any {
	if len(cached) == 0 {
		return incoming
	}

	byUnique := make(map[string]map[string]any, len(cached))
	for _, doc := range cached {
		if unique, ok := doc["unique"].(string); ok {
			byUnique[unique] = doc
		}
	}

	merged := make([]map[string]any, 0, len(incoming))
	for _, doc := range incoming {
		unique, _ := doc["unique"].(string)
		if base, ok := byUnique[unique]; ok {
			merged = append(merged, mergeDoc(base, doc))
		} else {
			merged = append(merged, doc)
		}
	}
	return merged
}

func mergeDoc(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if overlayMap, ok := v.(map[string]any); ok {
			if baseMap, ok := out[k].(map[string]any); ok {
				out[k] = mergeDoc(baseMap, overlayMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}
