package openapi

// Merge concatenates schema lists, dropping repeated full names. The first
// occurrence wins unless a later one carries a GVK the kept one lacks.
// Output order follows first appearance.
func Merge(lists ...[]SchemaInfo) []SchemaInfo {
	var merged []SchemaInfo

	index := make(map[string]int)

	for _, list := range lists {
		for _, info := range list {
			i, seen := index[info.FullName]
			if !seen {
				index[info.FullName] = len(merged)
				merged = append(merged, info)

				continue
			}

			if merged[i].GVK == nil && info.GVK != nil {
				merged[i] = info
			}
		}
	}

	return merged
}
