package validate

import (
	"maps"
	"slices"
	"strings"
)

// Keys inspected by the heuristic tier.
const (
	resourcesKey = "resources"
	requestsKey  = "requests"
	limitsKey    = "limits"
)

// heuristic checks the requests and limits of every object keyed
// "resources" anywhere under v.
func (w *walker) heuristic(v any, path string, depth int) {
	if depth > w.maxDepth {
		return
	}

	switch v := v.(type) {
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(v)) {
			p := childPath(path, key)

			if res, ok := v[key].(map[string]any); ok && key == resourcesKey {
				for _, field := range []string{limitsKey, requestsKey} {
					list, ok := res[field].(map[string]any)
					if !ok {
						continue
					}

					for _, name := range slices.Sorted(maps.Keys(list)) {
						w.checkQuantity(list[name], childPath(childPath(p, field), name))
					}
				}
			}

			w.heuristic(v[key], p, depth+1)
		}
	case []any:
		for i, item := range v {
			w.heuristic(item, indexPath(path, i), depth+1)
		}
	}
}

// segment is one step of a quantity path pattern.
type segment struct {
	name     string
	wildcard bool
}

// parsePattern splits a pattern such as "$.spec.containers[*].resources"
// into segments.
func parsePattern(pattern string) []segment {
	rest := strings.TrimPrefix(pattern, "$")

	var segs []segment

	for rest != "" {
		switch {
		case strings.HasPrefix(rest, "[*]"):
			segs = append(segs, segment{wildcard: true})
			rest = rest[len("[*]"):]
		case rest[0] == '.':
			rest = rest[1:]

			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}

			segs = append(segs, segment{name: rest[:end]})
			rest = rest[end:]
		default:
			// Unknown syntax; match nothing.
			return append(segs, segment{name: rest})
		}
	}

	return segs
}

// checkQuantityPath expands segs over v and checks every value reached as a
// quantity.
func (w *walker) checkQuantityPath(v any, segs []segment, path string, depth int) {
	if depth > w.maxDepth {
		return
	}

	if len(segs) == 0 {
		w.checkQuantity(v, path)

		return
	}

	seg, rest := segs[0], segs[1:]

	switch v := v.(type) {
	case map[string]any:
		if !seg.wildcard {
			if child, ok := v[seg.name]; ok {
				w.checkQuantityPath(child, rest, childPath(path, seg.name), depth+1)
			}

			return
		}

		for _, key := range slices.Sorted(maps.Keys(v)) {
			w.checkQuantityPath(v[key], rest, childPath(path, key), depth+1)
		}
	case []any:
		if !seg.wildcard {
			return
		}

		for i, item := range v {
			w.checkQuantityPath(item, rest, indexPath(path, i), depth+1)
		}
	}
}
