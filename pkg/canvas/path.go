package canvas

import (
	"strings"
)

// setPath assigns value at a dot-separated path inside a nested map,
// creating intermediate maps as needed. A non-map value encountered on the
// way is replaced by a map, so later segments always have somewhere to live.
func setPath(m map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// getPath reads the value at a dot-separated path inside a nested map.
// Returns the value and true, or nil and false if any segment is missing
// or a non-map value is hit before the final segment.
func getPath(m map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	current := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	v, ok := current[segments[len(segments)-1]]
	return v, ok
}
