package preference

import "slices"

// Toggle returns ids without id if it is present, otherwise ids with id
// appended. The input slice is never modified.
func Toggle(ids []string, id string) []string {
	if Contains(ids, id) {
		return Remove(ids, id)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

// Remove returns a copy of ids with every occurrence of id dropped.
func Remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether id is in ids.
func Contains(ids []string, id string) bool {
	return slices.Contains(ids, id)
}

// Set builds a membership set from ids.
func Set(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
