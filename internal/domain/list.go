package domain

import "slices"

// ID-list helpers. Every denormalized relationship in the data model is a
// slice of entity ids, and every mutation runs pull-then-push: remove all
// occurrences first, then append once. Repeated application converges to a
// single membership even if an earlier failure left duplicates behind.

// Pull returns ids with every occurrence of id removed.
// The input slice is not modified.
func Pull(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// PullAll returns ids with every occurrence of any of the given values removed.
func PullAll(ids []string, remove []string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if !slices.Contains(remove, v) {
			out = append(out, v)
		}
	}
	return out
}

// Push returns ids with id appended after removing any existing occurrence.
func Push(ids []string, id string) []string {
	return append(Pull(ids, id), id)
}

// Contains reports whether id occurs in ids.
func Contains(ids []string, id string) bool {
	return slices.Contains(ids, id)
}
