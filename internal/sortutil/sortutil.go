package sortutil

import "sort"

// Sorted returns a new slice containing the input strings sorted
// lexicographically. The input is not modified.
func Sorted(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	return out
}

// Duplicates returns the values occurring more than once, sorted.
func Duplicates(ss []string) []string {
	seen := make(map[string]int, len(ss))
	for _, s := range ss {
		seen[s]++
	}
	var out []string
	for s, n := range seen {
		if n > 1 {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
