package dataset

import (
	"regexp"
	"sort"
	"strings"
)

// framePattern matches a Java stack frame's pkg.Class.method before its
// "(File.java:123)" location.
var framePattern = regexp.MustCompile(`((?:[a-zA-Z_][\w$]*\.)+[A-Z][\w$]*\.[a-zA-Z_][\w$]*)\s*\(.*?\)`)

// ExtractFramePaths returns the fully qualified methods of every frame in a
// stack trace, in order of appearance. Repeated frames are kept.
func ExtractFramePaths(stackTrace string) []string {
	matches := framePattern.FindAllStringSubmatch(stackTrace, -1)
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, m[1])
	}
	return paths
}

// UniqueFramePaths is ExtractFramePaths with duplicates removed, keeping the
// first occurrence.
func UniqueFramePaths(stackTrace string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range ExtractFramePaths(stackTrace) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// FilterSourceBySuffix keeps the entries of source whose key ends with one of
// the frame paths. Keys of source are typically repository-relative dotted
// paths, longer than the package-qualified frame names.
func FilterSourceBySuffix[V any](source map[string]V, frames []string) map[string]V {
	out := make(map[string]V)
	for key, body := range source {
		for _, f := range frames {
			if strings.HasSuffix(key, f) {
				out[key] = body
				break
			}
		}
	}
	return out
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
