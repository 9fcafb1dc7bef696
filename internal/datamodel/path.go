// Package datamodel implements the SDUP data model: an in-memory,
// path-addressed key/value store with subscription, batching, dirty-path
// tracking, and bound-value resolution (spec.md §3, §4.1).
package datamodel

import "strings"

// Normalize makes a path absolute: non-absolute paths are implicitly
// prefixed with "/" (spec.md §3.2). Trailing slashes are trimmed except for
// the root itself.
func Normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

// Join composes a relative path beneath a base path. If rel is itself
// absolute, it is returned normalized and unaffected by base — this is the
// context-path composition rule used during template expansion (spec.md
// §3.2, §4.3).
func Join(base, rel string) string {
	if rel == "" {
		return Normalize(base)
	}
	if strings.HasPrefix(rel, "/") {
		return Normalize(rel)
	}
	base = Normalize(base)
	if base == "/" {
		return "/" + rel
	}
	return base + "/" + rel
}

// IsAbsolute reports whether path begins with "/".
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "/")
}

// Segments splits a normalized path into its non-empty components.
func Segments(path string) []string {
	path = Normalize(path)
	if path == "/" {
		return nil
	}
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// Parent returns the path one level up, or "/" if path is already a root
// segment.
func Parent(path string) string {
	segs := Segments(path)
	if len(segs) <= 1 {
		return "/"
	}
	return "/" + strings.Join(segs[:len(segs)-1], "/")
}
