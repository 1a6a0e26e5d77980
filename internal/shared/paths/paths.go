// Package paths implements browser-style reference resolution against the
// virtual project tree.
//
// Every canonical path is absolute and slash-separated (`/src/index.html`).
// References found in documents fall into three classes: external (scheme,
// protocol-relative, or embedded data), root-absolute, and relative. Only the
// last two are ever resolved; external references pass through untouched.
package paths

import "strings"

// Root is the default preview root.
const Root = "/"

// IndexDocument is the entry document looked up under a preview root.
const IndexDocument = "index.html"

// IsExternal reports whether ref must never be resolved or rewritten:
// protocol-relative (`//cdn...`), embedded data (`data:...`), or any explicit
// scheme prefix (`https:`, `mailto:`, `javascript:`, ...).
func IsExternal(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c == ':' {
			return i > 0
		}
		if !isSchemeChar(c, i == 0) {
			return false
		}
	}
	return false
}

func isSchemeChar(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case first:
		return false
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		return true
	}
	return false
}

// Resolve resolves relative against base the way a browser resolves a
// reference against a document URL.
//
// External references are returned verbatim. A reference starting with `/` is
// root-absolute and bypasses the segment walk. Otherwise, if base does not end
// in `/` its last segment is dropped (a file resolves relative to its
// containing directory), then relative is applied segment by segment: `.` is a
// no-op, `..` pops one segment (never above root), anything else is pushed.
func Resolve(base, relative string) string {
	if relative == "" {
		return base
	}
	if IsExternal(relative) {
		return relative
	}
	if strings.HasPrefix(relative, "/") {
		return relative
	}

	segs := make([]string, 0, 8)
	for _, seg := range strings.Split(strings.TrimPrefix(base, "/"), "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if !strings.HasSuffix(base, "/") && len(segs) > 0 {
		segs = segs[:len(segs)-1]
	}

	for _, seg := range strings.Split(relative, "/") {
		switch seg {
		case "", ".":
			// no-op
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
		default:
			segs = append(segs, seg)
		}
	}

	resolved := "/" + strings.Join(segs, "/")
	if strings.HasSuffix(relative, "/") && !strings.HasSuffix(resolved, "/") {
		resolved += "/"
	}
	return resolved
}

// Normalize canonicalizes a table key: ensures a single leading slash and
// collapses empty, `.` and `..` segments.
func Normalize(path string) string {
	return Resolve("/", strings.TrimLeft(path, "/"))
}

// Index returns the entry document path under root. The root prefix may or
// may not carry a trailing slash; `Index("/site")` and `Index("/site/")` are
// equivalent.
func Index(root string) string {
	if root == "" {
		root = Root
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	return root + IndexDocument
}

// Ext returns the lower-cased extension of path without the dot, or "".
func Ext(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 && i < len(path)-1 {
		return strings.ToLower(path[i+1:])
	}
	return ""
}
