package vfs

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the entry paths matching pattern. Patterns use doublestar
// syntax (`**/*.css`) and match against the path with its leading slash
// stripped, so `src/*.js` and `/src/*.js` are equivalent.
func (t *Table) Glob(pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(pattern, "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	t.mu.RLock()
	var out []string
	for p := range t.entries {
		if ok, _ := doublestar.Match(pattern, strings.TrimPrefix(p, "/")); ok {
			out = append(out, p)
		}
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// Under returns all entry paths inside the given prefix, sorted. The prefix
// is treated as a directory: Under("/src") matches "/src/app.js" but not
// "/srcfile".
func (t *Table) Under(prefix string) []string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	t.mu.RLock()
	var out []string
	for p := range t.entries {
		if prefix == "/" || strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}
