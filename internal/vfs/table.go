package vfs

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/glasspane/preview/internal/shared/paths"
)

// MetadataPath is the well-known provenance entry. It is an ordinary file in
// every other respect.
const MetadataPath = "/project.json"

// Metadata carries project provenance stored at MetadataPath.
type Metadata struct {
	Name      string    `json:"name"`
	Template  string    `json:"template,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Watcher receives the set of paths touched by one mutation.
type Watcher func(changed []string)

// Table is the canonical path→content map. Keys are absolute slash paths;
// directories exist only by prefix implication.
type Table struct {
	mu       sync.RWMutex
	entries  map[string]string
	watchers map[int]Watcher
	nextID   int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make(map[string]string),
		watchers: make(map[int]Watcher),
	}
}

// Read returns the content of path.
func (t *Table) Read(path string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	content, ok := t.entries[paths.Normalize(path)]
	return content, ok
}

// Write stores content at path, replacing any previous entry.
func (t *Table) Write(path, content string) {
	key := paths.Normalize(path)
	t.mu.Lock()
	t.entries[key] = content
	t.mu.Unlock()
	t.notify([]string{key})
}

// Delete removes the entry at path. Deleting a missing entry is a no-op.
func (t *Table) Delete(path string) {
	key := paths.Normalize(path)
	t.mu.Lock()
	_, existed := t.entries[key]
	delete(t.entries, key)
	t.mu.Unlock()
	if existed {
		t.notify([]string{key})
	}
}

// Merge applies a batch of entries, last-write-wins per path.
func (t *Table) Merge(batch map[string]string) {
	if len(batch) == 0 {
		return
	}
	changed := make([]string, 0, len(batch))
	t.mu.Lock()
	for path, content := range batch {
		key := paths.Normalize(path)
		t.entries[key] = content
		changed = append(changed, key)
	}
	t.mu.Unlock()
	sort.Strings(changed)
	t.notify(changed)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Paths returns all entry paths, sorted.
func (t *Table) Paths() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.entries))
	for p := range t.entries {
		out = append(out, p)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the whole table.
func (t *Table) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.entries))
	for p, c := range t.entries {
		out[p] = c
	}
	return out
}

// Watch registers a watcher invoked after every mutation with the touched
// paths. Returns an unsubscribe func. Watchers run synchronously on the
// mutating goroutine; keep them cheap.
func (t *Table) Watch(w Watcher) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.watchers[id] = w
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.watchers, id)
		t.mu.Unlock()
	}
}

func (t *Table) notify(changed []string) {
	t.mu.RLock()
	ws := make([]Watcher, 0, len(t.watchers))
	for _, w := range t.watchers {
		ws = append(ws, w)
	}
	t.mu.RUnlock()
	for _, w := range ws {
		w(changed)
	}
}

// ReadMetadata decodes the provenance entry, if present.
func (t *Table) ReadMetadata() (*Metadata, bool) {
	raw, ok := t.Read(MetadataPath)
	if !ok {
		return nil, false
	}
	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

// WriteMetadata stores the provenance entry.
func (t *Table) WriteMetadata(meta Metadata) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	t.Write(MetadataPath, string(raw))
	return nil
}
