// Package overlay syncs in-context edits back into the project table.
//
// Inserted fragments are tagged with an opaque region id and, for text-bearing
// tags, marked directly editable. Every mutation follows the same discipline:
// re-parse a fresh copy of the root document, locate the region, mutate,
// re-serialize, store. The table stays the single source of truth; the
// rendering is never mutated independently of it.
package overlay
