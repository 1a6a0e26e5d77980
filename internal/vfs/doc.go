// Package vfs owns the canonical in-memory project: a table of absolute
// path → text content entries. Every collaborator (overlay sync, agent batch
// merges, direct edits, uploads) mutates the project through the same
// entry-level operations; the renderer only ever reads. Mutations are
// last-write-wins at whole-entry granularity and serialized through the table.
package vfs
