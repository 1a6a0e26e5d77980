// Package preview turns the in-memory project into servable render
// generations.
//
// A generation is fully derived from (table, preview root): the builder parses
// the entry document, injects the bridge bootstrap, rewrites local asset
// references to ephemeral handles, and serializes the result. The engine keeps
// exactly one generation live, rebuilds on a short debounce after table
// changes, and revokes a superseded generation's handles only after its
// replacement is installed.
package preview
