// Package sandbox hosts the isolated rendering context.
//
// Each render generation gets its own goja VM sharing no memory with the
// engine; the only way in or out is the bridge port pair. The VM sees a small
// browser-shaped surface: console, location, and a fetch that the bridge shim
// virtualizes against the project table. Tearing a context down abandons its
// in-flight fetches; their promises simply never settle.
package sandbox
