// Package http exposes the REST surface: project file operations, the
// current preview document, handle dereferencing, overlay mutations, and
// health. Collaborators (agents, uploaders, editors) use the same entry-level
// file operations the engine uses internally.
package http
