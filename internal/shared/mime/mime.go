// Package mime infers content types for virtual project files.
//
// Inference is extension-based and intentionally small: the preview engine
// serves a handful of web asset kinds and everything else is generic binary.
// Content sniffing is available as a separate fallback for byte payloads whose
// path gives nothing away.
package mime

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/glasspane/preview/internal/shared/paths"
)

// Binary is the fallback type for unrecognized extensions.
const Binary = "application/octet-stream"

var byExtension = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"md":   "text/markdown",
}

// ByPath returns the content type for a virtual path based on its extension.
func ByPath(path string) string {
	if ct, ok := byExtension[paths.Ext(path)]; ok {
		return ct
	}
	return Binary
}

// Detect sniffs the content type from raw bytes. Used only when a path-based
// lookup came back generic; the extension table stays authoritative for the
// recognized asset kinds.
func Detect(data []byte) string {
	return mimetype.Detect(data).String()
}
