// Package middleware provides shared gin middleware: CORS for the editor
// frontend and request rate limiting.
package middleware
