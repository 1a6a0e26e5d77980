// Package server wires the preview engine together: the project table, the
// handle registry, the render engine, overlay sync, metrics, and the HTTP
// plus WebSocket surfaces on one gin router.
package server
