// Package ws exposes the realtime surface: file mutations, overlay edits,
// and selection flow in over one WebSocket connection, and every newly
// installed render generation is pushed back out as a preview_updated frame.
// Malformed frames are dropped; unknown message types get an error frame.
package ws
