package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/glasspane/preview/internal/shared/id"
	"github.com/glasspane/preview/internal/shared/paths"
)

// ErrNoPassthrough is reported when an external target is fetched and no real
// network client is configured.
var ErrNoPassthrough = errors.New("external fetch not available in this context")

// Continuation settles one fetch. It is invoked at most once; a request
// abandoned across a regeneration is never settled at all.
type Continuation func(*Response, error)

// Passthrough performs real network fetches for external targets. The shim
// hands those through unchanged; only same-origin targets are virtualized.
type Passthrough interface {
	Fetch(target string, cont Continuation)
}

// Shim is the in-context half of the bridge. It intercepts the context's
// resource fetches, virtualizes same-origin targets into correlated request
// messages, and settles continuations when matching responses arrive.
type Shim struct {
	source   string
	location string
	port     *Port

	mu          sync.Mutex
	pending     map[string]Continuation
	passthrough Passthrough
}

// NewShim creates the shim for one sandbox instance. location is the
// context's own current document path; same-origin targets resolve against
// it.
func NewShim(source, location string, port *Port) *Shim {
	return &Shim{
		source:   source,
		location: location,
		port:     port,
		pending:  make(map[string]Continuation),
	}
}

// SetPassthrough installs a real network client for external targets.
func (s *Shim) SetPassthrough(p Passthrough) {
	s.mu.Lock()
	s.passthrough = p
	s.mu.Unlock()
}

// Fetch intercepts one resource request. External targets go to the
// passthrough; everything else resolves against the context location, records
// a pending continuation under a fresh request id, and posts a request
// message. The continuation settles only when a matching response arrives:
// there is no timeout and no retry, and a send dropped by the port means the
// continuation is simply never invoked.
func (s *Shim) Fetch(target string, cont Continuation) {
	if paths.IsExternal(target) {
		s.mu.Lock()
		p := s.passthrough
		s.mu.Unlock()
		if p == nil {
			cont(nil, ErrNoPassthrough)
			return
		}
		p.Fetch(target, cont)
		return
	}

	resolved := paths.Resolve(s.location, target)
	reqID := id.NewRequestID()

	s.mu.Lock()
	s.pending[reqID] = cont
	s.mu.Unlock()

	s.port.Send(Message{
		Type:      TypeFetchRequest,
		Path:      resolved,
		RequestID: reqID,
		Source:    s.source,
	})
}

// HandleMessage settles the pending continuation matching an inbound
// response. Responses with an unknown or already-settled request id are
// discarded without effect, as is anything that is not a fetch response.
func (s *Shim) HandleMessage(m Message) {
	if m.Type != TypeFetchResponse {
		return
	}

	s.mu.Lock()
	cont, ok := s.pending[m.RequestID]
	if ok {
		delete(s.pending, m.RequestID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if m.Status >= 200 && m.Status < 300 {
		cont(&Response{Status: m.Status, Headers: m.Headers, Body: m.Content}, nil)
		return
	}
	cont(nil, fmt.Errorf("fetch failed with status %d", m.Status))
}

// PendingCount reports in-flight requests; abandoned requests stay counted
// until the shim itself is dropped with its generation.
func (s *Shim) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
