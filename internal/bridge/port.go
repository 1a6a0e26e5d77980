package bridge

import "sync"

// Port is one end of an asynchronous message channel pair. Sends enqueue into
// the peer's inbox without blocking: a full or closed peer silently drops the
// message. That drop is the whole delivery contract: at most once, possibly
// never.
type Port struct {
	mu     sync.Mutex
	in     chan Message
	peer   *Port
	closed bool
}

// NewPair creates two connected ports with the given inbox capacity.
func NewPair(buffer int) (*Port, *Port) {
	if buffer <= 0 {
		buffer = 64
	}
	a := &Port{in: make(chan Message, buffer)}
	b := &Port{in: make(chan Message, buffer)}
	a.peer, b.peer = b, a
	return a, b
}

// Send posts a message to the peer's inbox. Returns false when the message
// was dropped (peer closed or inbox full).
func (p *Port) Send(m Message) bool {
	peer := p.peer
	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed {
		return false
	}
	select {
	case peer.in <- m:
		return true
	default:
		return false
	}
}

// Recv returns the inbox channel. It is closed by Close.
func (p *Port) Recv() <-chan Message {
	return p.in
}

// Close shuts this end down. Messages already queued remain readable;
// subsequent sends from the peer are dropped.
func (p *Port) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.in)
}
