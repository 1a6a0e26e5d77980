package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/shared/mime"
	"github.com/glasspane/preview/internal/vfs"
)

// Host is the host-side responder. It owns exactly one sandbox instance and
// answers that instance's fetch requests from the project table; traffic
// announcing any other source is ignored outright.
type Host struct {
	table    *vfs.Table
	source   string
	port     *Port
	limiter  *rate.Limiter
	log      *logging.Logger
	observer func(status int)
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithRateLimit guards the host against request floods from a misbehaving
// context. Requests over the limit are dropped, which the delivery contract
// already permits.
func WithRateLimit(rps, burst int) HostOption {
	return func(h *Host) {
		h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithObserver installs a per-response status callback (metrics).
func WithObserver(fn func(status int)) HostOption {
	return func(h *Host) { h.observer = fn }
}

// NewHost creates a responder bound to one sandbox instance id.
func NewHost(table *vfs.Table, source string, port *Port, log *logging.Logger, opts ...HostOption) *Host {
	h := &Host{
		table:  table,
		source: source,
		port:   port,
		log:    log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run consumes inbound messages until the context is cancelled or the port is
// closed. Malformed and unrelated messages are silently ignored.
func (h *Host) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-h.port.Recv():
			if !ok {
				return
			}
			h.handle(m)
		}
	}
}

func (h *Host) handle(m Message) {
	if m.Type != TypeFetchRequest || m.RequestID == "" {
		return
	}
	if m.Source != h.source {
		h.log.Debug("ignoring message from unknown source",
			zap.String("announced", m.Source))
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		h.log.Warn("dropping bridge request over rate limit", zap.String("path", m.Path))
		return
	}

	reply := Message{
		Type:      TypeFetchResponse,
		RequestID: m.RequestID,
		Source:    h.source,
	}

	if content, ok := h.table.Read(m.Path); ok {
		reply.Status = 200
		reply.Content = content
		reply.Headers = map[string]string{"Content-Type": mime.ByPath(m.Path)}
	} else {
		reply.Status = 404
		reply.Content = fmt.Sprintf("not found: %s", m.Path)
		reply.Headers = map[string]string{"Content-Type": "text/plain"}
	}

	if h.observer != nil {
		h.observer(reply.Status)
	}
	h.port.Send(reply)
}
