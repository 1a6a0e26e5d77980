package sandbox

import (
	"errors"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/glasspane/preview/internal/bridge"
)

// ErrClosed is returned when executing against a torn-down context.
var ErrClosed = errors.New("sandbox context is closed")

// LogEntry captures one console call from inside the context.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// Context is one isolated rendering context. All VM access is serialized
// through the context's own mutex; the bridge pump delivers responses under
// the same lock, so promise settlement never races script execution.
type Context struct {
	instanceID string
	location   string

	mu     sync.Mutex
	vm     *goja.Runtime
	shim   *bridge.Shim
	port   *bridge.Port
	closed bool

	consoleMu sync.Mutex
	console   []LogEntry
}

// NewContext creates a context for one generation. location is the
// generation's document path; port is the sandbox end of the bridge pair.
func NewContext(instanceID, location string, port *bridge.Port) (*Context, error) {
	c := &Context{
		instanceID: instanceID,
		location:   location,
		vm:         goja.New(),
		port:       port,
	}
	c.shim = bridge.NewShim(instanceID, location, port)

	if err := c.setupGlobals(); err != nil {
		return nil, err
	}

	go c.pump()
	return c, nil
}

// InstanceID returns the identifier this context announces on the bridge.
func (c *Context) InstanceID() string { return c.instanceID }

// Shim exposes the bridge shim, mainly for tests.
func (c *Context) Shim() *bridge.Shim { return c.shim }

// SetPassthrough installs a real network client for external fetches. The
// client must settle asynchronously; its continuations are re-serialized with
// the VM before they run.
func (c *Context) SetPassthrough(p bridge.Passthrough) {
	c.shim.SetPassthrough(serializedPassthrough{ctx: c, inner: p})
}

type serializedPassthrough struct {
	ctx   *Context
	inner bridge.Passthrough
}

func (s serializedPassthrough) Fetch(target string, cont bridge.Continuation) {
	s.inner.Fetch(target, func(resp *bridge.Response, err error) {
		s.ctx.mu.Lock()
		defer s.ctx.mu.Unlock()
		if s.ctx.closed {
			return
		}
		cont(resp, err)
	})
}

// Execute runs script inside the context and returns its exported value.
func (c *Context) Execute(script string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	val, err := c.vm.RunString(script)
	if err != nil {
		return nil, err
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}
	return val.Export(), nil
}

// Console returns a copy of the accumulated console output.
func (c *Context) Console() []LogEntry {
	c.consoleMu.Lock()
	defer c.consoleMu.Unlock()
	return append([]LogEntry{}, c.console...)
}

// PendingFetches reports in-flight bridge requests.
func (c *Context) PendingFetches() int {
	return c.shim.PendingCount()
}

// Close tears the context down. Pending fetches are abandoned; their
// continuations are never invoked.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.port.Close()
}

// pump delivers inbound bridge messages to the shim under the VM lock, so
// settlements are serialized with script execution.
func (c *Context) pump() {
	for m := range c.port.Recv() {
		c.mu.Lock()
		if !c.closed {
			c.shim.HandleMessage(m)
		}
		c.mu.Unlock()
	}
}

func (c *Context) setupGlobals() error {
	// nothing node-shaped leaks into page code
	c.vm.Set("require", goja.Undefined())
	c.vm.Set("process", goja.Undefined())
	c.vm.Set("module", goja.Undefined())
	c.vm.Set("exports", goja.Undefined())

	console := c.vm.NewObject()
	for _, level := range []string{"log", "warn", "error", "info"} {
		if err := console.Set(level, c.makeConsoleFunc(level)); err != nil {
			return err
		}
	}
	if err := c.vm.Set("console", console); err != nil {
		return err
	}

	location := c.vm.NewObject()
	if err := location.Set("pathname", c.location); err != nil {
		return err
	}
	if err := location.Set("href", c.location); err != nil {
		return err
	}
	if err := c.vm.Set("location", location); err != nil {
		return err
	}

	// timers are no-ops: the context renders one generation and has no loop
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	c.vm.Set("setTimeout", noop)
	c.vm.Set("setInterval", noop)

	// the same virtualized fetch is reachable under both names: page code
	// calls the standard global, the bootstrap script pins the bridge alias
	fetch := c.vm.ToValue(c.makeFetch())
	if err := c.vm.Set("fetch", fetch); err != nil {
		return err
	}
	return c.vm.Set("__preview_fetch", fetch)
}

func (c *Context) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}
		c.consoleMu.Lock()
		c.console = append(c.console, LogEntry{Level: level, Message: msg, Time: time.Now()})
		c.consoleMu.Unlock()
		return goja.Undefined()
	}
}

// makeFetch builds the virtualized fetch: it returns a promise that settles
// when (and only when) the bridge answers. The continuation runs either
// synchronously during the call or on the pump goroutine, which holds the
// same lock the caller does, so resolving is always serialized with the VM.
func (c *Context) makeFetch() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		target := call.Argument(0).String()
		promise, resolve, reject := c.vm.NewPromise()

		c.shim.Fetch(target, func(resp *bridge.Response, err error) {
			if err != nil {
				reject(c.vm.NewGoError(err))
				return
			}
			obj := c.vm.NewObject()
			obj.Set("status", resp.Status)
			obj.Set("ok", resp.Status >= 200 && resp.Status < 300)
			obj.Set("body", resp.Body)
			headers := c.vm.NewObject()
			for k, v := range resp.Headers {
				headers.Set(k, v)
			}
			obj.Set("headers", headers)
			obj.Set("text", func(goja.FunctionCall) goja.Value {
				p, res, _ := c.vm.NewPromise()
				res(resp.Body)
				return c.vm.ToValue(p)
			})
			resolve(obj)
		})

		return c.vm.ToValue(promise)
	}
}
