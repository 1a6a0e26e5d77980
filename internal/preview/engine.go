package preview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/preview/internal/bridge"
	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/sandbox"
	"github.com/glasspane/preview/internal/vfs"
)

// DefaultDebounce coalesces bursts of edits into one rebuild.
const DefaultDebounce = 250 * time.Millisecond

// Generation bundles one installed render generation with its isolated
// context and bridge responder.
type Generation struct {
	Result  *BuildResult
	Context *sandbox.Context

	hostPort   *bridge.Port
	cancelHost context.CancelFunc
}

// teardown abandons the generation: the host stops answering, the ports
// close, and any pending fetch simply never settles.
func (g *Generation) teardown() {
	if g.cancelHost != nil {
		g.cancelHost()
	}
	if g.Context != nil {
		g.Context.Close()
	}
	if g.hostPort != nil {
		g.hostPort.Close()
	}
}

// Options configures an Engine.
type Options struct {
	Root        string
	Debounce    time.Duration
	BridgeRPS   int
	BridgeBurst int
	Passthrough bridge.Passthrough
	// OnInstall runs after each new generation is installed (and after the
	// previous one is revoked). Used for update pushes and metrics.
	OnInstall func(*Generation)
	// BridgeObserver receives the status of every bridge response.
	BridgeObserver func(status int)
}

// Engine keeps exactly one generation live, rebuilding on a debounce after
// project mutations.
type Engine struct {
	table    *vfs.Table
	builder  *Builder
	registry *HandleRegistry
	log      *logging.Logger
	opts     Options

	mu      sync.RWMutex
	root    string
	current *Generation
	closed  bool

	timerMu sync.Mutex
	timer   *time.Timer

	unwatch func()
}

// NewEngine creates an engine over table. Call Start to begin watching.
func NewEngine(table *vfs.Table, registry *HandleRegistry, log *logging.Logger, opts Options) *Engine {
	if opts.Root == "" {
		opts.Root = "/"
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Engine{
		table:    table,
		builder:  NewBuilder(table, registry, log),
		registry: registry,
		log:      log,
		opts:     opts,
		root:     opts.Root,
	}
}

// Start builds the first generation and begins watching the table.
func (e *Engine) Start() {
	e.Rebuild()
	e.unwatch = e.table.Watch(func([]string) {
		e.schedule()
	})
}

// Root returns the current preview root.
func (e *Engine) Root() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.root
}

// SetRoot changes the preview root and schedules a rebuild. The builder
// tolerates a root with no entry document.
func (e *Engine) SetRoot(root string) {
	if root == "" {
		root = "/"
	}
	e.mu.Lock()
	e.root = root
	e.mu.Unlock()
	e.schedule()
}

// Current returns the live generation, or nil before Start.
func (e *Engine) Current() *Generation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// schedule arms (or re-arms) the debounce timer.
func (e *Engine) schedule() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if e.timer != nil {
		e.timer.Reset(e.opts.Debounce)
		return
	}
	e.timer = time.AfterFunc(e.opts.Debounce, func() {
		e.timerMu.Lock()
		e.timer = nil
		e.timerMu.Unlock()
		e.Rebuild()
	})
}

// Rebuild derives a new generation and installs it. The superseded
// generation is torn down and its handles revoked strictly after the new one
// is in place.
func (e *Engine) Rebuild() *Generation {
	e.mu.RLock()
	root := e.root
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil
	}

	res := e.builder.Build(root)

	hostPort, sandboxPort := bridge.NewPair(64)
	hostOpts := []bridge.HostOption{}
	if e.opts.BridgeRPS > 0 {
		hostOpts = append(hostOpts, bridge.WithRateLimit(e.opts.BridgeRPS, e.opts.BridgeBurst))
	}
	if e.opts.BridgeObserver != nil {
		hostOpts = append(hostOpts, bridge.WithObserver(e.opts.BridgeObserver))
	}
	host := bridge.NewHost(e.table, res.Generation.String(), hostPort, e.log, hostOpts...)
	hostCtx, cancel := context.WithCancel(context.Background())
	go host.Run(hostCtx)

	sbx, err := sandbox.NewContext(res.Generation.String(), res.DocumentPath, sandboxPort)
	if err != nil {
		e.log.Error("sandbox context failed", zap.Error(err))
	} else if e.opts.Passthrough != nil {
		sbx.SetPassthrough(e.opts.Passthrough)
	}

	gen := &Generation{
		Result:     res,
		Context:    sbx,
		hostPort:   hostPort,
		cancelHost: cancel,
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		gen.teardown()
		e.registry.RevokeGeneration(res.Generation)
		return nil
	}
	old := e.current
	e.current = gen
	e.mu.Unlock()

	// revoke only after the new generation is installed
	if old != nil {
		old.teardown()
		e.registry.RevokeGeneration(old.Result.Generation)
	}

	e.log.Info("generation installed",
		zap.String("generation", res.Generation.String()),
		zap.String("root", root),
		zap.Int("rewrites", res.Rewrites),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Bool("placeholder", res.Placeholder))

	if e.opts.OnInstall != nil {
		e.opts.OnInstall(gen)
	}
	return gen
}

// Close stops watching and tears down the live generation.
func (e *Engine) Close() {
	e.timerMu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerMu.Unlock()

	if e.unwatch != nil {
		e.unwatch()
	}

	e.mu.Lock()
	e.closed = true
	current := e.current
	e.current = nil
	e.mu.Unlock()

	if current != nil {
		current.teardown()
		e.registry.RevokeGeneration(current.Result.Generation)
	}
}
