// Package loop drives the animation: once per tick it advances the clock, snapshots
// the parameters, evaluates the surface over the bound geometry and hands the frame
// to a render target.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gonoisesurface/geometry"
	"gonoisesurface/params"
	"gonoisesurface/surface"
)

var (
	ErrConfiguration  = errors.New("loop: configuration error")
	ErrNotRunning     = errors.New("loop: not running")
	ErrAlreadyStarted = errors.New("loop: already started")
	ErrInvalidHandle  = errors.New("loop: invalid geometry handle")

	errNoGeometry = errors.New("loop: bound geometry has no mesh")
)

// RenderTarget draws frames. Both methods are called on the goroutine that ticks
// the loop.
type RenderTarget interface {
	Resize(width, height int)
	Render(f *Frame) error
}

// Frame is the evaluated surface of one tick. Samples is parallel to the mesh
// positions and is only valid during Render.
type Frame struct {
	Tick     uint64
	Uniforms params.Snapshot
	Geometry *geometry.Handle
	Mesh     *geometry.Mesh
	Samples  []surface.Sample
	Faults   int
}

type Options struct {
	// FixedStep is added to the clock every tick.
	FixedStep float32
	// TickRate is the number of ticks per second of Run.
	TickRate int
	// Workers bounds the goroutines evaluating vertices; 0 uses GOMAXPROCS.
	Workers int
	// ResizeDebounce is the quiet period before a resize is applied.
	ResizeDebounce time.Duration
}

func DefaultOptions() Options {
	return Options{
		FixedStep:      0.01,
		TickRate:       60,
		ResizeDebounce: 100 * time.Millisecond,
	}
}

func (o Options) validate() error {
	if !(o.FixedStep > 0) {
		return fmt.Errorf("%w: fixed step %v", ErrConfiguration, o.FixedStep)
	}
	if o.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate %d", ErrConfiguration, o.TickRate)
	}
	if o.Workers < 0 || o.ResizeDebounce < 0 {
		return fmt.Errorf("%w: workers %d, debounce %v", ErrConfiguration, o.Workers, o.ResizeDebounce)
	}
	return nil
}

type Loop struct {
	log    *zap.Logger
	store  *params.Store
	eval   *surface.Evaluator
	target RenderTarget
	opts   Options

	state atomic.Int32
	bound atomic.Pointer[geometry.Handle]

	// tickMu is held for a whole tick and by Stop.
	tickMu   sync.Mutex
	buffers  [2][]surface.Sample
	cur      int
	lastGood *Frame
	faultLog time.Time

	// the clock is kept as a tick count over the time found at Start; adding the
	// step to a float32 stops moving once the value passes 2^18.
	clockBase  float64
	clockTicks uint64

	// mu guards the requests coming from input callbacks.
	mu            sync.Mutex
	closed        bool
	pending       *geometry.Handle
	size          [2]int
	resizePending bool

	statsMu  sync.Mutex
	stats    Stats
	evalTime History
	leaks    []*geometry.Handle

	resize      *Debouncer
	changes     atomic.Int64
	unsubscribe func()
}

// New builds an idle loop bound to initial. The loop owns initial from now on.
func New(store *params.Store, eval *surface.Evaluator, target RenderTarget, initial *geometry.Handle, opts Options, log *zap.Logger) (*Loop, error) {
	if store == nil || eval == nil || target == nil {
		return nil, fmt.Errorf("%w: store, evaluator and render target are required", ErrConfiguration)
	}
	if initial == nil || initial.Mesh() == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrInvalidHandle)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loop{
		log:    log,
		store:  store,
		eval:   eval,
		target: target,
		opts:   opts,
	}
	l.bound.Store(initial)
	l.resize = NewDebouncer(opts.ResizeDebounce, l.markResize)

	// the loop only notes that something changed; values are read at the next tick
	unsub, err := store.Subscribe("", func(name string, _ params.Value) {
		if name != params.Time {
			l.changes.Add(1)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	l.unsubscribe = unsub
	return l, nil
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

// Bound returns the handle drawn by the most recent tick.
func (l *Loop) Bound() *geometry.Handle {
	return l.bound.Load()
}

func (l *Loop) Stats() Stats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	s := l.stats
	s.Leaked = len(l.leaks)
	s.EvalAvg = l.evalTime.Average()
	s.EvalMax = l.evalTime.Max()
	return s
}

// Leaks lists the handles whose release failed twice and were abandoned.
func (l *Loop) Leaks() []string {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	out := make([]string, 0, len(l.leaks))
	for _, h := range l.leaks {
		out = append(out, h.String())
	}
	return out
}

func (l *Loop) Start() error {
	l.tickMu.Lock()
	if !l.state.CompareAndSwap(int32(Idle), int32(Running)) {
		l.tickMu.Unlock()
		return fmt.Errorf("%w (state %v)", ErrAlreadyStarted, l.State())
	}
	l.clockBase = float64(l.store.Scalar(params.Time))
	l.clockTicks = 0
	l.tickMu.Unlock()
	l.log.Info("frame loop running",
		zap.Stringer("geometry", l.Bound()),
		zap.Float32("step", l.opts.FixedStep))
	return nil
}

// Run starts the loop and ticks it at the configured rate until ctx is done, then
// stops it.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Start(); err != nil {
		return err
	}
	defer l.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(l.opts.TickRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}

// UpdateGeometry schedules h to replace the bound geometry at the next tick
// boundary. The loop takes ownership of h. A handle scheduled but superseded before
// any tick bound it is disposed right away; asking for the bound handle again
// cancels the pending one. A tick in progress finishes first.
func (l *Loop) UpdateGeometry(h *geometry.Handle) error {
	if h == nil || h.Mesh() == nil {
		return ErrInvalidHandle
	}
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrNotRunning
	}
	prev := l.pending
	if h == l.Bound() {
		l.pending = nil
	} else {
		l.pending = h
	}
	l.mu.Unlock()
	if prev != nil && prev != h {
		l.release(prev)
	}
	return nil
}

// RequestResize records a new viewport size. Bursts are coalesced; the render
// target sees the last size once the debounce window has passed quietly.
func (l *Loop) RequestResize(width, height int) {
	l.mu.Lock()
	l.size = [2]int{width, height}
	l.mu.Unlock()
	l.resize.Trigger()
}

func (l *Loop) markResize() {
	l.mu.Lock()
	l.resizePending = true
	l.mu.Unlock()
}

// Tick runs one frame. Faults inside the frame are contained: bad vertices fall
// back to their base position, and a failed evaluation redraws the last good frame.
func (l *Loop) Tick(ctx context.Context) error {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	if l.State() != Running {
		return ErrNotRunning
	}

	l.applySwap()
	l.applyResize()

	l.clockTicks++
	t := min(l.clockBase+float64(l.clockTicks)*float64(l.opts.FixedStep), params.MaxTime)
	if err := l.store.SetScalar(params.Time, float32(t)); err != nil {
		l.log.Warn("advance clock", zap.Error(err))
	}
	if n := l.changes.Swap(0); n > 0 {
		l.log.Debug("parameter changes picked up", zap.Int64("writes", n))
	}
	u := l.store.Snapshot()

	l.statsMu.Lock()
	l.stats.Ticks++
	tick := l.stats.Ticks
	l.statsMu.Unlock()

	start := time.Now()
	frame, err := l.evaluate(ctx, tick, u)
	l.statsMu.Lock()
	l.evalTime.Add(time.Since(start))
	l.statsMu.Unlock()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("evaluation failed, reusing last frame", zap.Uint64("tick", tick), zap.Error(err))
		l.statsMu.Lock()
		l.stats.ReusedFrames++
		l.statsMu.Unlock()
		frame = l.lastGood
		if frame == nil {
			return nil
		}
	} else {
		l.lastGood = frame
		l.noteFaults(tick, frame.Faults)
	}

	if err := l.target.Render(frame); err != nil {
		l.statsMu.Lock()
		l.stats.RenderErrors++
		l.statsMu.Unlock()
		l.log.Warn("render failed", zap.Uint64("tick", tick), zap.Error(err))
	}
	return nil
}

func (l *Loop) evaluate(ctx context.Context, tick uint64, u params.Snapshot) (f *Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loop: evaluation panicked: %v", r)
		}
	}()
	h := l.Bound()
	mesh := h.Mesh()
	if mesh == nil {
		return nil, errNoGeometry
	}
	buf := l.buffers[l.cur]
	if cap(buf) < len(mesh.Positions) {
		buf = make([]surface.Sample, len(mesh.Positions))
	}
	buf = buf[:len(mesh.Positions)]
	faults, err := l.eval.EvaluateMesh(ctx, mesh.Positions, u, buf, l.opts.Workers)
	if err != nil {
		return nil, err
	}
	l.buffers[l.cur] = buf
	l.cur ^= 1
	return &Frame{
		Tick:     tick,
		Uniforms: u,
		Geometry: h,
		Mesh:     mesh,
		Samples:  buf,
		Faults:   faults,
	}, nil
}

func (l *Loop) noteFaults(tick uint64, n int) {
	if n == 0 {
		return
	}
	l.statsMu.Lock()
	l.stats.VertexFaults += uint64(n)
	l.statsMu.Unlock()
	if time.Since(l.faultLog) >= time.Second {
		l.faultLog = time.Now()
		l.log.Debug("vertices fell back to base position", zap.Uint64("tick", tick), zap.Int("count", n))
	}
}

// applySwap releases the bound handle, then binds the pending one. Both happen
// between two evaluations, so a tick draws either the old or the new geometry.
func (l *Loop) applySwap() {
	l.mu.Lock()
	next := l.pending
	l.pending = nil
	l.mu.Unlock()
	if next == nil {
		return
	}

	l.state.Store(int32(Disposing))
	old := l.Bound()
	l.release(old)
	l.bound.Store(next)
	l.lastGood = nil
	l.buffers = [2][]surface.Sample{}
	l.state.Store(int32(Running))

	l.statsMu.Lock()
	l.stats.Swaps++
	l.statsMu.Unlock()
	l.log.Info("geometry swapped", zap.Stringer("from", old), zap.Stringer("to", next),
		zap.Int("vertices", next.Mesh().VertexCount()))
}

func (l *Loop) applyResize() {
	l.mu.Lock()
	if !l.resizePending {
		l.mu.Unlock()
		return
	}
	l.resizePending = false
	w, h := l.size[0], l.size[1]
	l.mu.Unlock()

	l.target.Resize(w, h)
	l.statsMu.Lock()
	l.stats.Resizes++
	l.statsMu.Unlock()
	l.log.Debug("viewport resized", zap.Int("width", w), zap.Int("height", h))
}

// release disposes h, retrying once. A handle that still fails is abandoned and
// reported as leaked at shutdown.
func (l *Loop) release(h *geometry.Handle) {
	if h == nil {
		return
	}
	for attempt := 1; attempt <= 2; attempt++ {
		err := h.Dispose()
		if err == nil || errors.Is(err, geometry.ErrAlreadyDisposed) {
			return
		}
		l.statsMu.Lock()
		l.stats.ReleaseFailures++
		l.statsMu.Unlock()
		l.log.Warn("geometry release failed", zap.Stringer("handle", h), zap.Int("attempt", attempt), zap.Error(err))
	}
	l.statsMu.Lock()
	l.leaks = append(l.leaks, h)
	l.statsMu.Unlock()
}

// Stop releases every handle the loop owns and moves it to Stopped. Further ticks
// return ErrNotRunning.
func (l *Loop) Stop() error {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	if l.State() == Stopped {
		return nil
	}
	l.state.Store(int32(Disposing))
	l.resize.Stop()
	l.unsubscribe()

	l.mu.Lock()
	l.closed = true
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()
	l.release(pending)
	l.release(l.Bound())
	l.lastGood = nil
	l.state.Store(int32(Stopped))

	stats := l.Stats()
	if leaks := l.Leaks(); len(leaks) > 0 {
		l.log.Error("geometry handles leaked", zap.Strings("handles", leaks))
	}
	l.log.Info("frame loop stopped",
		zap.Uint64("ticks", stats.Ticks),
		zap.Uint64("vertex_faults", stats.VertexFaults),
		zap.Uint64("swaps", stats.Swaps))
	return nil
}
