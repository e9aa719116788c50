package geometry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ReleaseFunc frees a resource derived from a handle, such as device buffers.
type ReleaseFunc func() error

// Handle owns one mesh and the resources uploaded from it. The mesh is read-only
// while the handle is live.
type Handle struct {
	id   uint64
	kind Kind
	mesh *Mesh

	mu       sync.Mutex
	disposed bool
	releases []ReleaseFunc
}

func (h *Handle) ID() uint64 {
	return h.id
}

func (h *Handle) Kind() Kind {
	return h.kind
}

// Mesh returns the mesh, or nil once the handle is disposed.
func (h *Handle) Mesh() *Mesh {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mesh
}

func (h *Handle) String() string {
	return fmt.Sprintf("%v#%d", h.kind, h.id)
}

// OnRelease registers fn to run when the handle is disposed.
func (h *Handle) OnRelease(fn ReleaseFunc) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrAlreadyDisposed
	}
	h.releases = append(h.releases, fn)
	return nil
}

func (h *Handle) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}

// Dispose runs the release hooks. Hooks that fail are kept so a later Dispose can
// retry them; the handle counts as disposed only once every hook has succeeded.
// Disposing a disposed handle returns ErrAlreadyDisposed.
func (h *Handle) Dispose() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrAlreadyDisposed
	}
	var failed []ReleaseFunc
	var errs []error
	for _, fn := range h.releases {
		if err := fn(); err != nil {
			failed = append(failed, fn)
			errs = append(errs, err)
		}
	}
	h.releases = failed
	if len(errs) > 0 {
		return fmt.Errorf("geometry: release %v: %w", h, errors.Join(errs...))
	}
	h.disposed = true
	h.mesh = nil
	return nil
}

// Provider creates handles for the primitive kinds.
type Provider interface {
	Create(kind Kind) (*Handle, error)
}

// Builder is the Provider backed by the procedural primitives.
type Builder struct {
	params Params
	log    *zap.Logger
	nextID atomic.Uint64
}

func NewBuilder(p Params, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{params: p, log: log}
}

func (b *Builder) Create(kind Kind) (*Handle, error) {
	m, err := Build(kind, b.params)
	if err != nil {
		return nil, err
	}
	h := &Handle{id: b.nextID.Add(1), kind: kind, mesh: m}
	b.log.Debug("geometry created",
		zap.Stringer("handle", h),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))
	return h, nil
}

// NewHandle wraps an existing mesh, for providers other than Builder.
func NewHandle(id uint64, kind Kind, m *Mesh) *Handle {
	return &Handle{id: id, kind: kind, mesh: m}
}
