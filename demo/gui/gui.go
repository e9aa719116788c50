// Package gui is the OpenGL front end: a glfw window whose frame loop is ticked on
// the main thread, with orbit controls and keyboard shortcuts.
package gui

import (
	"context"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"gonoisesurface/camera"
	"gonoisesurface/common"
	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/params"
)

type Options struct {
	Title         string
	Width, Height int
	Clear         common.Vec4
}

type Viewer struct {
	log      *zap.Logger
	window   *glfw.Window
	renderer *Renderer
	cam      *camera.Orbit

	store    *params.Store
	provider geometry.Provider
	loop     *loop.Loop

	dragging     bool
	lastX, lastY float64
}

// NewViewer opens the window and compiles the shaders. It must be called from the
// main goroutine, locked to its thread.
func NewViewer(opts Options, cam *camera.Orbit, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	window, err := createWindow(opts.Title, opts.Width, opts.Height, log)
	if err != nil {
		return nil, err
	}
	r, err := NewRenderer(cam, opts.Clear, log)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}
	return &Viewer{log: log, window: window, renderer: r, cam: cam}, nil
}

// Renderer is the RenderTarget the frame loop draws into.
func (v *Viewer) Renderer() *Renderer {
	return v.renderer
}

// Run ticks lp once per displayed frame until the window closes or ctx is done.
// It stops lp before returning so release hooks run with the context current.
func (v *Viewer) Run(ctx context.Context, lp *loop.Loop, store *params.Store, provider geometry.Provider) error {
	v.loop, v.store, v.provider = lp, store, provider
	v.registerEvents()
	v.renderer.Resize(v.window.GetFramebufferSize())

	if err := lp.Start(); err != nil {
		return err
	}
	defer lp.Stop()
	for !v.window.ShouldClose() {
		if err := lp.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		v.window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func (v *Viewer) switchGeometry(kind geometry.Kind) {
	if b := v.loop.Bound(); b != nil && b.Kind() == kind {
		return
	}
	h, err := v.provider.Create(kind)
	if err != nil {
		v.log.Warn("create geometry", zap.Stringer("kind", kind), zap.Error(err))
		return
	}
	if err := v.loop.UpdateGeometry(h); err != nil {
		_ = h.Dispose()
		v.log.Warn("switch geometry", zap.Stringer("kind", kind), zap.Error(err))
	}
}

func (v *Viewer) reset() {
	if err := v.store.Reset(); err != nil {
		v.log.Warn("reset parameters", zap.Error(err))
		return
	}
	v.cam.Reset()
	v.log.Info("parameters reset")
}

func (v *Viewer) Close() {
	v.renderer.Delete()
	v.window.Destroy()
	glfw.Terminate()
}
