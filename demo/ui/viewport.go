package ui

import (
	"image"
	"sync"

	"github.com/gorustyt/fyne/v2"
	"github.com/gorustyt/fyne/v2/canvas"

	"gonoisesurface/loop"
	"gonoisesurface/raster"
)

// Viewport shows the software renderer's frames. The raster generator reports its
// pixel size to the loop, which applies it after the resize debounce.
type Viewport struct {
	renderer *raster.Renderer
	loop     *loop.Loop
	obj      *canvas.Raster

	mu   sync.Mutex
	size image.Point
	buf  *image.RGBA
}

func NewViewport(r *raster.Renderer, lp *loop.Loop) *Viewport {
	v := &Viewport{renderer: r, loop: lp}
	w, h := r.Size()
	v.size = image.Pt(w, h)
	v.obj = canvas.NewRaster(v.generate)
	v.obj.SetMinSize(fyne.NewSize(320, 240))
	return v
}

func (v *Viewport) generate(w, h int) image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	if p := image.Pt(w, h); p != v.size {
		v.size = p
		v.loop.RequestResize(w, h)
	}
	v.buf = v.renderer.Draw(v.buf)
	return v.buf
}

func (v *Viewport) GetRenderObj() fyne.CanvasObject {
	return v.obj
}

func (v *Viewport) Refresh() {
	v.obj.Refresh()
}

// Snapshot copies the frame on screen.
func (v *Viewport) Snapshot() *image.RGBA {
	return v.renderer.Image()
}
