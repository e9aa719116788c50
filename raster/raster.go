// Package raster is a software render target: it projects the evaluated surface
// through an orbit camera, shades every covered pixel and composites the result
// over an opaque clear color.
package raster

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gonoisesurface/camera"
	"gonoisesurface/common"
	"gonoisesurface/loop"
	"gonoisesurface/surface"
)

// minW rejects vertices on or behind the camera plane.
const minW = 1e-4

var White = common.Vec4{1, 1, 1, 1}

type Options struct {
	Width, Height int
	Clear         common.Vec4
	// Workers bounds the row bands rasterized in parallel; 0 uses GOMAXPROCS.
	Workers int
	HUD     bool
}

type Renderer struct {
	cam *camera.Orbit
	log *zap.Logger

	mu       sync.Mutex
	opts     Options
	img      *image.RGBA
	depth    []float32
	hud      *HUD
	frames   uint64
	fragBad  atomic.Uint64
	lastDraw time.Time
	fps      float32

	// scratch, reused between frames
	proj []projected
}

type projected struct {
	x, y, z float32
	invW    float32
	ok      bool
}

func New(cam *camera.Orbit, opts Options, log *zap.Logger) (*Renderer, error) {
	if cam == nil {
		cam = camera.NewOrbit()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Clear == (common.Vec4{}) {
		opts.Clear = White
	}
	r := &Renderer{cam: cam, log: log, opts: opts}
	if opts.HUD {
		hud, err := NewHUD(12)
		if err != nil {
			return nil, err
		}
		r.hud = hud
	}
	r.Resize(opts.Width, opts.Height)
	return r, nil
}

func (r *Renderer) Camera() *camera.Orbit {
	return r.cam
}

// Resize reallocates the color and depth buffers and updates the camera aspect.
func (r *Renderer) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.Width, r.opts.Height = width, height
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.depth = make([]float32, width*height)
	r.cam.SetViewport(width, height)
	r.clearLocked()
	r.log.Debug("raster buffers resized", zap.Int("width", width), zap.Int("height", height))
}

func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.Width, r.opts.Height
}

// FragmentFaults counts pixels whose shading fell back to the first color.
func (r *Renderer) FragmentFaults() uint64 {
	return r.fragBad.Load()
}

// Image returns a copy of the last rendered frame.
func (r *Renderer) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := image.NewRGBA(r.img.Rect)
	copy(out.Pix, r.img.Pix)
	return out
}

// Draw copies the last frame into dst, reallocating it when the size differs.
func (r *Renderer) Draw(dst *image.RGBA) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dst == nil || dst.Rect != r.img.Rect {
		dst = image.NewRGBA(r.img.Rect)
	}
	copy(dst.Pix, r.img.Pix)
	return dst
}

func (r *Renderer) clearLocked() {
	c := toRGBA(r.opts.Clear)
	pix := r.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	for i := range r.depth {
		r.depth[i] = 1
	}
}

func (r *Renderer) Render(f *loop.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
	r.project(f)

	w, h := r.opts.Width, r.opts.Height
	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	band := max((h+workers-1)/workers, 16)

	var bad atomic.Uint64

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += band {
		y0, y1 := y0, min(y0+band, h)
		g.Go(func() error {
			bad.Add(r.rasterBand(f, w, y0, y1))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := bad.Load(); n > 0 {
		r.fragBad.Add(n)
		r.log.Debug("fragments fell back to color1", zap.Uint64("tick", f.Tick), zap.Uint64("count", n))
	}
	r.frames++
	now := time.Now()
	if !r.lastDraw.IsZero() {
		if dt := float32(now.Sub(r.lastDraw).Seconds()); dt > 0 {
			r.fps = common.Lerp(r.fps, 1/dt, 0.1)
		}
	}
	r.lastDraw = now
	if r.hud != nil {
		r.hud.Draw(r.img, r.hudLines(f))
	}
	return nil
}

func (r *Renderer) project(f *loop.Frame) {
	vp := r.cam.ViewProjection()
	w, h := float32(r.opts.Width), float32(r.opts.Height)
	if cap(r.proj) < len(f.Samples) {
		r.proj = make([]projected, len(f.Samples))
	}
	r.proj = r.proj[:len(f.Samples)]
	for i, s := range f.Samples {
		c := vp.Mul4x1(s.Position.Vec4(1))
		if !(c[3] > minW) {
			r.proj[i] = projected{}
			continue
		}
		inv := 1 / c[3]
		r.proj[i] = projected{
			x:    (c[0]*inv*0.5 + 0.5) * w,
			y:    (0.5 - c[1]*inv*0.5) * h,
			z:    c[2]*inv*0.5 + 0.5,
			invW: inv,
			ok:   true,
		}
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// rasterBand draws every triangle's coverage within rows [y0, y1). Bands do not
// overlap, so they can be drawn concurrently.
func (r *Renderer) rasterBand(f *loop.Frame, width, y0, y1 int) uint64 {
	var bad uint64
	idx := f.Mesh.Indices
	uvs := f.Mesh.UVs
	u := f.Uniforms
	for t := 0; t+2 < len(idx); t += 3 {
		i0, i1, i2 := idx[t], idx[t+1], idx[t+2]
		a, b, c := r.proj[i0], r.proj[i1], r.proj[i2]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
		if area == 0 || !common.IsFinite(area) {
			continue
		}
		minX := int(common.Clamp(math32.Floor(min(a.x, b.x, c.x)), 0, float32(width-1)))
		maxX := int(common.Clamp(math32.Ceil(max(a.x, b.x, c.x)), 0, float32(width-1)))
		minY := int(common.Clamp(math32.Floor(min(a.y, b.y, c.y)), float32(y0), float32(y1-1)))
		maxY := int(common.Clamp(math32.Ceil(max(a.y, b.y, c.y)), float32(y0), float32(y1-1)))
		if minX > maxX || minY > maxY {
			continue
		}
		sa, sb, sc := f.Samples[i0], f.Samples[i1], f.Samples[i2]
		for y := minY; y <= maxY; y++ {
			py := float32(y) + 0.5
			for x := minX; x <= maxX; x++ {
				px := float32(x) + 0.5
				w0 := edge(b.x, b.y, c.x, c.y, px, py) / area
				w1 := edge(c.x, c.y, a.x, a.y, px, py) / area
				w2 := 1 - w0 - w1
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				z := w0*a.z + w1*b.z + w2*c.z
				di := y*width + x
				if z < 0 || z >= r.depth[di] {
					continue
				}
				// perspective-correct weights
				p0, p1, p2 := w0*a.invW, w1*b.invW, w2*c.invW
				norm := 1 / (p0 + p1 + p2)
				p0, p1, p2 = p0*norm, p1*norm, p2*norm

				frag := surface.Fragment{
					UV:         uvs[i0].Mul(p0).Add(uvs[i1].Mul(p1)).Add(uvs[i2].Mul(p2)),
					ColorNoise: p0*sa.ColorNoise + p1*sb.ColorNoise + p2*sc.ColorNoise,
					AlphaNoise: p0*sa.AlphaNoise + p1*sb.AlphaNoise + p2*sc.AlphaNoise,
				}
				col, ok := surface.Shade(frag, u)
				if !ok {
					bad++
				}
				r.depth[di] = z
				r.blend(di*4, col)
			}
		}
	}
	return bad
}

// blend composites a premultiplied color over the pixel at offset o.
func (r *Renderer) blend(o int, src common.Vec4) {
	pix := r.img.Pix[o : o+4 : o+4]
	dst := common.Vec4{float32(pix[0]) / 255, float32(pix[1]) / 255, float32(pix[2]) / 255, float32(pix[3]) / 255}
	out := Composite(src, dst)
	for i := range pix {
		pix[i] = common.To255(out[i])
	}
}

// Composite is the source-over operator on premultiplied colors, clamped to [0,1].
func Composite(src, dst common.Vec4) common.Vec4 {
	k := 1 - src[3]
	var out common.Vec4
	for i := range out {
		out[i] = common.Clamp(src[i]+dst[i]*k, 0, 1)
	}
	return out
}

// toRGBA premultiplies a straight-alpha color for the frame buffer.
func toRGBA(c common.Vec4) color.RGBA {
	return color.RGBA{
		R: common.To255(c[0] * c[3]),
		G: common.To255(c[1] * c[3]),
		B: common.To255(c[2] * c[3]),
		A: common.To255(c[3]),
	}
}

var _ loop.RenderTarget = (*Renderer)(nil)
