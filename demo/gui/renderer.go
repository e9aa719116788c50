package gui

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"gonoisesurface/camera"
	"gonoisesurface/common"
	"gonoisesurface/demo/lib/canvas"
	"gonoisesurface/geometry"
	"gonoisesurface/loop"
)

// Renderer is the OpenGL RenderTarget. It must be used on the thread that owns the
// GL context.
type Renderer struct {
	log   *zap.Logger
	cam   *camera.Orbit
	clear common.Vec4

	program  uint32
	uniforms struct {
		viewProjection, color1, color2, color3, edgeAlpha, alphaNoiseStrength int32
	}
	buffers map[uint64]*canvas.SurfaceBuffers
	scratch []float32
}

func NewRenderer(cam *camera.Orbit, clear common.Vec4, log *zap.Logger) (*Renderer, error) {
	program, err := canvas.NewProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		log:     log,
		cam:     cam,
		clear:   clear,
		program: program,
		buffers: map[uint64]*canvas.SurfaceBuffers{},
	}
	r.uniforms.viewProjection = canvas.Uniform(program, "viewProjection")
	r.uniforms.color1 = canvas.Uniform(program, "color1")
	r.uniforms.color2 = canvas.Uniform(program, "color2")
	r.uniforms.color3 = canvas.Uniform(program, "color3")
	r.uniforms.edgeAlpha = canvas.Uniform(program, "edgeAlpha")
	r.uniforms.alphaNoiseStrength = canvas.Uniform(program, "alphaNoiseStrength")

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	return r, canvas.GLError("init renderer")
}

func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.cam.SetViewport(width, height)
}

// buffersFor uploads the mesh of h on first use. The buffers are deleted by the
// handle's release hook.
func (r *Renderer) buffersFor(h *geometry.Handle, m *geometry.Mesh) (*canvas.SurfaceBuffers, error) {
	if b, ok := r.buffers[h.ID()]; ok {
		return b, nil
	}
	b := canvas.NewSurfaceBuffers(m.Indices, m.VertexCount())
	id := h.ID()
	err := h.OnRelease(func() error {
		delete(r.buffers, id)
		return b.Delete()
	})
	if err != nil {
		_ = b.Delete()
		return nil, fmt.Errorf("upload %v: %w", h, err)
	}
	r.buffers[id] = b
	r.log.Debug("geometry uploaded", zap.Stringer("handle", h), zap.Int("indices", len(m.Indices)))
	return b, nil
}

func (r *Renderer) Render(f *loop.Frame) error {
	b, err := r.buffersFor(f.Geometry, f.Mesh)
	if err != nil {
		return err
	}
	r.scratch = f.Interleave(r.scratch)
	b.Update(r.scratch)

	c := r.clear
	gl.ClearColor(c[0]*c[3], c[1]*c[3], c[2]*c[3], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	u := f.Uniforms
	vp := r.cam.ViewProjection()
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uniforms.viewProjection, 1, false, &vp[0])
	gl.Uniform4fv(r.uniforms.color1, 1, &u.Color1[0])
	gl.Uniform4fv(r.uniforms.color2, 1, &u.Color2[0])
	gl.Uniform4fv(r.uniforms.color3, 1, &u.Color3[0])
	gl.Uniform1f(r.uniforms.edgeAlpha, u.EdgeAlpha)
	gl.Uniform1f(r.uniforms.alphaNoiseStrength, u.AlphaNoiseStrength)
	b.Draw()
	return canvas.GLError("render")
}

// Delete frees the program. Mesh buffers belong to their handles.
func (r *Renderer) Delete() {
	gl.DeleteProgram(r.program)
}

var _ loop.RenderTarget = (*Renderer)(nil)
