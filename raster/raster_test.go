package raster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonoisesurface/camera"
	"gonoisesurface/common"
	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/params"
	"gonoisesurface/surface"
)

func planeFrame(t *testing.T, u params.Snapshot) *loop.Frame {
	t.Helper()
	m, err := geometry.BuildPlane(geometry.PlaneParams{Width: 10, Height: 10, WidthSegments: 20, HeightSegments: 20})
	require.NoError(t, err)
	samples := make([]surface.Sample, m.VertexCount())
	_, err = surface.NewEvaluator(nil).EvaluateMesh(context.Background(), m.Positions, u, samples, 2)
	require.NoError(t, err)
	return &loop.Frame{
		Tick:     1,
		Uniforms: u,
		Geometry: geometry.NewHandle(1, geometry.Plane, m),
		Mesh:     m,
		Samples:  samples,
	}
}

func TestCompositeOverWhite(t *testing.T) {
	// fully transparent fragment keeps the clear color
	assert.Equal(t, White, Composite(common.Vec4{}, White))
	// opaque fragment replaces it
	red := common.Vec4{1, 0, 0, 1}
	assert.Equal(t, red, Composite(red, White))
	// half-covered premultiplied red
	got := Composite(common.Vec4{0.5, 0, 0, 0.5}, White)
	assert.InDeltaSlice(t, []float32{1, 0.5, 0.5, 1}, got[:], 1e-6)
	// out of range input is clamped
	got = Composite(common.Vec4{2, 0, 0, 1}, White)
	assert.Equal(t, float32(1), got[0])
}

func TestEmptyFrameIsClearColor(t *testing.T) {
	r, err := New(camera.NewOrbit(), Options{Width: 8, Height: 6}, nil)
	require.NoError(t, err)
	img := r.Image()
	assert.Equal(t, 8, img.Bounds().Dx())
	c := img.RGBAAt(3, 3)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.A)
}

func TestRenderPlaneCoversViewport(t *testing.T) {
	u := params.DefaultSnapshot()
	u.DistortionStrength = 0
	u.EdgeAlpha = 1
	r, err := New(camera.NewOrbit(), Options{Width: 64, Height: 48, Workers: 3}, nil)
	require.NoError(t, err)
	require.NoError(t, r.Render(planeFrame(t, u)))

	// the 10x10 plane seen from z=5 with a 75 degree field of view fills the view
	img := r.Image()
	tinted := 0
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			c := img.RGBAAt(x, y)
			require.Equal(t, uint8(255), c.A)
			if c.R != 255 || c.G != 255 || c.B != 255 {
				tinted++
			}
		}
	}
	assert.Greater(t, tinted, 64*48*9/10)
	assert.Zero(t, r.FragmentFaults())
}

func TestTransparentSurfaceLeavesClearColor(t *testing.T) {
	u := params.DefaultSnapshot()
	u.Color1[3], u.Color2[3], u.Color3[3] = 0, 0, 0
	u.EdgeAlpha = 1
	r, err := New(camera.NewOrbit(), Options{Width: 16, Height: 16}, nil)
	require.NoError(t, err)
	require.NoError(t, r.Render(planeFrame(t, u)))
	c := r.Image().RGBAAt(8, 8)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, [4]uint8{c.R, c.G, c.B, c.A})
}

func TestBehindCameraIsCulled(t *testing.T) {
	cam := camera.NewOrbit()
	u := params.DefaultSnapshot()
	u.EdgeAlpha = 1
	f := planeFrame(t, u)
	// push every vertex behind the eye
	for i := range f.Samples {
		f.Samples[i].Position = f.Samples[i].Position.Add(common.Vec3{0, 0, 20})
	}
	r, err := New(cam, Options{Width: 16, Height: 16}, nil)
	require.NoError(t, err)
	require.NoError(t, r.Render(f))
	c := r.Image().RGBAAt(8, 8)
	assert.Equal(t, uint8(255), c.G)
}

func TestResizeUpdatesCamera(t *testing.T) {
	cam := camera.NewOrbit()
	r, err := New(cam, Options{Width: 10, Height: 10}, nil)
	require.NoError(t, err)
	r.Resize(200, 100)
	w, h := r.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
	assert.InDelta(t, 2, cam.Aspect(), 1e-6)

	r.Resize(0, -3)
	w, h = r.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestHUDDrawsText(t *testing.T) {
	u := params.DefaultSnapshot()
	u.Color1[3], u.Color2[3], u.Color3[3] = 0, 0, 0
	r, err := New(camera.NewOrbit(), Options{Width: 200, Height: 60, HUD: true}, nil)
	require.NoError(t, err)
	require.NoError(t, r.Render(planeFrame(t, u)))

	img := r.Image()
	dark := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.NotZero(t, dark)
}
