package common

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(2.0, 0, 1), "Higher than range error")
	assert.Equal(t, 1.0, Clamp(1.0, 0, 2), "Within range error")
	assert.Equal(t, 1.0, Clamp(0.0, 1, 2), "Lower than range error")
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, float32(0), Smoothstep[float32](0, 0.1, 0))
	assert.Equal(t, float32(0), Smoothstep[float32](0, 0.1, -1))
	assert.Equal(t, float32(1), Smoothstep[float32](0, 0.1, 0.5))
	assert.InDelta(t, 0.5, Smoothstep[float32](0, 0.1, 0.05), 1e-6)
}

func TestMixVec4(t *testing.T) {
	red := Vec4{1, 0, 0, 1}
	green := Vec4{0, 1, 0, 1}
	assert.Equal(t, Vec4{0.5, 0.5, 0, 1}, MixVec4(red, green, 0.5))
	assert.Equal(t, red, MixVec4(red, green, 0))
	assert.Equal(t, green, MixVec4(red, green, 1))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(float32(1)))
	assert.False(t, IsFinite(float32(math.NaN())))
	assert.False(t, IsFinite(math.Inf(-1)))
	assert.False(t, Visfinite(Vec3{0, float32(math.Inf(1)), 0}))
	assert.True(t, Visfinite(Vec3{1, 2, 3}))
}

func TestRGBA255(t *testing.T) {
	c := RGBA255(255, 0, 51, 0.5)
	assert.Equal(t, Vec4{1, 0, 0.2, 0.5}, c)
	assert.Equal(t, uint8(51), To255(c[2]))
	assert.Equal(t, uint8(255), To255(2))
}

func TestWithRGBKeepsAlpha(t *testing.T) {
	c := Vec4{0.1, 0.2, 0.3, 0.4}
	got := WithRGB(c, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	assert.Equal(t, Vec4{1, 0, 0.2, 0.4}, got)

	// premultiplied input is converted before the channels are taken
	got = WithRGB(c, color.RGBA{R: 128, G: 0, B: 0, A: 128})
	assert.Equal(t, uint8(255), To255(got[0]))
	assert.Equal(t, float32(0.4), got[3])

	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 51, A: 102}, ToNRGBA(Vec4{1, 0, 0.2, 0.4}))
}
