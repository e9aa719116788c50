package common

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

type Vec2 = mgl32.Vec2
type Vec3 = mgl32.Vec3
type Vec4 = mgl32.Vec4
type Mat4 = mgl32.Mat4

type Float interface {
	~float32 | ~float64
}

// RGBA255 converts a 0..255 RGB triplet plus a 0..1 alpha into a normalized color.
func RGBA255(r, g, b uint8, a float32) Vec4 {
	return Vec4{float32(r) / 255, float32(g) / 255, float32(b) / 255, a}
}

// To255 converts a normalized color channel back to 0..255.
func To255(v float32) uint8 {
	return uint8(Clamp(v, 0, 1)*255 + 0.5)
}

// ToNRGBA converts a straight-alpha color for image and widget code.
func ToNRGBA(c Vec4) color.NRGBA {
	return color.NRGBA{R: To255(c[0]), G: To255(c[1]), B: To255(c[2]), A: To255(c[3])}
}

// WithRGB replaces the RGB channels of c with those of picked, keeping c's alpha.
func WithRGB(c Vec4, picked color.Color) Vec4 {
	n := color.NRGBAModel.Convert(picked).(color.NRGBA)
	return RGBA255(n.R, n.G, n.B, c[3])
}
