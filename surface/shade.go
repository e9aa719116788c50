package surface

import (
	"gonoisesurface/common"
	"gonoisesurface/params"
)

// EdgeWidth is the UV distance over which the edge alpha fades into the interior.
const EdgeWidth = 0.1

// Fragment is the interpolated evaluator output at one pixel.
type Fragment struct {
	UV         common.Vec2
	ColorNoise float32
	AlphaNoise float32
}

// EdgeFactor is 0 on the UV border and rises smoothly to 1 at EdgeWidth inside it.
func EdgeFactor(uv common.Vec2) float32 {
	d := min(uv[0], uv[1], 1-uv[0], 1-uv[1])
	return common.Smoothstep(0, EdgeWidth, d)
}

// Remap maps a noise value from [-1,1] to [0,1].
func Remap(n float32) float32 {
	return n*0.5 + 0.5
}

// BaseColor blends color1 toward color2 by the color noise, then toward color3 by the
// product of the UV coordinates.
func BaseColor(f Fragment, u params.Snapshot) common.Vec4 {
	c := common.MixVec4(u.Color1, u.Color2, Remap(f.ColorNoise))
	return common.MixVec4(c, u.Color3, f.UV[0]*f.UV[1])
}

// Shade returns the premultiplied color of one fragment. It reports false when the
// inputs are not finite, in which case the result is color1.
func Shade(f Fragment, u params.Snapshot) (common.Vec4, bool) {
	if !common.IsFinite(f.UV[0]) || !common.IsFinite(f.UV[1]) ||
		!common.IsFinite(f.ColorNoise) || !common.IsFinite(f.AlphaNoise) {
		return premultiply(u.Color1, u.Color1[3]), false
	}
	u.EdgeAlpha = common.Clamp(u.EdgeAlpha, 0, 1)
	u.AlphaNoiseStrength = max(u.AlphaNoiseStrength, 0)

	base := BaseColor(f, u)
	noiseAlpha := base[3] * Remap(f.AlphaNoise) * u.AlphaNoiseStrength
	alpha := common.Lerp(u.EdgeAlpha, noiseAlpha, EdgeFactor(f.UV))
	return premultiply(base, alpha), true
}

func premultiply(c common.Vec4, alpha float32) common.Vec4 {
	return common.Vec4{c[0] * alpha, c[1] * alpha, c[2] * alpha, alpha}
}
