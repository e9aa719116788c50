// Package surface turns noise samples into the deformed, colored surface: the per
// vertex displacement rule and the per fragment compositing rule.
package surface

import (
	"gonoisesurface/common"
	"gonoisesurface/noise"
	"gonoisesurface/params"
)

// Time multipliers of the three noise channels; each channel evolves at its own rate.
const (
	ColorTimeRate      = 0.2
	AlphaTimeRate      = 0.3
	DistortionTimeRate = 0.1
)

// Sample is the evaluator output for one vertex.
type Sample struct {
	Position        common.Vec3
	ColorNoise      float32
	AlphaNoise      float32
	DistortionNoise float32
}

type Evaluator struct {
	field noise.Field
}

// NewEvaluator samples field, or the canonical simplex field when field is nil.
func NewEvaluator(field noise.Field) *Evaluator {
	if field == nil {
		field = noise.Simplex
	}
	return &Evaluator{field: field}
}

func (e *Evaluator) sample(p common.Vec3, scale, z float32) float32 {
	return float32(e.field.Eval3(float64(p[0]*scale), float64(p[1]*scale), float64(z)))
}

// Evaluate computes the displaced position and the noise channels of one vertex.
// It reports false when the vertex or its result is not finite; the returned sample
// then carries the unmodified position and zero noise.
func (e *Evaluator) Evaluate(pos common.Vec3, u params.Snapshot) (Sample, bool) {
	if !common.Visfinite(pos) {
		return Sample{Position: pos}, false
	}
	out := Sample{
		Position:        pos,
		ColorNoise:      e.sample(pos, u.ColorNoiseScale, u.Time*ColorTimeRate),
		AlphaNoise:      e.sample(pos, u.AlphaNoiseScale, u.Time*AlphaTimeRate),
		DistortionNoise: e.sample(pos, u.DistortionNoiseScale, u.Time*DistortionTimeRate),
	}
	if !common.IsFinite(out.ColorNoise) || !common.IsFinite(out.AlphaNoise) || !common.IsFinite(out.DistortionNoise) {
		return Sample{Position: pos}, false
	}
	if u.DistortionStrength != 0 {
		z := pos[2] + out.DistortionNoise*u.DistortionStrength
		if !common.IsFinite(z) {
			return Sample{Position: pos}, false
		}
		out.Position[2] = z
	}
	return out, true
}
