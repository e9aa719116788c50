// Package params holds the tunable uniforms of the surface: the recognized parameter
// table, the mutable Store the control panel writes, and the Snapshot the frame loop
// reads once per tick.
package params

import (
	"fmt"

	"gonoisesurface/common"
)

type Kind int

const (
	KindScalar Kind = iota
	KindColor
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindColor:
		return "color"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Recognized parameter names.
const (
	Time                 = "time"
	ColorNoiseScale      = "colorNoiseScale"
	AlphaNoiseScale      = "alphaNoiseScale"
	DistortionNoiseScale = "distortionNoiseScale"
	DistortionStrength   = "distortionStrength"
	AlphaNoiseStrength   = "alphaNoiseStrength"
	EdgeAlpha            = "edgeAlpha"
	Color1               = "color1"
	Color2               = "color2"
	Color3               = "color3"
)

// Panel folders, in display order.
const (
	GroupColor1 = "Color 1"
	GroupColor2 = "Color 2"
	GroupColor3 = "Color 3"
	GroupNoise  = "Noise and Distortion"
	GroupOther  = "Other"
)

// MaxTime bounds the clock; the loop holds it there once reached. Noise inputs stay well below the lattice period as long
// as time*0.3 < 289, i.e. for roughly the first 960 time units.
const MaxTime = 1e6

var recognized = map[string]Kind{
	Time:                 KindScalar,
	ColorNoiseScale:      KindScalar,
	AlphaNoiseScale:      KindScalar,
	DistortionNoiseScale: KindScalar,
	DistortionStrength:   KindScalar,
	AlphaNoiseStrength:   KindScalar,
	EdgeAlpha:            KindScalar,
	Color1:               KindColor,
	Color2:               KindColor,
	Color3:               KindColor,
}

// Descriptor declares one parameter: its kind, its range and how the panel shows it.
// Min and Max apply to scalars; color components are always clamped to [0,1].
type Descriptor struct {
	Name    string
	Label   string
	Group   string
	Kind    Kind
	Min     float32
	Max     float32
	Step    float32
	Default Value
	// Hidden parameters are written by the frame loop, never by the panel.
	Hidden bool
}

// Clamp returns v limited to the descriptor's range.
func (d Descriptor) Clamp(v Value) Value {
	if d.Kind == KindColor {
		c := v.Color
		for i := range c {
			c[i] = common.Clamp(c[i], 0, 1)
		}
		return ColorValue(c)
	}
	return ScalarValue(common.Clamp(v.Scalar, d.Min, d.Max))
}

type Table []Descriptor

// Lookup finds the descriptor for name.
func (t Table) Lookup(name string) (Descriptor, bool) {
	for _, d := range t {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Validate checks the table describes every recognized parameter exactly once with
// the right kind, a sane range and an in-range default.
func (t Table) Validate() error {
	seen := make(map[string]bool, len(t))
	for _, d := range t {
		kind, ok := recognized[d.Name]
		if !ok {
			return &ConfigurationError{Name: d.Name, Reason: "not a recognized parameter"}
		}
		if seen[d.Name] {
			return &ConfigurationError{Name: d.Name, Reason: "declared twice"}
		}
		seen[d.Name] = true
		if d.Kind != kind {
			return &ConfigurationError{Name: d.Name, Reason: fmt.Sprintf("declared as %v, want %v", d.Kind, kind)}
		}
		if d.Default.Kind != kind {
			return &ConfigurationError{Name: d.Name, Reason: fmt.Sprintf("default is a %v", d.Default.Kind)}
		}
		if d.Kind == KindColor {
			if !common.Visfinite4(d.Default.Color) || d.Clamp(d.Default) != d.Default {
				return &ConfigurationError{Name: d.Name, Reason: "default color outside [0,1]"}
			}
			continue
		}
		if !common.IsFinite(d.Min) || !common.IsFinite(d.Max) || d.Min > d.Max {
			return &ConfigurationError{Name: d.Name, Reason: fmt.Sprintf("bad range [%v, %v]", d.Min, d.Max)}
		}
		if !common.IsFinite(d.Default.Scalar) || d.Default.Scalar < d.Min || d.Default.Scalar > d.Max {
			return &ConfigurationError{Name: d.Name, Reason: fmt.Sprintf("default %v outside [%v, %v]", d.Default.Scalar, d.Min, d.Max)}
		}
	}
	for name := range recognized {
		if !seen[name] {
			return &ConfigurationError{Name: name, Reason: "missing from table"}
		}
	}
	return nil
}

// DefaultTable returns the recognized parameters with the ranges and defaults of the
// control panel.
func DefaultTable() Table {
	return Table{
		{Name: Time, Label: "Time", Group: GroupOther, Kind: KindScalar, Min: 0, Max: MaxTime, Default: ScalarValue(0), Hidden: true},
		{Name: Color1, Label: "Color 1", Group: GroupColor1, Kind: KindColor, Default: ColorValue(common.RGBA255(250, 30, 10, 1))},
		{Name: Color2, Label: "Color 2", Group: GroupColor2, Kind: KindColor, Default: ColorValue(common.Vec4{0, 1, 0, 1})},
		{Name: Color3, Label: "Color 3", Group: GroupColor3, Kind: KindColor, Default: ColorValue(common.Vec4{0, 0, 1, 1})},
		{Name: DistortionStrength, Label: "Distortion Strength", Group: GroupNoise, Kind: KindScalar, Min: 0, Max: 2, Step: 0.01, Default: ScalarValue(0.5)},
		{Name: ColorNoiseScale, Label: "Color Noise Scale", Group: GroupNoise, Kind: KindScalar, Min: 0.1, Max: 5, Step: 0.01, Default: ScalarValue(1)},
		{Name: AlphaNoiseScale, Label: "Alpha Noise Scale", Group: GroupNoise, Kind: KindScalar, Min: 0.1, Max: 5, Step: 0.01, Default: ScalarValue(1)},
		{Name: DistortionNoiseScale, Label: "Distortion Noise Scale", Group: GroupNoise, Kind: KindScalar, Min: 0.1, Max: 5, Step: 0.01, Default: ScalarValue(1)},
		{Name: AlphaNoiseStrength, Label: "Alpha Noise Strength", Group: GroupNoise, Kind: KindScalar, Min: 0, Max: 2, Step: 0.01, Default: ScalarValue(1)},
		{Name: EdgeAlpha, Label: "Edge Alpha", Group: GroupOther, Kind: KindScalar, Min: 0, Max: 1, Step: 0.01, Default: ScalarValue(0)},
	}
}
