package params

import "gonoisesurface/common"

// Snapshot is one consistent copy of every parameter, taken at a tick boundary.
type Snapshot struct {
	Version uint64

	Time                 float32
	ColorNoiseScale      float32
	AlphaNoiseScale      float32
	DistortionNoiseScale float32
	DistortionStrength   float32
	AlphaNoiseStrength   float32
	EdgeAlpha            float32

	Color1 common.Vec4
	Color2 common.Vec4
	Color3 common.Vec4
}

// Snapshot copies the whole parameter set under one read lock. Values are clamped
// again against the table so a reader never sees an out-of-range uniform.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	get := func(name string) Value {
		d, _ := s.table.Lookup(name)
		return d.Clamp(s.values[name])
	}
	return Snapshot{
		Version:              s.version,
		Time:                 get(Time).Scalar,
		ColorNoiseScale:      get(ColorNoiseScale).Scalar,
		AlphaNoiseScale:      get(AlphaNoiseScale).Scalar,
		DistortionNoiseScale: get(DistortionNoiseScale).Scalar,
		DistortionStrength:   get(DistortionStrength).Scalar,
		AlphaNoiseStrength:   get(AlphaNoiseStrength).Scalar,
		EdgeAlpha:            get(EdgeAlpha).Scalar,
		Color1:               get(Color1).Color,
		Color2:               get(Color2).Color,
		Color3:               get(Color3).Color,
	}
}

// DefaultSnapshot returns the snapshot of a freshly built default store.
func DefaultSnapshot() Snapshot {
	s, err := NewStore(DefaultTable())
	if err != nil {
		panic(err)
	}
	return s.Snapshot()
}

// Fields flattens the snapshot into name/value pairs, colors as four-element slices.
func (s Snapshot) Fields() map[string]any {
	color := func(c common.Vec4) []any {
		return []any{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])}
	}
	return map[string]any{
		Time:                 float64(s.Time),
		ColorNoiseScale:      float64(s.ColorNoiseScale),
		AlphaNoiseScale:      float64(s.AlphaNoiseScale),
		DistortionNoiseScale: float64(s.DistortionNoiseScale),
		DistortionStrength:   float64(s.DistortionStrength),
		AlphaNoiseStrength:   float64(s.AlphaNoiseStrength),
		EdgeAlpha:            float64(s.EdgeAlpha),
		Color1:               color(s.Color1),
		Color2:               color(s.Color2),
		Color3:               color(s.Color3),
	}
}
