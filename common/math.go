package common

import (
	"cmp"
	"math"
)

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// / Linear interpolation between a and b.
// / @param[in]		t	Weight of b. Not clamped.
func Lerp[T Float](a, b, t T) T {
	return a + (b-a)*t
}

// / Cubic Hermite step between edge0 and edge1, clamped to [0,1].
func Smoothstep[T Float](edge0, edge1, x T) T {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// / Component-wise linear interpolation of two RGBA colors.
func MixVec4(a, b Vec4, t float32) Vec4 {
	return Vec4{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
		Lerp(a[3], b[3], t),
	}
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite[T Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// / Checks that the specified vector's components are all finite.
func Visfinite(v Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

func Visfinite4(v Vec4) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2]) && IsFinite(v[3])
}
