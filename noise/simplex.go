package noise

import "math"

// Period is the lattice period of Simplex3 along each skewed axis. Translating the
// input by (Period, Period, Period) reproduces the same value.
const Period = 289.0

const (
	skewF   = 1.0 / 3.0
	unskewG = 1.0 / 6.0
	// radius of each corner kernel (squared).
	kernelR2 = 0.6
	// final scale bringing the kernel sum into [-1, 1].
	outScale = 42.0
	// 1/7, spacing of the 7x7 gradient ring.
	ringStep = 1.0 / 7.0
)

func mod289(x float64) float64 {
	return x - math.Floor(x*(1.0/Period))*Period
}

func permute(x float64) float64 {
	return mod289((x*34.0 + 1.0) * x)
}

func taylorInvSqrt(r float64) float64 {
	return 1.79284291400159 - 0.85373472095314*r
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// Simplex3 evaluates 3D simplex gradient noise at (x, y, z).
//
// The lattice hash is a permutation polynomial modulo 289, so the function holds no
// tables and no state: the same input always yields the same output on every call site.
// The result is continuous with a continuous first derivative and lies in [-1, 1].
// NaN or infinite input gives an undefined result.
func Simplex3(x, y, z float64) float64 {
	// first corner
	s := (x + y + z) * skewF
	i := math.Floor(x + s)
	j := math.Floor(y + s)
	k := math.Floor(z + s)
	t := (i + j + k) * unskewG
	x0 := x - i + t
	y0 := y - j + t
	z0 := z - k + t

	// other corners, ranked by the magnitude of the offsets
	gx := step(y0, x0)
	gy := step(z0, y0)
	gz := step(x0, z0)
	lx, ly, lz := 1-gx, 1-gy, 1-gz

	i1x, i1y, i1z := min(gx, lz), min(gy, lx), min(gz, ly)
	i2x, i2y, i2z := max(gx, lz), max(gy, lx), max(gz, ly)

	x1, y1, z1 := x0-i1x+unskewG, y0-i1y+unskewG, z0-i1z+unskewG
	x2, y2, z2 := x0-i2x+skewF, y0-i2y+skewF, z0-i2z+skewF
	x3, y3, z3 := x0-0.5, y0-0.5, z0-0.5

	i = mod289(i)
	j = mod289(j)
	k = mod289(k)

	n := corner(hash(i, j, k), x0, y0, z0) +
		corner(hash(i+i1x, j+i1y, k+i1z), x1, y1, z1) +
		corner(hash(i+i2x, j+i2y, k+i2z), x2, y2, z2) +
		corner(hash(i+1, j+1, k+1), x3, y3, z3)

	return min(max(outScale*n, -1), 1)
}

func hash(i, j, k float64) float64 {
	return permute(permute(permute(k)+j) + i)
}

// corner returns the contribution of one simplex corner with lattice hash p at
// offset (x, y, z) from it.
func corner(p, x, y, z float64) float64 {
	m := kernelR2 - (x*x + y*y + z*z)
	if m <= 0 {
		return 0
	}

	// gradients are taken from a 7x7 grid mapped onto an octahedron
	nsx := ringStep * 2
	nsy := ringStep*0.5 - 1
	nsz := ringStep

	jj := p - 49*math.Floor(p*nsz*nsz)
	gxi := math.Floor(jj * nsz)
	gyi := math.Floor(jj - 7*gxi)
	gx := gxi*nsx + nsy
	gy := gyi*nsx + nsy
	gz := 1 - math.Abs(gx) - math.Abs(gy)

	if gz <= 0 {
		gx -= math.Floor(gx)*2 + 1
		gy -= math.Floor(gy)*2 + 1
	}

	norm := taylorInvSqrt(gx*gx + gy*gy + gz*gz)
	gx *= norm
	gy *= norm
	gz *= norm

	m *= m
	return m * m * (gx*x + gy*y + gz*z)
}
