package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid visits n^3 points starting at origin with the given spacing.
func grid(n int, origin, spacing float64, fn func(x, y, z float64)) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				fn(origin+float64(i)*spacing, origin+float64(j)*spacing, origin+float64(k)*spacing)
			}
		}
	}
}

func TestSimplexBounded(t *testing.T) {
	lo, hi := math.Inf(1), math.Inf(-1)
	grid(40, -23.7, 0.61, func(x, y, z float64) {
		v := Simplex3(x, y, z)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	})
	assert.GreaterOrEqual(t, lo, -1.0)
	assert.LessOrEqual(t, hi, 1.0)
	// a field that collapsed to a constant would also be bounded
	assert.Less(t, lo, -0.3)
	assert.Greater(t, hi, 0.3)
}

func TestSimplexDeterministic(t *testing.T) {
	assert.Equal(t, Simplex3(0, 0, 0), Simplex3(0, 0, 0))
	assert.Equal(t, Simplex3(1.25, -3.5, 0.2), Simplex.Eval3(1.25, -3.5, 0.2))
	assert.False(t, math.IsNaN(Simplex3(0, 0, 0)))
}

func TestSimplexContinuous(t *testing.T) {
	const delta = 0.01
	grid(18, -4.3, 0.47, func(x, y, z float64) {
		v := Simplex3(x, y, z)
		for _, d := range [][3]float64{{delta, 0, 0}, {0, delta, 0}, {0, 0, delta}} {
			w := Simplex3(x+d[0], y+d[1], z+d[2])
			if math.Abs(v-w) > 0.05 {
				t.Fatalf("jump of %v between (%v,%v,%v) and its neighbour %v", math.Abs(v-w), x, y, z, d)
			}
		}
	})
}

func TestSimplexContinuousAcrossLattice(t *testing.T) {
	for _, c := range []float64{-2, -1, 0, 1, 2, 7} {
		below := Simplex3(c-1e-7, 0.3, 0.8)
		above := Simplex3(c+1e-7, 0.3, 0.8)
		assert.InDelta(t, below, above, 1e-4, "seam at x=%v", c)
	}
}

func TestSimplexZeroMean(t *testing.T) {
	var sum float64
	n := 0
	grid(40, -31.1, 0.73, func(x, y, z float64) {
		sum += Simplex3(x, y, z)
		n++
	})
	assert.InDelta(t, 0, sum/float64(n), 0.05)
}

func TestSimplexPeriodic(t *testing.T) {
	for _, p := range [][3]float64{{0.1, 0.2, 0.3}, {-1.7, 4.2, 0.9}, {3, 3, 3}} {
		v := Simplex3(p[0], p[1], p[2])
		w := Simplex3(p[0]+Period, p[1]+Period, p[2]+Period)
		assert.InDelta(t, v, w, 1e-6)
	}
}

func TestNewBackends(t *testing.T) {
	for _, b := range Backends() {
		f, err := New(b, 7)
		require.NoError(t, err, b)
		grid(8, -2.2, 0.55, func(x, y, z float64) {
			v := f.Eval3(x, y, z)
			if v < -1 || v > 1 {
				t.Fatalf("%s: %v out of range at (%v,%v,%v)", b, v, x, y, z)
			}
		})
		assert.Equal(t, f.Eval3(0.5, 0.25, 1.5), f.Eval3(0.5, 0.25, 1.5), b)
	}

	_, err := New("worley", 0)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend(" OpenSimplex ")
	require.NoError(t, err)
	assert.Equal(t, BackendOpenSimplex, b)

	_, err = ParseBackend("value")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
