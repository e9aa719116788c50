package geometry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkMesh(t *testing.T, m *Mesh) {
	t.Helper()
	require.Equal(t, len(m.Positions), len(m.UVs))
	require.Zero(t, len(m.Indices)%3)
	for i, uv := range m.UVs {
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			t.Fatalf("uv %d = %v outside the unit square", i, uv)
		}
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			t.Fatalf("index %d out of range (%d vertices)", idx, len(m.Positions))
		}
	}
}

func TestBuildAllKinds(t *testing.T) {
	p := DefaultParams()
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			m, err := Build(k, p)
			require.NoError(t, err)
			require.NotZero(t, m.TriangleCount())
			checkMesh(t, m)
		})
	}
}

func TestPlaneLayout(t *testing.T) {
	m, err := BuildPlane(PlaneParams{Width: 10, Height: 10, WidthSegments: 100, HeightSegments: 100})
	require.NoError(t, err)
	assert.Equal(t, 101*101, m.VertexCount())
	assert.Equal(t, 100*100*2, m.TriangleCount())

	// first vertex is the top-left corner
	assert.InDeltaSlice(t, []float32{-5, 5, 0}, m.Positions[0][:], 1e-6)
	assert.Equal(t, float32(0), m.UVs[0][0])
	assert.Equal(t, float32(1), m.UVs[0][1])
	last := m.VertexCount() - 1
	assert.InDeltaSlice(t, []float32{5, -5, 0}, m.Positions[last][:], 1e-5)
	assert.Equal(t, float32(1), m.UVs[last][0])
	assert.Equal(t, float32(0), m.UVs[last][1])
}

func TestSphereRadius(t *testing.T) {
	m, err := BuildSphere(SphereParams{Radius: 5, WidthSegments: 16, HeightSegments: 8})
	require.NoError(t, err)
	for _, p := range m.Positions {
		assert.InDelta(t, 5, p.Len(), 1e-4)
	}
	// the pole rows contribute one triangle per segment
	assert.Equal(t, 16*(8-1)*2, m.TriangleCount())
}

func TestCapsuleExtent(t *testing.T) {
	m, err := BuildCapsule(CapsuleParams{Radius: 5, Length: 2, CapSegments: 4, RadialSegments: 8})
	require.NoError(t, err)
	var lo, hi float32
	for _, p := range m.Positions {
		lo = min(lo, p[1])
		hi = max(hi, p[1])
	}
	assert.InDelta(t, -6, lo, 1e-5)
	assert.InDelta(t, 6, hi, 1e-5)
}

func TestDodecahedronOnSphere(t *testing.T) {
	m, err := BuildDodecahedron(DodecahedronParams{Radius: 5})
	require.NoError(t, err)
	assert.Equal(t, 36, m.TriangleCount())
	assert.Equal(t, 108, m.VertexCount())
	for _, p := range m.Positions {
		assert.InDelta(t, 5, p.Len(), 1e-4)
	}
}

func TestDegenerateParams(t *testing.T) {
	_, err := BuildPlane(PlaneParams{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrDegenerateParams)
	_, err = BuildSphere(SphereParams{Radius: -1, WidthSegments: 8, HeightSegments: 8})
	assert.ErrorIs(t, err, ErrDegenerateParams)
	_, err = Build(Kind(9), DefaultParams())
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	k, err := ParseKind(" sphere")
	require.NoError(t, err)
	assert.Equal(t, Sphere, k)

	_, err = ParseKind("torus")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDisposeRunsHooksOnce(t *testing.T) {
	b := NewBuilder(DefaultParams(), nil)
	h, err := b.Create(Dodecahedron)
	require.NoError(t, err)

	calls := 0
	require.NoError(t, h.OnRelease(func() error { calls++; return nil }))
	require.NoError(t, h.Dispose())
	assert.Equal(t, 1, calls)
	assert.True(t, h.Disposed())
	assert.Nil(t, h.Mesh())

	assert.ErrorIs(t, h.Dispose(), ErrAlreadyDisposed)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, h.OnRelease(func() error { return nil }), ErrAlreadyDisposed)
}

func TestDisposeKeepsFailedHooks(t *testing.T) {
	h := NewHandle(1, Plane, &Mesh{})
	boom := errors.New("device lost")
	ok, bad := 0, 0
	require.NoError(t, h.OnRelease(func() error { ok++; return nil }))
	require.NoError(t, h.OnRelease(func() error {
		bad++
		if bad == 1 {
			return boom
		}
		return nil
	}))

	assert.ErrorIs(t, h.Dispose(), boom)
	assert.False(t, h.Disposed())
	require.NoError(t, h.Dispose())
	assert.Equal(t, 1, ok, "successful hooks are not rerun")
	assert.Equal(t, 2, bad)
}

func TestBuilderIDs(t *testing.T) {
	b := NewBuilder(DefaultParams(), nil)
	h1, err := b.Create(Dodecahedron)
	require.NoError(t, err)
	h2, err := b.Create(Dodecahedron)
	require.NoError(t, err)
	assert.NotEqual(t, h1.ID(), h2.ID())
	assert.Equal(t, "Dodecahedron#1", h1.String())
}

func TestMeshBinaryEncoding(t *testing.T) {
	m, err := BuildDodecahedron(DodecahedronParams{Radius: 5})
	require.NoError(t, err)
	data, err := m.MarshalBinary()
	require.NoError(t, err)

	var got Mesh
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, m.Positions, got.Positions)
	assert.Equal(t, m.UVs, got.UVs)
	assert.Equal(t, m.Indices, got.Indices)

	assert.ErrorIs(t, got.UnmarshalBinary(data[:len(data)-1]), ErrBadMesh)
	assert.ErrorIs(t, got.UnmarshalBinary([]byte("nope")), ErrBadMesh)

	bad := *m
	bad.Indices = append([]uint32{uint32(m.VertexCount())}, m.Indices[1:]...)
	data, err = bad.MarshalBinary()
	require.NoError(t, err)
	assert.ErrorIs(t, got.UnmarshalBinary(data), ErrBadMesh)
}
