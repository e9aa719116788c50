package geometry

import (
	"fmt"
	"math"

	"gonoisesurface/common"
)

type PlaneParams struct {
	Width, Height                 float32
	WidthSegments, HeightSegments int
}

type SphereParams struct {
	Radius                        float32
	WidthSegments, HeightSegments int
}

type CapsuleParams struct {
	Radius, Length float32
	CapSegments    int
	RadialSegments int
}

type DodecahedronParams struct {
	Radius float32
}

// Params carries the construction parameters of every kind.
type Params struct {
	Plane        PlaneParams
	Sphere       SphereParams
	Capsule      CapsuleParams
	Dodecahedron DodecahedronParams
}

func DefaultParams() Params {
	return Params{
		Plane:        PlaneParams{Width: 10, Height: 10, WidthSegments: 100, HeightSegments: 100},
		Sphere:       SphereParams{Radius: 5, WidthSegments: 100, HeightSegments: 100},
		Capsule:      CapsuleParams{Radius: 5, Length: 2, CapSegments: 50, RadialSegments: 100},
		Dodecahedron: DodecahedronParams{Radius: 5},
	}
}

// BuildPlane lays a grid in the XY plane centered on the origin, +Y up, u along +X.
func BuildPlane(p PlaneParams) (*Mesh, error) {
	if p.WidthSegments < 1 || p.HeightSegments < 1 || p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: plane %+v", ErrDegenerateParams, p)
	}
	gx, gy := p.WidthSegments, p.HeightSegments
	segW := p.Width / float32(gx)
	segH := p.Height / float32(gy)
	m := &Mesh{}
	for iy := 0; iy <= gy; iy++ {
		y := float32(iy)*segH - p.Height/2
		for ix := 0; ix <= gx; ix++ {
			x := float32(ix)*segW - p.Width/2
			m.add(common.Vec3{x, -y, 0}, float32(ix)/float32(gx), 1-float32(iy)/float32(gy))
		}
	}
	row := uint32(gx + 1)
	for iy := uint32(0); iy < uint32(gy); iy++ {
		for ix := uint32(0); ix < uint32(gx); ix++ {
			a := ix + row*iy
			b := ix + row*(iy+1)
			c := ix + 1 + row*(iy+1)
			d := ix + 1 + row*iy
			m.tri(a, b, d)
			m.tri(b, c, d)
		}
	}
	return m, nil
}

// BuildSphere builds a UV sphere with poles on the Y axis.
func BuildSphere(p SphereParams) (*Mesh, error) {
	if p.WidthSegments < 3 || p.HeightSegments < 2 || p.Radius <= 0 {
		return nil, fmt.Errorf("%w: sphere %+v", ErrDegenerateParams, p)
	}
	ws, hs := p.WidthSegments, p.HeightSegments
	r := float64(p.Radius)
	m := &Mesh{}
	for iy := 0; iy <= hs; iy++ {
		v := float64(iy) / float64(hs)
		theta := v * math.Pi
		for ix := 0; ix <= ws; ix++ {
			u := float64(ix) / float64(ws)
			phi := u * 2 * math.Pi
			m.add(common.Vec3{
				float32(-r * math.Cos(phi) * math.Sin(theta)),
				float32(r * math.Cos(theta)),
				float32(r * math.Sin(phi) * math.Sin(theta)),
			}, float32(u), float32(1-v))
		}
	}
	row := uint32(ws + 1)
	for iy := 0; iy < hs; iy++ {
		for ix := uint32(0); ix < uint32(ws); ix++ {
			a := uint32(iy)*row + ix + 1
			b := uint32(iy)*row + ix
			c := uint32(iy+1)*row + ix
			d := uint32(iy+1)*row + ix + 1
			if iy != 0 {
				m.tri(a, b, d)
			}
			if iy != hs-1 {
				m.tri(b, c, d)
			}
		}
	}
	return m, nil
}

// BuildCapsule revolves a profile of two quarter-circle caps joined by a straight
// segment of the given length around the Y axis.
func BuildCapsule(p CapsuleParams) (*Mesh, error) {
	if p.CapSegments < 1 || p.RadialSegments < 3 || p.Radius <= 0 || p.Length < 0 {
		return nil, fmt.Errorf("%w: capsule %+v", ErrDegenerateParams, p)
	}
	r := float64(p.Radius)
	half := float64(p.Length) / 2

	var profile [][2]float64
	for i := 0; i <= p.CapSegments; i++ {
		a := -math.Pi/2 + float64(i)/float64(p.CapSegments)*math.Pi/2
		profile = append(profile, [2]float64{r * math.Cos(a), -half + r*math.Sin(a)})
	}
	for i := 0; i <= p.CapSegments; i++ {
		if i == 0 && half == 0 {
			continue
		}
		a := float64(i) / float64(p.CapSegments) * math.Pi / 2
		profile = append(profile, [2]float64{r * math.Cos(a), half + r*math.Sin(a)})
	}

	m := &Mesh{}
	np := len(profile)
	for i := 0; i <= p.RadialSegments; i++ {
		u := float64(i) / float64(p.RadialSegments)
		phi := u * 2 * math.Pi
		sin, cos := math.Sincos(phi)
		for j, pt := range profile {
			m.add(common.Vec3{
				float32(pt[0] * sin),
				float32(pt[1]),
				float32(pt[0] * cos),
			}, float32(u), float32(j)/float32(np-1))
		}
	}
	for i := 0; i < p.RadialSegments; i++ {
		for j := 0; j < np-1; j++ {
			base := uint32(j + i*np)
			a := base
			b := base + uint32(np)
			c := base + uint32(np) + 1
			d := base + 1
			m.tri(a, b, d)
			m.tri(c, d, b)
		}
	}
	return m, nil
}

var (
	dodecaPhi = (1 + math.Sqrt(5)) / 2
	dodecaInv = 1 / dodecaPhi

	dodecaVertices = [20][3]float64{
		{-1, -1, -1}, {-1, -1, 1}, {-1, 1, -1}, {-1, 1, 1},
		{1, -1, -1}, {1, -1, 1}, {1, 1, -1}, {1, 1, 1},
		{0, -dodecaInv, -dodecaPhi}, {0, -dodecaInv, dodecaPhi},
		{0, dodecaInv, -dodecaPhi}, {0, dodecaInv, dodecaPhi},
		{-dodecaInv, -dodecaPhi, 0}, {-dodecaInv, dodecaPhi, 0},
		{dodecaInv, -dodecaPhi, 0}, {dodecaInv, dodecaPhi, 0},
		{-dodecaPhi, 0, -dodecaInv}, {dodecaPhi, 0, -dodecaInv},
		{-dodecaPhi, 0, dodecaInv}, {dodecaPhi, 0, dodecaInv},
	}

	// three triangles per pentagonal face
	dodecaIndices = [36][3]int{
		{3, 11, 7}, {3, 7, 15}, {3, 15, 13},
		{7, 19, 17}, {7, 17, 6}, {7, 6, 15},
		{17, 4, 8}, {17, 8, 10}, {17, 10, 6},
		{8, 0, 16}, {8, 16, 2}, {8, 2, 10},
		{0, 12, 1}, {0, 1, 18}, {0, 18, 16},
		{6, 10, 2}, {6, 2, 13}, {6, 13, 15},
		{2, 16, 18}, {2, 18, 3}, {2, 3, 13},
		{18, 1, 9}, {18, 9, 11}, {18, 11, 3},
		{4, 14, 12}, {4, 12, 0}, {4, 0, 8},
		{11, 9, 5}, {11, 5, 19}, {11, 19, 7},
		{19, 5, 14}, {19, 14, 4}, {19, 4, 17},
		{1, 12, 14}, {1, 14, 5}, {1, 5, 9},
	}
)

// BuildDodecahedron builds a flat-faced dodecahedron: vertices are not shared between
// triangles, and UVs come from the spherical direction of each vertex.
func BuildDodecahedron(p DodecahedronParams) (*Mesh, error) {
	if p.Radius <= 0 {
		return nil, fmt.Errorf("%w: dodecahedron %+v", ErrDegenerateParams, p)
	}
	r := float64(p.Radius)
	m := &Mesh{}
	for _, f := range dodecaIndices {
		var idx [3]uint32
		for k, vi := range f {
			v := dodecaVertices[vi]
			l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
			x, y, z := v[0]/l, v[1]/l, v[2]/l
			u := math.Atan2(z, -x)/(2*math.Pi) + 0.5
			w := math.Atan2(-y, math.Sqrt(x*x+z*z))/math.Pi + 0.5
			idx[k] = m.add(common.Vec3{float32(x * r), float32(y * r), float32(z * r)}, float32(u), float32(w))
		}
		m.tri(idx[0], idx[1], idx[2])
	}
	return m, nil
}

// Build constructs the mesh for kind from p.
func Build(kind Kind, p Params) (*Mesh, error) {
	switch kind {
	case Plane:
		return BuildPlane(p.Plane)
	case Sphere:
		return BuildSphere(p.Sphere)
	case Capsule:
		return BuildCapsule(p.Capsule)
	case Dodecahedron:
		return BuildDodecahedron(p.Dodecahedron)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}
