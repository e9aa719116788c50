// Package geometry builds the primitive meshes the surface is drawn on and owns their
// lifetime through disposable handles.
package geometry

import (
	"errors"
	"fmt"
	"strings"

	"gonoisesurface/common"
)

type Kind int

const (
	Plane Kind = iota
	Sphere
	Capsule
	Dodecahedron
)

var kindNames = [...]string{"Plane", "Sphere", "Capsule", "Dodecahedron"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func Kinds() []Kind {
	return []Kind{Plane, Sphere, Capsule, Dodecahedron}
}

var (
	ErrUnknownKind      = errors.New("geometry: unknown kind")
	ErrAlreadyDisposed  = errors.New("geometry: handle already disposed")
	ErrDegenerateParams = errors.New("geometry: degenerate parameters")
)

// ParseKind maps a case-insensitive kind name to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Mesh is an indexed triangle list. Positions and UVs are parallel arrays; every UV
// lies in [0,1]^2.
type Mesh struct {
	Positions []common.Vec3
	UVs       []common.Vec2
	Indices   []uint32
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) add(p common.Vec3, u, v float32) uint32 {
	m.Positions = append(m.Positions, p)
	m.UVs = append(m.UVs, common.Vec2{common.Clamp(u, 0, 1), common.Clamp(v, 0, 1)})
	return uint32(len(m.Positions) - 1)
}

func (m *Mesh) tri(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}
