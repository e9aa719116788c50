package geometry

import (
	"errors"
	"fmt"

	"gonoisesurface/common"
	"gonoisesurface/common/rw"
)

// meshMagic tags an encoded mesh ("SRFM").
const meshMagic = 0x4d465253

var ErrBadMesh = errors.New("geometry: malformed mesh data")

// MarshalBinary encodes the mesh as little-endian counts followed by positions, UVs
// and indices.
func (m *Mesh) MarshalBinary() ([]byte, error) {
	if len(m.Positions) != len(m.UVs) {
		return nil, fmt.Errorf("%w: %d positions, %d uvs", ErrBadMesh, len(m.Positions), len(m.UVs))
	}
	w := rw.NewWriter()
	w.WriteUInt32(meshMagic)
	w.WriteUInt32(uint32(len(m.Positions)))
	w.WriteUInt32(uint32(len(m.Indices)))
	for _, p := range m.Positions {
		w.WriteFloat32s(p[:])
	}
	for _, uv := range m.UVs {
		w.WriteFloat32s(uv[:])
	}
	w.WriteUInt32s(m.Indices)
	return w.GetWriteBytes(), nil
}

func (m *Mesh) UnmarshalBinary(data []byte) error {
	r := rw.NewReader(data)
	if r.ReadUInt32() != meshMagic {
		return fmt.Errorf("%w: bad magic", ErrBadMesh)
	}
	nv, ni := int(r.ReadUInt32()), int(r.ReadUInt32())
	if r.Err() != nil || nv*20+ni*4 != r.Size() {
		return fmt.Errorf("%w: %d vertices and %d indices do not fit %d bytes", ErrBadMesh, nv, ni, r.Size())
	}
	out := Mesh{
		Positions: make([]common.Vec3, nv),
		UVs:       make([]common.Vec2, nv),
		Indices:   make([]uint32, ni),
	}
	for i := range out.Positions {
		r.ReadFloat32s(out.Positions[i][:])
	}
	for i := range out.UVs {
		r.ReadFloat32s(out.UVs[i][:])
	}
	r.ReadUInt32s(out.Indices)
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadMesh, err)
	}
	for _, idx := range out.Indices {
		if int(idx) >= nv {
			return fmt.Errorf("%w: index %d out of range", ErrBadMesh, idx)
		}
	}
	*m = out
	return nil
}
