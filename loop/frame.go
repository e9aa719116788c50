package loop

// VertexFloats is the number of floats Interleave writes per vertex.
const VertexFloats = 7

// Interleave appends the frame's vertex stream to dst[:0]: displaced position, uv,
// color noise and alpha noise for every vertex.
func (f *Frame) Interleave(dst []float32) []float32 {
	n := len(f.Samples) * VertexFloats
	if cap(dst) < n {
		dst = make([]float32, 0, n)
	}
	dst = dst[:0]
	for i, s := range f.Samples {
		uv := f.Mesh.UVs[i]
		dst = append(dst,
			s.Position[0], s.Position[1], s.Position[2],
			uv[0], uv[1],
			s.ColorNoise, s.AlphaNoise)
	}
	return dst
}
