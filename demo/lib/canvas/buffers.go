package canvas

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	GL_FLOAT32_SIZE = 4
	GL_UINT32_SIZE  = 4
)

// VertexLayout is the attribute layout of the streamed vertex buffer: position,
// uv, then the color and alpha noise. Attribute i is bound to location i.
var VertexLayout = []int32{3, 2, 1, 1} // sums to loop.VertexFloats

func vertexStride() int32 {
	var n int32
	for _, c := range VertexLayout {
		n += c
	}
	return n
}

// SurfaceBuffers holds one mesh on the GPU. The index buffer is static; the vertex
// buffer is rewritten every frame.
type SurfaceBuffers struct {
	vao, vbo, ebo uint32
	indexCount    int32
	vertexFloats  int
}

func NewSurfaceBuffers(indices []uint32, vertexCount int) *SurfaceBuffers {
	b := &SurfaceBuffers{indexCount: int32(len(indices))}
	b.vertexFloats = vertexCount * int(vertexStride())

	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.GenBuffers(1, &b.ebo)

	gl.BindVertexArray(b.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, b.vertexFloats*GL_FLOAT32_SIZE, nil, gl.DYNAMIC_DRAW)

	stride := vertexStride() * GL_FLOAT32_SIZE
	var offset int
	for loc, size := range VertexLayout {
		gl.VertexAttribPointer(uint32(loc), size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		gl.EnableVertexAttribArray(uint32(loc))
		offset += int(size) * GL_FLOAT32_SIZE
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*GL_UINT32_SIZE, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return b
}

// Update streams one frame of interleaved vertices.
func (b *SurfaceBuffers) Update(vertices []float32) {
	n := min(len(vertices), b.vertexFloats)
	if n == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	// orphan the previous storage
	gl.BufferData(gl.ARRAY_BUFFER, b.vertexFloats*GL_FLOAT32_SIZE, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*GL_FLOAT32_SIZE, gl.Ptr(vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *SurfaceBuffers) Draw() {
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (b *SurfaceBuffers) Delete() error {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteBuffers(1, &b.ebo)
	b.vao, b.vbo, b.ebo = 0, 0, 0
	return GLError("delete surface buffers")
}
