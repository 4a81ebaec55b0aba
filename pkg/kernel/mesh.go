package kernel

import (
	"errors"
	"fmt"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene object this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// ErrMalformed is returned by Check for inconsistent mesh arrays.
var ErrMalformed = errors.New("kernel: malformed mesh")

// Check verifies that the flat arrays describe whole vertices and triangles
// and that every index refers to an existing vertex.
func (m *Mesh) Check() error {
	switch {
	case len(m.Vertices)%3 != 0:
		return fmt.Errorf("%w: %d vertex floats is not a multiple of 3", ErrMalformed, len(m.Vertices))
	case len(m.Indices)%3 != 0:
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformed, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d is %d, mesh has %d vertices", ErrMalformed, i, idx, n)
		}
	}
	return nil
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) geom.Vec3 {
	return geom.Vec3{float64(m.Vertices[i*3]), float64(m.Vertices[i*3+1]), float64(m.Vertices[i*3+2])}
}

// Bounds returns the axis-aligned bounds of the vertices.
// An empty mesh returns an empty box.
func (m *Mesh) Bounds() geom.Box {
	b := geom.EmptyBox()
	for i := 0; i < m.VertexCount(); i++ {
		b.Extend(m.Vertex(i))
	}
	return b
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{PartName: m.PartName}
	out.Vertices = append([]float32(nil), m.Vertices...)
	out.Normals = append([]float32(nil), m.Normals...)
	out.Indices = append([]uint32(nil), m.Indices...)
	return out
}

// Transform returns a copy of the mesh with every vertex mapped through mat.
// Normals are rotated by the inverse-transpose and renormalized.
func (m *Mesh) Transform(mat mgl64.Mat4) *Mesh {
	out := m.Clone()
	for i := 0; i < m.VertexCount(); i++ {
		p := mat.Mul4x1(m.Vertex(i).Vec4(1)).Vec3()
		out.Vertices[i*3] = float32(p.X())
		out.Vertices[i*3+1] = float32(p.Y())
		out.Vertices[i*3+2] = float32(p.Z())
	}
	if len(m.Normals) != len(m.Vertices) {
		return out
	}
	nm := mat.Mat3()
	if nm.Det() != 0 {
		nm = nm.Inv().Transpose()
	}
	for i := 0; i < m.VertexCount(); i++ {
		n := geom.Vec3{float64(m.Normals[i*3]), float64(m.Normals[i*3+1]), float64(m.Normals[i*3+2])}
		n = nm.Mul3x1(n)
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		out.Normals[i*3] = float32(n.X())
		out.Normals[i*3+1] = float32(n.Y())
		out.Normals[i*3+2] = float32(n.Z())
	}
	return out
}

// Translate returns a copy of the mesh shifted by d.
func (m *Mesh) Translate(d geom.Vec3) *Mesh {
	return m.Transform(mgl64.Translate3D(d.X(), d.Y(), d.Z()))
}
