// Package polymesh implements the kernel.Kernel interface with explicit
// faceted meshes: an N-segment cylinder and a 24-vertex box. It is the
// default kernel because the cylinder segment count is a user-visible
// parameter that a smooth kernel cannot honour.
package polymesh

import (
	"errors"
	"math"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// MinSegments is the smallest cylinder ring the kernel will build.
const MinSegments = 3

// solid wraps a prebuilt mesh.
type solid struct {
	mesh *kernel.Mesh
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() geom.Box {
	return s.mesh.Bounds()
}

// Kernel builds faceted meshes.
type Kernel struct{}

// New returns a new polymesh Kernel.
func New() *Kernel {
	return &Kernel{}
}

// Box creates a box centred on the origin with full extents x, y, z.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	hx, hy, hz := float32(x/2), float32(y/2), float32(z/2)
	m := &kernel.Mesh{}

	// Each face: outward normal and four corners in counter-clockwise order.
	faces := []struct {
		n       [3]float32
		corners [4][3]float32
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}, {hx, -hy, hz}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hx, hy, -hz}, {-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{hx, hy, -hz}, {-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{-hx, hy, -hz}, {hx, hy, -hz}, {hx, -hy, -hz}, {-hx, -hy, -hz}}},
	}
	for _, f := range faces {
		base := uint32(m.VertexCount())
		for _, c := range f.corners {
			m.Vertices = append(m.Vertices, c[0], c[1], c[2])
			m.Normals = append(m.Normals, f.n[0], f.n[1], f.n[2])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return &solid{mesh: m}
}

// Cylinder creates a cylinder along Z, centred on the origin, with the
// given number of side segments. Fewer than MinSegments are raised to it.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments < MinSegments {
		segments = MinSegments
	}
	n := segments
	hz := float32(height / 2)
	r := radius
	m := &kernel.Mesh{}

	ring := make([][2]float32, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring[i] = [2]float32{float32(math.Cos(a)), float32(math.Sin(a))}
	}

	// Side: bottom ring then top ring, radial normals.
	for _, z := range []float32{-hz, hz} {
		for _, c := range ring {
			m.Vertices = append(m.Vertices, c[0]*float32(r), c[1]*float32(r), z)
			m.Normals = append(m.Normals, c[0], c[1], 0)
		}
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b0, b1 := uint32(i), uint32(j)
		t0, t1 := uint32(n+i), uint32(n+j)
		m.Indices = append(m.Indices, b0, b1, t1, b0, t1, t0)
	}

	// Caps: a ring plus a centre vertex each, fanned.
	for _, lid := range []struct {
		z  float32
		nz float32
	}{{-hz, -1}, {hz, 1}} {
		base := uint32(m.VertexCount())
		for _, c := range ring {
			m.Vertices = append(m.Vertices, c[0]*float32(r), c[1]*float32(r), lid.z)
			m.Normals = append(m.Normals, 0, 0, lid.nz)
		}
		center := uint32(m.VertexCount())
		m.Vertices = append(m.Vertices, 0, 0, lid.z)
		m.Normals = append(m.Normals, 0, 0, lid.nz)
		for i := 0; i < n; i++ {
			a, b := base+uint32(i), base+uint32((i+1)%n)
			if lid.nz > 0 {
				m.Indices = append(m.Indices, center, a, b)
			} else {
				m.Indices = append(m.Indices, center, b, a)
			}
		}
	}
	return &solid{mesh: m}
}

// ToMesh returns a copy of the solid's mesh.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ps, ok := s.(*solid)
	if !ok || ps == nil {
		return nil, errors.New("polymesh: solid was not built by this kernel")
	}
	return ps.mesh.Clone(), nil
}
