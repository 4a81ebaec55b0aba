//go:build manifold

// Package manifold binds the Manifold C library
// (https://github.com/elalish/manifold) as a fitting kernel. Its cylinders
// honour the requested segment count exactly, like polymesh, but come out
// of a watertight mesh engine.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
)

var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

func (s *manifoldSolid) BoundingBox() geom.Box {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	return geom.Box{
		Min: geom.Vec3{
			float64(C.manifold_box_min_x(bbox)),
			float64(C.manifold_box_min_y(bbox)),
			float64(C.manifold_box_min_z(bbox)),
		},
		Max: geom.Vec3{
			float64(C.manifold_box_max_x(bbox)),
			float64(C.manifold_box_max_y(bbox)),
			float64(C.manifold_box_max_z(bbox)),
		},
	}
}

// newSolid wraps ptr and frees it when the solid is collected.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Box creates a box with the given full extents, centred on the origin.
func (k *ManifoldKernel) Box(x, y, z float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(x), C.double(y), C.double(z),
		C.int(1), // center
	)
	return newSolid(ptr)
}

// Cylinder creates a cylinder along Z with the given segment count,
// centred on the origin.
func (k *ManifoldKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius), // radius_low
		C.double(radius), // radius_high
		C.int(segments),
		C.int(1), // center
	)
	return newSolid(ptr)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. MeshGL interleaves vertex properties; positions come first and
// normals, when present, follow at offsets 3..5.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok {
		return nil, fmt.Errorf("manifold: unsupported solid %T", s)
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)
	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}
	if !hasNormals {
		normals = vertexNormals(vertices, indices)
	}

	mesh := &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}
	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}
	return mesh, nil
}

// vertexNormals averages the face normals around each vertex.
func vertexNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := vec(vertices, i0)
		e1 := vec(vertices, i1).Sub(a)
		e2 := vec(vertices, i2).Sub(a)
		n := e1.Cross(e2)
		for _, idx := range []uint32{i0, i1, i2} {
			for c := 0; c < 3; c++ {
				normals[idx*3+uint32(c)] += float32(n[c])
			}
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		nx, ny, nz := float64(normals[i]), float64(normals[i+1]), float64(normals[i+2])
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i] = float32(nx / length)
			normals[i+1] = float32(ny / length)
			normals[i+2] = float32(nz / length)
		}
	}
	return normals
}

func vec(vertices []float32, i uint32) geom.Vec3 {
	return geom.Vec3{float64(vertices[i*3]), float64(vertices[i*3+1]), float64(vertices[i*3+2])}
}
