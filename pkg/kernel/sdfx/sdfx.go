// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Surfaces are smooth, so the
// cylinder segment count is ignored; this kernel is used for export where a
// rounder tessellation is preferred over the faceted polymesh output.
package sdfx

import (
	"fmt"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/kernel/polymesh"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. Zero-sized
// primitives have no SDF; they carry a flat polygon solid instead.
// Construction errors are carried to ToMesh.
type sdfxSolid struct {
	s    sdf.SDF3
	flat kernel.Solid
	err  error
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() geom.Box {
	if s.err != nil {
		return geom.EmptyBox()
	}
	if s.flat != nil {
		return s.flat.BoundingBox()
	}
	bb := s.s.BoundingBox()
	return geom.Box{
		Min: geom.Vec3{bb.Min.X, bb.Min.Y, bb.Min.Z},
		Max: geom.Vec3{bb.Max.X, bb.Max.Y, bb.Max.Z},
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
	flat  *polymesh.Kernel
}

// New returns a new SdfxKernel. cells sets the marching cubes resolution
// along the longest axis; zero or less uses the default.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells, flat: polymesh.New()}
}

// Box creates a box with the given dimensions, centred on the origin. A box
// with a zero extent is built as exact flat geometry.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	if x >= 0 && y >= 0 && z >= 0 && (x == 0 || y == 0 || z == 0) {
		return &sdfxSolid{flat: k.flat.Box(x, y, z)}
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return &sdfxSolid{err: fmt.Errorf("sdfx.Box3D: %w", err)}
	}
	return &sdfxSolid{s: s}
}

// Cylinder creates a cylinder along Z with the given height and radius.
// The segments parameter is ignored since SDF represents smooth surfaces,
// except for zero height or radius, which falls back to a flat polygon.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if height >= 0 && radius >= 0 && (height == 0 || radius == 0) {
		return &sdfxSolid{flat: k.flat.Cylinder(height, radius, segments)}
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return &sdfxSolid{err: fmt.Errorf("sdfx.Cylinder3D: %w", err)}
	}
	return &sdfxSolid{s: s}
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	solid, ok := s.(*sdfxSolid)
	if !ok || solid == nil {
		return nil, fmt.Errorf("sdfx: solid was not built by this kernel")
	}
	if solid.err != nil {
		return nil, solid.err
	}
	if solid.flat != nil {
		return k.flat.ToMesh(solid.flat)
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(solid.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
