// Package kernel defines the abstract mesh kernel used to build fitted
// primitives. Implementations (polymesh, sdfx) produce the local-space
// geometry of a unit primitive behind this interface, so the scene and the
// modal session never depend on how a cylinder or a cube is tessellated.
package kernel

import "github.com/chazu/fastfit/pkg/geom"

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.Box
}

// Kernel builds primitive solids centred on the origin.
type Kernel interface {
	// Box creates a box with the given full extents.
	Box(x, y, z float64) Solid
	// Cylinder creates a cylinder along Z. Faceted kernels honour segments;
	// smooth kernels may ignore it.
	Cylinder(height, radius float64, segments int) Solid

	// ToMesh tessellates a solid into a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}
