package fit

import (
	"math"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
)

// unitCubeSize is the full edge length of the cube a scale of one produces,
// so a scale of size/2 fits the box.
const unitCubeSize = 2

// Shape is a fully specified fitted primitive: the geometry to build and
// the object transform to place it with.
type Shape struct {
	Type PrimitiveType

	// Cylinder geometry. Unused for cubes.
	Radius   float64
	Depth    float64
	Segments int

	Location geom.Vec3
	Rotation geom.Euler // target rotation plus Extra
	Extra    geom.Euler // axis remap offset (cylinders only)
	Scale    geom.Vec3  // object scale, already multiplied by |target scale|
}

var (
	quarterTurn = math.Pi / 2
	extraX      = geom.Euler{Y: quarterTurn}
	extraY      = geom.Euler{X: quarterTurn}
)

// CylinderShape fits a cylinder along axis to the frame. The two extents
// across the axis choose the radius (the smaller one, halved); the extent
// along it is the depth.
func CylinderShape(f Frame, axis Axis, segments int) Shape {
	s := f.Size
	var radius, depth float64
	var extra geom.Euler
	switch axis {
	case AxisX:
		radius = math.Min(s.Y(), s.Z()) / 2
		depth = s.X()
		extra = extraX
	case AxisY:
		radius = math.Min(s.X(), s.Z()) / 2
		depth = s.Y()
		extra = extraY
	default:
		radius = math.Min(s.X(), s.Y()) / 2
		depth = s.Z()
	}
	return Shape{
		Type:     Cylinder,
		Radius:   radius,
		Depth:    depth,
		Segments: ClampSegments(segments),
		Location: f.Center,
		Rotation: f.Rotation.Add(extra),
		Extra:    extra,
		Scale:    geom.AbsVec(f.Scale),
	}
}

// CubeShape fits a cube to the frame. The scale is half of each extent,
// multiplied by the absolute target scale.
func CubeShape(f Frame) Shape {
	half := f.Size.Mul(0.5)
	return Shape{
		Type:     Cube,
		Location: f.Center,
		Rotation: f.Rotation,
		Scale:    geom.MulVec(half, geom.AbsVec(f.Scale)),
	}
}

// ShapeFor dispatches on the primitive type.
func ShapeFor(f Frame, t PrimitiveType, axis Axis, segments int) Shape {
	if t == Cube {
		return CubeShape(f)
	}
	return CylinderShape(f, axis, segments)
}

// Solid builds the local geometry with k.
func (s Shape) Solid(k kernel.Kernel) kernel.Solid {
	if s.Type == Cube {
		return k.Box(unitCubeSize, unitCubeSize, unitCubeSize)
	}
	return k.Cylinder(s.Depth, s.Radius, s.Segments)
}

// Transform is the object transform for the shape.
func (s Shape) Transform() geom.Transform {
	return geom.Transform{Location: s.Location, Rotation: s.Rotation, Scale: s.Scale}
}

// Mesh tessellates the shape's local geometry.
func (s Shape) Mesh(k kernel.Kernel) (*kernel.Mesh, error) {
	return k.ToMesh(s.Solid(k))
}
