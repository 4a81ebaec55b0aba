// Package geom holds the small amount of 3D math the fitting pipeline needs:
// Euler rotations, object transforms and axis-aligned boxes. Vectors and
// matrices are mgl64 types so callers can use the full mathgl API.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector in float64.
type Vec3 = mgl64.Vec3

// Euler is a rotation expressed as angles in radians about X, Y and Z,
// applied in XYZ order (R = Rz * Ry * Rx).
type Euler struct {
	X, Y, Z float64
}

// EulerDegrees builds an Euler from angles in degrees.
func EulerDegrees(x, y, z float64) Euler {
	return Euler{X: mgl64.DegToRad(x), Y: mgl64.DegToRad(y), Z: mgl64.DegToRad(z)}
}

// Add sums two rotations component-wise. This is not a composition of
// rotations; it matches how an angle offset is layered onto a host rotation.
func (e Euler) Add(o Euler) Euler {
	return Euler{X: e.X + o.X, Y: e.Y + o.Y, Z: e.Z + o.Z}
}

// Degrees returns the angles in degrees.
func (e Euler) Degrees() Vec3 {
	return Vec3{mgl64.RadToDeg(e.X), mgl64.RadToDeg(e.Y), mgl64.RadToDeg(e.Z)}
}

// IsZero reports whether all angles are exactly zero.
func (e Euler) IsZero() bool {
	return e.X == 0 && e.Y == 0 && e.Z == 0
}

// Matrix returns the homogeneous rotation matrix.
func (e Euler) Matrix() mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(e.Z).Mul4(mgl64.HomogRotate3DY(e.Y)).Mul4(mgl64.HomogRotate3DX(e.X))
}

// Transform is an object's location, rotation and scale.
type Transform struct {
	Location Vec3
	Rotation Euler
	Scale    Vec3
}

// Identity returns a transform with unit scale at the origin.
func Identity() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() mgl64.Mat4 {
	tr := mgl64.Translate3D(t.Location.X(), t.Location.Y(), t.Location.Z())
	sc := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tr.Mul4(t.Rotation.Matrix()).Mul4(sc)
}

// Apply maps a local point into the transform's parent space.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Matrix().Mul4x1(p.Vec4(1)).Vec3()
}

// AbsVec returns v with every component made non-negative.
func AbsVec(v Vec3) Vec3 {
	return Vec3{math.Abs(v.X()), math.Abs(v.Y()), math.Abs(v.Z())}
}

// MulVec multiplies two vectors component-wise.
func MulVec(a, b Vec3) Vec3 {
	return Vec3{a.X() * b.X(), a.Y() * b.Y(), a.Z() * b.Z()}
}

const epsilon = 1e-12

// RotationFromMatrix extracts the rotation of a world matrix, ignoring scale
// and translation. A negative determinant (mirrored object) is folded into
// the scale, so the returned rotation is always proper.
func RotationFromMatrix(m mgl64.Mat4) Euler {
	var cols [3]Vec3
	basis := [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i := 0; i < 3; i++ {
		c := m.Col(i).Vec3()
		if l := c.Len(); l > epsilon {
			cols[i] = c.Mul(1 / l)
		} else {
			cols[i] = basis[i]
		}
	}
	r := mgl64.Mat3FromCols(cols[0], cols[1], cols[2])
	if r.Det() < 0 {
		r = r.Mul(-1)
	}
	return eulerFromMat3(r)
}

// eulerFromMat3 decomposes R = Rz * Ry * Rx.
func eulerFromMat3(r mgl64.Mat3) Euler {
	sy := -r.At(2, 0)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y := math.Asin(sy)
	if math.Abs(math.Cos(y)) > 1e-9 {
		return Euler{
			X: math.Atan2(r.At(2, 1), r.At(2, 2)),
			Y: y,
			Z: math.Atan2(r.At(1, 0), r.At(0, 0)),
		}
	}
	// Gimbal lock: Z is folded into X.
	return Euler{X: math.Atan2(-r.At(1, 2), r.At(1, 1)), Y: y}
}
