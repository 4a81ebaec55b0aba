package fit

import (
	"math"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a target's bounding box expressed as a world-space centre,
// local-space extents and world rotation, plus the target's own scale.
type Frame struct {
	Center   geom.Vec3
	Size     geom.Vec3 // local extents, never negative
	Rotation geom.Euler
	Scale    geom.Vec3 // target's local scale, sign preserved
}

// FrameFromBounds builds a frame from the eight local bound box corners
// (corner 0 minimum, corner 6 maximum), the target's world matrix and its
// local scale. Degenerate boxes yield zero extents, never an error.
func FrameFromBounds(corners [8]geom.Vec3, world mgl64.Mat4, scale geom.Vec3) Frame {
	lo, hi := corners[0], corners[6]
	size := geom.Vec3{
		math.Abs(hi.X() - lo.X()),
		math.Abs(hi.Y() - lo.Y()),
		math.Abs(hi.Z() - lo.Z()),
	}
	centerLocal := lo.Add(hi).Mul(0.5)
	return Frame{
		Center:   world.Mul4x1(centerLocal.Vec4(1)).Vec3(),
		Size:     size,
		Rotation: geom.RotationFromMatrix(world),
		Scale:    scale,
	}
}
