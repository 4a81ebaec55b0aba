package geom

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns an inverted box that any Extend call will replace.
func EmptyBox() Box {
	return Box{
		Min: Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// Extend grows the box to include p.
func (b *Box) Extend(p Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// IsEmpty reports whether the box has never been extended.
func (b Box) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Size returns the extents. An empty box has zero size.
func (b Box) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint. An empty box is centred on the origin.
func (b Box) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corners returns the eight corners. Index 0 is the minimum corner and
// index 6 the maximum; the ordering walks the min-X face then the max-X face.
func (b Box) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	if b.IsEmpty() {
		lo, hi = Vec3{}, Vec3{}
	}
	return [8]Vec3{
		{lo.X(), lo.Y(), lo.Z()},
		{lo.X(), lo.Y(), hi.Z()},
		{lo.X(), hi.Y(), hi.Z()},
		{lo.X(), hi.Y(), lo.Z()},
		{hi.X(), lo.Y(), lo.Z()},
		{hi.X(), lo.Y(), hi.Z()},
		{hi.X(), hi.Y(), hi.Z()},
		{hi.X(), hi.Y(), lo.Z()},
	}
}
