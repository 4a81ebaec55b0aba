// Package fit computes bounding frames of scene objects and the primitive
// shapes fitted to them. Everything here is pure: callers supply bound box
// corners and transforms, and get back plain values.
package fit

import (
	"fmt"
	"strings"
)

// Segment count limits for fitted cylinders.
const (
	MinSegments     = 3
	MaxSegments     = 1024
	DefaultSegments = 32
)

// ClampSegments bounds n to [MinSegments, MaxSegments].
func ClampSegments(n int) int {
	if n < MinSegments {
		return MinSegments
	}
	if n > MaxSegments {
		return MaxSegments
	}
	return n
}

// PrimitiveType is the kind of primitive to fit.
type PrimitiveType int

const (
	Cylinder PrimitiveType = iota
	Cube
)

// DefaultPrimitive is the factory default type.
const DefaultPrimitive = Cylinder

func (p PrimitiveType) String() string {
	switch p {
	case Cylinder:
		return "CYLINDER"
	case Cube:
		return "CUBE"
	default:
		return "UNKNOWN"
	}
}

// Label is the human-readable name.
func (p PrimitiveType) Label() string {
	switch p {
	case Cylinder:
		return "Cylinder"
	case Cube:
		return "Cube"
	default:
		return "Unknown"
	}
}

// Toggle flips between Cylinder and Cube.
func (p PrimitiveType) Toggle() PrimitiveType {
	if p == Cylinder {
		return Cube
	}
	return Cylinder
}

// ParsePrimitiveType accepts CYLINDER or CUBE in any case.
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CYLINDER":
		return Cylinder, nil
	case "CUBE":
		return Cube, nil
	}
	return 0, fmt.Errorf("fit: invalid primitive type %q, expected CYLINDER or CUBE", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p PrimitiveType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PrimitiveType) UnmarshalText(b []byte) error {
	v, err := ParsePrimitiveType(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Axis is the cylinder's long axis in the target's local frame.
type Axis int

const (
	AxisZ Axis = iota
	AxisX
	AxisY
)

// DefaultAxis is the factory default axis.
const DefaultAxis = AxisZ

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// Next cycles Z -> X -> Y -> Z.
func (a Axis) Next() Axis {
	switch a {
	case AxisZ:
		return AxisX
	case AxisX:
		return AxisY
	default:
		return AxisZ
	}
}

// ParseAxis accepts X, Y or Z in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return AxisX, nil
	case "Y":
		return AxisY, nil
	case "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("fit: invalid axis %q, expected X, Y or Z", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
