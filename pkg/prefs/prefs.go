// Package prefs holds the user preferences for fitted primitives: the key
// chord that starts a session and the defaults a commit falls back to.
package prefs

import (
	"github.com/chazu/fastfit/pkg/fit"
	"github.com/chazu/fastfit/pkg/input"
)

// DefaultKey is the factory trigger key.
const DefaultKey = "F"

// Preferences is the persisted preference set.
type Preferences struct {
	Key   string `yaml:"key" toml:"key" json:"key"`
	Shift bool   `yaml:"shift" toml:"shift" json:"shift"`
	Ctrl  bool   `yaml:"ctrl" toml:"ctrl" json:"ctrl"`
	Alt   bool   `yaml:"alt" toml:"alt" json:"alt"`
	OSKey bool   `yaml:"oskey" toml:"oskey" json:"oskey"`

	// Vertices is the default cylinder segment count.
	Vertices int `yaml:"vertices" toml:"vertices" json:"vertices"`
	// Type is the default primitive, CYLINDER or CUBE.
	Type string `yaml:"type" toml:"type" json:"type"`
}

// Default returns the factory preferences: Shift+F, 32 vertices, cylinder.
func Default() Preferences {
	return Preferences{
		Key:      DefaultKey,
		Shift:    true,
		Vertices: fit.DefaultSegments,
		Type:     fit.DefaultPrimitive.String(),
	}
}

// Hydrate fills missing values and normalizes invalid ones: an unknown or
// unbindable key becomes F, vertices are clamped into the segment range
// (zero means unset), and an unknown type becomes CYLINDER.
func (p Preferences) Hydrate() Preferences {
	key, err := input.ParseKey(p.Key)
	if err != nil || !key.IsKeyboard() {
		key = DefaultKey
	}
	p.Key = string(key)
	if p.Vertices == 0 {
		p.Vertices = fit.DefaultSegments
	}
	p.Vertices = fit.ClampSegments(p.Vertices)
	t, err := fit.ParsePrimitiveType(p.Type)
	if err != nil {
		t = fit.DefaultPrimitive
	}
	p.Type = t.String()
	return p
}

// Chord is the trigger chord.
func (p Preferences) Chord() input.Chord {
	h := p.Hydrate()
	return input.Chord{
		Key:   input.EventType(h.Key),
		Ctrl:  h.Ctrl,
		Shift: h.Shift,
		Alt:   h.Alt,
		OSKey: h.OSKey,
	}
}

// Segments is the default segment count, clamped.
func (p Preferences) Segments() int {
	return p.Hydrate().Vertices
}

// Primitive is the default primitive type.
func (p Preferences) Primitive() fit.PrimitiveType {
	t, err := fit.ParsePrimitiveType(p.Type)
	if err != nil {
		return fit.DefaultPrimitive
	}
	return t
}
