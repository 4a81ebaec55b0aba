// Package input models the discrete input events a host delivers to a
// modal fitting session, and the key chords that start one.
package input

import (
	"fmt"
	"strings"
)

// EventType names a key or mouse button. Values follow the host's event
// identifiers ("A", "RET", "WHEELUPMOUSE", ...).
type EventType string

const (
	None        EventType = ""
	LeftMouse   EventType = "LEFTMOUSE"
	RightMouse  EventType = "RIGHTMOUSE"
	MouseMove   EventType = "MOUSEMOVE"
	WheelUp     EventType = "WHEELUPMOUSE"
	WheelDown   EventType = "WHEELDOWNMOUSE"
	Enter       EventType = "RET"
	NumpadEnter EventType = "NUMPAD_ENTER"
	Esc         EventType = "ESC"
	Space       EventType = "SPACE"
	Tab         EventType = "TAB"
)

// Letter returns the event type for a letter key. Lower case is accepted.
func Letter(r rune) EventType {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return EventType(string(r))
}

// Function returns the event type for function key Fn.
func Function(n int) EventType {
	return EventType(fmt.Sprintf("F%d", n))
}

// IsWheel reports whether t is a wheel step in either direction.
func (t EventType) IsWheel() bool {
	return t == WheelUp || t == WheelDown
}

// IsLetter reports whether t is one of A-Z.
func (t EventType) IsLetter() bool {
	return len(t) == 1 && t[0] >= 'A' && t[0] <= 'Z'
}

// IsFunction reports whether t is one of F1-F12.
func (t EventType) IsFunction() bool {
	if len(t) < 2 || t[0] != 'F' {
		return false
	}
	var n int
	if _, err := fmt.Sscanf(string(t[1:]), "%d", &n); err != nil {
		return false
	}
	return n >= 1 && n <= 12 && string(Function(n)) == string(t)
}

// IsKeyboard reports whether t can be bound as a trigger key: a letter,
// a function key, Space, Enter, Tab or Escape.
func (t EventType) IsKeyboard() bool {
	switch t {
	case Space, Enter, Tab, Esc:
		return true
	}
	return t.IsLetter() || t.IsFunction()
}

// Value is the key state carried by an event.
type Value int

const (
	Press Value = iota
	Release
)

func (v Value) String() string {
	if v == Release {
		return "RELEASE"
	}
	return "PRESS"
}

// Event is one input event.
type Event struct {
	Type  EventType `json:"type"`
	Value Value     `json:"value"`
	Ctrl  bool      `json:"ctrl,omitempty"`
	Shift bool      `json:"shift,omitempty"`
	Alt   bool      `json:"alt,omitempty"`
	OSKey bool      `json:"oskey,omitempty"`
}

// Pressed builds a press event with no modifiers.
func Pressed(t EventType) Event {
	return Event{Type: t, Value: Press}
}

// IsPress reports whether the event is a press of t.
func (e Event) IsPress(t EventType) bool {
	return e.Type == t && e.Value == Press
}

func (e Event) String() string {
	var b strings.Builder
	writeModifiers(&b, e.Ctrl, e.Shift, e.Alt, e.OSKey)
	b.WriteString(string(e.Type))
	if e.Value == Release {
		b.WriteString(" (release)")
	}
	return b.String()
}

func writeModifiers(b *strings.Builder, ctrl, shift, alt, oskey bool) {
	if ctrl {
		b.WriteString("Ctrl+")
	}
	if shift {
		b.WriteString("Shift+")
	}
	if alt {
		b.WriteString("Alt+")
	}
	if oskey {
		b.WriteString("OSKey+")
	}
}
