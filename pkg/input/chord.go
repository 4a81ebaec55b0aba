package input

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a key name cannot be parsed.
var ErrUnknownKey = errors.New("input: unknown key")

// Chord is a key plus exact modifier state.
type Chord struct {
	Key   EventType
	Ctrl  bool
	Shift bool
	Alt   bool
	OSKey bool
}

// Matches reports whether e is a press of the chord's key with exactly the
// chord's modifiers held.
func (c Chord) Matches(e Event) bool {
	return e.Value == Press &&
		e.Type == c.Key &&
		e.Ctrl == c.Ctrl &&
		e.Shift == c.Shift &&
		e.Alt == c.Alt &&
		e.OSKey == c.OSKey
}

// Event returns the press event the chord describes.
func (c Chord) Event() Event {
	return Event{Type: c.Key, Value: Press, Ctrl: c.Ctrl, Shift: c.Shift, Alt: c.Alt, OSKey: c.OSKey}
}

func (c Chord) String() string {
	var b strings.Builder
	writeModifiers(&b, c.Ctrl, c.Shift, c.Alt, c.OSKey)
	b.WriteString(keyLabel(c.Key))
	return b.String()
}

func keyLabel(t EventType) string {
	switch t {
	case Enter:
		return "Enter"
	case Esc:
		return "Esc"
	case Space:
		return "Space"
	case Tab:
		return "Tab"
	}
	return string(t)
}

var keyAliases = map[string]EventType{
	"wheel":        WheelUp,
	"wheelup":      WheelUp,
	"wheeldown":    WheelDown,
	"lmb":          LeftMouse,
	"click":        LeftMouse,
	"leftmouse":    LeftMouse,
	"rmb":          RightMouse,
	"rightmouse":   RightMouse,
	"move":         MouseMove,
	"mousemove":    MouseMove,
	"enter":        Enter,
	"ret":          Enter,
	"return":       Enter,
	"numpadenter":  NumpadEnter,
	"numpad_enter": NumpadEnter,
	"esc":          Esc,
	"escape":       Esc,
	"space":        Space,
	"tab":          Tab,
}

// ParseKey parses a key or button name: a letter, f1-f12, or one of the
// names enter, esc, space, tab, wheel, wheelup, wheeldown, lmb, rmb.
func ParseKey(s string) (EventType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if t, ok := keyAliases[name]; ok {
		return t, nil
	}
	if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return Letter(rune(name[0])), nil
	}
	if t := EventType(strings.ToUpper(name)); t.IsFunction() {
		return t, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// parseCombo splits "ctrl+shift+x" into modifiers and a key.
func parseCombo(s string) (Event, error) {
	parts := strings.Split(s, "+")
	var e Event
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			e.Ctrl = true
		case "shift":
			e.Shift = true
		case "alt", "option":
			e.Alt = true
		case "oskey", "cmd", "super", "meta":
			e.OSKey = true
		default:
			return Event{}, fmt.Errorf("input: unknown modifier %q in %q", p, s)
		}
	}
	key, err := ParseKey(parts[len(parts)-1])
	if err != nil {
		return Event{}, err
	}
	e.Type = key
	return e, nil
}

// ParseChord parses a trigger chord such as "shift+F" or "ctrl+alt+f5".
// Only keyboard keys can be bound.
func ParseChord(s string) (Chord, error) {
	e, err := parseCombo(s)
	if err != nil {
		return Chord{}, err
	}
	if !e.Type.IsKeyboard() {
		return Chord{}, fmt.Errorf("input: %q cannot be used as a trigger key", s)
	}
	return Chord{Key: e.Type, Ctrl: e.Ctrl, Shift: e.Shift, Alt: e.Alt, OSKey: e.OSKey}, nil
}

// ParseEvents parses a comma separated event script such as
// "wheel,c,ctrl+wheelup,enter". Every entry is a press. Blank entries are
// skipped.
func ParseEvents(s string) ([]Event, error) {
	var out []Event
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		e, err := parseCombo(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
