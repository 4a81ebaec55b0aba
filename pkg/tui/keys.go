package tui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chazu/fastfit/pkg/input"
)

// Terminals rarely report Ctrl with wheel events, so brackets stand in for
// Ctrl+wheel and page keys for a plain wheel step.
var keyAliases = map[string]input.Event{
	"enter":  input.Pressed(input.Enter),
	"esc":    input.Pressed(input.Esc),
	"tab":    input.Pressed(input.Tab),
	" ":      input.Pressed(input.Space),
	"]":      {Type: input.WheelUp, Ctrl: true},
	"[":      {Type: input.WheelDown, Ctrl: true},
	"pgup":   input.Pressed(input.WheelUp),
	"pgdown": input.Pressed(input.WheelDown),
}

// keyEvent translates a terminal key press. Upper case letters carry Shift.
func keyEvent(msg tea.KeyMsg) (input.Event, bool) {
	s := msg.String()
	if e, ok := keyAliases[s]; ok {
		return e, true
	}

	var e input.Event
	if rest, ok := strings.CutPrefix(s, "alt+"); ok {
		e.Alt = true
		s = rest
	}
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		e.Ctrl = true
		s = rest
	}

	if t := input.EventType(strings.ToUpper(s)); t.IsFunction() {
		e.Type = t
		return e, true
	}
	r := []rune(s)
	if len(r) != 1 || r[0] > unicode.MaxASCII || !unicode.IsLetter(r[0]) {
		return input.Event{}, false
	}
	if unicode.IsUpper(r[0]) {
		e.Shift = true
	}
	e.Type = input.Letter(r[0])
	return e, true
}

// mouseEvent translates a terminal mouse event.
func mouseEvent(msg tea.MouseMsg) (input.Event, bool) {
	e := input.Event{Ctrl: msg.Ctrl, Alt: msg.Alt, Shift: msg.Shift}
	switch msg.Type {
	case tea.MouseWheelUp:
		e.Type = input.WheelUp
	case tea.MouseWheelDown:
		e.Type = input.WheelDown
	case tea.MouseLeft:
		e.Type = input.LeftMouse
	case tea.MouseRight:
		e.Type = input.RightMouse
	default:
		return input.Event{}, false
	}
	return e, true
}
