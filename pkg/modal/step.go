package modal

import (
	"github.com/chazu/fastfit/pkg/fit"
	"github.com/chazu/fastfit/pkg/input"
)

// Action is the effect a host must apply after Step.
type Action int

const (
	// ActionNone leaves the session running unchanged.
	ActionNone Action = iota
	// ActionRegenerate rebuilds every preview and refreshes the status.
	ActionRegenerate
	// ActionCommit replaces the previews with final primitives.
	ActionCommit
	// ActionCancel discards the previews without touching the scene.
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionRegenerate:
		return "regenerate"
	case ActionCommit:
		return "commit"
	case ActionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// axisKey cycles the cylinder axis.
const axisKey = input.EventType("C")

// Step is the session's transition function. Rules are checked in order:
// C cycles the axis (also while fitting cubes), Ctrl+wheel steps the
// cylinder segment count, a plain wheel toggles the primitive type, left
// click or Enter commits, right click or Escape cancels. Releases and any
// other event leave p unchanged.
func Step(p Params, e input.Event) (Params, Action) {
	if e.Value != input.Press {
		return p, ActionNone
	}
	switch {
	case e.Type == axisKey:
		p.Axis = p.Axis.Next()
		return p, ActionRegenerate

	case e.Type.IsWheel() && e.Ctrl:
		if p.Type != fit.Cylinder {
			return p, ActionNone
		}
		step := 1
		if e.Type == input.WheelDown {
			step = -1
		}
		n := fit.ClampSegments(p.Segments + step)
		if n == p.Segments {
			return p, ActionNone
		}
		p.Segments = n
		return p, ActionRegenerate

	case e.Type.IsWheel():
		p.Type = p.Type.Toggle()
		return p, ActionRegenerate

	case e.Type == input.LeftMouse, e.Type == input.Enter, e.Type == input.NumpadEnter:
		return p, ActionCommit

	case e.Type == input.RightMouse, e.Type == input.Esc:
		return p, ActionCancel
	}
	return p, ActionNone
}
