package modal

import (
	"fmt"
	"strings"

	"github.com/chazu/fastfit/pkg/fit"
	"github.com/goccy/go-json"
)

// targetSep joins target names in the persisted form.
const targetSep = "|"

// Params are the session parameters. They persist across a session's end
// so a later non-interactive run can repeat the operation.
type Params struct {
	Type     fit.PrimitiveType
	Axis     fit.Axis
	Segments int

	// Targets are the target object names captured at invocation. Empty
	// means "use the current selection".
	Targets []string
}

// DefaultParams returns the factory parameters: a Z cylinder with 32
// segments and no captured targets.
func DefaultParams() Params {
	return Params{
		Type:     fit.DefaultPrimitive,
		Axis:     fit.DefaultAxis,
		Segments: fit.DefaultSegments,
	}
}

type paramsJSON struct {
	PrimitiveType string `json:"primitive_type"`
	CylinderAxis  string `json:"cylinder_axis"`
	Vertices      int    `json:"vertices"`
	TargetsCSV    string `json:"targets_csv"`
}

// MarshalJSON encodes the parameters with targets as a "|"-joined list.
func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(paramsJSON{
		PrimitiveType: p.Type.String(),
		CylinderAxis:  p.Axis.String(),
		Vertices:      p.Segments,
		TargetsCSV:    strings.Join(p.Targets, targetSep),
	})
}

// UnmarshalJSON decodes parameters. Missing fields keep their defaults,
// the segment count is clamped and empty target names are dropped.
func (p *Params) UnmarshalJSON(data []byte) error {
	def := DefaultParams()
	w := paramsJSON{
		PrimitiveType: def.Type.String(),
		CylinderAxis:  def.Axis.String(),
		Vertices:      def.Segments,
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := fit.ParsePrimitiveType(w.PrimitiveType)
	if err != nil {
		return fmt.Errorf("modal: params: %w", err)
	}
	a, err := fit.ParseAxis(w.CylinderAxis)
	if err != nil {
		return fmt.Errorf("modal: params: %w", err)
	}
	*p = Params{
		Type:     t,
		Axis:     a,
		Segments: fit.ClampSegments(w.Vertices),
		Targets:  splitTargets(w.TargetsCSV),
	}
	return nil
}

func splitTargets(csv string) []string {
	var out []string
	for _, n := range strings.Split(csv, targetSep) {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// StatusText is the status line shown while a session runs.
func StatusText(p Params) string {
	if p.Type == fit.Cube {
		return "FastPrimitives: Cube — Wheel=Toggle, LMB/Enter=Confirm"
	}
	return fmt.Sprintf("FastPrimitives: Cylinder (Verts: %d, Axis: %s) — "+
		"Wheel=Toggle, Ctrl+Wheel=Segments, C=Change Axis, LMB/Enter=Confirm", p.Segments, p.Axis)
}
