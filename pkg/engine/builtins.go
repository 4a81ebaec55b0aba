package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/fastfit/pkg/fit"
	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: edit-mode -> edit_mode
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid built by (box ...) or (cylinder ...) so
// it can be consumed by (object ...).
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string { return s.desc }
func (s *sexpSolid) Type() *zygo.RegisteredType           { return nil }

// sexpObjectRef refers to a scene object by the name it was given.
type sexpObjectRef struct {
	id   scene.ObjectID
	name string
}

func (o *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(objectref %q)", o.name)
}
func (o *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value is a flag.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false and treats a bare flag keyword as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// floats extracts n positional numbers.
func floats(fn string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numbers, got %d arguments", fn, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// resolveObject accepts an object reference or a name.
func resolveObject(s *scene.Scene, arg zygo.Sexp) (*scene.Object, error) {
	if ref, ok := arg.(*sexpObjectRef); ok {
		obj, found := s.Object(ref.id)
		if !found {
			return nil, fmt.Errorf("object %q: %w", ref.name, scene.ErrNotFound)
		}
		return obj, nil
	}
	name, err := toString(arg)
	if err != nil {
		return nil, err
	}
	obj, found := s.Lookup(name)
	if !found {
		return nil, fmt.Errorf("object %q: %w", name, scene.ErrNotFound)
	}
	return obj, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene script builtins into a zygomys
// environment. The builtins populate s during evaluation and build
// geometry with k.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene, k kernel.Kernel) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: geom.Vec3{f[0], f[1], f[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box x y z) full extents, centred
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats("box", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		for i, v := range f {
			if v < 0 {
				return zygo.SexpNull, fmt.Errorf("box: extent %d is negative (%g)", i+1, v)
			}
		}
		return &sexpSolid{
			solid: k.Box(f[0], f[1], f[2]),
			desc:  fmt.Sprintf("(box %g %g %g)", f[0], f[1], f[2]),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 1 :depth 2 :segments 32)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, depth, segments := 1.0, 2.0, fit.DefaultSegments
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			radius = f
		}
		if v, ok := pa.kw["depth"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: depth: %w", err)
			}
			depth = f
		}
		if v, ok := pa.kw["segments"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			segments = fit.ClampSegments(int(f))
		}
		if radius < 0 || depth < 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius and depth must not be negative")
		}
		return &sexpSolid{
			solid: k.Cylinder(depth, radius, segments),
			desc:  fmt.Sprintf("(cylinder :radius %g :depth %g :segments %d)", radius, depth, segments),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (object "name" (box ...) :at (vec3 ..) :rotate (vec3 ..) :scale (vec3 ..) :preview)
	// -----------------------------------------------------------------------
	env.AddFunction("object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("object requires a name and a geometry expression")
		}
		objName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("object: name: %w", err)
		}
		body, ok := pa.positional[1].(*sexpSolid)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("object: expected box or cylinder, got %T", pa.positional[1])
		}

		t := geom.Identity()
		if v, ok := pa.kw["at"]; ok {
			if t.Location, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("object: at: %w", err)
			}
		}
		if v, ok := pa.kw["rotate"]; ok {
			deg, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("object: rotate: %w", err)
			}
			t.Rotation = geom.EulerDegrees(deg.X(), deg.Y(), deg.Z())
		}
		if v, ok := pa.kw["scale"]; ok {
			if t.Scale, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("object: scale: %w", err)
			}
		}

		mesh, err := k.ToMesh(body.solid)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("object %q: %w", objName, err)
		}
		obj, err := s.AddMeshObject(objName, mesh, t)
		if err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["preview"]; ok {
			if obj.Preview, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("object: preview: %w", err)
			}
			if obj.Preview {
				obj.Display = scene.DisplayWire
				obj.HideSelect = true
				obj.HideRender = true
			}
		}
		return &sexpObjectRef{id: obj.ID, name: obj.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (select "a" ref ...) adds to the selection; the last becomes active
	// -----------------------------------------------------------------------
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for _, a := range args {
			obj, err := resolveObject(s, a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("select: %w", err)
			}
			if err := s.Select(obj.ID, true); err != nil {
				return zygo.SexpNull, fmt.Errorf("select: %w", err)
			}
			if err := s.SetActive(obj.ID); err != nil {
				return zygo.SexpNull, fmt.Errorf("select: %w", err)
			}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (active "a")
	// -----------------------------------------------------------------------
	env.AddFunction("active", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("active requires exactly one object")
		}
		obj, err := resolveObject(s, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("active: %w", err)
		}
		return zygo.SexpNull, s.SetActive(obj.ID)
	})

	// -----------------------------------------------------------------------
	// (mode :edit) or (mode :object)
	// -----------------------------------------------------------------------
	env.AddFunction("mode", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("mode requires :object or :edit")
		}
		m, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mode: %w", err)
		}
		switch m {
		case "object":
			s.SetMode(scene.ModeObject)
		case "edit":
			s.SetMode(scene.ModeEdit)
		default:
			return zygo.SexpNull, fmt.Errorf("mode: invalid mode %q, expected object or edit", m)
		}
		return zygo.SexpNull, nil
	})
}
