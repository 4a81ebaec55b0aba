// Package modal runs the interactive fit-primitive session: it captures
// the selection, keeps wireframe previews in sync with the parameters as
// input arrives, and on commit replaces them with final primitives.
package modal

import (
	"errors"
	"fmt"

	"github.com/chazu/fastfit/pkg/fit"
	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/input"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/kernel/polymesh"
	"github.com/chazu/fastfit/pkg/prefs"
	"github.com/chazu/fastfit/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Graph is the part of the scene a session reads and mutates.
// *scene.Scene implements it.
type Graph interface {
	Selected() []*scene.Object
	Object(id scene.ObjectID) (*scene.Object, bool)
	Lookup(name string) (*scene.Object, bool)
	AddMeshObject(name string, mesh *kernel.Mesh, t geom.Transform) (*scene.Object, error)
	Remove(id scene.ObjectID) error
	RemoveOrphanMeshes() int
	Previews() []*scene.Object
	BoundBox(id scene.ObjectID) ([8]geom.Vec3, error)
	WorldMatrix(id scene.ObjectID) (mgl64.Mat4, error)
	ApplyScale(id scene.ObjectID) error
	OriginToBoundsCenter(id scene.ObjectID) error
	Mode() scene.Mode
	SetMode(m scene.Mode)
	DeselectAll()
	Select(id scene.ObjectID, state bool) error
	SetActive(id scene.ObjectID) error
}

var _ Graph = (*scene.Scene)(nil)

// StatusSurface shows the status line of a running session.
type StatusSurface interface {
	SetStatus(text string)
	ClearStatus()
}

// Level is the severity of a user notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "WARNING"
	}
	return "INFO"
}

// Reporter receives user-facing notices.
type Reporter interface {
	Report(level Level, msg string)
}

// State is the lifecycle state of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING_MODAL"
	case StateFinished:
		return "FINISHED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "IDLE"
	}
}

// Context is what the host hands a session.
type Context struct {
	Scene  Graph
	Kernel kernel.Kernel

	// Status and Reporter may be nil.
	Status   StatusSurface
	Reporter Reporter

	// Prefs supplies commit-time defaults. Nil disables the fallback.
	Prefs *prefs.Preferences

	// Interactive is false when the host cannot deliver input events;
	// Invoke then commits immediately.
	Interactive bool

	Log zerolog.Logger
}

// SkippedTarget is a target a commit could not fit.
type SkippedTarget struct {
	Name string
	Err  error
}

// CommitResult lists what a commit produced.
type CommitResult struct {
	Created []*scene.Object
	Skipped []SkippedTarget
}

// Session is one fitting invocation. It is not safe for concurrent use;
// the host delivers events one at a time.
type Session struct {
	ctx     Context
	params  Params
	state   State
	targets []scene.ObjectID
	names   map[scene.ObjectID]string
	status  string
	result  *CommitResult
}

// NewSession prepares a session with the given starting parameters. A nil
// kernel defaults to polymesh.
func NewSession(ctx Context, params Params) *Session {
	if ctx.Kernel == nil {
		ctx.Kernel = polymesh.New()
	}
	return &Session{ctx: ctx, params: params, names: make(map[scene.ObjectID]string)}
}

// Params returns the current parameters.
func (s *Session) Params() Params { return s.params }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Status returns the status text currently shown, or "".
func (s *Session) Status() string { return s.status }

// Result returns the outcome of the last commit, or nil.
func (s *Session) Result() *CommitResult { return s.result }

// Targets returns the captured target IDs in selection order.
func (s *Session) Targets() []scene.ObjectID {
	return append([]scene.ObjectID(nil), s.targets...)
}

// Invoke starts the session on the current selection. Without an
// interactive host it commits straight away.
func (s *Session) Invoke() (State, error) {
	selected := s.ctx.Scene.Selected()
	if len(selected) == 0 {
		s.report(LevelWarning, "No objects selected.")
		s.state = StateCancelled
		return s.state, ErrNoSelection
	}
	if !s.ctx.Interactive {
		return s.Execute()
	}

	s.targets = nil
	s.params.Targets = nil
	for _, obj := range selected {
		s.targets = append(s.targets, obj.ID)
		s.names[obj.ID] = obj.Name
		s.params.Targets = append(s.params.Targets, obj.Name)
	}
	s.state = StateRunning
	s.regenerate()
	s.updateStatus()
	s.ctx.Log.Debug().
		Int("targets", len(s.targets)).
		Str("type", s.params.Type.String()).
		Msg("fit session started")
	return s.state, nil
}

// Handle processes one input event.
func (s *Session) Handle(e input.Event) (State, error) {
	if s.state != StateRunning {
		return s.state, ErrNotRunning
	}
	next, action := Step(s.params, e)
	s.params = next
	switch action {
	case ActionRegenerate:
		s.regenerate()
		s.updateStatus()
	case ActionCommit:
		s.clearStatus()
		s.purgePreviews()
		return s.Execute()
	case ActionCancel:
		return s.Cancel(), nil
	}
	return s.state, nil
}

// Cancel ends the session, removing every preview. The scene is otherwise
// left as it was before Invoke.
func (s *Session) Cancel() State {
	s.clearStatus()
	s.purgePreviews()
	s.state = StateCancelled
	s.report(LevelInfo, "FastPrimitives: cancelled")
	s.ctx.Log.Debug().Msg("fit session cancelled")
	return s.state
}

// Execute commits: it fits one final primitive to every live target.
// Targets are the captured IDs, else Params.Targets by name, else the
// current selection. Targets that cannot be fitted are skipped.
func (s *Session) Execute() (State, error) {
	targets := s.resolveTargets()
	if len(targets) == 0 {
		s.report(LevelWarning, "No valid targets.")
		s.state = StateCancelled
		return s.state, ErrNoValidTargets
	}
	if s.ctx.Scene.Mode() != scene.ModeObject {
		s.ctx.Scene.SetMode(scene.ModeObject)
	}

	res := &CommitResult{}
	for _, id := range targets {
		obj, err := s.commitTarget(id)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedTarget{Name: s.names[id], Err: err})
			continue
		}
		res.Created = append(res.Created, obj)
	}
	s.result = res
	s.state = StateFinished
	s.ctx.Log.Debug().
		Int("created", len(res.Created)).
		Int("skipped", len(res.Skipped)).
		Str("type", s.params.Type.String()).
		Int("segments", s.params.Segments).
		Msg("fit session committed")
	return s.state, nil
}

func (s *Session) resolveTargets() []scene.ObjectID {
	var out []scene.ObjectID
	switch {
	case len(s.targets) > 0:
		for _, id := range s.targets {
			if _, ok := s.ctx.Scene.Object(id); ok {
				out = append(out, id)
			}
		}
	case len(s.params.Targets) > 0:
		for _, name := range s.params.Targets {
			if obj, ok := s.ctx.Scene.Lookup(name); ok {
				s.names[obj.ID] = obj.Name
				out = append(out, obj.ID)
			}
		}
	default:
		for _, obj := range s.ctx.Scene.Selected() {
			s.names[obj.ID] = obj.Name
			out = append(out, obj.ID)
		}
	}
	return out
}

// adoptPrefs substitutes preference defaults while the parameters still
// hold the factory values. It mutates the session, so later targets see
// the adopted values.
func (s *Session) adoptPrefs() {
	p := s.ctx.Prefs
	if p == nil {
		return
	}
	if s.params.Segments == fit.DefaultSegments {
		s.params.Segments = p.Segments()
	}
	if s.params.Type == fit.Cylinder && p.Primitive() != fit.Cylinder {
		s.params.Type = p.Primitive()
	}
}

func (s *Session) commitTarget(id scene.ObjectID) (*scene.Object, error) {
	frame, err := s.frame(id)
	if err != nil {
		return nil, err
	}
	s.adoptPrefs()

	shape := fit.ShapeFor(frame, s.params.Type, s.params.Axis, s.params.Segments)
	mesh, err := shape.Mesh(s.ctx.Kernel)
	if err != nil {
		return nil, fmt.Errorf("modal: build %s: %w", shape.Type.Label(), err)
	}
	g := s.ctx.Scene
	obj, err := g.AddMeshObject(shape.Type.Label(), mesh, shape.Transform())
	if err != nil {
		return nil, err
	}
	g.DeselectAll()
	if err := g.Select(obj.ID, true); err != nil {
		return nil, err
	}
	if err := g.SetActive(obj.ID); err != nil {
		return nil, err
	}
	if err := g.ApplyScale(obj.ID); err != nil {
		return obj, nil
	}
	_ = g.OriginToBoundsCenter(obj.ID)
	return obj, nil
}

// frame computes a target's bounding frame from its current geometry and
// transform.
func (s *Session) frame(id scene.ObjectID) (fit.Frame, error) {
	obj, ok := s.ctx.Scene.Object(id)
	if !ok {
		return fit.Frame{}, &StaleReferenceError{ID: id, Name: s.names[id]}
	}
	corners, err := s.ctx.Scene.BoundBox(id)
	if err != nil {
		return fit.Frame{}, s.wrapStale(id, err)
	}
	world, err := s.ctx.Scene.WorldMatrix(id)
	if err != nil {
		return fit.Frame{}, s.wrapStale(id, err)
	}
	return fit.FrameFromBounds(corners, world, obj.Transform.Scale), nil
}

func (s *Session) wrapStale(id scene.ObjectID, err error) error {
	if errors.Is(err, scene.ErrNotFound) {
		return &StaleReferenceError{ID: id, Name: s.names[id]}
	}
	return err
}

// regenerate rebuilds every preview from scratch. Per-target failures are
// absorbed: that target simply has no preview this pass.
func (s *Session) regenerate() {
	s.purgePreviews()
	for _, id := range s.targets {
		_ = s.emitPreview(id)
	}
}

func (s *Session) emitPreview(id scene.ObjectID) error {
	frame, err := s.frame(id)
	if err != nil {
		return err
	}
	shape := fit.ShapeFor(frame, s.params.Type, s.params.Axis, s.params.Segments)
	mesh, err := shape.Mesh(s.ctx.Kernel)
	if err != nil {
		return err
	}
	obj, err := s.ctx.Scene.AddMeshObject(scene.PreviewPrefix+s.names[id], mesh, shape.Transform())
	if err != nil {
		return err
	}
	obj.Preview = true
	obj.Display = scene.DisplayWire
	obj.HideSelect = true
	obj.HideRender = true
	obj.ShowInFront = true
	return nil
}

// purgePreviews removes every preview in the scene, including ones left
// by other sessions, then drops the orphaned mesh data.
func (s *Session) purgePreviews() {
	for _, p := range s.ctx.Scene.Previews() {
		_ = s.ctx.Scene.Remove(p.ID)
	}
	s.ctx.Scene.RemoveOrphanMeshes()
}

func (s *Session) updateStatus() {
	s.status = StatusText(s.params)
	if s.ctx.Status != nil {
		s.ctx.Status.SetStatus(s.status)
	}
}

func (s *Session) clearStatus() {
	s.status = ""
	if s.ctx.Status != nil {
		s.ctx.Status.ClearStatus()
	}
}

func (s *Session) report(level Level, msg string) {
	if s.ctx.Reporter != nil {
		s.ctx.Reporter.Report(level, msg)
	}
}
