package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/fastfit/pkg/engine"
	"github.com/chazu/fastfit/pkg/input"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/kernel/polymesh"
	"github.com/chazu/fastfit/pkg/modal"
	"github.com/chazu/fastfit/pkg/prefs"
	"github.com/chazu/fastfit/pkg/scene"
	"github.com/chazu/fastfit/pkg/tessellate"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// SceneUpdateEvent is emitted to the frontend whenever the scene changes.
const SceneUpdateEvent = "scene:update"

// colorPalette is a default palette used to assign distinct colors to objects.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

const previewColor = "#F5D76E"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Bindings may be called concurrently, so all state sits behind mu.
type App struct {
	ctx context.Context

	mu      sync.Mutex
	engine  *engine.Engine
	kernel  kernel.Kernel
	scene   *scene.Scene
	session *modal.Session
	lastOp  *modal.Params
	prefs   prefs.Preferences
	keymap  *prefs.Keymap
	status  string
	notices []Notice

	loader  *prefs.Loader
	watcher *prefs.Watcher
	log     zerolog.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	PartName  string    `json:"partName"`
	Color     string    `json:"color"`
	Wireframe bool      `json:"wireframe"`
	Preview   bool      `json:"preview"`
	Selected  bool      `json:"selected"`
	Active    bool      `json:"active"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Notice is a user-facing message from a fitting session.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// SceneView is the full state returned to the frontend after every call.
type SceneView struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Notices  []Notice        `json:"notices"`
	Status   string          `json:"status"`
	State    string          `json:"state"`
	Shortcut string          `json:"shortcut"`
}

// InputEvent is a frontend input event. Key uses the names accepted by
// input.ParseKey ("wheelup", "enter", "c", ...).
type InputEvent struct {
	Key     string `json:"key"`
	Release bool   `json:"release"`
	Ctrl    bool   `json:"ctrl"`
	Shift   bool   `json:"shift"`
	Alt     bool   `json:"alt"`
	OSKey   bool   `json:"oskey"`
}

// NewApp creates an App with the polygon kernel, an empty scene and
// factory preferences. Stored preferences are loaded on startup.
func NewApp() *App {
	return NewAppWithKernel(polymesh.New(), zerolog.Nop())
}

// NewAppWithKernel creates an App that builds geometry with k.
func NewAppWithKernel(k kernel.Kernel, log zerolog.Logger) *App {
	p := prefs.Default()
	keymap := prefs.NewKeymap(log)
	keymap.Register(p)
	return &App{
		engine: engine.NewEngine(k),
		kernel: k,
		scene:  scene.New(),
		prefs:  p,
		keymap: keymap,
		log:    log,
	}
}

// startup is called by Wails on app startup. The context is saved so
// scene updates can be pushed to the frontend.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	a.loader = prefs.NewLoader("")
	p, err := a.loader.Load()
	if err != nil {
		a.log.Warn().Err(err).Msg("using default preferences")
	} else {
		a.applyPrefs(p)
		a.keymap.Reload(p)
	}

	w, err := prefs.NewWatcher(a.loader, a.keymap, a.log)
	if err != nil {
		a.log.Warn().Err(err).Msg("preferences will not reload")
		return
	}
	w.OnReload(func(p prefs.Preferences) {
		a.applyPrefs(p)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.emit(a.view(nil))
	})
	if err := w.Start(); err != nil {
		a.log.Warn().Err(err).Msg("preferences will not reload")
		return
	}
	a.watcher = w
}

// shutdown cancels a running session and stops the preferences watcher.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	if a.running() {
		a.session.Cancel()
	}
	a.mu.Unlock()
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.keymap.Unregister()
}

func (a *App) applyPrefs(p prefs.Preferences) {
	a.mu.Lock()
	a.prefs = p
	a.mu.Unlock()
}

// SetStatus implements modal.StatusSurface. Called with mu held.
func (a *App) SetStatus(text string) { a.status = text }

// ClearStatus implements modal.StatusSurface. Called with mu held.
func (a *App) ClearStatus() { a.status = "" }

// Report implements modal.Reporter. Called with mu held.
func (a *App) Report(level modal.Level, msg string) {
	a.notices = append(a.notices, Notice{Level: level.String(), Message: msg})
}

// LoadScene evaluates a scene script and replaces the current scene.
// A running session is cancelled first. On eval errors the previous scene
// is kept.
func (a *App) LoadScene(source string) SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = nil
	if a.running() {
		a.session.Cancel()
	}

	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error().Err(err).Msg("evaluate failed")
		return a.publish([]EvalErrorData{{Message: err.Error()}})
	}
	if len(evalErrs) > 0 {
		errs := make([]EvalErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			errs = append(errs, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return a.publish(errs)
	}
	a.scene = s
	a.session = nil
	a.log.Debug().Int("objects", s.ObjectCount()).Msg("scene loaded")
	return a.publish(nil)
}

// SelectObjects replaces the selection. The last name becomes active.
func (a *App) SelectObjects(names []string) SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = nil
	if a.running() {
		return a.publish(nil)
	}
	if err := a.scene.SelectByName(names...); err != nil {
		return a.publish([]EvalErrorData{{Message: err.Error()}})
	}
	return a.publish(nil)
}

// Invoke starts a fitting session on the current selection.
func (a *App) Invoke() SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = nil
	a.invoke()
	return a.publish(nil)
}

// SendEvent delivers one input event. While idle in object mode, the
// preferences shortcut starts a session; everything else is ignored.
func (a *App) SendEvent(ev InputEvent) SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = nil

	e, err := ev.event()
	if err != nil {
		return a.publish([]EvalErrorData{{Message: err.Error()}})
	}
	if !a.running() {
		if _, ok := a.keymap.Lookup(e); ok && a.scene.Mode() == scene.ModeObject {
			a.invoke()
		}
		return a.publish(nil)
	}
	state, err := a.session.Handle(e)
	if err != nil && !errors.Is(err, modal.ErrNoValidTargets) {
		a.log.Warn().Err(err).Str("event", e.String()).Msg("event failed")
	}
	a.afterState(state)
	return a.publish(nil)
}

// Cancel abandons a running session.
func (a *App) Cancel() SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = nil
	if a.running() {
		a.session.Cancel()
	}
	return a.publish(nil)
}

// Repeat re-runs the last committed fit against its recorded targets.
func (a *App) Repeat() SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = nil
	if a.running() {
		return a.publish(nil)
	}
	if a.lastOp == nil {
		a.Report(modal.LevelWarning, "Nothing to repeat.")
		return a.publish(nil)
	}
	a.session = modal.NewSession(a.sessionContext(false), *a.lastOp)
	state, _ := a.session.Execute()
	a.afterState(state)
	return a.publish(nil)
}

// View returns the current scene without changing it.
func (a *App) View() SceneView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view(nil)
}

func (a *App) running() bool {
	return a.session != nil && a.session.State() == modal.StateRunning
}

func (a *App) sessionContext(interactive bool) modal.Context {
	p := a.prefs
	return modal.Context{
		Scene:       a.scene,
		Kernel:      a.kernel,
		Status:      a,
		Reporter:    a,
		Prefs:       &p,
		Interactive: interactive,
		Log:         a.log,
	}
}

func (a *App) invoke() {
	if a.running() {
		return
	}
	a.session = modal.NewSession(a.sessionContext(true), modal.DefaultParams())
	state, _ := a.session.Invoke()
	a.afterState(state)
}

func (a *App) afterState(state modal.State) {
	if state != modal.StateFinished {
		return
	}
	p := a.session.Params()
	a.lastOp = &p
	if res := a.session.Result(); res != nil {
		a.Report(modal.LevelInfo, fmt.Sprintf("Created %d primitive(s), skipped %d.", len(res.Created), len(res.Skipped)))
	}
}

// publish builds the view and pushes it to the frontend.
func (a *App) publish(errs []EvalErrorData) SceneView {
	v := a.view(errs)
	a.emit(v)
	return v
}

func (a *App) emit(v SceneView) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, SceneUpdateEvent, v)
}

func (a *App) view(errs []EvalErrorData) SceneView {
	v := SceneView{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Notices:  []Notice{},
		Status:   a.status,
		State:    modal.StateIdle.String(),
		Shortcut: a.prefs.Chord().String(),
	}
	v.Errors = append(v.Errors, errs...)
	v.Notices = append(v.Notices, a.notices...)
	if a.session != nil {
		v.State = a.session.State().String()
	}

	parts, err := tessellate.Tessellate(a.scene, tessellate.Options{})
	if err != nil {
		a.log.Error().Err(err).Msg("tessellate failed")
		v.Errors = append(v.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return v
	}
	for i, p := range parts {
		color := colorPalette[i%len(colorPalette)]
		if p.Preview {
			color = previewColor
		}
		v.Meshes = append(v.Meshes, MeshData{
			Vertices:  p.Mesh.Vertices,
			Normals:   p.Mesh.Normals,
			Indices:   p.Mesh.Indices,
			PartName:  p.Mesh.PartName,
			Color:     color,
			Wireframe: p.Wireframe,
			Preview:   p.Preview,
			Selected:  p.Selected,
			Active:    p.Active,
		})
	}
	return v
}

func (ev InputEvent) event() (input.Event, error) {
	t, err := input.ParseKey(ev.Key)
	if err != nil {
		return input.Event{}, err
	}
	e := input.Event{Type: t, Ctrl: ev.Ctrl, Shift: ev.Shift, Alt: ev.Alt, OSKey: ev.OSKey}
	if ev.Release {
		e.Value = input.Release
	}
	return e, nil
}
