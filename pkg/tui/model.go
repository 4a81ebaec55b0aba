// Package tui hosts fitting sessions in a terminal. The object list stands
// in for the viewport: space toggles selection, the trigger chord starts a
// session, and wheel and key input drive it exactly as in a 3D view.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chazu/fastfit/pkg/input"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/modal"
	"github.com/chazu/fastfit/pkg/prefs"
	"github.com/chazu/fastfit/pkg/scene"
	"github.com/rs/zerolog"
)

// Config wires a Model.
type Config struct {
	Scene  *scene.Scene
	Kernel kernel.Kernel
	Prefs  prefs.Preferences
	Keymap *prefs.Keymap

	// LastOperation seeds repeat (Shift+R). May be nil.
	LastOperation *modal.Params

	// OnCommit runs after every successful commit.
	OnCommit func(modal.Params)

	Log zerolog.Logger
}

// Model is the bubbletea model. It also serves as the session's status
// surface and reporter.
type Model struct {
	cfg     Config
	session *modal.Session
	cursor  int
	status  string
	notice  string
	lastOp  *modal.Params
}

// New builds a model. The keymap is registered from cfg.Prefs when empty.
func New(cfg Config) *Model {
	if cfg.Keymap == nil {
		cfg.Keymap = prefs.NewKeymap(cfg.Log)
	}
	if len(cfg.Keymap.Bindings()) == 0 {
		cfg.Keymap.Register(cfg.Prefs)
	}
	return &Model{cfg: cfg, lastOp: cfg.LastOperation}
}

// PrefsMsg delivers reloaded preferences to a running program.
type PrefsMsg prefs.Preferences

// NewProgram wraps m in a program on the alternate screen with mouse
// reporting.
func NewProgram(m *Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
}

// SetStatus implements modal.StatusSurface.
func (m *Model) SetStatus(text string) { m.status = text }

// ClearStatus implements modal.StatusSurface.
func (m *Model) ClearStatus() { m.status = "" }

// Report implements modal.Reporter.
func (m *Model) Report(level modal.Level, msg string) {
	if level == modal.LevelWarning {
		m.notice = warningStyle.Render(msg)
		return
	}
	m.notice = dimStyle.Render(msg)
}

// Running reports whether a session is in progress.
func (m *Model) Running() bool {
	return m.session != nil && m.session.State() == modal.StateRunning
}

// LastOperation returns the parameters of the last commit, or nil.
func (m *Model) LastOperation() *modal.Params { return m.lastOp }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelRunning()
			return m, tea.Quit
		}
		if m.Running() {
			if e, ok := keyEvent(msg); ok {
				m.handle(e)
			}
			return m, nil
		}
		return m.handleIdleKey(msg)

	case tea.MouseMsg:
		if e, ok := mouseEvent(msg); ok && m.Running() {
			m.handle(e)
		}

	case PrefsMsg:
		m.cfg.Prefs = prefs.Preferences(msg)
	}
	return m, nil
}

func (m *Model) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if e, ok := keyEvent(msg); ok {
		// The shortcut lives in the object mode keymap.
		op, bound := m.cfg.Keymap.Lookup(e)
		if bound && op == prefs.OperatorID && m.cfg.Scene.Mode() == scene.ModeObject {
			m.invoke()
			return m, nil
		}
	}
	objects := m.cfg.Scene.Objects()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(objects)-1 {
			m.cursor++
		}
	case " ":
		if m.cursor < len(objects) {
			obj := objects[m.cursor]
			on := !m.cfg.Scene.IsSelected(obj.ID)
			_ = m.cfg.Scene.Select(obj.ID, on)
			if on {
				_ = m.cfg.Scene.SetActive(obj.ID)
			}
		}
	case "R":
		m.repeat()
	}
	return m, nil
}

func (m *Model) context(interactive bool) modal.Context {
	p := m.cfg.Prefs
	return modal.Context{
		Scene:       m.cfg.Scene,
		Kernel:      m.cfg.Kernel,
		Status:      m,
		Reporter:    m,
		Prefs:       &p,
		Interactive: interactive,
		Log:         m.cfg.Log,
	}
}

func (m *Model) invoke() {
	m.notice = ""
	m.session = modal.NewSession(m.context(true), modal.DefaultParams())
	state, _ := m.session.Invoke()
	m.afterState(state)
}

func (m *Model) repeat() {
	if m.lastOp == nil {
		m.Report(modal.LevelWarning, "Nothing to repeat.")
		return
	}
	m.notice = ""
	m.session = modal.NewSession(m.context(false), *m.lastOp)
	state, _ := m.session.Execute()
	m.afterState(state)
}

func (m *Model) handle(e input.Event) {
	state, _ := m.session.Handle(e)
	m.afterState(state)
}

func (m *Model) afterState(state modal.State) {
	if state != modal.StateFinished {
		return
	}
	p := m.session.Params()
	m.lastOp = &p
	if res := m.session.Result(); res != nil {
		m.notice = dimStyle.Render(fmt.Sprintf("Created %d primitive(s), skipped %d.", len(res.Created), len(res.Skipped)))
	}
	if m.cfg.OnCommit != nil {
		m.cfg.OnCommit(p)
	}
	m.clampCursor()
}

func (m *Model) cancelRunning() {
	if m.Running() {
		m.session.Cancel()
	}
}

func (m *Model) clampCursor() {
	if n := m.cfg.Scene.ObjectCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) View() string {
	var b strings.Builder
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	} else {
		chord := m.cfg.Prefs.Chord().String()
		b.WriteString(headerStyle.Render(fmt.Sprintf("FastFit — %s fit, space select, R repeat, q quit", chord)))
	}
	b.WriteString("\n")

	active, _ := m.cfg.Scene.Active()
	for i, obj := range m.cfg.Scene.Objects() {
		marker := "  "
		if i == m.cursor && !m.Running() {
			marker = cursorStyle.Render("> ")
		}
		size := obj.Transform.Scale
		if obj.Data != nil && obj.Data.Mesh != nil {
			ext := obj.Data.Mesh.Bounds().Size()
			size = [3]float64{ext[0] * size[0], ext[1] * size[1], ext[2] * size[2]}
		}
		line := fmt.Sprintf("%-24s %6.2f × %6.2f × %6.2f", obj.Name, size[0], size[1], size[2])
		switch {
		case obj.IsPreview():
			line = previewStyle.Render(line + "  (preview)")
		case active != nil && active.ID == obj.ID && m.cfg.Scene.IsSelected(obj.ID):
			line = selectedStyle.Bold(true).Render(line + "  ●")
		case m.cfg.Scene.IsSelected(obj.ID):
			line = selectedStyle.Render(line + "  ○")
		}
		b.WriteString(marker + line + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + m.notice + "\n")
	}
	return b.String()
}
