package main

import (
	"os"
	"testing"
)

func loadExample(t *testing.T, app *App) SceneView {
	t.Helper()
	source, err := os.ReadFile("examples/crates.lisp")
	if err != nil {
		t.Fatalf("failed to read crates.lisp: %v", err)
	}
	view := app.LoadScene(string(source))
	if len(view.Errors) > 0 {
		for _, e := range view.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	return view
}

func meshNames(view SceneView) []string {
	var names []string
	for _, m := range view.Meshes {
		names = append(names, m.PartName)
	}
	return names
}

func press(key string) InputEvent {
	return InputEvent{Key: key}
}

// TestE2ECratesExample exercises the full pipeline: Lisp source → engine →
// scene → tessellate → meshes. This is the same path the LoadScene binding
// takes, but without the Wails runtime.
func TestE2ECratesExample(t *testing.T) {
	app := NewApp()
	view := loadExample(t, app)

	if len(view.Meshes) != 4 {
		t.Fatalf("expected 4 meshes, got %d", len(view.Meshes))
	}

	expected := map[string]bool{"Crate": false, "Barrel": false, "Plank": false, "Floor": false}
	for _, m := range view.Meshes {
		if _, ok := expected[m.PartName]; !ok {
			t.Errorf("unexpected part name: %q", m.PartName)
			continue
		}
		expected[m.PartName] = true

		if len(m.Vertices) == 0 {
			t.Errorf("part %q: no vertices", m.PartName)
		}
		if len(m.Normals) == 0 {
			t.Errorf("part %q: no normals", m.PartName)
		}
		if len(m.Indices) == 0 {
			t.Errorf("part %q: no indices", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
		if m.Selected != (m.PartName != "Floor") {
			t.Errorf("part %q: selected = %v", m.PartName, m.Selected)
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing mesh for part %q", name)
		}
	}
	if view.State != "IDLE" {
		t.Errorf("expected IDLE, got %s", view.State)
	}
	if view.Shortcut != "Shift+F" {
		t.Errorf("expected Shift+F shortcut, got %q", view.Shortcut)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	view := app.LoadScene("")

	if len(view.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", view.Errors)
	}
	if len(view.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(view.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported and the previous
// scene survives.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	loadExample(t, app)
	view := app.LoadScene(`(object "test"`)

	if len(view.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(view.Meshes) != 4 {
		t.Errorf("expected previous 4 meshes to survive, got %d", len(view.Meshes))
	}
}

// TestE2EFitSession drives a whole session through the bindings: the
// shortcut starts it, the wheel switches to cubes and Enter commits.
func TestE2EFitSession(t *testing.T) {
	app := NewApp()
	loadExample(t, app)

	view := app.SendEvent(InputEvent{Key: "f", Shift: true})
	if view.State != "RUNNING_MODAL" {
		t.Fatalf("expected RUNNING_MODAL, got %s", view.State)
	}
	if view.Status != "FastPrimitives: Cylinder (Verts: 32, Axis: Z) — Wheel=Toggle, Ctrl+Wheel=Segments, C=Change Axis, LMB/Enter=Confirm" {
		t.Errorf("unexpected status %q", view.Status)
	}
	previews := 0
	for _, m := range view.Meshes {
		if m.Preview {
			previews++
			if !m.Wireframe {
				t.Errorf("preview %q should be drawn as wireframe", m.PartName)
			}
		}
	}
	if previews != 3 {
		t.Errorf("expected 3 previews, got %d", previews)
	}

	view = app.SendEvent(press("wheelup"))
	if view.State != "RUNNING_MODAL" {
		t.Fatalf("expected session to keep running, got %s", view.State)
	}

	view = app.SendEvent(press("enter"))
	if view.State != "FINISHED" {
		t.Fatalf("expected FINISHED, got %s", view.State)
	}
	if view.Status != "" {
		t.Errorf("status should be cleared, got %q", view.Status)
	}
	want := []string{"Crate", "Barrel", "Plank", "Floor", "Cube", "Cube.001", "Cube.002"}
	got := meshNames(view)
	if len(got) != len(want) {
		t.Fatalf("meshes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mesh %d = %q, want %q", i, got[i], want[i])
		}
	}
	last := view.Meshes[len(view.Meshes)-1]
	if !last.Active || !last.Selected {
		t.Error("last created primitive should be selected and active")
	}
	if len(view.Notices) != 1 || view.Notices[0].Message != "Created 3 primitive(s), skipped 0." {
		t.Errorf("unexpected notices %v", view.Notices)
	}
}

// TestE2ECancel ensures Esc and the Cancel binding leave the scene as it
// was before the session started.
func TestE2ECancel(t *testing.T) {
	for _, cancel := range []func(*App) SceneView{
		func(a *App) SceneView { return a.SendEvent(press("esc")) },
		func(a *App) SceneView { return a.SendEvent(press("rmb")) },
		func(a *App) SceneView { return a.Cancel() },
	} {
		app := NewApp()
		before := meshNames(loadExample(t, app))
		app.Invoke()
		app.SendEvent(press("c"))

		view := cancel(app)
		if view.State != "CANCELLED" {
			t.Fatalf("expected CANCELLED, got %s", view.State)
		}
		after := meshNames(view)
		if len(after) != len(before) {
			t.Errorf("scene changed: before %v, after %v", before, after)
		}
		if len(view.Notices) != 1 || view.Notices[0].Message != "FastPrimitives: cancelled" {
			t.Errorf("unexpected notices %v", view.Notices)
		}
	}
}

// TestE2ERepeat re-runs the last fit against the original targets even
// after the selection moved to the new primitive.
func TestE2ERepeat(t *testing.T) {
	app := NewApp()
	loadExample(t, app)

	view := app.Repeat()
	if len(view.Notices) != 1 || view.Notices[0].Message != "Nothing to repeat." {
		t.Fatalf("unexpected notices %v", view.Notices)
	}

	app.Invoke()
	app.SendEvent(InputEvent{Key: "wheeldown", Ctrl: true})
	app.SendEvent(press("lmb"))

	view = app.Repeat()
	if view.State != "FINISHED" {
		t.Fatalf("expected FINISHED, got %s", view.State)
	}
	if n := len(view.Meshes); n != 10 {
		t.Errorf("expected 4 + 3 + 3 meshes, got %d", n)
	}
}
