package main

import (
	"strings"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors, non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	view := app.LoadScene("")

	if len(view.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(view.Errors))
	}
	if len(view.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(view.Meshes))
	}
	// Slices must serialize as [] not null.
	if view.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if view.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if view.Notices == nil {
		t.Error("Notices should be non-nil empty slice, got nil")
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()
	view := app.LoadScene(";; just a comment\n   \n;; another\n")

	if len(view.Errors) != 0 {
		t.Errorf("expected 0 errors for comments, got %v", view.Errors)
	}
	if len(view.Meshes) != 0 {
		t.Errorf("expected 0 meshes for comments, got %d", len(view.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	view := app.LoadScene("(+ 1 2)\n(object \"test\"")

	if len(view.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(view.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(view.Meshes))
	}
	e := view.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 3. Bad scene content: unknown names and negative extents are eval errors.
// ---------------------------------------------------------------------------

func TestE2EBadSceneContent(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"select unknown", `(object "a" (box 1 1 1)) (select "b")`, "not found"},
		{"negative extent", `(object "a" (box -1 1 1))`, "negative"},
		{"undefined function", `(undefined-func 1 2 3)`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp()
			view := app.LoadScene(tt.source)
			if len(view.Errors) == 0 {
				t.Fatal("expected an eval error")
			}
			if tt.want != "" && !strings.Contains(view.Errors[0].Message, tt.want) {
				t.Errorf("error %q should mention %q", view.Errors[0].Message, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 4. Degenerate targets: flat and zero-size objects still commit.
// ---------------------------------------------------------------------------

func TestE2EDegenerateTargets(t *testing.T) {
	app := NewApp()
	view := app.LoadScene(`
(object "Sheet" (box 2 2 0))
(object "Point" (box 0 0 0) :at (vec3 3 0 0))
(select "Sheet" "Point")
`)
	if len(view.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", view.Errors)
	}

	app.Invoke()
	view = app.SendEvent(press("enter"))
	if view.State != "FINISHED" {
		t.Fatalf("expected FINISHED, got %s", view.State)
	}
	if len(view.Notices) != 1 || view.Notices[0].Message != "Created 2 primitive(s), skipped 0." {
		t.Errorf("unexpected notices %v", view.Notices)
	}
}

// ---------------------------------------------------------------------------
// 5. Large dimensions: a very large object fits without trouble.
// ---------------------------------------------------------------------------

func TestE2ELargeDimensions(t *testing.T) {
	app := NewApp()
	view := app.LoadScene(`(object "huge" (box 10000 10000 19)) (select "huge")`)
	if len(view.Errors) > 0 {
		t.Fatalf("unexpected errors for large box: %v", view.Errors)
	}

	app.Invoke()
	view = app.SendEvent(press("wheel"))
	view = app.SendEvent(press("enter"))
	if len(view.Meshes) != 2 || view.Meshes[1].PartName != "Cube" {
		t.Fatalf("expected huge + Cube, got %v", meshNames(view))
	}
	m := view.Meshes[1]
	var maxX float32
	for i := 0; i < len(m.Vertices); i += 3 {
		if m.Vertices[i] > maxX {
			maxX = m.Vertices[i]
		}
	}
	if maxX != 5000 {
		t.Errorf("cube half-width = %v, want 5000", maxX)
	}
}

// ---------------------------------------------------------------------------
// 6. Idle input: only the shortcut press starts a session.
// ---------------------------------------------------------------------------

func TestE2EIdleInput(t *testing.T) {
	app := NewApp()
	loadExample(t, app)

	for _, ev := range []InputEvent{
		press("enter"),
		press("wheelup"),
		press("f"),
		{Key: "f", Shift: true, Release: true},
		{Key: "f", Shift: true, Ctrl: true},
	} {
		view := app.SendEvent(ev)
		if view.State != "IDLE" {
			t.Fatalf("%+v started a session", ev)
		}
		if len(view.Meshes) != 4 {
			t.Fatalf("%+v changed the scene", ev)
		}
	}

	view := app.SendEvent(InputEvent{Key: "F", Shift: true})
	if view.State != "RUNNING_MODAL" {
		t.Errorf("expected Shift+F to start a session, got %s", view.State)
	}
}

func TestE2EShortcutNeedsObjectMode(t *testing.T) {
	app := NewApp()
	app.LoadScene(`(object "a" (box 1 1 1)) (select "a") (mode :edit)`)

	view := app.SendEvent(InputEvent{Key: "F", Shift: true})
	if view.State != "IDLE" {
		t.Fatalf("Shift+F in edit mode started a session: %s", view.State)
	}
	if len(view.Meshes) != 1 {
		t.Errorf("scene changed: %v", meshNames(view))
	}
}

func TestE2EUnknownKey(t *testing.T) {
	app := NewApp()
	view := app.SendEvent(press("bogus"))
	if len(view.Errors) == 0 {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestE2EReleaseIgnoredWhileRunning(t *testing.T) {
	app := NewApp()
	loadExample(t, app)
	app.Invoke()

	view := app.SendEvent(InputEvent{Key: "enter", Release: true})
	if view.State != "RUNNING_MODAL" {
		t.Errorf("release should not commit, got %s", view.State)
	}
}

// ---------------------------------------------------------------------------
// 7. Invoke without a selection is a warning, not an error.
// ---------------------------------------------------------------------------

func TestE2EInvokeWithoutSelection(t *testing.T) {
	app := NewApp()
	app.LoadScene(`(object "a" (box 1 1 1))`)

	view := app.Invoke()
	if view.State != "CANCELLED" {
		t.Errorf("expected CANCELLED, got %s", view.State)
	}
	if len(view.Notices) != 1 || view.Notices[0].Level != "WARNING" || view.Notices[0].Message != "No objects selected." {
		t.Errorf("unexpected notices %v", view.Notices)
	}
	if len(view.Meshes) != 1 {
		t.Errorf("scene changed: %v", meshNames(view))
	}
}

// ---------------------------------------------------------------------------
// 8. Reloading during a session cancels it and drops its previews.
// ---------------------------------------------------------------------------

func TestE2ELoadSceneDuringSession(t *testing.T) {
	app := NewApp()
	loadExample(t, app)
	app.Invoke()

	view := app.LoadScene(`(object "solo" (box 1 1 1))`)
	if view.State != "IDLE" {
		t.Errorf("expected IDLE after reload, got %s", view.State)
	}
	if view.Status != "" {
		t.Errorf("status should be cleared, got %q", view.Status)
	}
	for _, m := range view.Meshes {
		if m.Preview {
			t.Errorf("preview %q survived the reload", m.PartName)
		}
	}
}

// ---------------------------------------------------------------------------
// 9. Selection edits.
// ---------------------------------------------------------------------------

func TestE2ESelectObjects(t *testing.T) {
	app := NewApp()
	loadExample(t, app)

	view := app.SelectObjects([]string{"Floor"})
	for _, m := range view.Meshes {
		if m.Selected != (m.PartName == "Floor") || m.Active != (m.PartName == "Floor") {
			t.Errorf("part %q: selected=%v active=%v", m.PartName, m.Selected, m.Active)
		}
	}

	view = app.SelectObjects([]string{"Nope"})
	if len(view.Errors) == 0 {
		t.Error("expected an error selecting an unknown object")
	}

	app.SelectObjects([]string{"Crate"})
	app.Invoke()
	view = app.SelectObjects([]string{"Floor"})
	if view.State != "RUNNING_MODAL" {
		t.Fatalf("selection must not interrupt a session, got %s", view.State)
	}
	view = app.SendEvent(press("enter"))
	if names := meshNames(view); names[len(names)-1] != "Cylinder" || len(names) != 5 {
		t.Errorf("expected one cylinder around Crate, got %v", names)
	}
}

// ---------------------------------------------------------------------------
// 10. Concurrent bindings: no panics, no data races.
//     Run with `go test -race` to detect data races.
// ---------------------------------------------------------------------------

func TestE2EConcurrentBindings(t *testing.T) {
	app := NewApp()
	loadExample(t, app)
	app.Invoke()

	keys := []string{"wheelup", "c", "wheeldown", "c"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				app.SendEvent(press(keys[(i+j)%len(keys)]))
				app.View()
			}
		}(i)
	}
	wg.Wait()

	view := app.SendEvent(press("esc"))
	if view.State != "CANCELLED" {
		t.Fatalf("expected CANCELLED, got %s", view.State)
	}
	if len(view.Meshes) != 4 {
		t.Errorf("expected the original 4 objects, got %v", meshNames(view))
	}
}

func TestE2ERapidReload(t *testing.T) {
	app := NewApp()

	sources := []string{
		`(object "ok" (box 1 2 3))`,
		`(object "broken"`,
		``,
		`(select "missing")`,
		`(object "also-ok" (cylinder :radius 2 :depth 1))`,
		`;; just a comment`,
		`(object "last" (box 4 4 4)) (select "last")`,
	}
	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			app.LoadScene(source)
		}()
	}

	view := app.View()
	if len(view.Meshes) != 1 || view.Meshes[0].PartName != "last" {
		t.Errorf("expected only the last scene, got %v", meshNames(view))
	}
}
