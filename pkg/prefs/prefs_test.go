package prefs

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chazu/fastfit/pkg/fit"
	"github.com/chazu/fastfit/pkg/input"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, input.Chord{Key: "F", Shift: true}, p.Chord())
	assert.Equal(t, 32, p.Segments())
	assert.Equal(t, fit.Cylinder, p.Primitive())
	assert.Equal(t, p, p.Hydrate())
}

func TestHydrate(t *testing.T) {
	tests := []struct {
		name string
		in   Preferences
		want Preferences
	}{
		{"zero value", Preferences{}, Preferences{Key: "F", Vertices: 32, Type: "CYLINDER"}},
		{"lower case", Preferences{Key: "g", Vertices: 8, Type: "cube"}, Preferences{Key: "G", Vertices: 8, Type: "CUBE"}},
		{"named key", Preferences{Key: "enter", Vertices: 5, Type: "CUBE"}, Preferences{Key: "RET", Vertices: 5, Type: "CUBE"}},
		{"mouse key", Preferences{Key: "lmb", Vertices: 5, Type: "CUBE"}, Preferences{Key: "F", Vertices: 5, Type: "CUBE"}},
		{"clamp low", Preferences{Key: "F", Vertices: 1, Type: "CUBE"}, Preferences{Key: "F", Vertices: 3, Type: "CUBE"}},
		{"clamp high", Preferences{Key: "F", Vertices: 99999, Type: "CUBE"}, Preferences{Key: "F", Vertices: 1024, Type: "CUBE"}},
		{"bad type", Preferences{Key: "F", Vertices: 32, Type: "sphere"}, Preferences{Key: "F", Vertices: 32, Type: "CYLINDER"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Hydrate())
		})
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	l := NewLoader(path)

	p, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), p)

	_, err = os.Stat(path)
	require.NoError(t, err, "defaults should be written")
}

func TestSaveLoadYAML(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "prefs.yaml"))
	want := Preferences{Key: "G", Ctrl: true, Alt: true, Vertices: 12, Type: "CUBE"}
	require.NoError(t, l.Save(want))

	got, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	l := NewLoader(path)
	want := Preferences{Key: "F5", OSKey: true, Vertices: 64, Type: "CYLINDER"}
	require.NoError(t, l.Save(want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "vertices = 64")

	got, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadHydratesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: q\nvertices: 2000\n"), 0o600))

	p, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "Q", p.Key)
	assert.Equal(t, 1024, p.Vertices)
	assert.Equal(t, "CYLINDER", p.Type)
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unterminated\n"), 0o600))
	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestPathResolution(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", NewLoader("").Path())
	assert.Equal(t, "/x/y.toml", NewLoader("/x/y.toml").Path())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "p.yaml"), NewLoader("~/p.yaml").Path())
}

func TestKeymapLifecycle(t *testing.T) {
	k := NewKeymap(zerolog.Nop())
	trigger := input.Event{Type: "F", Shift: true}

	_, ok := k.Lookup(trigger)
	assert.False(t, ok, "nothing registered yet")

	b := k.Register(Default())
	assert.Equal(t, OperatorID, b.Operator)
	op, ok := k.Lookup(trigger)
	require.True(t, ok)
	assert.Equal(t, OperatorID, op)

	_, ok = k.Lookup(input.Event{Type: "F"})
	assert.False(t, ok)

	k.Reload(Preferences{Key: "G", Ctrl: true})
	require.Len(t, k.Bindings(), 1)
	_, ok = k.Lookup(trigger)
	assert.False(t, ok, "old chord should be gone")
	_, ok = k.Lookup(input.Event{Type: "G", Ctrl: true})
	assert.True(t, ok)

	assert.Equal(t, 1, k.Unregister())
	assert.Empty(t, k.Bindings())
	assert.Equal(t, 0, k.Unregister())
}

func TestWatcherReloadsKeymap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	l := NewLoader(path)
	require.NoError(t, l.Save(Default()))

	k := NewKeymap(zerolog.Nop())
	k.Register(Default())

	w, err := NewWatcher(l, k, zerolog.Nop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	var reloads atomic.Int32
	w.OnReload(func(Preferences) { reloads.Add(1) })
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, l.Save(Preferences{Key: "J", Alt: true, Vertices: 8, Type: "CUBE"}))

	require.Eventually(t, func() bool {
		_, ok := k.Lookup(input.Event{Type: "J", Alt: true})
		return ok && reloads.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "prefs.yaml"))
	w, err := NewWatcher(l, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcherStartRetriesAfterMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	l := NewLoader(filepath.Join(dir, "prefs.yaml"))
	w, err := NewWatcher(l, nil, zerolog.Nop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	var reloads atomic.Int32
	w.OnReload(func(Preferences) { reloads.Add(1) })

	require.Error(t, w.Start())
	assert.False(t, w.running)
	require.NoError(t, w.Stop())

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.running)

	require.NoError(t, l.Save(Default()))
	require.Eventually(t, func() bool {
		return reloads.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
}
