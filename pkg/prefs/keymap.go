package prefs

import (
	"sync"

	"github.com/chazu/fastfit/pkg/input"
	"github.com/rs/zerolog"
)

// OperatorID identifies the fitting operator in the keymap.
const OperatorID = "object.pv_primitive_bb"

// Binding maps a chord to an operator.
type Binding struct {
	Operator string
	Chord    input.Chord
}

// Keymap owns the chord bindings that start a fitting session. It is safe
// for concurrent use so a Watcher can reload it while a host looks keys up.
type Keymap struct {
	mu       sync.RWMutex
	bindings []Binding
	log      zerolog.Logger
}

// NewKeymap creates an empty keymap.
func NewKeymap(log zerolog.Logger) *Keymap {
	return &Keymap{log: log}
}

// Register binds the preferences' chord to the fitting operator.
func (k *Keymap) Register(p Preferences) Binding {
	b := Binding{Operator: OperatorID, Chord: p.Chord()}
	k.mu.Lock()
	k.bindings = append(k.bindings, b)
	k.mu.Unlock()
	k.log.Debug().Str("operator", b.Operator).Str("chord", b.Chord.String()).Msg("keymap registered")
	return b
}

// Unregister removes every binding and returns how many there were.
func (k *Keymap) Unregister() int {
	k.mu.Lock()
	n := len(k.bindings)
	k.bindings = nil
	k.mu.Unlock()
	if n > 0 {
		k.log.Debug().Int("bindings", n).Msg("keymap unregistered")
	}
	return n
}

// Reload replaces the bindings with those of p.
func (k *Keymap) Reload(p Preferences) Binding {
	k.Unregister()
	return k.Register(p)
}

// Lookup returns the operator bound to e, if any.
func (k *Keymap) Lookup(e input.Event) (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, b := range k.bindings {
		if b.Chord.Matches(e) {
			return b.Operator, true
		}
	}
	return "", false
}

// Bindings returns a copy of the current bindings.
func (k *Keymap) Bindings() []Binding {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]Binding(nil), k.bindings...)
}
