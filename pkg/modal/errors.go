package modal

import (
	"errors"
	"fmt"

	"github.com/chazu/fastfit/pkg/scene"
)

var (
	// ErrNoSelection is returned by Invoke when nothing is selected.
	ErrNoSelection = errors.New("modal: no objects selected")
	// ErrNoValidTargets is returned by Execute when no target resolves to
	// a live object.
	ErrNoValidTargets = errors.New("modal: no valid targets")
	// ErrNotRunning is returned by Handle outside a running session.
	ErrNotRunning = errors.New("modal: session is not running")
)

// StaleReferenceError reports a target that was deleted after it was
// captured. It unwraps to scene.ErrNotFound.
type StaleReferenceError struct {
	ID   scene.ObjectID
	Name string
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("modal: target %q (%s) no longer exists", e.Name, e.ID.Short())
}

func (e *StaleReferenceError) Unwrap() error {
	return scene.ErrNotFound
}
