package scene

import (
	"strings"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/google/uuid"
)

// PreviewPrefix is the reserved name prefix given to preview objects.
// Recognition goes through Object.Preview; the prefix also catches
// previews loaded from older documents that predate the attribute.
const PreviewPrefix = "FP_preview_"

// ObjectID identifies an object for the lifetime of a scene.
type ObjectID uuid.UUID

// NewObjectID returns a fresh random ID.
func NewObjectID() ObjectID {
	return ObjectID(uuid.New())
}

// String returns the canonical UUID form.
func (id ObjectID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex characters, for logs.
func (id ObjectID) Short() string {
	return id.String()[:8]
}

// IsZero reports whether the ID is unset.
func (id ObjectID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// DisplayType controls how the viewport draws an object.
type DisplayType int

const (
	DisplayTextured DisplayType = iota // normal shaded display
	DisplayWire                        // wireframe only
)

func (d DisplayType) String() string {
	switch d {
	case DisplayTextured:
		return "textured"
	case DisplayWire:
		return "wire"
	default:
		return "unknown"
	}
}

// MeshData is geometry that one or more objects can use.
type MeshData struct {
	Name  string
	Mesh  *kernel.Mesh
	users int
}

// Users returns the number of objects referencing the data.
func (d *MeshData) Users() int {
	return d.users
}

// Object is a scene object: a named, transformed user of mesh data.
type Object struct {
	ID        ObjectID
	Name      string
	Transform geom.Transform
	Data      *MeshData

	Display     DisplayType
	HideSelect  bool // cannot be picked in the viewport
	HideRender  bool // excluded from final renders
	ShowInFront bool // drawn on top of other objects
	Preview     bool // disposable stand-in owned by a fitting session
}

// IsPreview reports whether the object is a fitting preview, either by the
// typed attribute or by its reserved name prefix.
func (o *Object) IsPreview() bool {
	return o.Preview || strings.HasPrefix(o.Name, PreviewPrefix)
}
