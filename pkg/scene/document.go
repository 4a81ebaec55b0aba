package scene

import (
	"fmt"
	"os"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/goccy/go-json"
)

// Document is the on-disk form of a scene.
type Document struct {
	Objects  []ObjectDoc `json:"objects"`
	Selected []string    `json:"selected,omitempty"`
	Active   string      `json:"active,omitempty"`
	Mode     string      `json:"mode,omitempty"`

	// LastOperation holds the serialized parameters of the most recent
	// fitting operation so it can be repeated without a live selection.
	LastOperation json.RawMessage `json:"last_operation,omitempty"`
}

// ObjectDoc describes one object. Geometry is either an explicit mesh or a
// box of the given extents centred on the origin.
type ObjectDoc struct {
	Name     string       `json:"name"`
	Location [3]float64   `json:"location"`
	Rotation [3]float64   `json:"rotation"` // degrees, XYZ order
	Scale    *[3]float64  `json:"scale,omitempty"`
	Box      *[3]float64  `json:"box,omitempty"`
	Mesh     *kernel.Mesh `json:"mesh,omitempty"`
	Display  string       `json:"display,omitempty"`
	Preview  bool         `json:"preview,omitempty"`
}

// FromDocument builds a scene. Box geometry is generated with k.
func FromDocument(doc *Document, k kernel.Kernel) (*Scene, error) {
	s := New()
	for i, od := range doc.Objects {
		if od.Name == "" {
			return nil, fmt.Errorf("scene: object %d has no name", i)
		}
		mesh := od.Mesh
		switch {
		case mesh != nil:
			if err := mesh.Check(); err != nil {
				return nil, fmt.Errorf("scene: object %d (%s): %w", i, od.Name, err)
			}
		case od.Box != nil:
			b := *od.Box
			if b[0] < 0 || b[1] < 0 || b[2] < 0 {
				return nil, fmt.Errorf("scene: object %d (%s): negative box extent %v", i, od.Name, b)
			}
			m, err := k.ToMesh(k.Box(b[0], b[1], b[2]))
			if err != nil {
				return nil, fmt.Errorf("scene: object %d (%s): %w", i, od.Name, err)
			}
			mesh = m
		default:
			mesh = &kernel.Mesh{}
		}

		t := geom.Identity()
		t.Location = geom.Vec3(od.Location)
		t.Rotation = geom.EulerDegrees(od.Rotation[0], od.Rotation[1], od.Rotation[2])
		if od.Scale != nil {
			t.Scale = geom.Vec3(*od.Scale)
		}
		obj, err := s.AddMeshObject(od.Name, mesh, t)
		if err != nil {
			return nil, err
		}
		if obj.Name != od.Name {
			return nil, fmt.Errorf("scene: duplicate object name %q", od.Name)
		}
		if od.Display == DisplayWire.String() {
			obj.Display = DisplayWire
		}
		obj.Preview = od.Preview
	}

	if err := s.SelectByName(doc.Selected...); err != nil {
		return nil, err
	}
	if doc.Active != "" {
		obj, ok := s.Lookup(doc.Active)
		if !ok {
			return nil, fmt.Errorf("scene: active %q: %w", doc.Active, ErrNotFound)
		}
		s.active = obj.ID
	}
	if doc.Mode == ModeEdit.String() {
		s.mode = ModeEdit
	}
	return s, nil
}

// Document captures the scene. Meshes are always written explicitly.
func (s *Scene) Document() *Document {
	doc := &Document{Objects: []ObjectDoc{}, Mode: s.mode.String()}
	for _, obj := range s.Objects() {
		t := obj.Transform
		rot := t.Rotation.Degrees()
		scale := [3]float64(t.Scale)
		od := ObjectDoc{
			Name:     obj.Name,
			Location: [3]float64(t.Location),
			Rotation: [3]float64(rot),
			Scale:    &scale,
			Preview:  obj.Preview,
		}
		if obj.Display == DisplayWire {
			od.Display = obj.Display.String()
		}
		if obj.Data != nil {
			od.Mesh = obj.Data.Mesh
		}
		doc.Objects = append(doc.Objects, od)
		if s.selected[obj.ID] {
			doc.Selected = append(doc.Selected, obj.Name)
		}
	}
	if active, ok := s.Active(); ok {
		doc.Active = active.Name
	}
	return doc
}

// ReadDocument loads a document from a JSON file.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	return &doc, nil
}

// WriteDocument saves a document as indented JSON.
func WriteDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
