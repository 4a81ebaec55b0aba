package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrNotFound is returned when an object ID or name does not resolve.
var ErrNotFound = errors.New("scene: object not found")

// ErrMultiUser is returned when a geometry edit would affect mesh data
// shared by more than one object.
var ErrMultiUser = errors.New("scene: mesh data has multiple users")

// ErrNoMesh is returned when an operation needs mesh data the object lacks.
var ErrNoMesh = errors.New("scene: object has no mesh data")

// Mode is the editing mode of the scene.
type Mode int

const (
	ModeObject Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeObject:
		return "object"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Scene is a mutable object graph. It is not safe for concurrent use;
// callers serialize access the way a host event loop would.
type Scene struct {
	objects  map[ObjectID]*Object
	order    []ObjectID
	names    map[string]ObjectID
	meshes   map[string]*MeshData
	selected map[ObjectID]bool
	active   ObjectID
	mode     Mode
}

// New creates an empty scene in object mode.
func New() *Scene {
	return &Scene{
		objects:  make(map[ObjectID]*Object),
		names:    make(map[string]ObjectID),
		meshes:   make(map[string]*MeshData),
		selected: make(map[ObjectID]bool),
	}
}

// uniqueName returns name, or name.001, name.002, ... whichever is free.
func uniqueName(name string, taken func(string) bool) string {
	if name == "" {
		name = "Object"
	}
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// AddMeshObject creates mesh data from mesh and an object using it. Names
// are made unique. The selection is not changed.
func (s *Scene) AddMeshObject(name string, mesh *kernel.Mesh, t geom.Transform) (*Object, error) {
	if mesh == nil {
		return nil, fmt.Errorf("scene: add %q: %w", name, ErrNoMesh)
	}
	dataName := uniqueName(name, func(n string) bool { _, ok := s.meshes[n]; return ok })
	data := &MeshData{Name: dataName, Mesh: mesh, users: 1}
	s.meshes[dataName] = data

	obj := &Object{
		ID:        NewObjectID(),
		Name:      uniqueName(name, func(n string) bool { _, ok := s.names[n]; return ok }),
		Transform: t,
		Data:      data,
	}
	s.objects[obj.ID] = obj
	s.order = append(s.order, obj.ID)
	s.names[obj.Name] = obj.ID
	return obj, nil
}

// Object returns the object with the given ID.
func (s *Scene) Object(id ObjectID) (*Object, bool) {
	obj, ok := s.objects[id]
	return obj, ok
}

// Lookup returns the object with the given name.
func (s *Scene) Lookup(name string) (*Object, bool) {
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.Object(id)
}

// Objects returns all objects in creation order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// Rename gives an object a new unique name and returns the name it got.
func (s *Scene) Rename(id ObjectID, name string) (string, error) {
	obj, ok := s.objects[id]
	if !ok {
		return "", fmt.Errorf("scene: rename %s: %w", id.Short(), ErrNotFound)
	}
	delete(s.names, obj.Name)
	obj.Name = uniqueName(name, func(n string) bool { _, ok := s.names[n]; return ok })
	s.names[obj.Name] = id
	return obj.Name, nil
}

// Remove unlinks and deletes an object. Its mesh data loses a user but is
// kept until RemoveOrphanMeshes runs.
func (s *Scene) Remove(id ObjectID) error {
	obj, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("scene: remove %s: %w", id.Short(), ErrNotFound)
	}
	if obj.Data != nil {
		obj.Data.users--
	}
	delete(s.objects, id)
	delete(s.names, obj.Name)
	delete(s.selected, id)
	if s.active == id {
		s.active = ObjectID{}
	}
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveOrphanMeshes deletes mesh data no object uses and returns how many
// were removed.
func (s *Scene) RemoveOrphanMeshes() int {
	n := 0
	for name, data := range s.meshes {
		if data.users <= 0 {
			delete(s.meshes, name)
			n++
		}
	}
	return n
}

// Previews returns every preview object in the scene.
func (s *Scene) Previews() []*Object {
	var out []*Object
	for _, obj := range s.Objects() {
		if obj.IsPreview() {
			out = append(out, obj)
		}
	}
	return out
}

// ObjectCount returns the number of objects.
func (s *Scene) ObjectCount() int {
	return len(s.objects)
}

// MeshCount returns the number of mesh data blocks, orphans included.
func (s *Scene) MeshCount() int {
	return len(s.meshes)
}

// Mode returns the current editing mode.
func (s *Scene) Mode() Mode {
	return s.mode
}

// SetMode switches the editing mode.
func (s *Scene) SetMode(m Mode) {
	s.mode = m
}

// WorldMatrix returns the object's world transform.
func (s *Scene) WorldMatrix(id ObjectID) (mgl64.Mat4, error) {
	obj, ok := s.objects[id]
	if !ok {
		return mgl64.Mat4{}, fmt.Errorf("scene: world matrix %s: %w", id.Short(), ErrNotFound)
	}
	return obj.Transform.Matrix(), nil
}

// BoundBox returns the eight local-space corners of the object's geometry.
// Corner 0 is the minimum and corner 6 the maximum. Objects without
// geometry report a zero-sized box at the origin.
func (s *Scene) BoundBox(id ObjectID) ([8]geom.Vec3, error) {
	obj, ok := s.objects[id]
	if !ok {
		return [8]geom.Vec3{}, fmt.Errorf("scene: bound box %s: %w", id.Short(), ErrNotFound)
	}
	if obj.Data == nil || obj.Data.Mesh == nil {
		return geom.EmptyBox().Corners(), nil
	}
	return obj.Data.Mesh.Bounds().Corners(), nil
}

// ApplyScale bakes the object's scale into its mesh and resets the scale
// to one. Location and rotation are untouched.
func (s *Scene) ApplyScale(id ObjectID) error {
	obj, data, err := s.editable(id)
	if err != nil {
		return fmt.Errorf("scene: apply scale: %w", err)
	}
	sc := obj.Transform.Scale
	data.Mesh = data.Mesh.Transform(mgl64.Scale3D(sc.X(), sc.Y(), sc.Z()))
	obj.Transform.Scale = geom.Vec3{1, 1, 1}
	return nil
}

// OriginToBoundsCenter moves the object origin to the centre of its
// geometry bounds without moving the geometry in world space.
func (s *Scene) OriginToBoundsCenter(id ObjectID) error {
	obj, data, err := s.editable(id)
	if err != nil {
		return fmt.Errorf("scene: origin to bounds: %w", err)
	}
	c := data.Mesh.Bounds().Center()
	if c == (geom.Vec3{}) {
		return nil
	}
	world := obj.Transform.Apply(c)
	data.Mesh = data.Mesh.Translate(c.Mul(-1))
	obj.Transform.Location = world
	return nil
}

// editable resolves an object whose mesh data can be modified in place.
func (s *Scene) editable(id ObjectID) (*Object, *MeshData, error) {
	obj, ok := s.objects[id]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", id.Short(), ErrNotFound)
	}
	if obj.Data == nil || obj.Data.Mesh == nil {
		return nil, nil, fmt.Errorf("%s: %w", obj.Name, ErrNoMesh)
	}
	if obj.Data.users > 1 {
		return nil, nil, fmt.Errorf("%s: %w", obj.Name, ErrMultiUser)
	}
	return obj, obj.Data, nil
}
