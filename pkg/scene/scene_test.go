package scene

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/kernel/polymesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addBox(t *testing.T, s *Scene, name string, x, y, z float64, tr geom.Transform) *Object {
	t.Helper()
	k := polymesh.New()
	mesh, err := k.ToMesh(k.Box(x, y, z))
	require.NoError(t, err)
	obj, err := s.AddMeshObject(name, mesh, tr)
	require.NoError(t, err)
	return obj
}

func TestAddMeshObjectUniqueNames(t *testing.T) {
	s := New()
	a := addBox(t, s, "Cube", 1, 1, 1, geom.Identity())
	b := addBox(t, s, "Cube", 1, 1, 1, geom.Identity())
	c := addBox(t, s, "Cube", 1, 1, 1, geom.Identity())

	assert.Equal(t, "Cube", a.Name)
	assert.Equal(t, "Cube.001", b.Name)
	assert.Equal(t, "Cube.002", c.Name)
	assert.Equal(t, 3, s.ObjectCount())
	assert.Equal(t, 3, s.MeshCount())
	assert.Equal(t, 1, a.Data.Users())

	got, ok := s.Lookup("Cube.001")
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
}

func TestAddMeshObjectNilMesh(t *testing.T) {
	_, err := New().AddMeshObject("x", nil, geom.Identity())
	assert.ErrorIs(t, err, ErrNoMesh)
}

func TestRemoveLeavesOrphanMesh(t *testing.T) {
	s := New()
	obj := addBox(t, s, "Cube", 1, 1, 1, geom.Identity())
	require.NoError(t, s.Select(obj.ID, true))
	require.NoError(t, s.SetActive(obj.ID))

	require.NoError(t, s.Remove(obj.ID))
	assert.Equal(t, 0, s.ObjectCount())
	assert.Equal(t, 1, s.MeshCount(), "mesh data survives until orphans are purged")
	assert.Empty(t, s.Selected())
	_, ok := s.Active()
	assert.False(t, ok)

	assert.Equal(t, 1, s.RemoveOrphanMeshes())
	assert.Equal(t, 0, s.MeshCount())

	err := s.Remove(obj.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSelection(t *testing.T) {
	s := New()
	a := addBox(t, s, "A", 1, 1, 1, geom.Identity())
	b := addBox(t, s, "B", 1, 1, 1, geom.Identity())
	hidden := addBox(t, s, "H", 1, 1, 1, geom.Identity())
	hidden.HideSelect = true

	require.NoError(t, s.SelectByName("B", "A"))
	sel := s.Selected()
	require.Len(t, sel, 2)
	assert.Equal(t, a.ID, sel[0].ID, "selection is reported in creation order")
	assert.Equal(t, b.ID, sel[1].ID)
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)

	require.NoError(t, s.Select(hidden.ID, true))
	assert.False(t, s.IsSelected(hidden.ID))

	s.DeselectAll()
	assert.Empty(t, s.Selected())

	assert.ErrorIs(t, s.SelectByName("missing"), ErrNotFound)
}

func TestBoundBoxAndWorldMatrix(t *testing.T) {
	s := New()
	tr := geom.Transform{Location: geom.Vec3{5, 0, 0}, Scale: geom.Vec3{2, 2, 2}}
	obj := addBox(t, s, "Box", 2, 4, 6, tr)

	corners, err := s.BoundBox(obj.ID)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{-1, -2, -3}, corners[0])
	assert.Equal(t, geom.Vec3{1, 2, 3}, corners[6])

	m, err := s.WorldMatrix(obj.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Matrix(), m)

	_, err = s.BoundBox(NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyScale(t *testing.T) {
	s := New()
	obj := addBox(t, s, "Box", 2, 2, 2, geom.Transform{Scale: geom.Vec3{1, 2, 3}})

	require.NoError(t, s.ApplyScale(obj.ID))
	assert.Equal(t, geom.Vec3{1, 1, 1}, obj.Transform.Scale)
	assert.Equal(t, geom.Vec3{2, 4, 6}, obj.Data.Mesh.Bounds().Size())
}

func TestOriginToBoundsCenter(t *testing.T) {
	s := New()
	obj := addBox(t, s, "Box", 2, 2, 2, geom.Identity())
	obj.Data.Mesh = obj.Data.Mesh.Translate(geom.Vec3{3, 0, 0})
	obj.Transform.Location = geom.Vec3{1, 0, 0}

	require.NoError(t, s.OriginToBoundsCenter(obj.ID))
	assert.InDelta(t, 4, obj.Transform.Location.X(), 1e-6)
	assert.InDelta(t, 0, obj.Data.Mesh.Bounds().Center().X(), 1e-6)
}

func TestPreviews(t *testing.T) {
	s := New()
	addBox(t, s, "Target", 1, 1, 1, geom.Identity())
	typed := addBox(t, s, "stand-in", 1, 1, 1, geom.Identity())
	typed.Preview = true
	addBox(t, s, PreviewPrefix+"Legacy", 1, 1, 1, geom.Identity())

	assert.Len(t, s.Previews(), 2)
	assert.True(t, HasErrors(s.Validate()))
}

func TestValidateDegenerate(t *testing.T) {
	s := New()
	addBox(t, s, "Flat", 2, 2, 0, geom.Identity())
	addBox(t, s, "Squashed", 1, 1, 1, geom.Transform{Scale: geom.Vec3{1, 0, 1}})

	issues := s.Validate()
	require.Len(t, issues, 2)
	assert.False(t, HasErrors(issues))
	assert.Contains(t, issues[0].Message, "Z extent")
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := &Document{
		Objects: []ObjectDoc{
			{Name: "crate", Location: [3]float64{1, 2, 3}, Rotation: [3]float64{0, 0, 90}, Box: &[3]float64{2, 4, 6}},
			{Name: "mirror", Scale: &[3]float64{-1, 1, 1}, Box: &[3]float64{1, 1, 1}},
		},
		Selected: []string{"crate", "mirror"},
		Active:   "crate",
	}
	s, err := FromDocument(doc, polymesh.New())
	require.NoError(t, err)
	assert.Equal(t, 2, s.ObjectCount())
	assert.Len(t, s.Selected(), 2)
	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "crate", active.Name)

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, WriteDocument(path, s.Document()))
	loaded, err := ReadDocument(path)
	require.NoError(t, err)

	s2, err := FromDocument(loaded, polymesh.New())
	require.NoError(t, err)
	crate, ok := s2.Lookup("crate")
	require.True(t, ok)
	assert.InDelta(t, 90, crate.Transform.Rotation.Degrees().Z(), 1e-9)
	assert.Equal(t, geom.Vec3{2, 4, 6}, crate.Data.Mesh.Bounds().Size())
	mirror, ok := s2.Lookup("mirror")
	require.True(t, ok)
	assert.Equal(t, geom.Vec3{-1, 1, 1}, mirror.Transform.Scale)
}

func TestFromDocumentRejectsDuplicatesAndNegativeBoxes(t *testing.T) {
	_, err := FromDocument(&Document{Objects: []ObjectDoc{{Name: "a"}, {Name: "a"}}}, polymesh.New())
	assert.Error(t, err)

	_, err = FromDocument(&Document{Objects: []ObjectDoc{{Name: "a", Box: &[3]float64{-1, 1, 1}}}}, polymesh.New())
	assert.Error(t, err)
}

func TestMalformedMeshes(t *testing.T) {
	bad := &kernel.Mesh{Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint32{0, 1, 7}}

	_, err := FromDocument(&Document{Objects: []ObjectDoc{{Name: "broken", Mesh: bad}}}, polymesh.New())
	require.ErrorIs(t, err, kernel.ErrMalformed)
	assert.Contains(t, err.Error(), "broken")

	s := New()
	_, err = s.AddMeshObject("broken", bad, geom.Identity())
	require.NoError(t, err)
	issues := s.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.True(t, HasErrors(issues))
}
