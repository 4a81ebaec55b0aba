package polymesh

import (
	"testing"

	"github.com/chazu/fastfit/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(k.Box(2, 4, 6))
	require.NoError(t, err)

	// 6 faces, 4 vertices and 2 triangles each.
	assert.Equal(t, 24, mesh.VertexCount())
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Equal(t, len(mesh.Vertices), len(mesh.Normals))

	b := mesh.Bounds()
	assert.Equal(t, geom.Vec3{-1, -2, -3}, b.Min)
	assert.Equal(t, geom.Vec3{1, 2, 3}, b.Max)
}

func TestCylinderSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		wantRing int
	}{
		{"minimum", 3, 3},
		{"below minimum clamps", 1, 3},
		{"default", 32, 32},
		{"maximum", 1024, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New()
			mesh, err := k.ToMesh(k.Cylinder(6, 1, tt.segments))
			require.NoError(t, err)
			n := tt.wantRing
			// Side rings (2n) plus two caps (n+1 each).
			assert.Equal(t, 4*n+2, mesh.VertexCount())
			// Side quads (2n triangles) plus two fans (n each).
			assert.Equal(t, 4*n, mesh.TriangleCount())
		})
	}
}

func TestCylinderBounds(t *testing.T) {
	k := New()
	b := k.Cylinder(6, 2, 64).BoundingBox()
	assert.InDelta(t, -3, b.Min.Z(), 1e-6)
	assert.InDelta(t, 3, b.Max.Z(), 1e-6)
	assert.InDelta(t, 2, b.Max.X(), 1e-6)
	assert.InDelta(t, -2, b.Min.X(), 1e-6)
}

func TestDegenerateSolids(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(k.Cylinder(0, 0, 8))
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
	assert.Equal(t, geom.Vec3{}, mesh.Bounds().Size())

	mesh, err = k.ToMesh(k.Box(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{}, mesh.Bounds().Size())
}

func TestToMeshForeignSolid(t *testing.T) {
	_, err := New().ToMesh(nil)
	assert.Error(t, err)
}
