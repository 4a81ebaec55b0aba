// Package tessellate walks a scene and produces world-space triangle
// meshes, one per object, ready for a renderer or an exporter.
package tessellate

import (
	"fmt"

	"github.com/chazu/fastfit/pkg/kernel"
	"github.com/chazu/fastfit/pkg/scene"
)

// Part is one object's render mesh plus the display state a viewer needs.
type Part struct {
	ObjectID  scene.ObjectID
	Mesh      *kernel.Mesh // world space
	Wireframe bool
	Preview   bool
	Selected  bool
	Active    bool
}

// Options filter what gets tessellated.
type Options struct {
	// Render drops objects hidden from final renders, previews included.
	Render bool
}

// Tessellate produces one part per object with geometry, in scene order.
// The scene is never mutated.
func Tessellate(s *scene.Scene, opts Options) ([]Part, error) {
	if s == nil {
		return nil, nil
	}
	active, _ := s.Active()

	var parts []Part
	for _, obj := range s.Objects() {
		if opts.Render && (obj.HideRender || obj.IsPreview()) {
			continue
		}
		if obj.Data == nil || obj.Data.Mesh == nil || obj.Data.Mesh.IsEmpty() {
			continue
		}
		world, err := s.WorldMatrix(obj.ID)
		if err != nil {
			return nil, fmt.Errorf("tessellate: object %s: %w", obj.Name, err)
		}
		mesh := obj.Data.Mesh.Transform(world)
		mesh.PartName = obj.Name

		parts = append(parts, Part{
			ObjectID:  obj.ID,
			Mesh:      mesh,
			Wireframe: obj.Display == scene.DisplayWire,
			Preview:   obj.IsPreview(),
			Selected:  s.IsSelected(obj.ID),
			Active:    active != nil && active.ID == obj.ID,
		})
	}
	return parts, nil
}

// Merge concatenates part meshes into one, reindexing triangles.
func Merge(parts []Part) *kernel.Mesh {
	out := &kernel.Mesh{PartName: "scene"}
	for _, p := range parts {
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, p.Mesh.Vertices...)
		out.Normals = append(out.Normals, p.Mesh.Normals...)
		for _, i := range p.Mesh.Indices {
			out.Indices = append(out.Indices, base+i)
		}
	}
	return out
}
