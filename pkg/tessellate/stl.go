package tessellate

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chazu/fastfit/pkg/kernel"
)

// WriteSTL writes m as binary STL. Facet normals are computed from the
// triangle winding. Malformed meshes are rejected before anything is
// written.
func WriteSTL(w io.Writer, m *kernel.Mesh) error {
	if err := m.Check(); err != nil {
		return fmt.Errorf("tessellate: %w", err)
	}
	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "fastfit "+m.PartName)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	tris := m.TriangleCount()
	if err := binary.Write(bw, binary.LittleEndian, uint32(tris)); err != nil {
		return err
	}

	var rec [50]byte
	for t := 0; t < tris; t++ {
		a := m.Vertex(int(m.Indices[t*3]))
		b := m.Vertex(int(m.Indices[t*3+1]))
		c := m.Vertex(int(m.Indices[t*3+2]))
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		off := 0
		for _, v := range [4][3]float64{n, a, b, c} {
			for _, f := range v {
				binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(float32(f)))
				off += 4
			}
		}
		rec[48], rec[49] = 0, 0
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("tessellate: write triangle %d: %w", t, err)
		}
	}
	return bw.Flush()
}
