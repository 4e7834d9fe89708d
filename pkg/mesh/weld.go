package mesh

import (
	gomath "math"

	"github.com/Faultbox/wirevis/pkg/math"
)

// Weld merges vertices closer than tolerance and drops faces that collapse.
// STL files store every triangle with its own corners, so edge topology only
// exists after welding.
func (m *Mesh) Weld(tolerance float64) *Mesh {
	if tolerance <= 0 {
		tolerance = 1e-9
	}

	type cell struct{ x, y, z int64 }
	quantize := func(v math.Vec3) cell {
		return cell{
			int64(gomath.Round(v.X / tolerance)),
			int64(gomath.Round(v.Y / tolerance)),
			int64(gomath.Round(v.Z / tolerance)),
		}
	}

	out := New()
	lookup := make(map[cell]int)
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		c := quantize(v)
		if idx, ok := lookup[c]; ok {
			remap[i] = idx
			continue
		}
		idx := out.AddVertex(v)
		lookup[c] = idx
		remap[i] = idx
	}

	for _, f := range m.Faces {
		verts := make([]int, 0, len(f.Verts))
		for _, v := range f.Verts {
			r := remap[v]
			if len(verts) > 0 && verts[len(verts)-1] == r {
				continue
			}
			verts = append(verts, r)
		}
		if len(verts) > 1 && verts[0] == verts[len(verts)-1] {
			verts = verts[:len(verts)-1]
		}
		if len(verts) < 3 {
			continue
		}
		out.AddFace(f.Material, verts...)
	}

	for _, l := range m.Loose {
		a, b := remap[l[0]], remap[l[1]]
		if a != b {
			out.AddLooseEdge(a, b)
		}
	}
	return out
}
