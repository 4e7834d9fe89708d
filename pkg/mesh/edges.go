package mesh

import "github.com/Faultbox/wirevis/pkg/math"

// Edge is an undirected edge with the faces that use it.
// V[0] is the first vertex encountered when walking the owning face.
type Edge struct {
	V     [2]int
	Faces []int
}

// Length returns the edge length.
func (e Edge) Length(m *Mesh) float64 {
	return m.Vertices[e.V[0]].Distance(m.Vertices[e.V[1]])
}

// Endpoints returns the positions of both edge vertices.
func (e Edge) Endpoints(m *Mesh) (math.Vec3, math.Vec3) {
	return m.Vertices[e.V[0]], m.Vertices[e.V[1]]
}

type edgeKey struct{ a, b int }

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Edges builds the edge list of the mesh in topology order: faces are walked
// in order and each face's boundary in vertex order, the first occurrence of
// an edge fixes its position. Loose edges not used by any face follow.
// The order depends only on the mesh, so repeated calls agree.
func (m *Mesh) Edges() []Edge {
	index := make(map[edgeKey]int)
	var edges []Edge

	for fi, f := range m.Faces {
		n := len(f.Verts)
		for j := 0; j < n; j++ {
			a, b := f.Verts[j], f.Verts[(j+1)%n]
			if a == b {
				continue
			}
			k := keyOf(a, b)
			if ei, ok := index[k]; ok {
				// A face visiting the same edge twice is counted once.
				if last := edges[ei].Faces; last[len(last)-1] != fi {
					edges[ei].Faces = append(edges[ei].Faces, fi)
				}
				continue
			}
			index[k] = len(edges)
			edges = append(edges, Edge{V: [2]int{a, b}, Faces: []int{fi}})
		}
	}

	for _, l := range m.Loose {
		if l[0] == l[1] {
			continue
		}
		k := keyOf(l[0], l[1])
		if _, ok := index[k]; ok {
			continue
		}
		index[k] = len(edges)
		edges = append(edges, Edge{V: l})
	}

	return edges
}
