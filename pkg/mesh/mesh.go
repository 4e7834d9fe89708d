// Package mesh holds polygon meshes and the edge topology derived from them.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wirevis/pkg/math"
)

// Mesh errors.
var (
	ErrFaceTooSmall   = errors.New("face has fewer than 3 vertices")
	ErrVertexRange    = errors.New("vertex index out of range")
	ErrDegenerateEdge = errors.New("edge references the same vertex twice")
)

// Face is an ordered polygon with a material index.
type Face struct {
	Verts    []int
	Material int
}

// Mesh is an indexed polygon mesh. Loose holds edges that belong to no face.
type Mesh struct {
	Vertices []math.Vec3
	Faces    []Face
	Loose    [][2]int
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v math.Vec3) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a face with the given material and vertex indices.
func (m *Mesh) AddFace(material int, verts ...int) {
	m.Faces = append(m.Faces, Face{Verts: verts, Material: material})
}

// AddLooseEdge appends an edge that is not part of any face.
func (m *Mesh) AddLooseEdge(a, b int) {
	m.Loose = append(m.Loose, [2]int{a, b})
}

// Validate checks that every face and loose edge references existing vertices.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		if len(f.Verts) < 3 {
			return fmt.Errorf("face %d: %w", i, ErrFaceTooSmall)
		}
		for _, v := range f.Verts {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d vertex %d: %w", i, v, ErrVertexRange)
			}
		}
	}
	for i, e := range m.Loose {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("loose edge %d: %w", i, ErrVertexRange)
		}
		if e[0] == e[1] {
			return fmt.Errorf("loose edge %d: %w", i, ErrDegenerateEdge)
		}
	}
	return nil
}

// FaceNormal returns the unit normal of face i using Newell's method,
// which tolerates non-planar polygons. Degenerate faces give the zero vector.
func (m *Mesh) FaceNormal(i int) math.Vec3 {
	verts := m.Faces[i].Verts
	var n math.Vec3
	for j, vi := range verts {
		cur := m.Vertices[vi]
		next := m.Vertices[verts[(j+1)%len(verts)]]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n.Normalize()
}

// FaceNormals returns the unit normal of every face.
func (m *Mesh) FaceNormals() []math.Vec3 {
	normals := make([]math.Vec3, len(m.Faces))
	for i := range m.Faces {
		normals[i] = m.FaceNormal(i)
	}
	return normals
}

// Transformed returns a copy of the mesh with every vertex transformed by mat.
// Mirroring transforms reverse face winding so normals keep pointing outward.
func (m *Mesh) Transformed(mat math.Mat4) *Mesh {
	out := &Mesh{
		Vertices: make([]math.Vec3, len(m.Vertices)),
		Faces:    make([]Face, len(m.Faces)),
		Loose:    append([][2]int(nil), m.Loose...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = mat.TransformPoint(v)
	}

	mirror := mat.Determinant3x3() < 0
	for i, f := range m.Faces {
		verts := append([]int(nil), f.Verts...)
		if mirror {
			for a, b := 0, len(verts)-1; a < b; a, b = a+1, b-1 {
				verts[a], verts[b] = verts[b], verts[a]
			}
		}
		out.Faces[i] = Face{Verts: verts, Material: f.Material}
	}
	return out
}

// Materials returns the number of distinct material indices used by faces.
func (m *Mesh) Materials() int {
	seen := make(map[int]struct{})
	for _, f := range m.Faces {
		seen[f.Material] = struct{}{}
	}
	return len(seen)
}
