package wire

import "github.com/Faultbox/wirevis/pkg/math"

// Block is the geometry of one stamped wire instance, ready to append.
type Block struct {
	Vertices  []math.Vec3
	Faces     [][]int
	Materials []int
}

// Stamp places a copy of t with p. Face indices are rebased by offset, the
// number of vertices already accumulated, and every face is tagged with material.
func Stamp(t *Template, p Placement, material, offset int) Block {
	b := Block{
		Vertices:  make([]math.Vec3, len(t.Vertices)),
		Faces:     make([][]int, len(t.Faces)),
		Materials: make([]int, len(t.Faces)),
	}
	for i := range t.Vertices {
		b.Vertices[i] = p.Transform.TransformPoint(p.Local(t, i))
	}
	for i, f := range t.Faces {
		b.Faces[i] = []int{f[0] + offset, f[1] + offset, f[2] + offset}
		b.Materials[i] = material
	}
	return b
}
