package wire

import (
	gomath "math"

	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

// degenerateLength is the scene-unit length below which an edge has no usable direction.
const degenerateLength = 1e-9

// SelectedEdge is an edge chosen to carry a wire, in world space.
type SelectedEdge struct {
	Index  int // position in the mesh's edge topology order
	A, B   math.Vec3
	Mid    math.Vec3
	Length float64
	Normal math.Vec3 // unit average of incident face normals, zero without faces
	Faces  int
	Angle  float64 // dihedral angle in degrees
}

// Selection is the result of scanning one mesh.
type Selection struct {
	Edges   []SelectedEdge
	Scanned int
	Dropped int // degenerate edges skipped silently
}

// SelectEdges returns the edges of m that qualify as wires under s, in
// topology order. An edge qualifies when it is longer than the cutoff and
// either its dihedral angle reaches the threshold, it separates two faces of
// different material (when enabled), or it bounds a single face (when lone
// edges are enabled). Open edges count as 0 degrees, so a zero threshold
// takes them too. Edges without faces never qualify.
func SelectEdges(m *mesh.Mesh, s Settings) Selection {
	normals := m.FaceNormals()
	edges := m.Edges()
	sel := Selection{Scanned: len(edges)}

	for i, e := range edges {
		a, b := e.Endpoints(m)
		length := a.Distance(b)
		if length < degenerateLength {
			sel.Dropped++
			continue
		}
		if length*mmPerUnit <= s.LengthCutoffMM {
			continue
		}

		angle := DihedralAngle(e.Faces, normals)
		if !qualifies(m, e, angle, s) {
			continue
		}

		normal := averageNormal(e.Faces, normals)
		if len(e.Faces) > 0 && normal == (math.Vec3{}) {
			// faces folded onto each other leave no facing direction
			sel.Dropped++
			continue
		}

		sel.Edges = append(sel.Edges, SelectedEdge{
			Index:  i,
			A:      a,
			B:      b,
			Mid:    a.Midpoint(b),
			Length: length,
			Normal: normal,
			Faces:  len(e.Faces),
			Angle:  angle,
		})
	}
	return sel
}

func qualifies(m *mesh.Mesh, e mesh.Edge, angle float64, s Settings) bool {
	switch len(e.Faces) {
	case 0:
		return false
	case 1:
		if s.LoneEdges {
			return true
		}
	case 2:
		if s.MaterialBoundary && m.Faces[e.Faces[0]].Material != m.Faces[e.Faces[1]].Material {
			return true
		}
	}
	return angle >= s.AngleDeg
}

// DihedralAngle returns the angle in degrees between the normals of the given
// faces. With fewer than two faces it is 0; with more, the widest pair counts.
func DihedralAngle(faces []int, normals []math.Vec3) float64 {
	widest := 0.0
	for i := 0; i < len(faces); i++ {
		for j := i + 1; j < len(faces); j++ {
			n1, n2 := normals[faces[i]], normals[faces[j]]
			if n1 == (math.Vec3{}) || n2 == (math.Vec3{}) {
				continue
			}
			d := gomath.Max(-1, gomath.Min(1, n1.Dot(n2)))
			if a := gomath.Acos(d) * 180 / gomath.Pi; a > widest {
				widest = a
			}
		}
	}
	return widest
}

func averageNormal(faces []int, normals []math.Vec3) math.Vec3 {
	var sum math.Vec3
	for _, f := range faces {
		sum = sum.Add(normals[f])
	}
	if sum.Length() < 1e-9 {
		return math.Vec3{}
	}
	return sum.Normalize()
}
