package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/wirevis/pkg/math"
)

func TestBoxTopology(t *testing.T) {
	m := Box(math.Vec3{X: 1, Y: 1, Z: 1})
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	edges := m.Edges()
	if len(edges) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(edges))
	}
	for i, e := range edges {
		if len(e.Faces) != 2 {
			t.Errorf("edge %d: expected 2 incident faces, got %d", i, len(e.Faces))
		}
		if l := e.Length(m); gomath.Abs(l-1) > 1e-12 {
			t.Errorf("edge %d: expected length 1, got %v", i, l)
		}
	}
}

func TestBoxNormalsPointOutward(t *testing.T) {
	m := Box(math.Vec3{X: 2, Y: 2, Z: 2})
	for i, f := range m.Faces {
		var centre math.Vec3
		for _, v := range f.Verts {
			centre = centre.Add(m.Vertices[v])
		}
		centre = centre.Scale(1 / float64(len(f.Verts)))
		if n := m.FaceNormal(i); n.Dot(centre) <= 0 {
			t.Errorf("face %d normal %v points inward", i, n)
		}
	}
}

func TestEdgesOrderIsStable(t *testing.T) {
	m := Grid(3, 2, 0.5)
	first := m.Edges()
	second := m.Edges()

	if len(first) != len(second) {
		t.Fatalf("edge count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].V != second[i].V {
			t.Errorf("edge %d changed: %v vs %v", i, first[i].V, second[i].V)
		}
	}
}

func TestGridBoundaryEdges(t *testing.T) {
	m := Grid(2, 2, 1)
	boundary := 0
	for _, e := range m.Edges() {
		if len(e.Faces) == 1 {
			boundary++
		}
	}
	// perimeter of a 2x2 grid
	if boundary != 8 {
		t.Errorf("expected 8 boundary edges, got %d", boundary)
	}
}

func TestLooseEdges(t *testing.T) {
	m := New()
	a := m.AddVertex(math.Vec3{})
	b := m.AddVertex(math.Vec3{X: 1})
	c := m.AddVertex(math.Vec3{Y: 1})
	m.AddFace(0, a, b, c)
	m.AddLooseEdge(a, b) // already part of the face
	d := m.AddVertex(math.Vec3{Z: 1})
	m.AddLooseEdge(c, d)

	edges := m.Edges()
	if len(edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(edges))
	}
	last := edges[3]
	if last.V != [2]int{c, d} || len(last.Faces) != 0 {
		t.Errorf("expected loose edge {%d %d} without faces, got %+v", c, d, last)
	}
}

func TestValidate(t *testing.T) {
	m := New()
	m.AddVertex(math.Vec3{})
	m.AddFace(0, 0, 1, 2)
	if err := m.Validate(); err == nil {
		t.Error("expected out of range error")
	}

	m = New()
	m.AddVertex(math.Vec3{})
	m.AddVertex(math.Vec3{X: 1})
	m.AddFace(0, 0, 1)
	if err := m.Validate(); err == nil {
		t.Error("expected face too small error")
	}
}

func TestTransformedMirrorKeepsNormalsOutward(t *testing.T) {
	m := Box(math.Vec3{X: 1, Y: 1, Z: 1})
	mirrored := m.Transformed(math.Scale(-1, 1, 1))

	for i, f := range mirrored.Faces {
		var centre math.Vec3
		for _, v := range f.Verts {
			centre = centre.Add(mirrored.Vertices[v])
		}
		if n := mirrored.FaceNormal(i); n.Dot(centre) <= 0 {
			t.Errorf("face %d normal %v points inward after mirroring", i, n)
		}
	}
}

func TestWeld(t *testing.T) {
	// two triangles sharing an edge, stored as a triangle soup
	soup := New()
	for _, v := range []math.Vec3{
		{}, {X: 1}, {Y: 1},
		{X: 1}, {X: 1, Y: 1}, {Y: 1 + 1e-12},
	} {
		soup.AddVertex(v)
	}
	soup.AddFace(0, 0, 1, 2)
	soup.AddFace(0, 3, 4, 5)

	welded := soup.Weld(1e-6)
	if len(welded.Vertices) != 4 {
		t.Fatalf("expected 4 vertices after weld, got %d", len(welded.Vertices))
	}

	shared := 0
	for _, e := range welded.Edges() {
		if len(e.Faces) == 2 {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("expected 1 shared edge after weld, got %d", shared)
	}
}
