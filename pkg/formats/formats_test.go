package formats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

func TestLoadMesh(t *testing.T) {
	dir := t.TempDir()
	box := mesh.Box(math.Vec3{X: 1, Y: 1, Z: 1})

	objPath := filepath.Join(dir, "box.OBJ")
	f, err := os.Create(objPath)
	if err != nil {
		t.Fatal(err)
	}
	box.Faces[3].Material = 1
	if err := WriteOBJ(f, &OBJ{Materials: []string{"steel", "brass"}, Mesh: box}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	m, materials, err := LoadMesh(objPath)
	if err != nil {
		t.Fatalf("LoadMesh(obj): %v", err)
	}
	if len(m.Faces) != 6 {
		t.Errorf("expected 6 faces, got %d", len(m.Faces))
	}
	if len(materials) != 2 || materials[1] != "brass" {
		t.Errorf("unexpected materials %v", materials)
	}

	stlPath := filepath.Join(dir, "box.stl")
	f, err = os.Create(stlPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSTL(f, "box", box); err != nil {
		t.Fatal(err)
	}
	f.Close()

	m, materials, err = LoadMesh(stlPath)
	if err != nil {
		t.Fatalf("LoadMesh(stl): %v", err)
	}
	// 12 triangles welded back onto the 8 corners
	if len(m.Vertices) != 8 || len(m.Faces) != 12 {
		t.Errorf("expected 8 vertices and 12 faces, got %d and %d", len(m.Vertices), len(m.Faces))
	}
	if materials != nil {
		t.Errorf("STL has no materials, got %v", materials)
	}

	if _, _, err := LoadMesh(filepath.Join(dir, "box.fbx")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, _, err := LoadMesh(filepath.Join(dir, "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}
