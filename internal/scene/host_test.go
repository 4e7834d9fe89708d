package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/wirevis/internal/session"
	"github.com/Faultbox/wirevis/internal/wire"
	"github.com/Faultbox/wirevis/pkg/formats"
	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

func writeMesh(t *testing.T, path string, m *mesh.Mesh) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, formats.WriteOBJ(f, &formats.OBJ{Mesh: m}))
}

func writeScene(t *testing.T, path, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
}

func newHost(t *testing.T, src string, format string) (*Host, string) {
	t.Helper()
	dir := t.TempDir()
	writeMesh(t, filepath.Join(dir, "meshes", "frame.obj"), mesh.Box(math.Vec3{X: 1, Y: 2, Z: 1}))
	path := filepath.Join(dir, "scene.yaml")
	writeScene(t, path, src)

	h, err := NewHost(path, wire.DefaultSettings(), OutputOptions{Dir: filepath.Join(dir, "out"), Format: format}, nil)
	require.NoError(t, err)
	return h, dir
}

func TestNewHostRejectsFormat(t *testing.T) {
	_, err := NewHost("scene.yaml", wire.DefaultSettings(), OutputOptions{Format: "fbx"}, nil)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSnapshotFiltersObjects(t *testing.T) {
	h, dir := newHost(t, frameScene, FormatOBJ)

	_, err := h.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)

	change, err := h.Reload()
	require.NoError(t, err)
	assert.Equal(t, session.GeometryChange, change)

	scene, err := h.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "harness", scene.Output)
	require.Len(t, scene.Objects, 1, "hidden and disabled objects are skipped")
	assert.Equal(t, "frame", scene.Objects[0].Name)
	assert.Len(t, scene.Objects[0].Mesh.Faces, 6)
	assert.Equal(t, []string{filepath.Join(dir, "meshes", "frame.obj")}, h.MeshPaths())

	again, err := h.Snapshot()
	require.NoError(t, err)
	assert.Same(t, scene.Objects[0].Mesh, again.Objects[0].Mesh, "unchanged mesh files are cached")

	change, err = h.Reload()
	require.NoError(t, err)
	assert.Equal(t, session.NoChange, change)
}

func TestSnapshotReloadsChangedMesh(t *testing.T) {
	h, dir := newHost(t, frameScene, FormatOBJ)
	_, err := h.Reload()
	require.NoError(t, err)

	first, err := h.Snapshot()
	require.NoError(t, err)

	writeMesh(t, filepath.Join(dir, "meshes", "frame.obj"), mesh.Grid(3, 3, 0.5))
	second, err := h.Snapshot()
	require.NoError(t, err)
	assert.NotSame(t, first.Objects[0].Mesh, second.Objects[0].Mesh)
	assert.Len(t, second.Objects[0].Mesh.Faces, 9)
}

func TestSnapshotMissingMesh(t *testing.T) {
	h, dir := newHost(t, frameScene, FormatOBJ)
	require.NoError(t, os.Remove(filepath.Join(dir, "meshes", "frame.obj")))
	_, err := h.Reload()
	require.NoError(t, err)

	_, err = h.Snapshot()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReloadKeepsDocumentOnError(t *testing.T) {
	h, _ := newHost(t, frameScene, FormatOBJ)
	_, err := h.Reload()
	require.NoError(t, err)

	writeScene(t, h.Path(), "objects: [{name: a}]")
	_, err = h.Reload()
	assert.ErrorIs(t, err, ErrNoGeometry)
	assert.Equal(t, "harness", h.Document().Output)
}

func TestEnsureOutputValidatesName(t *testing.T) {
	h, _ := newHost(t, frameScene, FormatOBJ)
	for _, name := range []string{"", "../escape", "a/b"} {
		_, err := h.EnsureOutput(name)
		assert.ErrorIs(t, err, ErrOutputName, name)
	}
	assert.ErrorIs(t, h.EnsureMaterials("nowhere", nil), ErrUnknownOutput)
}

func TestPublishOBJ(t *testing.T) {
	h, dir := newHost(t, frameScene, FormatOBJ)
	_, err := h.Reload()
	require.NoError(t, err)
	scene, err := h.Snapshot()
	require.NoError(t, err)

	out, _, err := wire.NewBuilder(1, nil).Rebuild(scene)
	require.NoError(t, err)

	id, err := h.EnsureOutput(scene.Output)
	require.NoError(t, err)
	require.NoError(t, h.ReplaceMesh(id, out))
	require.NoError(t, h.EnsureMaterials(id, out.Slots))

	path := h.OutputPath(id)
	assert.Equal(t, filepath.Join(dir, "out", "harness.obj"), path)
	obj, err := formats.ParseOBJFile(path)
	require.NoError(t, err)
	assert.Equal(t, "harness.mtl", obj.MaterialLib)
	assert.Equal(t, []string{"wire_frame"}, obj.Materials)
	assert.Len(t, obj.Mesh.Faces, len(out.Faces))
	assert.Len(t, obj.Mesh.Vertices, len(out.Vertices))

	mtl, err := os.ReadFile(filepath.Join(dir, "out", "harness.mtl"))
	require.NoError(t, err)
	assert.Contains(t, string(mtl), "newmtl wire_frame\nKd 1 0 0\n")

	// colour-only refresh rewrites the library and leaves the mesh alone
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	slots := append([]wire.MaterialSlot(nil), out.Slots...)
	slots[0].Colour = wire.Colour{0, 1, 0, 1}
	require.NoError(t, h.EnsureMaterials(id, slots))

	mtl, err = os.ReadFile(filepath.Join(dir, "out", "harness.mtl"))
	require.NoError(t, err)
	assert.Contains(t, string(mtl), "Kd 0 1 0")
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temporary file %s left behind", e.Name())
	}
}

func TestReplaceMeshFailureKeepsOutput(t *testing.T) {
	h, dir := newHost(t, frameScene, FormatOBJ)
	_, err := h.Reload()
	require.NoError(t, err)
	scene, err := h.Snapshot()
	require.NoError(t, err)
	out, _, err := wire.NewBuilder(1, nil).Rebuild(scene)
	require.NoError(t, err)
	id, err := h.EnsureOutput(scene.Output)
	require.NoError(t, err)
	require.NoError(t, h.ReplaceMesh(id, out))

	mtlPath := filepath.Join(dir, "out", "harness.mtl")
	mtlBefore, err := os.ReadFile(mtlPath)
	require.NoError(t, err)

	// a directory in place of the mesh file makes the mesh rename fail
	objPath := h.OutputPath(id)
	require.NoError(t, os.Remove(objPath))
	require.NoError(t, os.MkdirAll(filepath.Join(objPath, "blocked"), 0755))

	next := *out
	next.Slots = append([]wire.MaterialSlot(nil), out.Slots...)
	next.Slots[0].Colour = wire.Colour{0, 1, 0, 1}
	assert.Error(t, h.ReplaceMesh(id, &next))

	mtlAfter, err := os.ReadFile(mtlPath)
	require.NoError(t, err)
	assert.Equal(t, mtlBefore, mtlAfter, "material library is only replaced with its mesh")

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temporary file %s left behind", e.Name())
	}
}

func TestPublishSTL(t *testing.T) {
	h, dir := newHost(t, frameScene, FormatSTL)
	_, err := h.Reload()
	require.NoError(t, err)
	scene, err := h.Snapshot()
	require.NoError(t, err)

	out, _, err := wire.NewBuilder(1, nil).Rebuild(scene)
	require.NoError(t, err)
	id, err := h.EnsureOutput(scene.Output)
	require.NoError(t, err)
	require.NoError(t, h.ReplaceMesh(id, out))
	require.NoError(t, h.EnsureMaterials(id, out.Slots))

	stl, err := formats.ParseSTLFile(filepath.Join(dir, "out", "harness.stl"))
	require.NoError(t, err)
	assert.Len(t, stl.Triangles, len(out.Faces))

	_, err = os.Stat(filepath.Join(dir, "out", "harness.mtl"))
	assert.ErrorIs(t, err, os.ErrNotExist, "STL output has no material library")
}
