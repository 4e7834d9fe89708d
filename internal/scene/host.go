package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/wirevis/internal/session"
	"github.com/Faultbox/wirevis/internal/wire"
	"github.com/Faultbox/wirevis/pkg/formats"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

// Output formats.
const (
	FormatOBJ = "obj"
	FormatSTL = "stl"
)

// Host errors.
var (
	ErrNotLoaded     = errors.New("scene has not been loaded")
	ErrOutputName    = errors.New("output name must be a plain file name")
	ErrUnknownOutput = errors.New("output was not created")
	ErrFormat        = errors.New("unknown output format")
)

// OutputOptions says where and how wires are written.
type OutputOptions struct {
	Dir    string
	Format string
}

type cachedMesh struct {
	modTime time.Time
	size    int64
	mesh    *mesh.Mesh
}

var _ wire.Host = (*Host)(nil)

// Host serves a scene file to the wire builder and writes its results.
// It is safe for use by the session loop and a file watcher at once.
type Host struct {
	path     string
	defaults wire.Settings
	out      OutputOptions
	log      *zap.Logger

	mu      sync.Mutex
	doc     *Document
	meshes  map[string]cachedMesh
	outputs map[wire.OutputID][]wire.MaterialSlot
}

// NewHost creates a host for the scene file at path. Objects without a wire
// block use defaults. Nothing is read until Reload.
func NewHost(path string, defaults wire.Settings, out OutputOptions, log *zap.Logger) (*Host, error) {
	switch out.Format {
	case "":
		out.Format = FormatOBJ
	case FormatOBJ, FormatSTL:
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, out.Format)
	}
	if out.Dir == "" {
		out.Dir = filepath.Dir(path)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		path:     path,
		defaults: defaults,
		out:      out,
		log:      log,
		meshes:   make(map[string]cachedMesh),
		outputs:  make(map[wire.OutputID][]wire.MaterialSlot),
	}, nil
}

// Path returns the scene file path.
func (h *Host) Path() string {
	return h.path
}

// Reload re-reads the scene file and classifies the edit against the
// previous version. On error the previous document stays in effect.
func (h *Host) Reload() (session.Change, error) {
	doc, err := Load(h.path, h.defaults)
	if err != nil {
		return session.NoChange, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	change := Classify(h.doc, doc)
	h.doc = doc
	return change, nil
}

// Document returns the current scene document, nil before the first Reload.
func (h *Host) Document() *Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doc
}

// MeshPaths returns the resolved mesh file of every object, in object order.
func (h *Host) MeshPaths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doc == nil {
		return nil
	}
	var paths []string
	for _, o := range h.doc.Objects {
		if o.Mesh != "" {
			paths = append(paths, h.resolve(o.Mesh))
		}
	}
	return paths
}

func (h *Host) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(h.path), p)
}

// Snapshot returns the participating objects with their meshes loaded.
// Mesh files are re-read only when their size or modification time changed.
func (h *Host) Snapshot() (wire.Scene, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.doc == nil {
		return wire.Scene{}, ErrNotLoaded
	}
	scene := wire.Scene{Output: h.doc.Output, Override: h.doc.Override}
	for _, o := range h.doc.Objects {
		if !o.Participates() {
			continue
		}
		m, err := h.meshOf(o)
		if err != nil {
			return wire.Scene{}, fmt.Errorf("object %q: %w", o.Name, err)
		}
		scene.Objects = append(scene.Objects, wire.SourceObject{
			Name:     o.Name,
			World:    o.Transform.Matrix(),
			Mesh:     m,
			Settings: o.Wire,
			Colour:   o.Colour,
		})
	}
	return scene, nil
}

func (h *Host) meshOf(o Object) (*mesh.Mesh, error) {
	if o.Primitive != nil {
		return o.Primitive.Mesh()
	}

	path := h.resolve(o.Mesh)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if c, ok := h.meshes[path]; ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.mesh, nil
	}

	m, _, err := formats.LoadMesh(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	h.meshes[path] = cachedMesh{modTime: info.ModTime(), size: info.Size(), mesh: m}
	h.log.Debug("loaded mesh",
		zap.String("path", path),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Faces)),
	)
	return m, nil
}

// EnsureOutput prepares the output directory for name.
func (h *Host) EnsureOutput(name string) (wire.OutputID, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrOutputName, name)
	}
	if err := os.MkdirAll(h.out.Dir, 0755); err != nil {
		return "", err
	}

	id := wire.OutputID(name)
	h.mu.Lock()
	if _, ok := h.outputs[id]; !ok {
		h.outputs[id] = nil
	}
	h.mu.Unlock()
	return id, nil
}

// OutputPath returns the mesh file written for id.
func (h *Host) OutputPath(id wire.OutputID) string {
	return filepath.Join(h.out.Dir, string(id)+"."+h.out.Format)
}

func (h *Host) materialPath(id wire.OutputID) string {
	return filepath.Join(h.out.Dir, string(id)+".mtl")
}

// EnsureMaterials records the slot table for id and, for OBJ output,
// rewrites its material library. The mesh file is left alone.
func (h *Host) EnsureMaterials(id wire.OutputID, slots []wire.MaterialSlot) error {
	h.mu.Lock()
	if _, ok := h.outputs[id]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownOutput, id)
	}
	h.outputs[id] = slots
	h.mu.Unlock()

	if h.out.Format != FormatOBJ {
		return nil
	}
	return writeFile(h.materialPath(id), h.writeMaterials(slots))
}

func (h *Host) writeMaterials(slots []wire.MaterialSlot) func(io.Writer) error {
	materials := make([]formats.Material, len(slots))
	for i, s := range slots {
		materials[i] = formats.Material{Name: s.Name, Colour: s.Colour}
	}
	return func(w io.Writer) error {
		return formats.WriteMTL(w, materials)
	}
}

// ReplaceMesh writes m as the new content of id. For OBJ output the mesh and
// its material library are both written before either replaces the published
// pair, so a failed write leaves the previous output in place.
func (h *Host) ReplaceMesh(id wire.OutputID, m *wire.OutputMesh) error {
	h.mu.Lock()
	_, ok := h.outputs[id]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, id)
	}

	path := h.OutputPath(id)
	body, err := stage(path, func(w io.Writer) error {
		if h.out.Format == FormatSTL {
			return formats.WriteSTL(w, string(id), m.Mesh())
		}
		names := make([]string, len(m.Slots))
		for i, s := range m.Slots {
			names[i] = s.Name
		}
		return formats.WriteOBJ(w, &formats.OBJ{
			Name:        string(id),
			MaterialLib: filepath.Base(h.materialPath(id)),
			Materials:   names,
			Mesh:        m.Mesh(),
		})
	})
	if err != nil {
		return err
	}
	files := []stagedFile{body}
	if h.out.Format == FormatOBJ {
		lib, err := stage(h.materialPath(id), h.writeMaterials(m.Slots))
		if err != nil {
			discard(files...)
			return err
		}
		files = append(files, lib)
	}
	if err := commit(files...); err != nil {
		return err
	}

	h.mu.Lock()
	h.outputs[id] = m.Slots
	h.mu.Unlock()
	h.log.Debug("wrote wires",
		zap.String("path", path),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Faces)),
	)
	return nil
}

// stagedFile is a fully written temporary file waiting to replace path.
type stagedFile struct {
	tmp  string
	path string
}

// stage writes a hidden temporary file next to path.
func stage(path string, write func(io.Writer) error) (stagedFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return stagedFile{}, err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return stagedFile{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return stagedFile{}, err
	}
	return stagedFile{tmp: tmp.Name(), path: path}, nil
}

// commit renames staged files into place in order, stopping at the first
// failure. Files not yet renamed are removed.
func commit(files ...stagedFile) error {
	for i, f := range files {
		if err := os.Rename(f.tmp, f.path); err != nil {
			discard(files[i:]...)
			return fmt.Errorf("replacing %s: %w", f.path, err)
		}
	}
	return nil
}

func discard(files ...stagedFile) {
	for _, f := range files {
		os.Remove(f.tmp)
	}
}

// writeFile replaces path atomically so readers never see a partial file.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := stage(path, write)
	if err != nil {
		return err
	}
	return commit(f)
}
