package wire

import (
	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

// SourceObject is a read-only snapshot of one participating host object.
type SourceObject struct {
	Name     string
	World    math.Mat4
	Mesh     *mesh.Mesh
	Settings Settings
	Colour   Colour
}

// Scene is everything a rebuild reads. The host has already dropped hidden
// and disabled objects. A non-nil Override replaces every object's settings.
type Scene struct {
	Output   string
	Objects  []SourceObject
	Override *Override
}

// OutputID is a stable handle to the host object receiving the wire mesh.
type OutputID string

// Host is the environment that supplies source meshes and displays the result.
type Host interface {
	// Snapshot returns the current participating objects and settings.
	Snapshot() (Scene, error)
	// EnsureOutput returns the handle for the named output object, creating it if needed.
	EnsureOutput(name string) (OutputID, error)
	// ReplaceMesh swaps the output object's mesh data for m.
	ReplaceMesh(id OutputID, m *OutputMesh) error
	// EnsureMaterials makes the output object carry exactly these slots, reusing
	// existing slots by name.
	EnsureMaterials(id OutputID, slots []MaterialSlot) error
}
