package wire

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

// ErrDanglingIndex is returned when a block references a vertex that does not exist yet.
var ErrDanglingIndex = errors.New("face references a vertex outside the accumulated mesh")

// MaterialSlot is one entry of the output material table.
type MaterialSlot struct {
	Name   string
	Object string // source object name, empty for the shared override slot
	Source int    // index of the object in the filtered scene, -1 for the shared override slot
	Colour Colour
}

// OutputMesh is the single generated wire mesh.
type OutputMesh struct {
	Vertices  []math.Vec3
	Faces     [][]int
	Materials []int // one slot index per face
	Slots     []MaterialSlot
}

// Mesh converts o into a polygon mesh with slot indices as face materials.
// The vertex slice is shared.
func (o *OutputMesh) Mesh() *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices: o.Vertices,
		Faces:    make([]mesh.Face, len(o.Faces)),
	}
	for i, f := range o.Faces {
		m.Faces[i] = mesh.Face{Verts: f, Material: o.Materials[i]}
	}
	return m
}

// Assembler accumulates stamped blocks across all source objects of a rebuild.
type Assembler struct {
	vertices  []math.Vec3
	faces     [][]int
	materials []int
	slots     []MaterialSlot
}

// NewAssembler creates an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Offset returns the index the next appended vertex will get.
func (a *Assembler) Offset() int {
	return len(a.vertices)
}

// Len returns the accumulated vertex and face counts.
func (a *Assembler) Len() (vertices, faces int) {
	return len(a.vertices), len(a.faces)
}

// Append adds a block. Every face index must refer to an accumulated vertex
// or one in the block itself, otherwise nothing is appended.
func (a *Assembler) Append(b Block) error {
	if len(b.Materials) != len(b.Faces) {
		return fmt.Errorf("block has %d faces but %d material tags", len(b.Faces), len(b.Materials))
	}
	limit := len(a.vertices) + len(b.Vertices)
	for i, f := range b.Faces {
		for _, v := range f {
			if v < 0 || v >= limit {
				return fmt.Errorf("face %d index %d (limit %d): %w", i, v, limit, ErrDanglingIndex)
			}
		}
	}

	a.vertices = append(a.vertices, b.Vertices...)
	a.faces = append(a.faces, b.Faces...)
	a.materials = append(a.materials, b.Materials...)
	return nil
}

// AddSlot appends a material slot and returns its index.
func (a *Assembler) AddSlot(slot MaterialSlot) int {
	a.slots = append(a.slots, slot)
	return len(a.slots) - 1
}

// Finalize hands the accumulated buffers over as an OutputMesh.
// The assembler must not be used afterwards.
func (a *Assembler) Finalize() *OutputMesh {
	out := &OutputMesh{
		Vertices:  a.vertices,
		Faces:     a.faces,
		Materials: a.materials,
		Slots:     a.slots,
	}
	*a = Assembler{}
	return out
}
