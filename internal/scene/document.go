// Package scene is a file-backed wire host. A YAML scene file lists the source
// objects and their wire settings; generated wires are written to an output
// directory as OBJ with an MTL library, or as binary STL.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/wirevis/internal/session"
	"github.com/Faultbox/wirevis/internal/wire"
	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

// DefaultOutput names the output object when the scene does not.
const DefaultOutput = "wires"

// Scene file errors.
var (
	ErrNoName           = errors.New("object has no name")
	ErrDuplicateName    = errors.New("object name is used twice")
	ErrNoGeometry       = errors.New("object needs either mesh or primitive")
	ErrBothGeometry     = errors.New("object sets both mesh and primitive")
	ErrUnknownPrimitive = errors.New("unknown primitive type")
	ErrColourRange      = errors.New("colour component outside [0, 1]")
)

// DefaultColour is the wire colour of objects that set none.
var DefaultColour = wire.Colour{0, 0, 0, 1}

// Document is a parsed scene file with defaults applied.
type Document struct {
	Output   string
	Override *wire.Override // nil unless enabled
	Objects  []Object
}

// Object is one source object of the scene.
type Object struct {
	Name      string
	Mesh      string // path, relative to the scene file
	Primitive *Primitive
	Visible   bool
	Display   bool // wires enabled for this object
	Transform Transform
	Colour    wire.Colour
	Wire      wire.Settings
}

// Participates reports whether the object is handed to the wire builder.
func (o Object) Participates() bool {
	return o.Visible && o.Display
}

// Transform places an object in the world. Rotation is in degrees, applied
// X then Y then Z.
type Transform struct {
	Translate [3]float64 `yaml:"translate"`
	Rotate    [3]float64 `yaml:"rotate"`
	Scale     [3]float64 `yaml:"scale"`
}

// Matrix returns the object-to-world matrix.
func (t Transform) Matrix() math.Mat4 {
	deg := gomath.Pi / 180
	return math.TRS(
		math.Vec3{X: t.Translate[0], Y: t.Translate[1], Z: t.Translate[2]},
		math.Vec3{X: t.Rotate[0] * deg, Y: t.Rotate[1] * deg, Z: t.Rotate[2] * deg},
		math.Vec3{X: t.Scale[0], Y: t.Scale[1], Z: t.Scale[2]},
	)
}

// Primitive is generated geometry used instead of a mesh file.
type Primitive struct {
	Type  string     `yaml:"type"` // box or grid
	Size  [3]float64 `yaml:"size"`
	Cells [2]int     `yaml:"cells"`
	Cell  float64    `yaml:"cell"`
}

// Mesh builds the primitive's geometry.
func (p Primitive) Mesh() (*mesh.Mesh, error) {
	switch p.Type {
	case "box":
		size := math.Vec3{X: p.Size[0], Y: p.Size[1], Z: p.Size[2]}
		if size == (math.Vec3{}) {
			size = math.Vec3{X: 1, Y: 1, Z: 1}
		}
		return mesh.Box(size), nil
	case "grid":
		nx, ny, cell := p.Cells[0], p.Cells[1], p.Cell
		if nx <= 0 || ny <= 0 {
			nx, ny = 1, 1
		}
		if cell <= 0 {
			cell = 1
		}
		return mesh.Grid(nx, ny, cell), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, p.Type)
	}
}

type documentFile struct {
	Output   string       `yaml:"output"`
	Override overrideFile `yaml:"override"`
	Objects  []objectFile `yaml:"objects"`
}

type overrideFile struct {
	Enabled bool         `yaml:"enabled"`
	Colour  *wire.Colour `yaml:"colour"`
	Wire    yaml.Node    `yaml:"wire"`
}

type objectFile struct {
	Name      string       `yaml:"name"`
	Mesh      string       `yaml:"mesh"`
	Primitive *Primitive   `yaml:"primitive"`
	Visible   *bool        `yaml:"visible"`
	Display   *bool        `yaml:"display"`
	Transform *Transform   `yaml:"transform"`
	Colour    *wire.Colour `yaml:"colour"`
	Wire      yaml.Node    `yaml:"wire"`
}

// Parse decodes a scene document. Wire blocks are layered over defaults, so
// an object only lists the settings it changes. Settings ranges are checked
// by the builder, not here.
func Parse(data []byte, defaults wire.Settings) (*Document, error) {
	var raw documentFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	doc := &Document{Output: raw.Output}
	if doc.Output == "" {
		doc.Output = DefaultOutput
	}

	if raw.Override.Enabled {
		set, err := settings(&raw.Override.Wire, defaults)
		if err != nil {
			return nil, fmt.Errorf("override: %w", err)
		}
		colour, err := colourOr(raw.Override.Colour)
		if err != nil {
			return nil, fmt.Errorf("override: %w", err)
		}
		doc.Override = &wire.Override{Settings: set, Colour: colour}
	}

	seen := make(map[string]bool, len(raw.Objects))
	for i, o := range raw.Objects {
		if o.Name == "" {
			return nil, fmt.Errorf("object %d: %w", i, ErrNoName)
		}
		if seen[o.Name] {
			return nil, fmt.Errorf("object %q: %w", o.Name, ErrDuplicateName)
		}
		seen[o.Name] = true

		switch {
		case o.Mesh == "" && o.Primitive == nil:
			return nil, fmt.Errorf("object %q: %w", o.Name, ErrNoGeometry)
		case o.Mesh != "" && o.Primitive != nil:
			return nil, fmt.Errorf("object %q: %w", o.Name, ErrBothGeometry)
		}

		set, err := settings(&o.Wire, defaults)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}
		colour, err := colourOr(o.Colour)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}

		obj := Object{
			Name:      o.Name,
			Mesh:      o.Mesh,
			Primitive: o.Primitive,
			Visible:   o.Visible == nil || *o.Visible,
			Display:   o.Display == nil || *o.Display,
			Transform: Transform{Scale: [3]float64{1, 1, 1}},
			Colour:    colour,
			Wire:      set,
		}
		if o.Transform != nil {
			obj.Transform = *o.Transform
			if obj.Transform.Scale == ([3]float64{}) {
				obj.Transform.Scale = [3]float64{1, 1, 1}
			}
		}
		doc.Objects = append(doc.Objects, obj)
	}
	return doc, nil
}

// Load reads and parses a scene file.
func Load(path string, defaults wire.Settings) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, defaults)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	return doc, nil
}

func settings(node *yaml.Node, defaults wire.Settings) (wire.Settings, error) {
	set := defaults
	if node.Kind == 0 {
		return set, nil
	}
	// Node.Decode ignores KnownFields, so the block goes through a strict
	// decoder of its own.
	data, err := yaml.Marshal(node)
	if err != nil {
		return set, fmt.Errorf("wire settings: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil && !errors.Is(err, io.EOF) {
		return set, fmt.Errorf("wire settings: %w", err)
	}
	return set, nil
}

func colourOr(c *wire.Colour) (wire.Colour, error) {
	if c == nil {
		return DefaultColour, nil
	}
	for _, v := range c {
		if !(v >= 0 && v <= 1) {
			return wire.Colour{}, fmt.Errorf("%w: %v", ErrColourRange, *c)
		}
	}
	return *c, nil
}

// Classify reports what kind of rebuild the edit from prev to next needs.
// Edits that only touch colours need a colour refresh; anything else, object
// visibility included, needs a geometry rebuild.
func Classify(prev, next *Document) session.Change {
	if prev == nil || next == nil {
		return session.GeometryChange
	}
	if reflect.DeepEqual(prev, next) {
		return session.NoChange
	}
	if reflect.DeepEqual(withoutColours(prev), withoutColours(next)) {
		return session.ColourChange
	}
	return session.GeometryChange
}

func withoutColours(d *Document) *Document {
	out := &Document{Output: d.Output, Objects: make([]Object, len(d.Objects))}
	if d.Override != nil {
		out.Override = &wire.Override{Settings: d.Override.Settings}
	}
	for i, o := range d.Objects {
		o.Colour = wire.Colour{}
		out.Objects[i] = o
	}
	return out
}
