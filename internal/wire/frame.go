package wire

import (
	gomath "math"
	"math/rand/v2"
	"time"

	"github.com/Faultbox/wirevis/pkg/math"
)

// jitterScale converts the jitter setting into a scene-unit offset bound.
const jitterScale = 0.01

// Placement positions one template instance on an edge. Transform carries the
// rotation and the translation to the edge midpoint; the remaining fields
// adjust template vertices in the local frame before it is applied.
type Placement struct {
	Transform  math.Mat4
	HalfLength float64
	Extension  float64
	Twist      float64     // radians about local +Z, high end only
	Offsets    []math.Vec2 // local XY jitter per template vertex, nil when off
}

// Local returns template vertex i in the instance frame: poles moved to
// ±(half length + extension), high end twisted, jitter added.
func (p Placement) Local(t *Template, i int) math.Vec3 {
	v := t.Vertices[i]
	high := t.IsHigh(i)

	z := -(p.HalfLength + p.Extension)
	if high {
		z = -z
	}
	xy := v.XY()
	if high && p.Twist != 0 {
		xy = xy.Rotate(p.Twist)
	}
	if p.Offsets != nil {
		xy = xy.Add(p.Offsets[i])
	}
	return math.Vec3{X: xy.X, Y: xy.Y, Z: z}
}

// Solver computes placements. Its random source drives jitter; two solvers
// built from the same non-zero seed produce identical placements.
type Solver struct {
	rng *rand.Rand
}

// NewSolver creates a solver. A zero seed draws one from the clock.
func NewSolver(seed uint64) *Solver {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Solver{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Solve returns the placement that stretches t across e.
//
// The template axis (+Z) is turned onto the direction from the midpoint to
// endpoint A by the shortest arc, then rolled about that direction so the
// template's +X faces the edge's surface normal. Zero-length edges keep the
// identity orientation instead of normalising a zero vector.
func (s *Solver) Solve(e SelectedEdge, set Settings, t *Template) Placement {
	dir := e.A.Sub(e.Mid).Normalize()
	rot := math.QuatIdentity()
	if dir != (math.Vec3{}) {
		rot = orientation(dir, e.Normal)
	}

	p := Placement{
		Transform:  math.Translate(e.Mid).Mul(rot.ToMat4()),
		HalfLength: e.Length / 2,
		Extension:  set.ExtensionFor(e.Length),
	}
	if set.TwistDeg > 0 {
		p.Twist = set.TwistDeg * gomath.Pi / 180
	}
	if set.Jitter > 0 {
		p.Offsets = s.jitter(t, set)
	}
	return p
}

func orientation(dir, normal math.Vec3) math.Quat {
	primary := math.QuatBetween(math.UnitZ, dir)

	proj := normal.Sub(dir.Scale(normal.Dot(dir)))
	if proj.Length() < 1e-9 {
		return primary
	}
	proj = proj.Normalize()

	ref := primary.Rotate(math.UnitX)
	roll := gomath.Atan2(dir.Dot(ref.Cross(proj)), ref.Dot(proj))
	return math.QuatFromAxisAngle(dir, roll).Mul(primary)
}

func (s *Solver) jitter(t *Template, set Settings) []math.Vec2 {
	amp := set.Jitter * jitterScale
	offsets := make([]math.Vec2, len(t.Vertices))

	if set.JitterMode == JitterPerVertex {
		for i := range offsets {
			offsets[i] = s.offset(amp)
		}
		return offsets
	}

	low, high := s.offset(amp), s.offset(amp)
	for i := range offsets {
		if t.IsHigh(i) {
			offsets[i] = high
		} else {
			offsets[i] = low
		}
	}
	return offsets
}

func (s *Solver) offset(amp float64) math.Vec2 {
	return math.Vec2{
		X: (s.rng.Float64()*2 - 1) * amp,
		Y: (s.rng.Float64()*2 - 1) * amp,
	}
}
