package wire

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/wirevis/pkg/math"
)

const eps = 1e-9

func edgeBetween(a, b, normal math.Vec3) SelectedEdge {
	return SelectedEdge{
		A:      a,
		B:      b,
		Mid:    a.Midpoint(b),
		Length: a.Distance(b),
		Normal: normal,
		Faces:  2,
	}
}

func world(t *Template, p Placement, i int) math.Vec3 {
	return p.Transform.TransformPoint(p.Local(t, i))
}

func TestPolesLandOnEndpoints(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	s := DefaultSettings()

	for _, tt := range []struct {
		name string
		a, b math.Vec3
	}{
		{"along +Z", math.Vec3{Z: 1}, math.Vec3{}},
		{"along -Z", math.Vec3{Z: -0.5}, math.Vec3{Z: 0.5}},
		{"along X", math.Vec3{X: 2}, math.Vec3{X: -1}},
		{"oblique", math.Vec3{X: 0.3, Y: 0.2, Z: 0.1}, math.Vec3{X: -0.1, Y: 0.4, Z: -0.2}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			e := edgeBetween(tt.a, tt.b, math.Vec3{})
			p := NewSolver(1).Solve(e, s, tmpl)

			assert.True(t, world(tmpl, p, HighPole).ApproxEqual(tt.a, eps), "high pole at A")
			assert.True(t, world(tmpl, p, LowPole).ApproxEqual(tt.b, eps), "low pole at B")

			for i := range tmpl.Vertices {
				// every vertex sits radius away from the edge line
				v := world(tmpl, p, i)
				if i == LowPole || i == HighPole {
					continue
				}
				dir := tt.a.Sub(tt.b).Normalize()
				rel := v.Sub(e.Mid)
				radial := rel.Sub(dir.Scale(rel.Dot(dir)))
				assert.InDelta(t, tmpl.Radius, radial.Length(), eps)
			}
		})
	}
}

func TestRingFacesNormal(t *testing.T) {
	tmpl := BuildTemplate(4, 0.01)
	a, b := math.Vec3{X: 1, Y: 1}, math.Vec3{X: -1, Y: 1}
	normal := math.Vec3{Y: 1, Z: 1}.Normalize()

	p := NewSolver(1).Solve(edgeBetween(a, b, normal), DefaultSettings(), tmpl)

	// ring vertex 0 lies on local +X
	v := world(tmpl, p, ringBase)
	radial := v.Sub(b)
	assert.True(t, radial.Normalize().ApproxEqual(normal, eps), "got %v", radial)
}

func TestRollUsesProjectedNormal(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	a, b := math.Vec3{Z: 1}, math.Vec3{Z: -1}
	// normal tilted towards the edge direction still rolls towards +Y
	normal := math.Vec3{Y: 1, Z: 1}.Normalize()

	p := NewSolver(1).Solve(edgeBetween(a, b, normal), DefaultSettings(), tmpl)
	radial := world(tmpl, p, ringBase).Sub(b)
	assert.True(t, radial.Normalize().ApproxEqual(math.UnitY, eps), "got %v", radial)
}

func TestNormalAlongEdgeSkipsRoll(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	a, b := math.Vec3{Z: 1}, math.Vec3{Z: -1}

	p := NewSolver(1).Solve(edgeBetween(a, b, math.UnitZ), DefaultSettings(), tmpl)
	radial := world(tmpl, p, ringBase).Sub(b)
	assert.True(t, radial.Normalize().ApproxEqual(math.UnitX, eps), "got %v", radial)
}

func TestZeroLengthEdgeKeepsIdentity(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	point := math.Vec3{X: 3}
	p := NewSolver(1).Solve(edgeBetween(point, point, math.UnitY), DefaultSettings(), tmpl)

	for i := range tmpl.Vertices {
		v := world(tmpl, p, i)
		assert.False(t, gomath.IsNaN(v.X) || gomath.IsNaN(v.Y) || gomath.IsNaN(v.Z))
	}
}

func TestExtension(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	e := edgeBetween(math.Vec3{Z: 0.005}, math.Vec3{Z: -0.005}, math.Vec3{}) // 10 mm

	s := DefaultSettings()
	s.Extend = 1

	s.ExtendMode = ExtendAbsolute
	p := NewSolver(1).Solve(e, s, tmpl)
	span := world(tmpl, p, HighPole).Distance(world(tmpl, p, LowPole))
	assert.InDelta(t, 0.012, span, eps)

	s.ExtendMode = ExtendRelative
	p = NewSolver(1).Solve(e, s, tmpl)
	span = world(tmpl, p, HighPole).Distance(world(tmpl, p, LowPole))
	assert.InDelta(t, 0.010+2*gomath.Sqrt(10)/1000, span, eps)

	// the whole end group moves with its pole
	for i := range tmpl.Vertices {
		z := world(tmpl, p, i).Z
		assert.InDelta(t, span/2, gomath.Abs(z), eps)
	}
}

func TestTwistRotatesHighEndOnly(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	e := edgeBetween(math.Vec3{Z: 1}, math.Vec3{Z: -1}, math.Vec3{})

	s := DefaultSettings()
	s.TwistDeg = 90
	p := NewSolver(1).Solve(e, s, tmpl)
	require.InDelta(t, gomath.Pi/2, p.Twist, eps)

	for i := 0; i < tmpl.Segments; i++ {
		low := p.Local(tmpl, tmpl.lowRing(i))
		assert.True(t, low.XY() == tmpl.Vertices[tmpl.lowRing(i)].XY(), "low ring %d moved", i)

		high := p.Local(tmpl, tmpl.highRing(i)).XY()
		want := tmpl.Vertices[tmpl.highRing(i)].XY().Rotate(gomath.Pi / 2)
		assert.InDelta(t, want.X, high.X, eps)
		assert.InDelta(t, want.Y, high.Y, eps)
	}
}

func TestJitterPerEdge(t *testing.T) {
	tmpl := BuildTemplate(5, 0.01)
	e := edgeBetween(math.Vec3{Z: 1}, math.Vec3{Z: -1}, math.UnitX)

	s := DefaultSettings()
	s.Jitter = 2
	bound := s.Jitter * jitterScale

	solver := NewSolver(42)
	for n := 0; n < 50; n++ {
		p := solver.Solve(e, s, tmpl)
		require.Len(t, p.Offsets, len(tmpl.Vertices))
		for i, o := range p.Offsets {
			assert.LessOrEqual(t, gomath.Abs(o.X), bound)
			assert.LessOrEqual(t, gomath.Abs(o.Y), bound)
			// end caps shift rigidly
			ref := LowPole
			if tmpl.IsHigh(i) {
				ref = HighPole
			}
			assert.Equal(t, p.Offsets[ref], o)
		}
	}
}

func TestJitterPerVertex(t *testing.T) {
	tmpl := BuildTemplate(5, 0.01)
	e := edgeBetween(math.Vec3{Z: 1}, math.Vec3{Z: -1}, math.UnitX)

	s := DefaultSettings()
	s.Jitter = 1
	s.JitterMode = JitterPerVertex

	p := NewSolver(7).Solve(e, s, tmpl)
	distinct := map[math.Vec2]bool{}
	for _, o := range p.Offsets {
		distinct[o] = true
	}
	assert.Len(t, distinct, len(tmpl.Vertices))
}

func TestJitterIsSeeded(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	e := edgeBetween(math.Vec3{Z: 1}, math.Vec3{Z: -1}, math.UnitX)
	s := DefaultSettings()
	s.Jitter = 1

	first := NewSolver(99).Solve(e, s, tmpl)
	second := NewSolver(99).Solve(e, s, tmpl)
	assert.Equal(t, first.Offsets, second.Offsets)

	other := NewSolver(100).Solve(e, s, tmpl)
	assert.NotEqual(t, first.Offsets, other.Offsets)
}

func TestNoJitterNoOffsets(t *testing.T) {
	tmpl := BuildTemplate(3, 0.01)
	e := edgeBetween(math.Vec3{Z: 1}, math.Vec3{Z: -1}, math.UnitX)
	assert.Nil(t, NewSolver(1).Solve(e, DefaultSettings(), tmpl).Offsets)
}
