package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/wirevis/internal/wire"
	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

func object(name string, m *mesh.Mesh, set wire.Settings) wire.SourceObject {
	return wire.SourceObject{Name: name, World: math.Identity(), Mesh: m, Settings: set}
}

func TestBuild(t *testing.T) {
	cubeSet := wire.DefaultSettings()
	cubeSet.Extend = 1
	cubeSet.ExtendMode = wire.ExtendAbsolute

	slabSet := wire.DefaultSettings()
	slabSet.AngleDeg = 45

	r, err := Build(wire.Scene{Objects: []wire.SourceObject{
		object("cube", mesh.Box(math.Vec3{X: 1, Y: 1, Z: 1}), cubeSet),
		object("slab", mesh.Box(math.Vec3{X: 2, Y: 1, Z: 1}), slabSet),
	}})
	require.NoError(t, err)
	require.Len(t, r.Objects, 2)

	cube := r.Objects[0]
	assert.Equal(t, 12, cube.Wires)
	assert.InDelta(t, 12000, cube.TotalMM, 1e-6)
	assert.InDelta(t, 1000, cube.MeanMM, 1e-9)
	assert.InDelta(t, 0, cube.StdDevMM, 1e-9)
	assert.InDelta(t, 12024, cube.HarnessMM, 1e-6)
	assert.InDelta(t, 90, cube.MeanAngle, 1e-9)

	slab := r.Objects[1]
	assert.Equal(t, 12, slab.Wires)
	assert.InDelta(t, 16000, slab.TotalMM, 1e-6)
	assert.InDelta(t, 1000, slab.MinMM, 1e-9)
	assert.InDelta(t, 2000, slab.MaxMM, 1e-9)
	assert.Greater(t, slab.StdDevMM, 0.0)

	assert.Equal(t, 24, r.Total.Wires)
	assert.InDelta(t, 28000, r.Total.TotalMM, 1e-6)
	assert.InDelta(t, 2000, r.Total.MaxMM, 1e-9)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(wire.Scene{})
	assert.ErrorIs(t, err, wire.ErrNoSourceObjects)

	bad := wire.DefaultSettings()
	bad.DiameterMM = 0
	_, err = Build(wire.Scene{Objects: []wire.SourceObject{object("bad", mesh.Box(math.Vec3{X: 1, Y: 1, Z: 1}), bad)}})
	assert.ErrorIs(t, err, wire.ErrDiameterRange)
}

func TestWrite(t *testing.T) {
	r, err := Build(wire.Scene{Objects: []wire.SourceObject{
		object("cube", mesh.Box(math.Vec3{X: 1, Y: 1, Z: 1}), wire.DefaultSettings()),
	}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "harness mm")
	assert.Contains(t, lines[1], "cube")
	assert.Contains(t, lines[2], "total")
	assert.Contains(t, lines[2], "12000.0")
}
