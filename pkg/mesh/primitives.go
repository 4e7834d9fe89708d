package mesh

import "github.com/Faultbox/wirevis/pkg/math"

// Box returns an axis-aligned box centred on the origin with outward-wound quad faces.
func Box(size math.Vec3) *Mesh {
	h := size.Scale(0.5)
	m := New()
	for _, c := range [8][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	} {
		m.AddVertex(math.Vec3{X: c[0] * h.X, Y: c[1] * h.Y, Z: c[2] * h.Z})
	}
	m.AddFace(0, 0, 3, 2, 1) // -Z
	m.AddFace(0, 4, 5, 6, 7) // +Z
	m.AddFace(0, 0, 1, 5, 4) // -Y
	m.AddFace(0, 2, 3, 7, 6) // +Y
	m.AddFace(0, 1, 2, 6, 5) // +X
	m.AddFace(0, 0, 4, 7, 3) // -X
	return m
}

// Grid returns a flat nx by ny grid of quads in the XY plane, facing +Z.
// Its outer boundary edges each have a single incident face.
func Grid(nx, ny int, cell float64) *Mesh {
	m := New()
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			m.AddVertex(math.Vec3{X: float64(x) * cell, Y: float64(y) * cell})
		}
	}
	row := nx + 1
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			i := y*row + x
			m.AddFace(0, i, i+1, i+row+1, i+row)
		}
	}
	return m
}
