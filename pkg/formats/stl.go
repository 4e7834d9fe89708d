package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	stdmath "math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/wirevis/pkg/math"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTLFacet  = errors.New("invalid STL facet")
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50
)

// STL is a triangle soup read from an STL file.
type STL struct {
	Name      string
	Triangles [][3]math.Vec3
}

// Mesh welds the triangle soup into an indexed mesh with shared edges.
func (s *STL) Mesh(tolerance float64) *mesh.Mesh {
	soup := mesh.New()
	for _, tri := range s.Triangles {
		a := soup.AddVertex(tri[0])
		b := soup.AddVertex(tri[1])
		c := soup.AddVertex(tri[2])
		soup.AddFace(0, a, b, c)
	}
	return soup.Weld(tolerance)
}

// ParseSTL parses STL data, detecting ASCII or binary encoding.
// Binary files may also start with "solid", so the binary size check wins.
func ParseSTL(data []byte) (*STL, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return len(data) == stlHeaderSize+4+int(count)*stlFacetSize
}

func parseASCIISTL(data []byte) (*STL, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	stl := &STL{}

	var corners []math.Vec3
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				stl.Name = strings.Join(fields[1:], " ")
			}
		case "vertex":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			corners = append(corners, v)
		case "endfacet":
			if len(corners) != 3 {
				return nil, fmt.Errorf("line %d: %w: %d vertices", line, ErrInvalidSTLFacet, len(corners))
			}
			stl.Triangles = append(stl.Triangles, [3]math.Vec3{corners[0], corners[1], corners[2]})
			corners = corners[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ASCII STL: %w", err)
	}
	return stl, nil
}

func parseBinarySTL(data []byte) (*STL, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedSTLData)
	}
	stl := &STL{Name: strings.TrimSpace(string(bytes.TrimRight(data[:stlHeaderSize], "\x00")))}

	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	body := data[stlHeaderSize+4:]
	if uint64(len(body)) < uint64(count)*stlFacetSize {
		return nil, fmt.Errorf("%w: %d facets declared, %d bytes available", ErrTruncatedSTLData, count, len(body))
	}

	stl.Triangles = make([][3]math.Vec3, count)
	for i := range stl.Triangles {
		facet := body[i*stlFacetSize:]
		// skip the 12-byte normal, recomputed from winding downstream
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			stl.Triangles[i][c] = math.Vec3{
				X: float64(readFloat32(facet[off:])),
				Y: float64(readFloat32(facet[off+4:])),
				Z: float64(readFloat32(facet[off+8:])),
			}
		}
	}
	return stl, nil
}

func readFloat32(b []byte) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(b))
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("parsing coordinate %q: %w", fields[i], err)
		}
		c[i] = f
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// WriteSTL writes m as binary STL. Polygons are fan-triangulated.
func WriteSTL(w io.Writer, name string, m *mesh.Mesh) error {
	header := make([]byte, stlHeaderSize)
	copy(header, name)

	var tris [][3]int
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f.Verts); i++ {
			tris = append(tris, [3]int{f.Verts[0], f.Verts[i], f.Verts[i+1]})
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("writing STL header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return fmt.Errorf("writing STL facet count: %w", err)
	}

	facet := make([]float32, 12)
	for _, t := range tris {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for i, v := range []math.Vec3{n, a, b, c} {
			facet[i*3] = float32(v.X)
			facet[i*3+1] = float32(v.Y)
			facet[i*3+2] = float32(v.Z)
		}
		if err := binary.Write(bw, binary.LittleEndian, facet); err != nil {
			return fmt.Errorf("writing STL facet: %w", err)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("writing STL attribute: %w", err)
		}
	}
	return bw.Flush()
}
