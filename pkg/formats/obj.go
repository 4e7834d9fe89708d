package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/wirevis/pkg/mesh"
)

// OBJ format errors.
var (
	ErrInvalidOBJIndex = errors.New("invalid OBJ vertex index")
	ErrInvalidOBJFace  = errors.New("OBJ face needs at least 3 vertices")
)

// OBJ is a Wavefront OBJ mesh. Face material indices refer to Materials,
// which lists usemtl names in order of first use.
type OBJ struct {
	Name        string
	MaterialLib string
	Materials   []string
	Mesh        *mesh.Mesh
}

// ParseOBJ parses OBJ text. Supported records: v, f, l, usemtl, mtllib, o.
// Texture and normal references in faces are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{Mesh: mesh.New()}
	materialIndex := make(map[string]int)
	current := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			obj.Mesh.AddVertex(v)

		case "f":
			verts, err := parseOBJRefs(fields[1:], len(obj.Mesh.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if len(verts) < 3 {
				return nil, fmt.Errorf("line %d: %w", line, ErrInvalidOBJFace)
			}
			obj.Mesh.AddFace(current, verts...)

		case "l":
			verts, err := parseOBJRefs(fields[1:], len(obj.Mesh.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			for i := 0; i+1 < len(verts); i++ {
				obj.Mesh.AddLooseEdge(verts[i], verts[i+1])
			}

		case "usemtl":
			name := strings.Join(fields[1:], " ")
			idx, ok := materialIndex[name]
			if !ok {
				idx = len(obj.Materials)
				materialIndex[name] = idx
				obj.Materials = append(obj.Materials, name)
			}
			current = idx

		case "mtllib":
			obj.MaterialLib = strings.Join(fields[1:], " ")

		case "o":
			if obj.Name == "" {
				obj.Name = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	if err := obj.Mesh.Validate(); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// parseOBJRefs resolves 1-based (or negative, relative) vertex references.
func parseOBJRefs(fields []string, count int) ([]int, error) {
	verts := make([]int, 0, len(fields))
	for _, f := range fields {
		ref, _, _ := strings.Cut(f, "/")
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, f)
		}
		switch {
		case n > 0 && n <= count:
			verts = append(verts, n-1)
		case n < 0 && -n <= count:
			verts = append(verts, count+n)
		default:
			return nil, fmt.Errorf("%w: %d of %d", ErrInvalidOBJIndex, n, count)
		}
	}
	return verts, nil
}

// WriteOBJ writes obj as text. A usemtl record is emitted whenever the face
// material changes; faces without a named material are written under no usemtl.
func WriteOBJ(w io.Writer, obj *OBJ) error {
	bw := bufio.NewWriter(w)

	if obj.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", obj.MaterialLib)
	}
	if obj.Name != "" {
		fmt.Fprintf(bw, "o %s\n", obj.Name)
	}
	for _, v := range obj.Mesh.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
	}

	current := -1
	for _, f := range obj.Mesh.Faces {
		if f.Material != current && f.Material >= 0 && f.Material < len(obj.Materials) {
			fmt.Fprintf(bw, "usemtl %s\n", obj.Materials[f.Material])
			current = f.Material
		}
		bw.WriteString("f")
		for _, v := range f.Verts {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v + 1))
		}
		bw.WriteByte('\n')
	}
	for _, l := range obj.Mesh.Loose {
		fmt.Fprintf(bw, "l %d %d\n", l[0]+1, l[1]+1)
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
