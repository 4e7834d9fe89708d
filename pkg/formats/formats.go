// Package formats provides readers and writers for the mesh file formats
// wirevis consumes and produces: STL, Wavefront OBJ and MTL.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/wirevis/pkg/mesh"
)

// WeldTolerance is the vertex merge distance used when indexing STL triangle soups.
const WeldTolerance = 1e-7

// LoadMesh reads a mesh file, choosing the codec by extension.
// Material names are only available for OBJ input.
func LoadMesh(path string) (*mesh.Mesh, []string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		obj, err := ParseOBJFile(path)
		if err != nil {
			return nil, nil, err
		}
		return obj.Mesh, obj.Materials, nil
	case ".stl":
		stl, err := ParseSTLFile(path)
		if err != nil {
			return nil, nil, err
		}
		return stl.Mesh(WeldTolerance), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported mesh format %q (expected .obj or .stl)", ext)
	}
}
