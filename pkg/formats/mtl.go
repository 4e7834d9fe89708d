package formats

import (
	"bufio"
	"fmt"
	"io"
)

// Material is one MTL entry. Colour is linear RGBA in [0,1].
type Material struct {
	Name   string
	Colour [4]float64
}

// WriteMTL writes a material library with diffuse colour and opacity per material.
func WriteMTL(w io.Writer, materials []Material) error {
	bw := bufio.NewWriter(w)
	for i, m := range materials {
		if i > 0 {
			bw.WriteByte('\n')
		}
		c := m.Colour
		fmt.Fprintf(bw, "newmtl %s\n", m.Name)
		fmt.Fprintf(bw, "Kd %s %s %s\n", formatFloat(c[0]), formatFloat(c[1]), formatFloat(c[2]))
		fmt.Fprintf(bw, "d %s\n", formatFloat(c[3]))
	}
	return bw.Flush()
}
