// Package report summarises which edges of a scene become wires.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/wirevis/internal/wire"
)

const mmPerUnit = 1000

// Object holds the wire statistics of one source object. Lengths are in mm.
type Object struct {
	Name      string
	Edges     int
	Wires     int
	Dropped   int
	TotalMM   float64
	MeanMM    float64
	StdDevMM  float64
	MinMM     float64
	MaxMM     float64
	HarnessMM float64 // total wire length including end extensions
	MeanAngle float64 // degrees, over wires with two or more faces
}

// Report covers every participating object of a scene.
type Report struct {
	Objects []Object
	Total   Object
}

// Build selects edges for every object the same way a rebuild does and
// collects length statistics. No geometry is generated.
func Build(scene wire.Scene) (*Report, error) {
	if len(scene.Objects) == 0 {
		return nil, &wire.ConfigError{Err: wire.ErrNoSourceObjects}
	}

	r := &Report{Total: Object{Name: "total"}}
	var all []float64
	for _, obj := range scene.Objects {
		set := wire.Resolve(obj.Settings, scene.Override)
		if err := set.Validate(); err != nil {
			return nil, &wire.ConfigError{Object: obj.Name, Err: err}
		}
		if obj.Mesh == nil {
			continue
		}

		sel := wire.SelectEdges(obj.Mesh.Transformed(obj.World), set)
		o := Object{Name: obj.Name, Edges: sel.Scanned, Wires: len(sel.Edges), Dropped: sel.Dropped}

		lengths := make([]float64, len(sel.Edges))
		var angles []float64
		for i, e := range sel.Edges {
			lengths[i] = e.Length * mmPerUnit
			o.HarnessMM += (e.Length + 2*set.ExtensionFor(e.Length)) * mmPerUnit
			if e.Faces >= 2 {
				angles = append(angles, e.Angle)
			}
		}
		describe(&o, lengths)
		if len(angles) > 0 {
			o.MeanAngle = stat.Mean(angles, nil)
		}

		r.Objects = append(r.Objects, o)
		all = append(all, lengths...)
		r.Total.Edges += o.Edges
		r.Total.Wires += o.Wires
		r.Total.Dropped += o.Dropped
		r.Total.HarnessMM += o.HarnessMM
	}
	describe(&r.Total, all)
	return r, nil
}

func describe(o *Object, lengths []float64) {
	if len(lengths) == 0 {
		return
	}
	o.TotalMM = floats.Sum(lengths)
	o.MinMM = floats.Min(lengths)
	o.MaxMM = floats.Max(lengths)
	if len(lengths) == 1 {
		o.MeanMM = lengths[0]
		return
	}
	o.MeanMM, o.StdDevMM = stat.MeanStdDev(lengths, nil)
}

// Write prints the report as an aligned table.
func (r *Report) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "object\tedges\twires\tdropped\ttotal mm\tmean mm\tstddev\tmin mm\tmax mm\tharness mm\tangle\t")
	for _, o := range append(r.Objects, r.Total) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t\n",
			o.Name, o.Edges, o.Wires, o.Dropped,
			o.TotalMM, o.MeanMM, o.StdDevMM, o.MinMM, o.MaxMM, o.HarnessMM, o.MeanAngle)
	}
	return tw.Flush()
}
