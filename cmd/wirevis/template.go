package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/wirevis/internal/wire"
	"github.com/Faultbox/wirevis/pkg/formats"
	"github.com/Faultbox/wirevis/pkg/mesh"
)

var templateOpts struct {
	segments int
	diameter float64
	output   string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the wire cross-section template as OBJ",
	Long:  "Writes the unit-length capped cylinder every wire is stamped from, for inspection in a modelling tool.",
	Args:  cobra.NoArgs,
	RunE:  runTemplate,
}

func init() {
	templateCmd.Flags().IntVarP(&templateOpts.segments, "segments", "s", 0, "Cross-section segments (default from config)")
	templateCmd.Flags().Float64VarP(&templateOpts.diameter, "diameter", "d", 0, "Diameter in mm (default from config)")
	templateCmd.Flags().StringVar(&templateOpts.output, "file", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	set := cfg.Defaults
	if templateOpts.segments > 0 {
		set.Segments = templateOpts.segments
	}
	if templateOpts.diameter > 0 {
		set.DiameterMM = templateOpts.diameter
	}
	if err := set.Validate(); err != nil {
		return err
	}

	t := wire.BuildTemplate(set.Segments, set.Radius())
	m := mesh.New()
	for _, v := range t.Vertices {
		m.AddVertex(v)
	}
	for _, f := range t.Faces {
		m.AddFace(0, f[0], f[1], f[2])
	}

	var w io.Writer = cmd.OutOrStdout()
	if templateOpts.output != "" {
		f, err := os.Create(templateOpts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return formats.WriteOBJ(w, &formats.OBJ{Name: "wire_template", Mesh: m})
}
