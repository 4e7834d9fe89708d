package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/wirevis/internal/logger"
	"github.com/Faultbox/wirevis/internal/session"
	"github.com/Faultbox/wirevis/internal/wire"
)

var buildCmd = &cobra.Command{
	Use:   "build <scene.yaml>",
	Short: "Generate the wire mesh once",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	host, err := newHost(args[0])
	if err != nil {
		return err
	}

	builder := wire.NewBuilder(cfg.Session.Seed, logger.Named("wire"))
	ctrl := session.NewController(host, builder, logger.Named("session"))
	defer ctrl.Cancel()

	if err := ctrl.Start(); err != nil {
		return err
	}
	if _, err := ctrl.Tick(cmd.Context()); err != nil {
		return err
	}

	stats := ctrl.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d wires from %d of %d objects, %d vertices, %d faces\n",
		host.OutputPath(wire.OutputID(host.Document().Output)),
		stats.Selected, stats.Contributing, stats.Objects, stats.Vertices, stats.Faces)
	return nil
}
