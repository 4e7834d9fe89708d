package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/wirevis/internal/report"
)

var infoCmd = &cobra.Command{
	Use:   "info <scene.yaml>",
	Short: "Show which edges would become wires, per object",
	Long:  "Runs edge selection for every participating object and prints wire counts and length statistics in millimetres. Nothing is written.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	host, err := newHost(args[0])
	if err != nil {
		return err
	}
	s, err := host.Snapshot()
	if err != nil {
		return err
	}
	r, err := report.Build(s)
	if err != nil {
		return err
	}
	return r.Write(cmd.OutOrStdout())
}
