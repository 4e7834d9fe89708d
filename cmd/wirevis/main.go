package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/wirevis/internal/config"
	"github.com/Faultbox/wirevis/internal/logger"
	"github.com/Faultbox/wirevis/internal/scene"
)

var version = "dev"

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wirevis",
	Short: "Generate wire harness meshes from model edges",
	Long: `wirevis scans the edges of the meshes listed in a scene file, picks the ones
that should become wires (sharp creases, material boundaries, open borders) and
writes a single mesh with a capped cylinder along each of them.

Lengths in settings are millimetres; scene coordinates are metres.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		fileCfg := logger.FileConfig{}
		if cfg.Logging.LogFile != "" {
			fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
			fileCfg.Encoding = cfg.Logging.Encoding
		}
		return logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true)
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// newHost creates the file host for a scene using the loaded config and
// reads the scene once.
func newHost(path string) (*scene.Host, error) {
	host, err := scene.NewHost(path, cfg.Defaults, scene.OutputOptions{
		Dir:    cfg.Output.Dir,
		Format: cfg.Output.Format,
	}, logger.Named("scene"))
	if err != nil {
		return nil, err
	}
	if _, err := host.Reload(); err != nil {
		return nil, err
	}
	return host, nil
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
