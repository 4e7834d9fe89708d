package config

import (
	"time"

	"github.com/spf13/pflag"
)

// flagValues holds command-line overrides. Zero values mean "not set".
type flagValues struct {
	config   string
	debug    bool
	logLevel string
	logFile  string
	seed     uint64
	tick     time.Duration
	outDir   string
	format   string
}

var flags flagValues

// RegisterFlags adds the config override flags to fs. Call it once, on the
// root command's persistent flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flags.config, "config", "c", "", "Path to config file")
	fs.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&flags.logFile, "log-file", "", "Write logs to this file as well")
	fs.Uint64Var(&flags.seed, "seed", 0, "Jitter seed (0 = random)")
	fs.DurationVar(&flags.tick, "tick", 0, "Rebuild loop tick interval")
	fs.StringVarP(&flags.outDir, "out", "o", "", "Output directory")
	fs.StringVarP(&flags.format, "format", "f", "", "Output format (obj, stl)")
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return flags.config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.debug {
		cfg.Logging.Level = "debug"
	}
	if flags.logFile != "" {
		cfg.Logging.LogFile = flags.logFile
	}
	if flags.seed != 0 {
		cfg.Session.Seed = flags.seed
	}
	if flags.tick > 0 {
		cfg.Session.TickInterval = flags.tick
	}
	if flags.outDir != "" {
		cfg.Output.Dir = flags.outDir
	}
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
}
