package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/wirevis/internal/logger"
	"github.com/Faultbox/wirevis/internal/scene"
	"github.com/Faultbox/wirevis/internal/session"
	"github.com/Faultbox/wirevis/internal/watcher"
	"github.com/Faultbox/wirevis/internal/wire"
)

var watchCmd = &cobra.Command{
	Use:   "watch <scene.yaml>",
	Short: "Rebuild the wire mesh whenever the scene or its meshes change",
	Long: `watch keeps a session running: it builds once, then follows edits to the
scene file and every mesh it references. Colour-only edits rewrite the material
library without regenerating geometry. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := newHost(args[0])
	if err != nil {
		return err
	}
	log := logger.Named("watch")

	builder := wire.NewBuilder(cfg.Session.Seed, logger.Named("wire"))
	ctrl := session.NewController(host, builder, logger.Named("session"))
	loop := session.NewLoop(ctrl, cfg.Session.TickInterval, log)
	out := cmd.OutOrStdout()
	loop.OnTick = func(o session.Outcome, err error) {
		if err != nil {
			return
		}
		stats := ctrl.Stats()
		fmt.Fprintf(out, "%s %s: %d wires, %d faces\n", o, host.OutputPath(wire.OutputID(host.Document().Output)), stats.Selected, stats.Faces)
	}

	fw, err := watcher.New(cfg.Session.Debounce, log)
	if err != nil {
		return err
	}
	defer fw.Close()

	scenePath, err := filepath.Abs(host.Path())
	if err != nil {
		return err
	}
	onMesh := func(path string) {
		loop.Send(ctx, session.GeometryChange)
	}
	onScene := func(path string) {
		change, err := host.Reload()
		if err != nil {
			log.Warn("scene not reloaded", zap.Error(err))
			return
		}
		if err := syncMeshWatches(fw, host, scenePath, onMesh); err != nil {
			log.Warn("mesh watch not updated", zap.Error(err))
		}
		if change != session.NoChange {
			log.Debug("scene changed", zap.Stringer("change", change))
			loop.Send(ctx, change)
		}
	}

	if err := fw.Watch([]string{scenePath}, onScene); err != nil {
		return err
	}
	if err := syncMeshWatches(fw, host, scenePath, onMesh); err != nil {
		return err
	}
	fw.Start(ctx)

	log.Info("watching", zap.String("scene", scenePath), zap.Duration("tick", cfg.Session.TickInterval))
	return loop.Run(ctx)
}

// syncMeshWatches makes the watcher follow exactly the meshes the current
// scene references, plus the scene file itself.
func syncMeshWatches(fw *watcher.FileWatcher, host *scene.Host, scenePath string, onMesh func(string)) error {
	want := make(map[string]bool)
	var paths []string
	for _, p := range host.MeshPaths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if !want[abs] {
			want[abs] = true
			paths = append(paths, abs)
		}
	}

	var stale []string
	for _, p := range fw.Watched() {
		if p != scenePath && !want[p] {
			stale = append(stale, p)
		}
	}
	if err := fw.Unwatch(stale); err != nil {
		return err
	}
	return fw.Watch(paths, onMesh)
}

