// Package session drives wire rebuilds for a running session.
//
// A Controller decides on each tick whether the output needs a full geometry
// rebuild, a colour refresh or nothing. A Loop feeds it change events and
// ticks from a single goroutine, so rebuilds never overlap.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wirevis/internal/wire"
)

// Session errors.
var (
	ErrSessionClosed = errors.New("session is closed")
	ErrNotStarted    = errors.New("session has not been started")
)

// State is the controller state.
type State int

// Controller states.
const (
	Idle State = iota
	ActiveClean
	ActiveDirtyGeometry
	ActiveDirtyColour
	Terminating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ActiveClean:
		return "active-clean"
	case ActiveDirtyGeometry:
		return "active-dirty-geometry"
	case ActiveDirtyColour:
		return "active-dirty-colour"
	case Terminating:
		return "terminating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Active reports whether the session is running.
func (s State) Active() bool {
	return s == ActiveClean || s == ActiveDirtyGeometry || s == ActiveDirtyColour
}

// Change classifies a settings or scene edit.
type Change int

// Change kinds.
const (
	NoChange Change = iota
	// GeometryChange affects selection or placement and forces a rebuild.
	GeometryChange
	// ColourChange only touches material colours.
	ColourChange
)

func (c Change) String() string {
	switch c {
	case NoChange:
		return "none"
	case GeometryChange:
		return "geometry"
	case ColourChange:
		return "colour"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

// Outcome is what a tick did.
type Outcome int

// Tick outcomes.
const (
	NoOp Outcome = iota
	Rebuilt
	Recoloured
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "noop"
	case Rebuilt:
		return "rebuilt"
	case Recoloured:
		return "recoloured"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Controller is the update state machine for one session. It is not safe
// for concurrent use; Loop serialises access to it.
type Controller struct {
	host    wire.Host
	builder *wire.Builder
	log     *zap.Logger

	state  State
	output wire.OutputID
	slots  []wire.MaterialSlot
	stats  wire.Stats
}

// NewController creates an idle controller publishing to host.
func NewController(host wire.Host, builder *wire.Builder, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		host:    host,
		builder: builder,
		log:     log,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Stats returns the statistics of the last successful rebuild.
func (c *Controller) Stats() wire.Stats {
	return c.stats
}

// Slots returns the material slots last published.
func (c *Controller) Slots() []wire.MaterialSlot {
	return c.slots
}

// Start activates the session and schedules the initial build.
func (c *Controller) Start() error {
	switch c.state {
	case Idle:
		c.transition(ActiveDirtyGeometry)
		return nil
	case Terminating:
		return ErrSessionClosed
	default:
		return nil
	}
}

// Cancel ends an active session and releases its cached templates.
// Calling it on an idle or terminated controller does nothing.
func (c *Controller) Cancel() {
	if !c.state.Active() {
		return
	}
	c.terminate()
}

// Notify records a change. A pending geometry rebuild already covers colour.
func (c *Controller) Notify(ch Change) {
	if !c.state.Active() {
		return
	}
	switch ch {
	case GeometryChange:
		c.transition(ActiveDirtyGeometry)
	case ColourChange:
		if c.state != ActiveDirtyGeometry {
			c.transition(ActiveDirtyColour)
		}
	}
}

// Tick performs the pending work, if any. A rebuild that fails leaves the
// published mesh untouched. An empty scene ends the session.
func (c *Controller) Tick(ctx context.Context) (Outcome, error) {
	switch c.state {
	case Idle:
		return NoOp, ErrNotStarted
	case Terminating:
		return NoOp, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		c.terminate()
		return NoOp, err
	}

	switch c.state {
	case ActiveDirtyGeometry:
		return c.rebuild()
	case ActiveDirtyColour:
		if c.slots == nil {
			// nothing published yet, colours arrive with the first rebuild
			return c.rebuild()
		}
		return c.recolour()
	default:
		return NoOp, nil
	}
}

func (c *Controller) rebuild() (Outcome, error) {
	// a failed rebuild is not retried until the next change arrives
	c.transition(ActiveClean)

	scene, err := c.host.Snapshot()
	if err != nil {
		return NoOp, fmt.Errorf("snapshot scene: %w", err)
	}

	out, stats, err := c.builder.Rebuild(scene)
	if err != nil {
		if errors.Is(err, wire.ErrNoSourceObjects) {
			c.terminate()
		}
		return NoOp, err
	}

	id, err := c.host.EnsureOutput(scene.Output)
	if err != nil {
		return NoOp, fmt.Errorf("ensure output %q: %w", scene.Output, err)
	}
	if err := c.host.ReplaceMesh(id, out); err != nil {
		return NoOp, fmt.Errorf("replace mesh: %w", err)
	}
	if err := c.host.EnsureMaterials(id, out.Slots); err != nil {
		return NoOp, fmt.Errorf("ensure materials: %w", err)
	}

	c.output = id
	c.slots = out.Slots
	c.stats = stats
	c.log.Info("rebuilt wires",
		zap.String("output", string(id)),
		zap.Int("objects", stats.Contributing),
		zap.Int("wires", stats.Selected),
		zap.Int("faces", stats.Faces),
		zap.Int("dropped", stats.Dropped),
		zap.Int("cache_misses", stats.Cache.Misses),
	)
	return Rebuilt, nil
}

func (c *Controller) recolour() (Outcome, error) {
	c.transition(ActiveClean)

	scene, err := c.host.Snapshot()
	if err != nil {
		return NoOp, fmt.Errorf("snapshot scene: %w", err)
	}
	slots := c.builder.Colours(scene, c.slots)
	if err := c.host.EnsureMaterials(c.output, slots); err != nil {
		return NoOp, fmt.Errorf("ensure materials: %w", err)
	}
	c.slots = slots
	c.log.Info("updated wire colours", zap.Int("slots", len(slots)))
	return Recoloured, nil
}

func (c *Controller) terminate() {
	c.transition(Terminating)
	c.builder.Cache.Release()
	c.slots = nil
}

func (c *Controller) transition(to State) {
	if c.state == to {
		return
	}
	c.log.Debug("session state", zap.Stringer("from", c.state), zap.Stringer("to", to))
	c.state = to
}
