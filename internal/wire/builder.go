package wire

import "go.uber.org/zap"

const overrideScope = "*override*"

// Stats describes one rebuild.
type Stats struct {
	Objects      int
	Contributing int
	Scanned      int
	Selected     int
	Dropped      int
	Vertices     int
	Faces        int
	Cache        CacheStats
}

// Builder runs the full edge-to-mesh pipeline. It owns the template cache for
// a session; rebuilds must not run concurrently.
type Builder struct {
	Cache *TemplateCache
	Seed  uint64
	Log   *zap.Logger
}

// NewBuilder creates a builder. A zero seed makes jitter differ between rebuilds.
func NewBuilder(seed uint64, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		Cache: NewTemplateCache(),
		Seed:  seed,
		Log:   log,
	}
}

// Rebuild generates the wire mesh for every object in scene. On error nothing
// is returned, so the caller's previous mesh stays valid.
func (b *Builder) Rebuild(scene Scene) (*OutputMesh, Stats, error) {
	stats := Stats{Objects: len(scene.Objects)}
	if len(scene.Objects) == 0 {
		return nil, stats, &ConfigError{Err: ErrNoSourceObjects}
	}
	if scene.Override != nil {
		if err := scene.Override.Settings.Validate(); err != nil {
			return nil, stats, &ConfigError{Object: "override", Err: err}
		}
	}

	before := b.Cache.Stats()
	solver := NewSolver(b.Seed)
	asm := NewAssembler()
	shared := -1

	for idx, obj := range scene.Objects {
		set := Resolve(obj.Settings, scene.Override)
		if err := set.Validate(); err != nil {
			return nil, stats, &ConfigError{Object: obj.Name, Err: err}
		}
		if obj.Mesh == nil {
			return nil, stats, &ConfigError{Object: obj.Name, Err: errNoMesh}
		}

		world := obj.Mesh.Transformed(obj.World)
		sel := SelectEdges(world, set)
		stats.Scanned += sel.Scanned
		stats.Dropped += sel.Dropped
		stats.Selected += len(sel.Edges)

		log := b.Log.With(zap.String("object", obj.Name))
		if sel.Dropped > 0 {
			log.Debug("dropped degenerate edges", zap.Int("count", sel.Dropped))
		}
		if len(sel.Edges) == 0 {
			log.Debug("no qualifying edges", zap.Int("scanned", sel.Scanned))
			continue
		}

		var tag int
		var tmpl *Template
		if scene.Override != nil {
			if shared < 0 {
				shared = asm.AddSlot(MaterialSlot{Name: "wire_override", Source: -1, Colour: scene.Override.Colour})
			}
			tag = shared
			tmpl = b.Cache.Get(overrideScope, set.Segments, set.Radius())
		} else {
			tag = asm.AddSlot(MaterialSlot{Name: "wire_" + obj.Name, Object: obj.Name, Source: idx, Colour: obj.Colour})
			tmpl = b.Cache.Get(obj.Name, set.Segments, set.Radius())
		}

		for _, e := range sel.Edges {
			p := solver.Solve(e, set, tmpl)
			if err := asm.Append(Stamp(tmpl, p, tag, asm.Offset())); err != nil {
				return nil, stats, err
			}
		}
		stats.Contributing++
		log.Debug("stamped wires",
			zap.Int("edges", len(sel.Edges)),
			zap.Int("segments", set.Segments),
			zap.Float64("diameter_mm", set.DiameterMM),
		)
	}

	after := b.Cache.Stats()
	stats.Cache = CacheStats{Hits: after.Hits - before.Hits, Misses: after.Misses - before.Misses}
	stats.Vertices, stats.Faces = asm.Len()
	return asm.Finalize(), stats, nil
}

// Colours returns slots with colours refreshed from scene, leaving geometry
// and slot order alone. Slots are matched to objects by their recorded
// position, falling back to name when the object list has shifted.
func (b *Builder) Colours(scene Scene, slots []MaterialSlot) []MaterialSlot {
	byName := make(map[string]Colour, len(scene.Objects))
	for _, obj := range scene.Objects {
		byName[obj.Name] = obj.Colour
	}

	out := make([]MaterialSlot, len(slots))
	for i, slot := range slots {
		out[i] = slot
		switch {
		case slot.Source < 0:
			if scene.Override != nil {
				out[i].Colour = scene.Override.Colour
			}
		case slot.Source < len(scene.Objects) && scene.Objects[slot.Source].Name == slot.Object:
			out[i].Colour = scene.Objects[slot.Source].Colour
		default:
			if c, ok := byName[slot.Object]; ok {
				out[i].Colour = c
			}
		}
	}
	return out
}
