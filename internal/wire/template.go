package wire

import (
	gomath "math"
	"sync"

	"github.com/Faultbox/wirevis/pkg/math"
)

// Template vertex layout. Ring vertex i sits at angle 2*pi*i/segments from +X,
// counter-clockwise about +Z.
const (
	LowPole  = 0 // (0, 0, -0.5)
	HighPole = 1 // (0, 0, +0.5)
	ringBase = 2
)

// Template is a closed, triangulated, capped cylinder of unit length along +Z,
// centred on the origin. Both caps are fans around the pole vertices.
type Template struct {
	Segments int
	Radius   float64
	Vertices []math.Vec3
	Faces    [][3]int
}

// BuildTemplate builds the canonical wire cross-section. The output depends
// only on its arguments, vertex order included.
func BuildTemplate(segments int, radius float64) *Template {
	t := &Template{
		Segments: segments,
		Radius:   radius,
		Vertices: make([]math.Vec3, 0, 2+2*segments),
		Faces:    make([][3]int, 0, 4*segments),
	}

	t.Vertices = append(t.Vertices, math.Vec3{Z: -0.5}, math.Vec3{Z: 0.5})
	for _, z := range []float64{-0.5, 0.5} {
		for i := 0; i < segments; i++ {
			s, c := gomath.Sincos(2 * gomath.Pi * float64(i) / float64(segments))
			t.Vertices = append(t.Vertices, math.Vec3{X: radius * c, Y: radius * s, Z: z})
		}
	}

	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		lo, loNext := t.lowRing(i), t.lowRing(j)
		hi, hiNext := t.highRing(i), t.highRing(j)
		t.Faces = append(t.Faces,
			[3]int{lo, loNext, hiNext},
			[3]int{lo, hiNext, hi},
		)
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		t.Faces = append(t.Faces, [3]int{LowPole, t.lowRing(j), t.lowRing(i)})
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		t.Faces = append(t.Faces, [3]int{HighPole, t.highRing(i), t.highRing(j)})
	}
	return t
}

func (t *Template) lowRing(i int) int  { return ringBase + i }
func (t *Template) highRing(i int) int { return ringBase + t.Segments + i }

// IsHigh reports whether template vertex i belongs to the +Z end.
func (t *Template) IsHigh(i int) bool {
	return t.Vertices[i].Z > 0
}

// CacheStats counts template cache activity.
type CacheStats struct {
	Hits   int
	Misses int
}

// TemplateCache keeps one template per settings scope (an object name, or the
// shared override scope) and rebuilds it only when its parameters change.
type TemplateCache struct {
	mu      sync.Mutex
	entries map[string]*Template
	stats   CacheStats
}

// NewTemplateCache creates an empty cache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{entries: make(map[string]*Template)}
}

// Get returns the template for scope, rebuilding it if segments or radius changed.
func (c *TemplateCache) Get(scope string, segments int, radius float64) *Template {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.entries[scope]; ok && t.Segments == segments && t.Radius == radius {
		c.stats.Hits++
		return t
	}
	c.stats.Misses++
	t := BuildTemplate(segments, radius)
	c.entries[scope] = t
	return t
}

// Stats returns cumulative hit and miss counts.
func (c *TemplateCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of cached scopes.
func (c *TemplateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Release drops every cached template.
func (c *TemplateCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Template)
}
