// Package wire turns mesh edges into a single wire-harness mesh.
//
// The pipeline selects qualifying edges per source object, stamps a cached
// capped-cylinder template onto each of them and assembles every instance
// into one indexed mesh with a material slot per contributing object.
package wire

import (
	"errors"
	"fmt"
	gomath "math"
)

// mmPerUnit converts scene units (metres) to the millimetres used by settings.
const mmPerUnit = 1000.0

// Segment count limits. A cross-section needs at least a triangle.
const (
	MinSegments = 3
	MaxSegments = 12
)

// ExtendMode selects how wire ends are pushed past the edge endpoints.
type ExtendMode string

// Extend modes.
const (
	// ExtendRelative pushes each end by extend * sqrt(edge length in mm) millimetres.
	ExtendRelative ExtendMode = "relative"
	// ExtendAbsolute pushes each end by extend millimetres.
	ExtendAbsolute ExtendMode = "absolute"
)

// JitterMode selects how random offsets are applied to wire ends.
type JitterMode string

// Jitter modes.
const (
	// JitterPerEdge shifts each end cap rigidly, one random offset per pole.
	JitterPerEdge JitterMode = "per_edge"
	// JitterPerVertex draws an independent offset for every end vertex.
	JitterPerVertex JitterMode = "per_vertex"
)

// Settings configures edge selection and wire shape for one source object.
type Settings struct {
	AngleDeg         float64    `yaml:"angle"`
	LengthCutoffMM   float64    `yaml:"length_cutoff"`
	MaterialBoundary bool       `yaml:"material_boundary"`
	LoneEdges        bool       `yaml:"lone_edges"`
	DiameterMM       float64    `yaml:"diameter"`
	Segments         int        `yaml:"segments"`
	Extend           float64    `yaml:"extend"`
	ExtendMode       ExtendMode `yaml:"extend_mode"`
	TwistDeg         float64    `yaml:"twist"`
	Jitter           float64    `yaml:"jitter"`
	JitterMode       JitterMode `yaml:"jitter_mode"`
}

// DefaultSettings returns the settings used for objects that configure nothing.
func DefaultSettings() Settings {
	return Settings{
		AngleDeg:   0,
		DiameterMM: 20,
		Segments:   3,
		ExtendMode: ExtendRelative,
		JitterMode: JitterPerEdge,
	}
}

// Settings validation errors.
var (
	ErrAngleRange    = errors.New("angle must be within [0, 180] degrees")
	ErrCutoffRange   = errors.New("length cutoff must not be negative")
	ErrDiameterRange = errors.New("diameter must be positive")
	ErrSegmentsRange = fmt.Errorf("segments must be within [%d, %d]", MinSegments, MaxSegments)
	ErrExtendRange   = errors.New("extend must not be negative")
	ErrTwistRange    = errors.New("twist must be within [0, 360) degrees")
	ErrJitterRange   = errors.New("jitter must not be negative")
	ErrExtendMode    = errors.New("unknown extend mode")
	ErrJitterMode    = errors.New("unknown jitter mode")
)

// Validate reports every out-of-range field.
func (s Settings) Validate() error {
	var errs []error
	if s.AngleDeg < 0 || s.AngleDeg > 180 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrAngleRange, s.AngleDeg))
	}
	if s.LengthCutoffMM < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrCutoffRange, s.LengthCutoffMM))
	}
	if s.DiameterMM <= 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrDiameterRange, s.DiameterMM))
	}
	if s.Segments < MinSegments || s.Segments > MaxSegments {
		errs = append(errs, fmt.Errorf("%w: %d", ErrSegmentsRange, s.Segments))
	}
	if s.Extend < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrExtendRange, s.Extend))
	}
	if s.TwistDeg < 0 || s.TwistDeg >= 360 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrTwistRange, s.TwistDeg))
	}
	if s.Jitter < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrJitterRange, s.Jitter))
	}
	switch s.ExtendMode {
	case ExtendRelative, ExtendAbsolute:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrExtendMode, s.ExtendMode))
	}
	switch s.JitterMode {
	case JitterPerEdge, JitterPerVertex:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrJitterMode, s.JitterMode))
	}
	return errors.Join(errs...)
}

// Radius returns the template cross-section radius in scene units.
func (s Settings) Radius() float64 {
	return s.DiameterMM / mmPerUnit * 0.5
}

// ExtensionFor returns how far each wire end is pushed outward, in scene
// units, for an edge of the given length in scene units.
func (s Settings) ExtensionFor(length float64) float64 {
	if s.Extend <= 0 {
		return 0
	}
	if s.ExtendMode == ExtendAbsolute {
		return s.Extend / mmPerUnit
	}
	return s.Extend * gomath.Sqrt(length*mmPerUnit) / mmPerUnit
}

// Colour is linear RGBA in [0, 1].
type Colour [4]float64

// Override replaces every object's settings with one shared configuration.
type Override struct {
	Settings Settings
	Colour   Colour
}

// Resolve returns the settings effective for an object: the override's when
// one is active, the object's own otherwise.
func Resolve(own Settings, override *Override) Settings {
	if override != nil {
		return override.Settings
	}
	return own
}
