// Package render maps reduced per-cell contribution values and signed
// dominance onto mark sizes and color classes.
package render

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"courtlens/internal/domain/grid"
)

// SizeMode selects the size normalization policy.
type SizeMode int

const (
	// SizeDynamicMax scales against the maximum of the currently displayed
	// values, so the largest mark always reaches MaxDiameter. Comparable
	// within one view only.
	SizeDynamicMax SizeMode = iota
	// SizeFixedMax scales against a calibrated constant, clipping at the
	// cell diagonal. Comparable across selections, but can clip.
	SizeFixedMax
)

func (m SizeMode) String() string {
	switch m {
	case SizeDynamicMax:
		return "dynamic"
	case SizeFixedMax:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseSizeMode parses "dynamic" or "fixed".
func ParseSizeMode(s string) (SizeMode, error) {
	switch s {
	case "dynamic":
		return SizeDynamicMax, nil
	case "fixed":
		return SizeFixedMax, nil
	default:
		return 0, fmt.Errorf("unknown size mode: %q", s)
	}
}

// ColorClass is the three-way dominance classification of a cell.
type ColorClass int

const (
	ColorNeutral ColorClass = iota
	ColorClusterA
	ColorClusterB
)

func (c ColorClass) String() string {
	switch c {
	case ColorNeutral:
		return "neutral"
	case ColorClusterA:
		return "cluster_a"
	case ColorClusterB:
		return "cluster_b"
	default:
		return "unknown"
	}
}

// Default policy constants.
const (
	defaultMaxDiameter = 18.0
	defaultFixedMax    = 40.0
	defaultScale       = 0.9
	defaultEpsilon     = 1e-4
)

// Policy holds the scaling constants for one visualization. The size mode
// is fixed per policy; callers must not switch modes between frames of the
// same view, since the two normalizations are not comparable.
type Policy struct {
	mode        SizeMode
	maxDiameter float64
	fixedMax    float64
	scale       float64
	epsilon     float64
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithSizeMode sets the size normalization mode.
func WithSizeMode(mode SizeMode) Option {
	return func(p *Policy) { p.mode = mode }
}

// WithMaxDiameter sets the diameter of the largest mark under dynamic-max.
func WithMaxDiameter(d float64) Option {
	return func(p *Policy) {
		if d > 0 {
			p.maxDiameter = d
		}
	}
}

// WithFixedMax sets the calibration constant for fixed-max scaling.
func WithFixedMax(m float64) Option {
	return func(p *Policy) {
		if m > 0 {
			p.fixedMax = m
		}
	}
}

// WithScale sets the cell-diagonal multiplier for fixed-max scaling.
func WithScale(s float64) Option {
	return func(p *Policy) {
		if s > 0 {
			p.scale = s
		}
	}
}

// WithEpsilon sets the dominance dead-zone threshold.
func WithEpsilon(e float64) Option {
	return func(p *Policy) {
		if e >= 0 {
			p.epsilon = e
		}
	}
}

// NewPolicy builds a Policy. The default mode is dynamic-max.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		mode:        SizeDynamicMax,
		maxDiameter: defaultMaxDiameter,
		fixedMax:    defaultFixedMax,
		scale:       defaultScale,
		epsilon:     defaultEpsilon,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the policy's size mode.
func (p *Policy) Mode() SizeMode { return p.mode }

// Sizes maps values to mark diameters. cellDiagonal is only used under
// fixed-max. An all-zero input yields all-zero sizes; the zero maximum is
// substituted with 1.0 rather than dividing by zero.
func (p *Policy) Sizes(vals []float64, cellDiagonal float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	switch p.mode {
	case SizeFixedMax:
		for i, v := range vals {
			r := v / p.fixedMax
			if r > 1 {
				r = 1
			}
			out[i] = r * cellDiagonal * p.scale
		}
	default:
		m := floats.Max(vals)
		if m == 0 {
			m = 1.0
		}
		for i, v := range vals {
			out[i] = v / m * p.maxDiameter
		}
	}
	return out
}

// Classify maps one dominance value to a color class. Values inside the
// dead zone are neutral so floating-point noise near zero cannot flicker
// between the cluster colors.
func (p *Policy) Classify(dom float64) ColorClass {
	switch {
	case dom > p.epsilon:
		return ColorClusterA
	case dom < -p.epsilon:
		return ColorClusterB
	default:
		return ColorNeutral
	}
}

// Cell is one renderable mark: center coordinates, reduced value, signed
// dominance, diameter and color class.
type Cell struct {
	X         float64
	Y         float64
	Value     float64
	Dominance float64
	Size      float64
	Color     ColorClass
}

// Cells assembles render cells for a reduced (vals, dom) pair on g. Both
// slices must have exactly g.Cells() entries.
func (p *Policy) Cells(g grid.Grid, vals, dom []float64) ([]Cell, error) {
	if len(vals) != g.Cells() || len(dom) != g.Cells() {
		return nil, fmt.Errorf("%w: got %d values, %d dominance, grid has %d cells",
			ErrLengthMismatch, len(vals), len(dom), g.Cells())
	}
	sizes := p.Sizes(vals, g.CellDiagonal())
	cells := make([]Cell, len(vals))
	for i := range vals {
		x, y := g.CenterAt(i)
		cells[i] = Cell{
			X:         x,
			Y:         y,
			Value:     vals[i],
			Dominance: dom[i],
			Size:      sizes[i],
			Color:     p.Classify(dom[i]),
		}
	}
	return cells, nil
}
