package stylize

import (
	"math"
)

// MinEdgePreservation is the floor applied to EdgePreservationStrength
// before it reaches the smoothing filter.
const MinEdgePreservation = 0.01

// MaxLevels is the largest band count that still yields a non-zero step.
// Larger values behave like MaxLevels.
const MaxLevels = 256

// Params controls a single Stylize call.
type Params struct {
	// SaturationFactor scales the HSV saturation channel. Intended range
	// [0, 3]; negative values are clamped to 0.
	SaturationFactor float64 `json:"saturation" yaml:"saturation"`

	// Levels is the number of posterization bands per channel. Must be >= 1.
	Levels int `json:"levels" yaml:"levels"`

	// SmoothingSpatialExtent is the spatial sigma of the smoothing filter.
	// Negative values are clamped to 0, which disables smoothing.
	SmoothingSpatialExtent float64 `json:"smooth_strength" yaml:"smooth_strength"`

	// EdgePreservationStrength is the range sigma of the smoothing filter,
	// floored to MinEdgePreservation.
	EdgePreservationStrength float64 `json:"edge_strength" yaml:"edge_strength"`
}

// DefaultParams returns the parameters of the "default" preset.
func DefaultParams() Params {
	return Params{
		SaturationFactor:         2.0,
		Levels:                   8,
		SmoothingSpatialExtent:   50,
		EdgePreservationStrength: 0.4,
	}
}

// Validate reports parameters that cannot be clamped into range.
func (p Params) Validate() error {
	if p.Levels < 1 {
		return &ParamError{Field: "levels", Value: p.Levels, Reason: "must be >= 1"}
	}
	return nil
}

// Normalized returns a copy with every clampable field forced into range.
// It does not fix Levels < 1; call Validate for that.
func (p Params) Normalized() Params {
	p.SaturationFactor = nonNegative(p.SaturationFactor)
	p.SmoothingSpatialExtent = nonNegative(p.SmoothingSpatialExtent)
	p.EdgePreservationStrength = math.Max(MinEdgePreservation, nonNegative(p.EdgePreservationStrength))
	if p.Levels > MaxLevels {
		p.Levels = MaxLevels
	}
	return p
}

// Step returns the quantization band width for the given level count.
func Step(levels int) int {
	if levels > MaxLevels {
		levels = MaxLevels
	}
	return 256 / levels
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
