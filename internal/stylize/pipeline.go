package stylize

import (
	"fmt"
)

// Stylize renders src in a flat cel-shaded style.
//
// The input is never modified; the result is a newly allocated image of the
// same size. Parameters outside their documented range are clamped, except
// Levels < 1, which fails with ErrInvalidParameter before any pixel work.
// Identical inputs always produce bit-identical output.
func Stylize(src *RasterImage, p Params) (*RasterImage, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Normalized()

	saturated, err := AdjustSaturation(src, p.SaturationFactor)
	if err != nil {
		return nil, fmt.Errorf("saturation: %w", err)
	}
	smoothed, err := Smooth(saturated, p.SmoothingSpatialExtent, p.EdgePreservationStrength)
	if err != nil {
		return nil, fmt.Errorf("smoothing: %w", err)
	}
	poster, err := Quantize(smoothed, p.Levels)
	if err != nil {
		return nil, fmt.Errorf("quantization: %w", err)
	}
	edges, err := extractEdges(poster)
	if err != nil {
		return nil, fmt.Errorf("edge extraction: %w", err)
	}
	edges.invert()

	out, err := composite(poster, edges)
	if err != nil {
		return nil, fmt.Errorf("compositing: %w", err)
	}
	return out, nil
}
