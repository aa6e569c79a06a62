// Package stylize implements the cel-shading pipeline that turns a photograph
// into a flat, anime-style rendering.
//
// The pipeline is a pure function over pixel buffers. Stylize runs five
// stages in a fixed order:
//
//  1. Saturation: RGB -> 8-bit HSV, scale S by the saturation factor, back to RGB.
//  2. Smoothing: edge-preserving domain-transform recursive filter.
//  3. Quantization: posterize each channel to floor(256/levels) wide bands.
//  4. Edge extraction: luma, 3x3 Sobel, non-maximum suppression and
//     hysteresis with fixed thresholds 100 and 200, then inverted.
//  5. Compositing: bitwise AND of the quantized color with the inverted mask,
//     so edge pixels become black.
//
// # Pixel Layout
//
// RasterImage stores 8-bit RGB triplets row-major with no alpha and no
// stride padding: pixel (x, y) starts at offset (y*Width+x)*3.
//
// # Rounding
//
// Every stage boundary converts back to 8-bit integers. Float intermediates
// are rounded half-up, except the scaled saturation channel, which is
// truncated toward zero after clamping.
//
// # Thread Safety
//
// The package holds no mutable state. Stylize never modifies its input and
// may be called concurrently on the same or different images. Stages split
// their work across rows or columns internally.
//
// # Error Handling
//
// Stylize returns errors wrapping one of ErrInvalidParameter,
// ErrUnsupportedFormat or ErrAllocation. On error no image is returned.
package stylize
