package stylize

import (
	"fmt"
)

// Channels is the number of interleaved channels in a RasterImage.
const Channels = 3

// MaxPixels bounds Width*Height for any image the pipeline will allocate.
// Larger requests fail with ErrAllocation instead of exhausting memory.
const MaxPixels = 1 << 28

// RasterImage is an 8-bit RGB image without alpha.
//
// Pix holds Width*Height*3 bytes in row-major order.
type RasterImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRasterImage allocates a zeroed (black) image.
func NewRasterImage(width, height int) (*RasterImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrUnsupportedFormat, width, height)
	}
	pix, err := alloc[uint8](width, height, Channels)
	if err != nil {
		return nil, err
	}
	return &RasterImage{Width: width, Height: height, Pix: pix}, nil
}

// RGB returns the color at (x, y). Coordinates must be in range.
func (r *RasterImage) RGB(x, y int) (uint8, uint8, uint8) {
	i := (y*r.Width + x) * Channels
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// SetRGB sets the color at (x, y). Coordinates must be in range.
func (r *RasterImage) SetRGB(x, y int, red, green, blue uint8) {
	i := (y*r.Width + x) * Channels
	r.Pix[i], r.Pix[i+1], r.Pix[i+2] = red, green, blue
}

// Clone returns a deep copy.
func (r *RasterImage) Clone() (*RasterImage, error) {
	out, err := NewRasterImage(r.Width, r.Height)
	if err != nil {
		return nil, err
	}
	copy(out.Pix, r.Pix)
	return out, nil
}

// Validate checks that the image is usable as pipeline input.
func (r *RasterImage) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil image", ErrUnsupportedFormat)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrUnsupportedFormat, r.Width, r.Height)
	}
	if r.Width > MaxPixels/r.Height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, r.Width, r.Height, MaxPixels)
	}
	if want := r.Width * r.Height * Channels; len(r.Pix) != want {
		if len(r.Pix)%(r.Width*r.Height) == 0 {
			return fmt.Errorf("%w: %d channels, want %d", ErrUnsupportedFormat, len(r.Pix)/(r.Width*r.Height), Channels)
		}
		return fmt.Errorf("%w: buffer length %d, want %d", ErrUnsupportedFormat, len(r.Pix), want)
	}
	return nil
}

// alloc allocates a width*height*channels buffer, reporting oversized or
// failed allocations as ErrAllocation.
func alloc[T uint8 | int32 | float32](width, height, channels int) (buf []T, err error) {
	if width > MaxPixels/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrAllocation, width, height, MaxPixels)
	}
	defer func() {
		if rec := recover(); rec != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrAllocation, rec)
		}
	}()
	return make([]T, width*height*channels), nil
}
