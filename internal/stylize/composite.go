package stylize

import (
	"fmt"

	"github.com/anthonynsimon/bild/parallel"
)

// composite ANDs every channel of src with the broadcast keep mask.
// With a mask of 0x00 or 0xFF this forces masked pixels to black and passes
// the rest through unchanged.
func composite(src *RasterImage, keep *edgeMask) (*RasterImage, error) {
	if keep.Width != src.Width || keep.Height != src.Height {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			ErrUnsupportedFormat, keep.Width, keep.Height, src.Width, src.Height)
	}
	dst, err := NewRasterImage(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	parallel.Line(src.Height, func(start, end int) {
		for i := start * src.Width; i < end*src.Width; i++ {
			m := keep.Pix[i]
			p := i * Channels
			dst.Pix[p] = src.Pix[p] & m
			dst.Pix[p+1] = src.Pix[p+1] & m
			dst.Pix[p+2] = src.Pix[p+2] & m
		}
	})
	return dst, nil
}
