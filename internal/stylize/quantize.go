package stylize

import (
	"github.com/anthonynsimon/bild/parallel"
)

// Quantize posterizes every channel to bands of width floor(256/levels).
//
// Each value v becomes floor(v/step)*step. When levels does not divide 256
// the top band absorbs the remainder. levels of 1 maps everything to 0;
// levels above 256 behave like 256. levels < 1 is rejected.
func Quantize(src *RasterImage, levels int) (*RasterImage, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if levels < 1 {
		return nil, &ParamError{Field: "levels", Value: levels, Reason: "must be >= 1"}
	}
	dst, err := NewRasterImage(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	table := quantizeTable(Step(levels))
	stride := src.Width * Channels
	parallel.Line(src.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i++ {
			dst.Pix[i] = table[src.Pix[i]]
		}
	})
	return dst, nil
}

func quantizeTable(step int) [256]uint8 {
	var t [256]uint8
	for v := range t {
		q := v / step * step
		if q > 255 {
			q = 255
		}
		t[v] = uint8(q)
	}
	return t
}
