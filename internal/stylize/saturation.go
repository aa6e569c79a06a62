package stylize

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// hsvImage holds 8-bit HSV triplets in the same layout as RasterImage.
// H is stored at half-degree resolution in [0,180); S and V span [0,255].
type hsvImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// rgbToHSV converts one pixel to 8-bit HSV.
func rgbToHSV(r, g, b uint8) (h, s, v uint8) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	hf, sf, vf := c.Hsv()
	h8 := int(math.Round(hf / 2))
	if h8 >= 180 {
		h8 -= 180
	}
	return uint8(h8), uint8(math.Round(sf * 255)), uint8(math.Round(vf * 255))
}

// hsvToRGB converts one 8-bit HSV pixel back to RGB, rounding half-up.
func hsvToRGB(h, s, v uint8) (r, g, b uint8) {
	return colorful.Hsv(float64(h)*2, float64(s)/255, float64(v)/255).Clamped().RGB255()
}

// scaleChannel multiplies an 8-bit saturation by factor, clamps to
// [0,255] and truncates toward zero.
func scaleChannel(s uint8, factor float64) uint8 {
	v := float64(s) * factor
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// toHSV converts src to HSV with the saturation channel scaled by factor.
func toHSV(src *RasterImage, factor float64) (*hsvImage, error) {
	pix, err := alloc[uint8](src.Width, src.Height, Channels)
	if err != nil {
		return nil, err
	}
	dst := &hsvImage{Width: src.Width, Height: src.Height, Pix: pix}
	stride := src.Width * Channels

	parallel.Line(src.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += Channels {
			h, s, v := rgbToHSV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = h, scaleChannel(s, factor), v
		}
	})
	return dst, nil
}

// toRGB converts an HSV buffer back to a RasterImage.
func (m *hsvImage) toRGB() (*RasterImage, error) {
	dst, err := NewRasterImage(m.Width, m.Height)
	if err != nil {
		return nil, err
	}
	stride := m.Width * Channels

	parallel.Line(m.Height, func(start, end int) {
		for i := start * stride; i < end*stride; i += Channels {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = hsvToRGB(m.Pix[i], m.Pix[i+1], m.Pix[i+2])
		}
	})
	return dst, nil
}

// AdjustSaturation scales the HSV saturation of every pixel by factor.
// Hue and value are preserved. Negative factors act as 0, which produces a
// grayscale-toned image.
func AdjustSaturation(src *RasterImage, factor float64) (*RasterImage, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	hsv, err := toHSV(src, nonNegative(factor))
	if err != nil {
		return nil, err
	}
	return hsv.toRGB()
}
