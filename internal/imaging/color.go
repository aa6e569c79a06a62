package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// PaletteColor is one dominant color and its share of the image.
type PaletteColor struct {
	Hex        string   `json:"hex"`        // "#RRGGBB"
	Percentage float64  `json:"percentage"` // 0-100
	RGB        RGBColor `json:"rgb"`
	HSL        HSLColor `json:"hsl"`
}

// MaxPaletteColors bounds the count accepted by Palette.
const MaxPaletteColors = 32

// Palette returns up to count dominant colors of img, most common first.
//
// Colors are found by k-means clustering on a downsampled copy, so nearby
// shades are merged. On a posterized image the clusters settle on the
// quantized band colors.
func Palette(img image.Image, count int) ([]PaletteColor, error) {
	if count < 1 || count > MaxPaletteColors {
		return nil, fmt.Errorf("color count must be between 1 and %d, got %d", MaxPaletteColors, count)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	found := dominantcolor.FindWeight(img, count)
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Weight > found[j].Weight
	})

	out := make([]PaletteColor, 0, len(found))
	for _, c := range found {
		col := RGBColor{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B}
		out = append(out, PaletteColor{
			Hex:        dominantcolor.Hex(c.RGBA),
			Percentage: math.Round(c.Weight*1000) / 10,
			RGB:        col,
			HSL:        toHSL(col),
		})
	}
	return out, nil
}

func toHSL(c RGBColor) HSLColor {
	h, s, l := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsl()
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}
