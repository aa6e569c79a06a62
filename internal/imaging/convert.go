package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/anime-filter/internal/stylize"
)

// ToRaster converts any decoded image into a 3-channel raster.
//
// Palette, gray, YCbCr, CMYK and 16-bit images are normalized to 8-bit RGB.
// Alpha is dropped without compositing: the stored (non-premultiplied) color
// of a translucent pixel is kept as is.
func ToRaster(img image.Image) (*stylize.RasterImage, error) {
	b := img.Bounds()
	dst, err := stylize.NewRasterImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if src, ok := img.(*image.NRGBA); ok {
		parallel.Line(dst.Height, func(start, end int) {
			for y := start; y < end; y++ {
				row := src.Pix[y*src.Stride : y*src.Stride+dst.Width*4]
				out := dst.Pix[y*dst.Width*stylize.Channels:]
				for x := 0; x < dst.Width; x++ {
					out[x*3], out[x*3+1], out[x*3+2] = row[x*4], row[x*4+1], row[x*4+2]
				}
			}
		})
		return dst, nil
	}

	parallel.Line(dst.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < dst.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.SetRGB(x, y, c.R, c.G, c.B)
			}
		}
	})
	return dst, nil
}

// FromRaster returns an opaque NRGBA copy of a raster for encoding.
func FromRaster(r *stylize.RasterImage) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	parallel.Line(r.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < r.Width; x++ {
				red, green, blue := r.RGB(x, y)
				row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = red, green, blue, 0xff
			}
		}
	})
	return img
}
