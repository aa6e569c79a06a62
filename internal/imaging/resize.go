package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Downscale shrinks img to fit inside maxDim x maxDim, keeping the aspect
// ratio. It returns img unchanged when maxDim <= 0 or the image already fits.
func Downscale(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}
