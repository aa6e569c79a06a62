package stylize

import (
	"math/rand"
	"testing"
)

// solidRaster creates a width x height image filled with one color.
func solidRaster(t *testing.T, width, height int, r, g, b uint8) *RasterImage {
	t.Helper()
	img, err := NewRasterImage(width, height)
	if err != nil {
		t.Fatalf("NewRasterImage failed: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, r, g, b)
		}
	}
	return img
}

// noiseRaster creates a deterministic pseudo-random image.
func noiseRaster(t *testing.T, width, height int, seed int64) *RasterImage {
	t.Helper()
	img, err := NewRasterImage(width, height)
	if err != nil {
		t.Fatalf("NewRasterImage failed: %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

// splitRaster creates an image whose left half is one color and right half another.
func splitRaster(t *testing.T, width, height int, left, right [3]uint8) *RasterImage {
	t.Helper()
	img, err := NewRasterImage(width, height)
	if err != nil {
		t.Fatalf("NewRasterImage failed: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := left
			if x >= width/2 {
				c = right
			}
			img.SetRGB(x, y, c[0], c[1], c[2])
		}
	}
	return img
}
