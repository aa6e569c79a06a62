package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/anime-filter/internal/stylize"
)

func TestToRaster_ColorModels(t *testing.T) {
	rect := image.Rect(0, 0, 3, 2)

	nrgba := image.NewNRGBA(rect)
	nrgba.SetNRGBA(1, 1, color.NRGBA{200, 100, 50, 128})

	rgba := image.NewRGBA(rect)
	rgba.SetRGBA(1, 1, color.RGBA{200, 100, 50, 255})

	gray := image.NewGray(rect)
	gray.SetGray(1, 1, color.Gray{77})

	pal := image.NewPaletted(rect, color.Palette{color.Black, color.RGBA{9, 8, 7, 255}})
	pal.SetColorIndex(1, 1, 1)

	tests := []struct {
		name string
		img  image.Image
		want [3]uint8
	}{
		{"nrgba keeps color under alpha", nrgba, [3]uint8{200, 100, 50}},
		{"rgba", rgba, [3]uint8{200, 100, 50}},
		{"gray", gray, [3]uint8{77, 77, 77}},
		{"paletted", pal, [3]uint8{9, 8, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ToRaster(tt.img)
			if err != nil {
				t.Fatalf("ToRaster failed: %v", err)
			}
			if r.Width != 3 || r.Height != 2 || len(r.Pix) != 3*2*stylize.Channels {
				t.Fatalf("raster shape %dx%d len %d", r.Width, r.Height, len(r.Pix))
			}
			if err := r.Validate(); err != nil {
				t.Fatalf("raster invalid: %v", err)
			}
			red, green, blue := r.RGB(1, 1)
			if [3]uint8{red, green, blue} != tt.want {
				t.Errorf("got (%d,%d,%d), want %v", red, green, blue, tt.want)
			}
		})
	}
}

func TestToRaster_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 14, 23))
	img.SetRGBA(10, 20, color.RGBA{1, 2, 3, 255})
	img.SetRGBA(13, 22, color.RGBA{4, 5, 6, 255})

	r, err := ToRaster(img)
	if err != nil {
		t.Fatalf("ToRaster failed: %v", err)
	}
	if r.Width != 4 || r.Height != 3 {
		t.Fatalf("size: got %dx%d", r.Width, r.Height)
	}
	if red, green, blue := r.RGB(0, 0); red != 1 || green != 2 || blue != 3 {
		t.Errorf("origin: got (%d,%d,%d)", red, green, blue)
	}
	if red, green, blue := r.RGB(3, 2); red != 4 || green != 5 || blue != 6 {
		t.Errorf("corner: got (%d,%d,%d)", red, green, blue)
	}
}

func TestToRaster_Empty(t *testing.T) {
	if _, err := ToRaster(image.NewRGBA(image.Rect(0, 0, 0, 5))); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestFromRaster(t *testing.T) {
	r, err := stylize.NewRasterImage(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	r.SetRGB(1, 0, 11, 22, 33)

	img := FromRaster(r)
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{11, 22, 33, 255}) {
		t.Errorf("pixel: got %v", got)
	}
	if got := img.NRGBAAt(0, 1); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("black pixel: got %v", got)
	}

	back, err := ToRaster(img)
	if err != nil {
		t.Fatal(err)
	}
	for i := range r.Pix {
		if back.Pix[i] != r.Pix[i] {
			t.Fatalf("round trip differs at %d", i)
		}
	}
}

func TestDownscale(t *testing.T) {
	img := createInMemoryImage(400, 200, color.RGBA{10, 10, 10, 255})

	tests := []struct {
		name   string
		maxDim int
		w, h   int
	}{
		{"disabled", 0, 400, 200},
		{"negative", -5, 400, 200},
		{"already fits", 400, 400, 200},
		{"landscape", 100, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downscale(img, tt.maxDim)
			if got.Bounds().Dx() != tt.w || got.Bounds().Dy() != tt.h {
				t.Errorf("got %dx%d, want %dx%d", got.Bounds().Dx(), got.Bounds().Dy(), tt.w, tt.h)
			}
		})
	}

	if Downscale(img, 1000) != img {
		t.Error("image that fits should be returned as is")
	}
}
