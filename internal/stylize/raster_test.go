package stylize

import (
	"errors"
	"testing"
)

func TestNewRasterImage(t *testing.T) {
	img, err := NewRasterImage(4, 3)
	if err != nil {
		t.Fatalf("NewRasterImage failed: %v", err)
	}
	if len(img.Pix) != 4*3*3 {
		t.Errorf("Pix length: got %d, want %d", len(img.Pix), 36)
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d, want 0", i, v)
		}
	}
}

func TestNewRasterImage_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       error
	}{
		{"zero width", 0, 10, ErrUnsupportedFormat},
		{"negative height", 10, -1, ErrUnsupportedFormat},
		{"too many pixels", MaxPixels, 2, ErrAllocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewRasterImage(tt.width, tt.height)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error: got %v, want %v", err, tt.wantErr)
			}
			if img != nil {
				t.Error("expected nil image on error")
			}
		})
	}
}

func TestRasterImage_SetRGB(t *testing.T) {
	img := solidRaster(t, 3, 2, 0, 0, 0)
	img.SetRGB(2, 1, 10, 20, 30)

	r, g, b := img.RGB(2, 1)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("RGB(2,1): got (%d,%d,%d), want (10,20,30)", r, g, b)
	}
	if off := (1*3 + 2) * 3; img.Pix[off] != 10 {
		t.Errorf("row-major layout: Pix[%d] = %d, want 10", off, img.Pix[off])
	}
}

func TestRasterImage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		img     *RasterImage
		wantErr error
	}{
		{"nil", nil, ErrUnsupportedFormat},
		{"empty", &RasterImage{}, ErrUnsupportedFormat},
		{"rgba buffer", &RasterImage{Width: 2, Height: 2, Pix: make([]uint8, 16)}, ErrUnsupportedFormat},
		{"gray buffer", &RasterImage{Width: 2, Height: 2, Pix: make([]uint8, 4)}, ErrUnsupportedFormat},
		{"short buffer", &RasterImage{Width: 2, Height: 2, Pix: make([]uint8, 7)}, ErrUnsupportedFormat},
		{"oversized", &RasterImage{Width: MaxPixels, Height: 4}, ErrAllocation},
		{"valid", &RasterImage{Width: 2, Height: 2, Pix: make([]uint8, 12)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRasterImage_Clone(t *testing.T) {
	src := noiseRaster(t, 5, 5, 7)
	dst, err := src.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	dst.Pix[0] ^= 0xFF
	if src.Pix[0] == dst.Pix[0] {
		t.Error("Clone shares its buffer with the source")
	}
}
