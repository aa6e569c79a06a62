package stylize

import (
	"errors"
	"testing"
)

func TestComposite(t *testing.T) {
	src := solidRaster(t, 2, 2, 96, 160, 224)
	keep := &edgeMask{Width: 2, Height: 2, Pix: []uint8{255, 0, 0, 255}}

	out, err := composite(src, keep)
	if err != nil {
		t.Fatalf("composite failed: %v", err)
	}

	tests := []struct {
		x, y    int
		r, g, b uint8
	}{
		{0, 0, 96, 160, 224},
		{1, 0, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{1, 1, 96, 160, 224},
	}
	for _, tt := range tests {
		r, g, b := out.RGB(tt.x, tt.y)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("pixel (%d,%d): got (%d,%d,%d), want (%d,%d,%d)", tt.x, tt.y, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestComposite_IsBitwiseAnd(t *testing.T) {
	src := solidRaster(t, 1, 1, 0xB7, 0x5A, 0xFF)
	keep := &edgeMask{Width: 1, Height: 1, Pix: []uint8{0x0F}}

	out, err := composite(src, keep)
	if err != nil {
		t.Fatalf("composite failed: %v", err)
	}
	if r, g, b := out.RGB(0, 0); r != 0x07 || g != 0x0A || b != 0x0F {
		t.Errorf("got (%#x,%#x,%#x), want (0x7,0xa,0xf)", r, g, b)
	}
}

func TestComposite_SizeMismatch(t *testing.T) {
	src := solidRaster(t, 3, 3, 1, 2, 3)
	keep := &edgeMask{Width: 2, Height: 3, Pix: make([]uint8, 6)}

	if _, err := composite(src, keep); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}
