package stylize

import (
	"github.com/anthonynsimon/bild/parallel"
)

// Hysteresis thresholds on the L1 Sobel magnitude of 8-bit luma.
const (
	EdgeLowThreshold  = 100
	EdgeHighThreshold = 200
)

// tan(22.5 deg) in Q15 fixed point.
const tan22Q15 = 13573

// edgeMask is a single-channel binary image: every value is 0 or 255.
type edgeMask struct {
	Width  int
	Height int
	Pix    []uint8
}

// invert flips the mask in place so edges become 0 and background 255.
func (m *edgeMask) invert() {
	for i, v := range m.Pix {
		m.Pix[i] = ^v
	}
}

// luma converts src to 8-bit grayscale with BT.601 weights in Q14 fixed
// point, rounding half-up.
func luma(src *RasterImage) ([]uint8, error) {
	gray, err := alloc[uint8](src.Width, src.Height, 1)
	if err != nil {
		return nil, err
	}
	parallel.Line(src.Height, func(start, end int) {
		for i := start * src.Width; i < end*src.Width; i++ {
			p := i * Channels
			r, g, b := uint32(src.Pix[p]), uint32(src.Pix[p+1]), uint32(src.Pix[p+2])
			gray[i] = uint8((r*4899 + g*9617 + b*1868 + 1<<13) >> 14)
		}
	})
	return gray, nil
}

// extractEdges detects structural edges in src and returns the binary edge
// mask (255 = edge, 0 = background).
//
// The detector follows the Canny scheme:
//
//  1. Luma conversion (see luma).
//  2. 3x3 Sobel gradients with replicated borders; magnitude |gx|+|gy|.
//  3. Non-maximum suppression: a pixel survives only if its magnitude is a
//     local maximum across the edge. The gradient direction is binned into
//     horizontal, vertical and the two diagonals at 22.5 degree boundaries.
//  4. Hysteresis: survivors above EdgeHighThreshold are edges; survivors
//     above EdgeLowThreshold become edges only when 8-connected to one.
//
// No pre-blur is applied, so a region of constant color yields no edges.
func extractEdges(src *RasterImage) (*edgeMask, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	gray, err := luma(src)
	if err != nil {
		return nil, err
	}
	return canny(gray, src.Width, src.Height, EdgeLowThreshold, EdgeHighThreshold)
}

func canny(gray []uint8, w, h int, low, high int32) (*edgeMask, error) {
	gx, err := alloc[int32](w, h, 1)
	if err != nil {
		return nil, err
	}
	gy, err := alloc[int32](w, h, 1)
	if err != nil {
		return nil, err
	}
	mag, err := alloc[int32](w, h, 1)
	if err != nil {
		return nil, err
	}
	state, err := alloc[uint8](w, h, 1)
	if err != nil {
		return nil, err
	}
	out, err := alloc[uint8](w, h, 1)
	if err != nil {
		return nil, err
	}

	px := func(x, y int) int32 {
		return int32(gray[clamp(y, 0, h-1)*w+clamp(x, 0, w-1)])
	}
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				dx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
					px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
				dy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
					px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
				i := y*w + x
				gx[i], gy[i], mag[i] = dx, dy, abs32(dx)+abs32(dy)
			}
		}
	})

	// Magnitudes outside the image count as zero.
	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		_ uint8 = iota
		weak
		strong
	)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				m := mag[i]
				if m <= low {
					continue
				}
				ax, ay := int64(abs32(gx[i])), int64(abs32(gy[i]))
				tg22x := ax * tan22Q15
				yq := ay << 15

				var peak bool
				switch {
				case yq < tg22x:
					peak = m > magAt(x-1, y) && m >= magAt(x+1, y)
				case yq > tg22x+ax<<16:
					peak = m > magAt(x, y-1) && m >= magAt(x, y+1)
				default:
					s := 1
					if (gx[i] ^ gy[i]) < 0 {
						s = -1
					}
					peak = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
				}
				if !peak {
					continue
				}
				if m > high {
					state[i] = strong
				} else {
					state[i] = weak
				}
			}
		}
	})

	stack := make([]int, 0, 64)
	for i, s := range state {
		if s == strong {
			out[i] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					out[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return &edgeMask{Width: w, Height: h, Pix: out}, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
