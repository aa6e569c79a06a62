package stylize

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// smoothIterations is the number of horizontal+vertical pass pairs of the
// recursive filter.
const smoothIterations = 3

// Smooth applies an edge-preserving domain-transform recursive filter.
//
// sigmaS is the spatial extent in pixels; larger values flatten larger
// regions. sigmaR is the range sigma on colors normalized to [0,1] and is
// floored to MinEdgePreservation. A color step between neighbours stretches
// the transformed distance by sigmaS/sigmaR times the summed channel
// difference, so strong boundaries stop the averaging while flat regions
// are blended over roughly sigmaS pixels. sigmaS of 0 returns a copy.
func Smooth(src *RasterImage, sigmaS, sigmaR float64) (*RasterImage, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	sigmaS = nonNegative(sigmaS)
	sigmaR = math.Max(MinEdgePreservation, nonNegative(sigmaR))
	if sigmaS == 0 {
		return src.Clone()
	}

	w, h := src.Width, src.Height
	img, err := alloc[float32](w, h, Channels)
	if err != nil {
		return nil, err
	}
	dx, err := alloc[float32](w, h, 1)
	if err != nil {
		return nil, err
	}
	dy, err := alloc[float32](w, h, 1)
	if err != nil {
		return nil, err
	}

	for i, v := range src.Pix {
		img[i] = float32(v) / 255
	}
	domainDerivatives(img, dx, dy, w, h, float32(sigmaS/sigmaR))

	norm := math.Sqrt(math.Pow(4, smoothIterations) - 1)
	for i := 0; i < smoothIterations; i++ {
		sigmaH := sigmaS * math.Sqrt(3) * math.Pow(2, float64(smoothIterations-i-1)) / norm
		a := math.Exp(-math.Sqrt2 / sigmaH)
		filterRows(img, dx, w, h, a)
		filterColumns(img, dy, w, h, a)
	}

	dst, err := NewRasterImage(w, h)
	if err != nil {
		return nil, err
	}
	for i, v := range img {
		dst.Pix[i] = toByte(float64(v) * 255)
	}
	return dst, nil
}

// domainDerivatives fills dx[y*w+x] with the transformed distance between
// (x-1, y) and (x, y), and dy[y*w+x] with the one between (x, y-1) and (x, y).
// Index 0 of each row (dx) and row 0 (dy) are unused.
func domainDerivatives(img, dx, dy []float32, w, h int, ratio float32) {
	stride := w * Channels
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * stride
			for x := 1; x < w; x++ {
				cur, prev := row+x*Channels, row+(x-1)*Channels
				dx[y*w+x] = 1 + ratio*channelDistance(img, cur, prev)
			}
			if y == 0 {
				continue
			}
			for x := 0; x < w; x++ {
				cur := row + x*Channels
				dy[y*w+x] = 1 + ratio*channelDistance(img, cur, cur-stride)
			}
		}
	})
}

func channelDistance(img []float32, i, j int) float32 {
	var d float32
	for c := 0; c < Channels; c++ {
		diff := img[i+c] - img[j+c]
		if diff < 0 {
			diff = -diff
		}
		d += diff
	}
	return d
}

// filterRows runs the causal and anti-causal recursive passes along each row.
func filterRows(img, dx []float32, w, h int, a float64) {
	stride := w * Channels
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * stride
			for x := 1; x < w; x++ {
				k := float32(math.Pow(a, float64(dx[y*w+x])))
				blend(img, row+x*Channels, row+(x-1)*Channels, k)
			}
			for x := w - 2; x >= 0; x-- {
				k := float32(math.Pow(a, float64(dx[y*w+x+1])))
				blend(img, row+x*Channels, row+(x+1)*Channels, k)
			}
		}
	})
}

// filterColumns runs the causal and anti-causal recursive passes along each column.
func filterColumns(img, dy []float32, w, h int, a float64) {
	stride := w * Channels
	parallel.Line(w, func(start, end int) {
		for x := start; x < end; x++ {
			col := x * Channels
			for y := 1; y < h; y++ {
				k := float32(math.Pow(a, float64(dy[y*w+x])))
				blend(img, y*stride+col, (y-1)*stride+col, k)
			}
			for y := h - 2; y >= 0; y-- {
				k := float32(math.Pow(a, float64(dy[(y+1)*w+x])))
				blend(img, y*stride+col, (y+1)*stride+col, k)
			}
		}
	})
}

// blend moves pixel i toward pixel j by weight k.
func blend(img []float32, i, j int, k float32) {
	for c := 0; c < Channels; c++ {
		img[i+c] += k * (img[j+c] - img[i+c])
	}
}

// toByte rounds half-up and clamps to [0,255].
func toByte(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
