// Package compare scores the perceptual similarity of two screenshots and
// renders diff artifacts. The metric is structural similarity (SSIM, Wang et
// al. 2004) over Rec.601 luma with a uniform 7x7 sliding window, computed
// with integral images so a full-page screenshot compares in linear time.
// The metric is symmetric and fully deterministic: no sampling, no
// randomness, identical inputs always produce the identical score.
package compare

import "image"

const (
	// windowSize is the side of the uniform sliding window.
	windowSize = 7

	// Stabilizing constants for an 8-bit dynamic range (L=255, K1=0.01,
	// K2=0.03).
	c1 = (0.01 * 255) * (0.01 * 255)
	c2 = (0.03 * 255) * (0.03 * 255)
)

// luma converts an image to a row-major Rec.601 luma plane.
func luma(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; scale to 0..255.
			out[i] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257.0
			i++
		}
	}
	return out, w, h
}

// integral builds a summed-area table with an extra zero row and column, so
// the sum over [x0,x1)x[y0,y1) is t[y1][x1]-t[y0][x1]-t[y1][x0]+t[y0][x0].
func integral(src []float64, w, h int) []float64 {
	t := make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		rowSum := 0.0
		for x := 0; x < w; x++ {
			rowSum += src[y*w+x]
			t[(y+1)*(w+1)+(x+1)] = t[y*(w+1)+(x+1)] + rowSum
		}
	}
	return t
}

func product(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

func windowSum(t []float64, w, x, y, n int) float64 {
	x1, y1 := x+n, y+n
	return t[y1*(w+1)+x1] - t[y*(w+1)+x1] - t[y1*(w+1)+x] + t[y*(w+1)+x]
}

// ssimMap computes the local SSIM for every 7x7 window fully inside the two
// equally-sized luma planes. It returns the mean SSIM and the per-window map
// (dimensions (w-6) x (h-6), anchored at each window's top-left corner).
// Images smaller than the window on either axis get a degenerate single
// full-image window.
func ssimMap(a, b []float64, w, h int) (float64, []float64, int, int) {
	n := windowSize
	if w < n || h < n {
		// Degenerate: one window covering everything.
		n = min(w, h)
		if n == 0 {
			return 1.0, nil, 0, 0
		}
	}

	ia := integral(a, w, h)
	ib := integral(b, w, h)
	iaa := integral(product(a, a), w, h)
	ibb := integral(product(b, b), w, h)
	iab := integral(product(a, b), w, h)

	mw, mh := w-n+1, h-n+1
	m := make([]float64, mw*mh)
	area := float64(n * n)
	total := 0.0

	for y := 0; y < mh; y++ {
		for x := 0; x < mw; x++ {
			muA := windowSum(ia, w, x, y, n) / area
			muB := windowSum(ib, w, x, y, n) / area
			varA := windowSum(iaa, w, x, y, n)/area - muA*muA
			varB := windowSum(ibb, w, x, y, n)/area - muB*muB
			cov := windowSum(iab, w, x, y, n)/area - muA*muB

			s := ((2*muA*muB + c1) * (2*cov + c2)) /
				((muA*muA + muB*muB + c1) * (varA + varB + c2))
			m[y*mw+x] = s
			total += s
		}
	}
	return total / float64(len(m)), m, mw, mh
}
