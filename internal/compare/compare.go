package compare

import (
	"fmt"
	"image"
)

// Result is the outcome of scoring a baseline/candidate pair. Score is in
// [0,1], 1.0 meaning perceptually identical. DimensionMismatch reports that
// the two images differed in pixel dimensions and the score was computed over
// the overlapping region and scaled by area coverage.
type Result struct {
	Score             float64
	DimensionMismatch bool

	// Overlap region dimensions actually scored.
	OverlapW int
	OverlapH int

	// Per-window local SSIM map over the overlap, used by diff rendering.
	smap       []float64
	smapW      int
	smapH      int
	windowSide int

	// Baseline dimensions, so diff rendering can mark lost content.
	baseW int
	baseH int
}

// Images scores baseline against candidate.
//
// Dimension policy: the images are never resized or stretched, since
// stretching hides layout regressions. When dimensions differ, the top-left
// overlapping region (min width x min height) is scored and the result is
// multiplied by the area coverage (minW*minH)/(maxW*maxH), so content that
// exists in only one image counts as difference. The mismatch itself is
// reported in Result.DimensionMismatch, not as an error.
func Images(baseline, candidate image.Image) (*Result, error) {
	if baseline == nil || candidate == nil {
		return nil, fmt.Errorf("compare: nil image")
	}
	bw, bh := baseline.Bounds().Dx(), baseline.Bounds().Dy()
	cw, ch := candidate.Bounds().Dx(), candidate.Bounds().Dy()
	if bw == 0 || bh == 0 || cw == 0 || ch == 0 {
		return nil, fmt.Errorf("compare: empty image (%dx%d vs %dx%d)", bw, bh, cw, ch)
	}

	res := &Result{windowSide: windowSize, baseW: bw, baseH: bh}

	ow, oh := min(bw, cw), min(bh, ch)
	res.OverlapW, res.OverlapH = ow, oh

	la, _, _ := luma(cropTopLeft(baseline, ow, oh))
	lb, _, _ := luma(cropTopLeft(candidate, ow, oh))

	score, smap, mw, mh := ssimMap(la, lb, ow, oh)
	res.smap, res.smapW, res.smapH = smap, mw, mh

	if bw != cw || bh != ch {
		res.DimensionMismatch = true
		coverage := float64(ow*oh) / float64(max(bw, cw)*max(bh, ch))
		score *= coverage
	}

	// SSIM can go slightly negative on inverted structure; the reported
	// score is clamped to [0,1].
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	res.Score = score
	return res, nil
}

// cropTopLeft returns a view of img restricted to its top-left w x h pixels.
func cropTopLeft(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	r := image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+h)
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	// Fallback copy for exotic image types.
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}
