package compare

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const (
	// markThreshold: a window with local SSIM below this is considered
	// visually different and contributes to the diff mask.
	markThreshold = 0.95

	// minRegionArea filters out sub-40px speckle (anti-aliasing jitter)
	// before boxes are drawn.
	minRegionArea = 40

	outlineWidth = 2
)

var outlineColor = color.RGBA{R: 220, G: 38, B: 38, A: 255}

// Diff renders the visual diff artifact: a copy of the candidate with red
// boxes outlining the regions whose local SSIM fell below the mark
// threshold. Dimension mismatches are marked too: content the candidate
// added beyond the overlap is boxed, content it lost is flagged with a band
// along the affected edge. Returns nil (no error) when nothing differs.
func (r *Result) Diff(candidate image.Image) (image.Image, error) {
	if r.smap == nil {
		return nil, fmt.Errorf("compare: no similarity map")
	}

	mask := make([]bool, r.smapW*r.smapH)
	marked := 0
	for i, s := range r.smap {
		if s < markThreshold {
			mask[i] = true
			marked++
		}
	}

	var rects []image.Rectangle
	if marked > 0 {
		// Map windows back to pixels: a window anchored at (x,y) covers
		// (x,y)..(x+side, y+side).
		pad := r.windowSide
		for _, b := range regions(mask, r.smapW, r.smapH, minRegionArea) {
			rects = append(rects, image.Rect(b.Min.X, b.Min.Y, b.Max.X+pad, b.Max.Y+pad))
		}
	}

	cb := candidate.Bounds()
	cw, ch := cb.Dx(), cb.Dy()
	if r.DimensionMismatch {
		rects = append(rects, dimensionBands(cw, ch, r.baseW, r.baseH, r.OverlapW, r.OverlapH)...)
	}
	if len(rects) == 0 {
		return nil, nil
	}

	out := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(out, out.Bounds(), candidate, cb.Min, draw.Src)
	for _, b := range rects {
		drawOutline(out, b)
	}
	return out, nil
}

// dimensionBands marks size-only differences on the candidate. Content the
// candidate has beyond the overlap is boxed directly; content only the
// baseline had has no pixels to box, so the affected candidate edge gets a
// thin band instead.
func dimensionBands(cw, ch, bw, bh, ow, oh int) []image.Rectangle {
	edge := 2 * outlineWidth
	var out []image.Rectangle
	if cw > ow {
		out = append(out, image.Rect(ow, 0, cw, ch))
	} else if bw > ow {
		out = append(out, image.Rect(max(cw-edge, 0), 0, cw, ch))
	}
	if ch > oh {
		out = append(out, image.Rect(0, oh, cw, ch))
	} else if bh > oh {
		out = append(out, image.Rect(0, max(ch-edge, 0), cw, ch))
	}
	return out
}

// Composite renders a side-by-side review image: baseline, candidate and
// diff panes scaled to a common height with Catmull-Rom resampling and
// separated by a thin gutter. Any nil pane is skipped.
func Composite(panes ...image.Image) image.Image {
	const maxHeight = 600
	const gutter = 4

	var present []image.Image
	for _, p := range panes {
		if p != nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}

	height := maxHeight
	for _, p := range present {
		if h := p.Bounds().Dy(); h < height {
			height = h
		}
	}
	if height < 1 {
		height = 1
	}

	widths := make([]int, len(present))
	total := 0
	for i, p := range present {
		b := p.Bounds()
		w := b.Dx() * height / b.Dy()
		if w < 1 {
			w = 1
		}
		widths[i] = w
		total += w
	}
	total += gutter * (len(present) - 1)

	out := image.NewRGBA(image.Rect(0, 0, total, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x := 0
	for i, p := range present {
		dst := image.Rect(x, 0, x+widths[i], height)
		xdraw.CatmullRom.Scale(out, dst, p, p.Bounds(), xdraw.Over, nil)
		x += widths[i] + gutter
	}
	return out
}

// regions labels 4-connected components of the mask and returns the bounding
// box of every component with at least minArea set pixels. Scan order makes
// the output deterministic.
func regions(mask []bool, w, h, minArea int) []image.Rectangle {
	seen := make([]bool, len(mask))
	var out []image.Rectangle
	var stack []int

	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		area := 0
		minX, minY := w, h
		maxX, maxY := 0, 0
		stack = append(stack[:0], start)
		seen[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			area++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			for _, j := range [4]int{i - 1, i + 1, i - w, i + w} {
				if j < 0 || j >= len(mask) || !mask[j] || seen[j] {
					continue
				}
				// Reject horizontal wraparound.
				if (j == i-1 && x == 0) || (j == i+1 && x == w-1) {
					continue
				}
				seen[j] = true
				stack = append(stack, j)
			}
		}
		if area >= minArea {
			out = append(out, image.Rect(minX, minY, maxX+1, maxY+1))
		}
	}
	return out
}

// drawOutline draws a rectangle outline clamped to the image bounds.
func drawOutline(img *image.RGBA, r image.Rectangle) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	u := image.NewUniform(outlineColor)
	w := outlineWidth
	// Top, bottom, left, right bars.
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, min(r.Min.Y+w, r.Max.Y)), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, max(r.Max.Y-w, r.Min.Y), r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, min(r.Min.X+w, r.Max.X), r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(max(r.Max.X-w, r.Min.X), r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
