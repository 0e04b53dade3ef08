package compare

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// checker gives the luma plane real structure so SSIM has variance to work
// with.
func checker(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
			}
		}
	}
	return img
}

func TestIdenticalImagesScoreOne(t *testing.T) {
	img := checker(120, 90, 8)
	res, err := Images(img, img)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 1.0 {
		t.Errorf("score: got %v, want 1.0", res.Score)
	}
	if res.DimensionMismatch {
		t.Error("DimensionMismatch: got true, want false")
	}
}

func TestDeterminism(t *testing.T) {
	a := checker(100, 80, 5)
	b := checker(100, 80, 7)
	first, err := Images(a, b)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := Images(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if again.Score != first.Score {
			t.Fatalf("run %d: score %v differs from first %v", i, again.Score, first.Score)
		}
	}
}

func TestSymmetry(t *testing.T) {
	a := checker(100, 80, 5)
	b := checker(100, 80, 9)
	ab, err := Images(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Images(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab.Score != ba.Score {
		t.Errorf("score(a,b)=%v, score(b,a)=%v, want equal", ab.Score, ba.Score)
	}
}

func TestDifferentSolidColorsScoreLow(t *testing.T) {
	a := solid(64, 64, color.White)
	b := solid(64, 64, color.Black)
	res, err := Images(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score >= 0.5 {
		t.Errorf("white vs black score: got %v, want < 0.5", res.Score)
	}
}

func TestDimensionMismatchCoverage(t *testing.T) {
	a := checker(100, 100, 10)
	b := checker(100, 50, 10) // identical content, bottom half missing
	res, err := Images(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !res.DimensionMismatch {
		t.Fatal("DimensionMismatch: got false, want true")
	}
	if res.OverlapW != 100 || res.OverlapH != 50 {
		t.Errorf("overlap: got %dx%d, want 100x50", res.OverlapW, res.OverlapH)
	}
	// Overlap is identical, so the score is exactly the coverage ratio.
	if got, want := res.Score, 0.5; got != want {
		t.Errorf("score: got %v, want %v", got, want)
	}
}

func TestChangedRegionProducesDiff(t *testing.T) {
	a := checker(200, 200, 10)
	b := checker(200, 200, 10)
	// Paint over a block, simulating a background-color regression.
	draw.Draw(b, image.Rect(50, 50, 120, 120), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)

	res, err := Images(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score >= 1.0 {
		t.Fatalf("score: got %v, want < 1.0", res.Score)
	}
	diff, err := res.Diff(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff == nil {
		t.Fatal("diff: got nil, want artifact")
	}
	// The outline must touch the changed block.
	found := false
	bounds := diff.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y && !found; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bl, _ := diff.At(x, y).RGBA()
			if uint8(r>>8) == outlineColor.R && uint8(g>>8) == outlineColor.G && uint8(bl>>8) == outlineColor.B {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("diff image contains no outline pixels")
	}
}

func TestIdenticalImagesProduceNoDiff(t *testing.T) {
	img := checker(100, 100, 10)
	res, err := Images(img, img)
	if err != nil {
		t.Fatal(err)
	}
	diff, err := res.Diff(img)
	if err != nil {
		t.Fatal(err)
	}
	if diff != nil {
		t.Error("diff: got artifact, want nil for identical images")
	}
}

// A size-only regression (identical overlap, score reduced purely by
// coverage) must still yield a visual artifact marking the added content.
func TestDimensionOnlyMismatchProducesDiff(t *testing.T) {
	baseline := solid(100, 100, color.White)
	candidate := solid(100, 150, color.White)

	res, err := Images(baseline, candidate)
	if err != nil {
		t.Fatal(err)
	}
	if !res.DimensionMismatch {
		t.Fatal("expected dimension mismatch")
	}

	diff, err := res.Diff(candidate)
	if err != nil {
		t.Fatal(err)
	}
	if diff == nil {
		t.Fatal("expected a diff artifact for a size-only mismatch")
	}

	rgba := diff.(*image.RGBA)
	// The added band below the overlap starts at y=100; its outline must be
	// painted there while the identical overlap interior stays untouched.
	if rgba.RGBAAt(50, 100) != outlineColor {
		t.Errorf("added band not outlined: got %v at (50,100)", rgba.RGBAAt(50, 100))
	}
	if rgba.RGBAAt(50, 50) == outlineColor {
		t.Error("identical overlap interior was painted")
	}
}

// When the candidate is the smaller image the lost content has no pixels to
// box, so the affected edge carries a band instead.
func TestLostContentMarksEdge(t *testing.T) {
	baseline := solid(100, 150, color.White)
	candidate := solid(100, 100, color.White)

	res, err := Images(baseline, candidate)
	if err != nil {
		t.Fatal(err)
	}

	diff, err := res.Diff(candidate)
	if err != nil {
		t.Fatal(err)
	}
	if diff == nil {
		t.Fatal("expected a diff artifact when content was lost")
	}

	rgba := diff.(*image.RGBA)
	// Edge band covers the bottom 2*outlineWidth rows.
	if rgba.RGBAAt(50, 97) != outlineColor {
		t.Errorf("lost-content edge not marked: got %v at (50,97)", rgba.RGBAAt(50, 97))
	}
	if rgba.RGBAAt(50, 10) == outlineColor {
		t.Error("interior row was painted")
	}
}

func TestComposite(t *testing.T) {
	a := checker(100, 100, 10)
	b := checker(50, 80, 10)
	out := Composite(a, b, nil)
	if out == nil {
		t.Fatal("composite: got nil")
	}
	if got := out.Bounds().Dy(); got != 80 {
		t.Errorf("composite height: got %d, want 80", got)
	}
}

func TestTinyImages(t *testing.T) {
	a := solid(3, 3, color.White)
	res, err := Images(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 1.0 {
		t.Errorf("3x3 identical: got %v, want 1.0", res.Score)
	}
}

func TestRegionsFiltersSpeckle(t *testing.T) {
	w, h := 50, 50
	mask := make([]bool, w*h)
	// 6x6 = 36 px, under the 40 px area floor.
	for y := 10; y < 16; y++ {
		for x := 10; x < 16; x++ {
			mask[y*w+x] = true
		}
	}
	if got := regions(mask, w, h, minRegionArea); len(got) != 0 {
		t.Errorf("speckle regions: got %d, want 0", len(got))
	}
	// 7x7 = 49 px passes.
	for y := 30; y < 37; y++ {
		for x := 30; x < 37; x++ {
			mask[y*w+x] = true
		}
	}
	got := regions(mask, w, h, minRegionArea)
	if len(got) != 1 {
		t.Fatalf("regions: got %d, want 1", len(got))
	}
	want := image.Rect(30, 30, 37, 37)
	if got[0] != want {
		t.Errorf("region box: got %v, want %v", got[0], want)
	}
}
