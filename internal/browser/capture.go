package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
)

// Capture screenshots the given region as lossless PNG. The region is
// clamped to the rendered document extent first; a box that hangs past the
// page edge is trimmed, not rejected. captureBeyondViewport lets a single
// CDP call cover content below the fold, so full-page capture needs no
// stitching and element capture needs no scrolling.
func (s *Session) Capture(ctx context.Context, r Region) ([]byte, error) {
	doc, err := s.documentExtent(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	r = clamp(r, doc)
	if r.W < 1 || r.H < 1 {
		return nil, fmt.Errorf("%w: region outside the rendered document", ErrCapture)
	}

	res, err := proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      r.X,
			Y:      r.Y,
			Width:  r.W,
			Height: r.H,
			Scale:  1,
		},
		FromSurface:           true,
		CaptureBeyondViewport: true,
	}.Call(s.page.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("%w: browser returned an empty screenshot", ErrCapture)
	}
	return res.Data, nil
}

// clamp trims r to the bounds rectangle.
func clamp(r, bounds Region) Region {
	if r.X < bounds.X {
		r.W -= bounds.X - r.X
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.H -= bounds.Y - r.Y
		r.Y = bounds.Y
	}
	if r.X+r.W > bounds.X+bounds.W {
		r.W = bounds.X + bounds.W - r.X
	}
	if r.Y+r.H > bounds.Y+bounds.H {
		r.H = bounds.Y + bounds.H - r.Y
	}
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}
