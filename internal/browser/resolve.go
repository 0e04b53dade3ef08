package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/regard/target"
)

// Region is a capture rectangle in CSS pixels, document coordinates.
type Region struct {
	X, Y, W, H float64
}

// Resolve turns a capture target into a concrete region. Page targets cover
// the full rendered document, including content below the fold. Element
// targets use the bounding box of the first match (first-match-wins is the
// defined policy; multiple matches are not an error). Resolution only reads
// the DOM; it never scrolls or mutates the page.
func (s *Session) Resolve(ctx context.Context, t target.Target) (Region, error) {
	if err := t.Validate(); err != nil {
		return Region{}, err
	}
	if t.IsPage() {
		return s.documentExtent(ctx)
	}
	return s.elementBox(ctx, t)
}

// documentExtent returns the full scrollable document size from layout
// metrics.
func (s *Session) documentExtent(ctx context.Context) (Region, error) {
	m, err := proto.PageGetLayoutMetrics{}.Call(s.page.Context(ctx))
	if err != nil {
		return Region{}, fmt.Errorf("browser: layout metrics: %w", err)
	}
	size := m.CSSContentSize
	if size == nil {
		return Region{}, fmt.Errorf("browser: layout metrics returned no content size")
	}
	return Region{X: 0, Y: 0, W: size.Width, H: size.Height}, nil
}

// elementBox locates the first element matching the target's CSS selector and
// returns its bounding box. Zero matches yield ErrElementNotFound
// immediately; element resolution never waits for the element to appear.
func (s *Session) elementBox(ctx context.Context, t target.Target) (Region, error) {
	el, err := s.page.Context(ctx).Sleeper(rod.NotFoundSleeper).Element(t.CSS())
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return Region{}, fmt.Errorf("%w: %s", ErrElementNotFound, t)
		}
		return Region{}, fmt.Errorf("browser: query %s: %w", t, err)
	}

	shape, err := el.Shape()
	if err != nil {
		return Region{}, fmt.Errorf("browser: element shape %s: %w", t, err)
	}
	box := shape.Box()
	if box == nil || box.Width <= 0 || box.Height <= 0 {
		return Region{}, fmt.Errorf("%w: %s has no rendered box", ErrElementNotFound, t)
	}
	return Region{X: box.X, Y: box.Y, W: box.Width, H: box.Height}, nil
}
