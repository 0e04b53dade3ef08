// Package regard captures reference screenshots of web pages or elements and
// compares fresh captures against them to detect visual regressions. The
// engine exposes two operations, Capture and Compare; argument parsing,
// console rendering and exit codes live outside, in cmd/regard.
package regard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/regard/internal/browser"
	"github.com/hazyhaar/regard/internal/compare"
	"github.com/hazyhaar/regard/internal/store"
)

// Engine runs capture and compare operations against a baseline store. One
// browser session is opened per operation and released on every exit path;
// no state is shared across invocations except the store itself.
type Engine struct {
	cfg   *Config
	log   *slog.Logger
	store *store.Store
}

// New validates the configuration and opens the baseline store.
func New(cfg *Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.BaselineDir)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, log: logger, store: st}, nil
}

// Close releases the baseline store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store exposes the baseline index (read-only use: listings, gallery).
func (e *Engine) Store() *store.Store { return e.store }

// Threshold returns the configured similarity threshold.
func (e *Engine) Threshold() float64 { return e.cfg.Threshold }

// Capture navigates to the request URL, screenshots the target and stores
// the result as the baseline for the request name. Any prior baseline under
// the same name and target kind is replaced.
func (e *Engine) Capture(ctx context.Context, req Request) (*CaptureOutcome, error) {
	start := time.Now()
	if err := e.checkRequest(&req); err != nil {
		return nil, err
	}

	pngBytes, err := e.shoot(ctx, req)
	if err != nil {
		return nil, err
	}

	w, h, err := pngDimensions(pngBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %v", ErrCapture, err)
	}

	path, err := e.store.Write(ctx, req.Name, req.Target.Tag(), pngBytes, store.Meta{
		URL:    req.URL,
		Width:  w,
		Height: h,
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("baseline captured", "name", req.Name, "target", req.Target.String(),
		"path", path, "size", fmt.Sprintf("%dx%d", w, h))

	return &CaptureOutcome{
		Name:     req.Name,
		URL:      req.URL,
		Path:     path,
		Width:    w,
		Height:   h,
		Duration: time.Since(start).Seconds(),
	}, nil
}

// Compare captures the target afresh and scores it against the stored
// baseline. A missing baseline fails with ErrBaselineNotFound before any
// browser is launched. A score below the threshold is reported in the
// outcome, not as an error.
func (e *Engine) Compare(ctx context.Context, req Request) (*CompareOutcome, error) {
	start := time.Now()
	if err := e.checkRequest(&req); err != nil {
		return nil, err
	}

	tag := req.Target.Tag()
	baselineBytes, err := e.store.Read(ctx, req.Name, tag)
	if err != nil {
		return nil, err
	}
	baseline, err := decodePNG(baselineBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: baseline %s is not a valid PNG: %v", ErrStorage, req.Name, err)
	}

	candidateBytes, err := e.shoot(ctx, req)
	if err != nil {
		return nil, err
	}
	candidate, err := decodePNG(candidateBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %v", ErrCapture, err)
	}

	currentPath := filepath.Join(e.cfg.ResultsDir, req.Name+"_current.png")
	if err := writeFile(currentPath, candidateBytes); err != nil {
		return nil, err
	}

	res, err := compare.Images(baseline, candidate)
	if err != nil {
		return nil, fmt.Errorf("regard: compare %s: %w", req.Name, err)
	}

	out := &CompareOutcome{
		Name:              req.Name,
		URL:               req.URL,
		Score:             res.Score,
		Threshold:         e.cfg.Threshold,
		Matched:           matched(res.Score, e.cfg.Threshold),
		DimensionMismatch: res.DimensionMismatch,
		BaselinePath:      e.store.Path(req.Name, tag),
		CurrentPath:       currentPath,
	}

	if !out.Matched {
		// Best-effort: a failure here degrades to "score computed, diff
		// unavailable" and never fails the comparison.
		e.renderDiff(res, baseline, candidate, out)
	}

	out.Duration = time.Since(start).Seconds()
	e.log.Info("comparison finished", "name", req.Name, "score", out.Score,
		"matched", out.Matched, "dimension_mismatch", out.DimensionMismatch)
	return out, nil
}

// shoot opens a session, resolves the target and captures it. The session is
// closed on every path out of this function.
func (e *Engine) shoot(ctx context.Context, req Request) ([]byte, error) {
	sess, err := browser.Open(ctx, e.withLogger(e.cfg.browserConfig()), req.URL)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	region, err := sess.Resolve(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	return sess.Capture(ctx, region)
}

func (e *Engine) renderDiff(res *compare.Result, baseline, candidate image.Image, out *CompareOutcome) {
	diff, err := res.Diff(candidate)
	if err != nil || diff == nil {
		if err != nil {
			e.log.Warn("diff rendering failed", "name", out.Name, "error", err)
		}
		return
	}

	diffPath := filepath.Join(e.cfg.DiffDir, out.Name+"_diff.png")
	if err := writePNG(diffPath, diff); err != nil {
		e.log.Warn("diff write failed", "name", out.Name, "error", err)
		return
	}
	out.DiffPath = diffPath

	if comp := compare.Composite(baseline, candidate, diff); comp != nil {
		compPath := filepath.Join(e.cfg.DiffDir, out.Name+"_composite.png")
		if err := writePNG(compPath, comp); err != nil {
			e.log.Warn("composite write failed", "name", out.Name, "error", err)
			return
		}
		out.CompositePath = compPath
	}
}

// matched applies the pass decision: a score exactly at the threshold passes.
func matched(score, threshold float64) bool {
	return score >= threshold
}

func (e *Engine) checkRequest(req *Request) error {
	if req.URL == "" {
		req.URL = e.cfg.TargetURL
	}
	if req.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if err := store.ValidateName(req.Name); err != nil {
		return err
	}
	if err := req.Target.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (e *Engine) withLogger(cfg browser.Config) browser.Config {
	cfg.Logger = e.log
	return cfg
}

func decodePNG(data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}

func pngDimensions(data []byte) (int, int, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrStorage, filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}
