// Package browser owns the headless browser session used by exactly one
// capture or compare operation: launch, navigate, wait for load, resolve a
// capture region, screenshot, teardown. A Session is a scoped resource:
// callers defer Close immediately after Open so the process is released on
// every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Engine selects the browser binary. All engines are CDP-driven, so the
// choice changes only which process the launcher starts, never the capture
// contract.
type Engine string

const (
	EngineChrome   Engine = "chrome"
	EngineChromium Engine = "chromium"
	EngineEdge     Engine = "edge"
	EngineBrave    Engine = "brave"
)

// binaries lists the PATH names probed per engine, in preference order.
var binaries = map[Engine][]string{
	EngineChrome:   {"google-chrome", "google-chrome-stable", "chrome"},
	EngineChromium: {"chromium", "chromium-browser", "headless-shell"},
	EngineEdge:     {"microsoft-edge", "microsoft-edge-stable", "msedge"},
	EngineBrave:    {"brave-browser", "brave"},
}

// Config configures one browser session.
type Config struct {
	// Engine picks the browser binary family. Default: chrome.
	Engine Engine

	// BinaryPath overrides engine-based binary lookup.
	BinaryPath string

	// Headless runs the browser without a display. Default in practice: true.
	Headless bool

	// Stealth applies anti-automation-detection patches to the page.
	Stealth bool

	// Viewport dimensions in CSS pixels (device scale factor is pinned to 1
	// so captured pixels map 1:1 to CSS pixels).
	Width  int
	Height int

	// NavTimeout bounds navigation plus load-complete. Mandatory: a zero
	// value gets the 30s default, never "no timeout".
	NavTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Engine == "" {
		c.Engine = EngineChrome
	}
	if c.Width <= 0 {
		c.Width = 1920
	}
	if c.Height <= 0 {
		c.Height = 1080
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session is a live browser with one page navigated to the operation's URL.
type Session struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
	log     *slog.Logger
	closed  bool
}

// Open launches the browser, navigates to url and blocks until the page
// signals load-complete or the navigation timeout elapses. On any failure the
// partially-started browser is torn down before returning.
func Open(ctx context.Context, cfg Config, url string) (*Session, error) {
	cfg.defaults()
	log := cfg.Logger

	bin, err := resolveBinary(cfg)
	if err != nil {
		return nil, err
	}

	l := launcher.New().Bin(bin).Headless(cfg.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", cfg.Width, cfg.Height)).
		Set("disable-blink-features", "AutomationControlled").
		Set("hide-scrollbars")

	wsURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch %s: %w", bin, err)
	}

	s := &Session{lnch: l, log: log}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b
	log.Debug("browser: launched", "engine", cfg.Engine, "bin", bin, "headless", cfg.Headless)

	var page *rod.Page
	if cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	s.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Width,
		Height:            cfg.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		s.Close()
		return nil, navError(url, navCtx, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		s.Close()
		return nil, navError(url, navCtx, err)
	}
	log.Debug("browser: page loaded", "url", url)

	return s, nil
}

// Close releases the browser process and launcher resources. Idempotent and
// safe on a partially-opened session.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.log.Debug("browser: close", "error", err)
		}
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
}

// navError classifies a navigation failure. Only an elapsed deadline maps to
// ErrNavigationTimeout; caller cancellation propagates as context.Canceled so
// an interrupted run is not reported as a page timeout.
func navError(url string, ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, ctx.Err())
	}
	return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
}

func resolveBinary(cfg Config) (string, error) {
	if cfg.BinaryPath != "" {
		return cfg.BinaryPath, nil
	}
	for _, name := range binaries[cfg.Engine] {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	// Any chromium-family binary the rod launcher knows about will do for
	// the default engine.
	if cfg.Engine == EngineChrome || cfg.Engine == EngineChromium {
		if path, has := launcher.LookPath(); has {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: engine %s", ErrNoBinary, cfg.Engine)
}

// ValidEngine reports whether name is a supported engine.
func ValidEngine(name string) bool {
	_, ok := binaries[Engine(name)]
	return ok
}
