package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	doc := Region{X: 0, Y: 0, W: 1920, H: 5000}
	cases := []struct {
		name string
		in   Region
		want Region
	}{
		{"inside", Region{X: 10, Y: 20, W: 100, H: 50}, Region{X: 10, Y: 20, W: 100, H: 50}},
		{"past right edge", Region{X: 1900, Y: 0, W: 100, H: 50}, Region{X: 1900, Y: 0, W: 20, H: 50}},
		{"past bottom", Region{X: 0, Y: 4990, W: 100, H: 50}, Region{X: 0, Y: 4990, W: 100, H: 10}},
		{"negative origin", Region{X: -10, Y: -5, W: 100, H: 50}, Region{X: 0, Y: 0, W: 90, H: 45}},
		{"fully outside", Region{X: 3000, Y: 0, W: 100, H: 50}, Region{X: 3000, Y: 0, W: 0, H: 50}},
		{"whole document", Region{X: 0, Y: 0, W: 1920, H: 5000}, Region{X: 0, Y: 0, W: 1920, H: 5000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clamp(tc.in, doc); got != tc.want {
				t.Errorf("clamp(%+v): got %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidEngine(t *testing.T) {
	for _, name := range []string{"chrome", "chromium", "edge", "brave"} {
		if !ValidEngine(name) {
			t.Errorf("ValidEngine(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "firefox", "safari"} {
		if ValidEngine(name) {
			t.Errorf("ValidEngine(%q) = true, want false", name)
		}
	}
}

func TestNavError(t *testing.T) {
	navErr := errors.New("net::ERR_CONNECTION_REFUSED")

	t.Run("elapsed deadline maps to timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		err := navError("http://localhost:3000/", ctx, ctx.Err())
		if !errors.Is(err, ErrNavigationTimeout) {
			t.Fatalf("error: got %v, want ErrNavigationTimeout", err)
		}
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := navError("http://localhost:3000/", ctx, ctx.Err())
		if errors.Is(err, ErrNavigationTimeout) {
			t.Fatalf("canceled run misreported as timeout: %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error: got %v, want context.Canceled", err)
		}
	})

	t.Run("navigation failure on a live context", func(t *testing.T) {
		err := navError("http://localhost:3000/", context.Background(), navErr)
		if !errors.Is(err, ErrNavigation) {
			t.Fatalf("error: got %v, want ErrNavigation", err)
		}
		if errors.Is(err, ErrNavigationTimeout) {
			t.Fatalf("plain failure misreported as timeout: %v", err)
		}
	})
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()
	if cfg.Engine != EngineChrome {
		t.Errorf("engine: got %q, want chrome", cfg.Engine)
	}
	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("viewport: got %dx%d, want 1920x1080", cfg.Width, cfg.Height)
	}
	if cfg.NavTimeout <= 0 {
		t.Error("nav timeout must never default to unbounded")
	}
}
