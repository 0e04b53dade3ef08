package regard

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/regard/internal/browser"
)

// Config is the immutable parameter bundle for the engine, constructed once
// at process start. The engine never reads ambient state; everything it needs
// arrives here.
type Config struct {
	// TargetURL is the default URL when an operation does not name one.
	TargetURL string `yaml:"target_url"`

	// Directory layout. Baselines and diffs are addressed deterministically
	// by baseline name, so compare always finds what capture wrote.
	BaselineDir string `yaml:"baseline_dir"`
	ResultsDir  string `yaml:"results_dir"`
	DiffDir     string `yaml:"diff_dir"`

	// Threshold is the minimum similarity score for a comparison to pass,
	// inclusive. ApplyDefaults treats a zero value as unset; a config file
	// can still pin an explicit 0 because file loading starts from the
	// defaults rather than a zero struct.
	Threshold float64 `yaml:"threshold"`

	// Engine picks the browser binary family: chrome | chromium | edge | brave.
	Engine string `yaml:"engine"`

	// BrowserPath overrides engine-based binary lookup.
	BrowserPath string `yaml:"browser_path"`

	// Headful runs the browser with a visible window; default is headless.
	Headful bool `yaml:"headful"`

	// Stealth applies anti-automation-detection patches.
	Stealth bool `yaml:"stealth"`

	// Viewport in CSS pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// NavTimeout bounds navigation plus load-complete per operation.
	NavTimeout time.Duration `yaml:"nav_timeout"`
}

// LoadConfigFile reads a YAML configuration file. The file is unmarshalled
// over the stock defaults, so absent keys fall back while explicit boundary
// values keep their meaning (a configured threshold of 0 stays 0).
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero values with the stock defaults.
func (c *Config) ApplyDefaults() {
	if c.TargetURL == "" {
		c.TargetURL = "http://localhost:3000/"
	}
	if c.BaselineDir == "" {
		c.BaselineDir = "screenshots/baseline"
	}
	if c.ResultsDir == "" {
		c.ResultsDir = "screenshots/results"
	}
	if c.DiffDir == "" {
		c.DiffDir = "screenshots/diff"
	}
	if c.Threshold <= 0 {
		c.Threshold = 0.95
	}
	if c.Engine == "" {
		c.Engine = string(browser.EngineChrome)
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
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidInput, c.Threshold)
	}
	if !browser.ValidEngine(c.Engine) {
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidInput, c.Engine)
	}
	if c.BaselineDir == "" || c.ResultsDir == "" || c.DiffDir == "" {
		return fmt.Errorf("%w: baseline, results and diff directories are required", ErrInvalidInput)
	}
	return nil
}

func (c *Config) browserConfig() browser.Config {
	return browser.Config{
		Engine:     browser.Engine(c.Engine),
		BinaryPath: c.BrowserPath,
		Headless:   !c.Headful,
		Stealth:    c.Stealth,
		Width:      c.Width,
		Height:     c.Height,
		NavTimeout: c.NavTimeout,
	}
}
