package regard

import "github.com/hazyhaar/regard/target"

// Request names one capture or compare operation: where to navigate, what to
// shoot, and the logical baseline name binding captures to later comparisons.
type Request struct {
	URL    string        `json:"url"`
	Name   string        `json:"name"`
	Target target.Target `json:"-"`
}

// CaptureOutcome reports a finished capture.
type CaptureOutcome struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Path string `json:"path"`

	// Stored image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Duration of the whole operation in seconds.
	Duration float64 `json:"duration_seconds"`
}

// CompareOutcome reports a finished comparison. A mismatch is a normal
// outcome, not an error: Matched is false and Score tells by how much.
type CompareOutcome struct {
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Matched   bool    `json:"matched"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`

	// DimensionMismatch reports that baseline and candidate differed in
	// pixel dimensions; the score already accounts for it.
	DimensionMismatch bool `json:"dimension_mismatch"`

	BaselinePath string `json:"baseline_path"`
	CurrentPath  string `json:"current_path"`

	// DiffPath and CompositePath are set when a diff artifact was rendered.
	// Diff generation is best-effort: when it fails the comparison result
	// stands and these stay empty.
	DiffPath      string `json:"diff_path,omitempty"`
	CompositePath string `json:"composite_path,omitempty"`

	Duration float64 `json:"duration_seconds"`
}
