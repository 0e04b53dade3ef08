package regard

import (
	"errors"

	"github.com/hazyhaar/regard/internal/browser"
	"github.com/hazyhaar/regard/internal/store"
)

// Sentinel errors re-exported so callers can errors.Is against a single
// package. ErrBaselineNotFound is an expected outcome (run capture first),
// not a generic failure, and boundaries should present it as such.
var (
	ErrNavigationTimeout = browser.ErrNavigationTimeout
	ErrNavigation        = browser.ErrNavigation
	ErrElementNotFound   = browser.ErrElementNotFound
	ErrCapture           = browser.ErrCapture
	ErrNoBinary          = browser.ErrNoBinary

	ErrBaselineNotFound = store.ErrNotFound
	ErrStorage          = store.ErrIO
	ErrInvalidName      = store.ErrInvalidName
)

// ErrInvalidInput covers malformed requests and configuration.
var ErrInvalidInput = errors.New("regard: invalid input")
