package browser

import "errors"

// ErrNavigationTimeout is returned when navigation or load-complete does not
// happen within the configured timeout.
var ErrNavigationTimeout = errors.New("browser: navigation timed out")

// ErrNavigation is returned when the browser reports a load failure (DNS,
// refused connection, TLS).
var ErrNavigation = errors.New("browser: navigation failed")

// ErrElementNotFound is returned when a selector matches zero elements.
var ErrElementNotFound = errors.New("browser: element not found")

// ErrCapture is returned on a browser-reported rendering failure during
// screenshot capture.
var ErrCapture = errors.New("browser: capture failed")

// ErrNoBinary is returned when no browser binary for the configured engine
// can be located. Binaries are never downloaded.
var ErrNoBinary = errors.New("browser: no browser binary found")
