package ui

import "errors"

// ErrNoRuntime is returned by Available when the web runtime the window
// needs is missing or too old.
var ErrNoRuntime = errors.New("ui: web runtime not available")
