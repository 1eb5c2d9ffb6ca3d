//go:build !windows

package ui

// Available always succeeds; the window uses the system webview.
func Available() error {
	return nil
}

// ShowError is a no-op. Errors are reported on the console.
func ShowError(title, message string) {}
