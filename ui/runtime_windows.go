//go:build windows

package ui

import (
	"fmt"

	"github.com/crafted-tech/webframe"
)

// Available reports whether a progress window can be created. It checks
// the WebView2 runtime and is safe to call before any UI initialization.
func Available() error {
	status := webframe.CheckWebView2Runtime("")
	switch {
	case !status.Installed:
		return fmt.Errorf("%w: install WebView2 from %s", ErrNoRuntime, webframe.WebView2InstallURL)
	case !status.MeetsMinimum:
		return fmt.Errorf("%w: WebView2 %s is older than %s",
			ErrNoRuntime, status.Version, webframe.MinimumWebView2Version)
	}
	return nil
}

// ShowError shows a native error dialog.
// Safe to call before any UI initialization.
func ShowError(title, message string) {
	webframe.ShowErrorDialog(title, message)
}
